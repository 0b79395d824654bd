package models

import "time"

// SyncSnapshot is the full current state of the three collections, built
// fresh for every send and never persisted as-is: on the receiving side its
// contents are merged into the local collections and the snapshot discarded.
type SyncSnapshot struct {
	Entries     []Entry      `json:"entries"`
	Expenses    []Expense    `json:"expenses"`
	ActionItems []ActionItem `json:"actionItems"`
	Timestamp   string       `json:"timestamp"`
}

// NewSyncSnapshot stamps the snapshot with the current time in RFC 3339.
func NewSyncSnapshot(entries []Entry, expenses []Expense, actions []ActionItem, now time.Time) SyncSnapshot {
	return SyncSnapshot{
		Entries:     entries,
		Expenses:    expenses,
		ActionItems: actions,
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
}
