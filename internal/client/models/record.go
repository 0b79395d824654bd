// Package models defines the client-side data model: the three synced record
// collections, device identity and pairing records, and the wire shapes
// exchanged between devices.
package models

// Kind classifies a captured journal text.
type Kind string

const (
	KindLog     Kind = "log"
	KindExpense Kind = "expense"
	KindAction  Kind = "action"
)

// Entry is a free-text journal record.
//
// Timestamp is epoch milliseconds; zero means the record carries no
// timestamp, which matters to the merge policy (an undated record never
// displaces a dated one).
type Entry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Kind      Kind   `json:"kind,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Expense is a spending record, optionally linked to the journal entry it
// was captured from. The link is informational only: sync tolerates dangling
// EntryID references and never repairs them.
type Expense struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency,omitempty"`
	EntryID     string  `json:"entryId,omitempty"`
	Timestamp   int64   `json:"timestamp,omitempty"`
}

// ActionItem is a task captured from journal text.
type ActionItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	EntryID   string `json:"entryId,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// RecordID and RecordTimestamp make the three record types mergeable by the
// generic resolver. Identity is always the ID, never derived from content.

func (e Entry) RecordID() string            { return e.ID }
func (e Entry) RecordTimestamp() int64      { return e.Timestamp }
func (x Expense) RecordID() string          { return x.ID }
func (x Expense) RecordTimestamp() int64    { return x.Timestamp }
func (a ActionItem) RecordID() string       { return a.ID }
func (a ActionItem) RecordTimestamp() int64 { return a.Timestamp }
