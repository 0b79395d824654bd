package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
	"github.com/dmitrijs2005/jotkeeper/internal/client/services"
)

// Pair prints this device's pairing code for the counterpart to scan or type.
func (a *App) Pair(ctx context.Context) error {
	code, err := a.pairing.GeneratePairingPayload().Encode()
	if err != nil {
		a.log.Error(ctx, "generating pairing code", "error", err)
		return err
	}
	printlnFn("Show this code to the other device:")
	printlnFn(code)
	printlnFn("Waiting for the confirmation to arrive through the relay...")
	return nil
}

// Accept reads a pairing code from the terminal and trusts its device.
func (a *App) Accept(ctx context.Context) error {
	code, err := GetPairingCode(os.Stdout)
	if err != nil {
		// Not a terminal; read the code with echo instead.
		code, err = GetSimpleText(a.reader, "Pairing code", os.Stdout)
		if err != nil {
			return err
		}
	}

	device, err := a.pairing.AcceptPairing(ctx, code)
	if err != nil {
		printlnFn("Pairing failed:", err.Error())
		return err
	}
	printlnFn("Paired with", deviceLabel(*device))
	return nil
}

// Devices lists the paired devices.
func (a *App) Devices(ctx context.Context) error {
	devices, err := a.pairing.PairedDevices(ctx)
	if err != nil {
		a.log.Error(ctx, "listing devices", "error", err)
		return err
	}
	if len(devices) == 0 {
		printlnFn("No paired devices yet. Use 'pair' or 'accept'.")
		return nil
	}
	for _, d := range devices {
		last := "never"
		if d.LastSyncAt != 0 {
			last = time.UnixMilli(d.LastSyncAt).Format(time.DateTime)
		}
		printlnFn(fmt.Sprintf("%s  %s  last sync: %s", d.ID, d.DisplayName, last))
	}
	return nil
}

// Sync pushes a snapshot to one peer, or to every paired device when peerID
// is empty.
func (a *App) Sync(ctx context.Context, peerID string) error {
	if peerID != "" {
		return a.syncOne(ctx, peerID)
	}

	devices, err := a.pairing.PairedDevices(ctx)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		printlnFn("No paired devices yet. Use 'pair' or 'accept'.")
		return nil
	}
	for _, d := range devices {
		_ = a.syncOne(ctx, d.ID)
	}
	return nil
}

func (a *App) syncOne(ctx context.Context, peerID string) error {
	if err := a.sync.SyncWithDevice(ctx, peerID); err != nil {
		printlnFn("Sync with", peerID, "failed:", err.Error())
		return err
	}
	printlnFn("Snapshot sent to", peerID)
	return nil
}

// Add captures one journal text, classifies it, and stores the resulting
// records.
func (a *App) Add(ctx context.Context, text string) error {
	now := time.Now().UnixMilli()
	kind := a.classifier.Classify(text)

	entry := models.Entry{ID: uuid.NewString(), Text: text, Kind: kind, Timestamp: now}
	if err := a.repos.Entries.CreateOrUpdate(ctx, &entry); err != nil {
		a.log.Error(ctx, "saving entry", "error", err)
		return err
	}

	switch kind {
	case models.KindExpense:
		amount, _ := services.ExtractAmount(text)
		expense := models.Expense{
			ID:          uuid.NewString(),
			Description: text,
			Amount:      amount,
			EntryID:     entry.ID,
			Timestamp:   now,
		}
		if err := a.repos.Expenses.CreateOrUpdate(ctx, &expense); err != nil {
			return err
		}
	case models.KindAction:
		action := models.ActionItem{
			ID:        uuid.NewString(),
			Text:      text,
			EntryID:   entry.ID,
			Timestamp: now,
		}
		if err := a.repos.ActionItems.CreateOrUpdate(ctx, &action); err != nil {
			return err
		}
	}

	printlnFn("Added", string(kind))
	return nil
}

// List prints all records, collection by collection.
func (a *App) List(ctx context.Context) error {
	entries, err := a.repos.Entries.GetAll(ctx)
	if err != nil {
		return err
	}
	expenses, err := a.repos.Expenses.GetAll(ctx)
	if err != nil {
		return err
	}
	actions, err := a.repos.ActionItems.GetAll(ctx)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Entries (%d):", len(entries)))
	for _, e := range entries {
		printlnFn(fmt.Sprintf("  %s  [%s]  %s", recordDate(e.Timestamp), e.Kind, e.Text))
	}
	printlnFn(fmt.Sprintf("Expenses (%d):", len(expenses)))
	for _, x := range expenses {
		printlnFn(fmt.Sprintf("  %s  %.2f %s  %s", recordDate(x.Timestamp), x.Amount, x.Currency, x.Description))
	}
	printlnFn(fmt.Sprintf("Action items (%d):", len(actions)))
	for _, item := range actions {
		mark := " "
		if item.Done {
			mark = "x"
		}
		printlnFn(fmt.Sprintf("  [%s] %s  %s", mark, recordDate(item.Timestamp), item.Text))
	}
	return nil
}

func recordDate(ts int64) string {
	if ts == 0 {
		return "----------"
	}
	return time.UnixMilli(ts).Format(time.DateOnly)
}

func deviceLabel(d models.PairedDevice) string {
	if d.DisplayName != "" {
		return fmt.Sprintf("%s (%s)", d.DisplayName, d.ID)
	}
	return d.ID
}
