package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
	"github.com/dmitrijs2005/jotkeeper/internal/client/relay"
	"github.com/dmitrijs2005/jotkeeper/internal/client/repositories/actionitems"
	"github.com/dmitrijs2005/jotkeeper/internal/client/repositories/entries"
	"github.com/dmitrijs2005/jotkeeper/internal/client/repositories/expenses"
	"github.com/dmitrijs2005/jotkeeper/internal/client/transport"
	"github.com/dmitrijs2005/jotkeeper/internal/cryptox"
	"github.com/dmitrijs2005/jotkeeper/internal/logging"
)

// SyncService is the orchestrator: it snapshots the local collections,
// encrypts the snapshot with the peer's shared key, and ships it over
// whatever transport the selector picks. Inbound envelopes flow back in
// through HandleEnvelope (relay mailbox) and HandleDirect (peer channel).
type SyncService struct {
	identity    models.DeviceIdentity
	pairing     *PairingService
	selector    *transport.Selector
	relay       relay.Store
	entryRepo   entries.Repository
	expenseRepo expenses.Repository
	actionRepo  actionitems.Repository
	events      *Events
	log         logging.Logger
}

func NewSyncService(
	identity models.DeviceIdentity,
	pairing *PairingService,
	selector *transport.Selector,
	relayStore relay.Store,
	entryRepo entries.Repository,
	expenseRepo expenses.Repository,
	actionRepo actionitems.Repository,
	events *Events,
	log logging.Logger,
) *SyncService {
	return &SyncService{
		identity:    identity,
		pairing:     pairing,
		selector:    selector,
		relay:       relayStore,
		entryRepo:   entryRepo,
		expenseRepo: expenseRepo,
		actionRepo:  actionRepo,
		events:      events,
		log:         log,
	}
}

// SyncWithDevice pushes a full snapshot to one paired peer. Over a direct
// channel the delivery is final; over the relay the request leg asks the
// counterpart to send its own snapshot back. Safe to retry freely: sending
// and re-merging an unchanged snapshot changes nothing.
func (s *SyncService) SyncWithDevice(ctx context.Context, peerID string) error {
	key, err := s.pairing.SharedKey(ctx, peerID)
	if err != nil {
		return err
	}

	snap, err := s.buildSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("building snapshot: %w", err)
	}

	ciphertext, err := cryptox.Encrypt(snap, key)
	if err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}

	route := s.selector.Resolve(peerID)
	msg := models.SyncRequest{
		FromDevice:    s.identity.DeviceID,
		Data:          ciphertext,
		Timestamp:     timeNow().UnixMilli(),
		Bidirectional: route.Kind == transport.KindRelay,
	}
	raw, err := models.EncodeMessage(msg)
	if err != nil {
		return err
	}

	if err := route.Send(ctx, raw); err != nil {
		return fmt.Errorf("sending snapshot to %s: %w", peerID, err)
	}

	s.log.Info(ctx, "snapshot sent", "peer", peerID, "transport", string(route.Kind))

	if err := s.pairing.UpdateLastSync(ctx, peerID, timeNow()); err != nil {
		s.log.Warn(ctx, "updating last sync time failed", "peer", peerID, "error", err)
	}
	s.events.Publish(Event{Type: EventSyncCompleted, PeerID: peerID})
	return nil
}

// HandleEnvelope processes one envelope consumed from this device's relay
// mailbox.
func (s *SyncService) HandleEnvelope(ctx context.Context, raw []byte) error {
	msg, err := models.DecodeMessage(raw)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case models.PairingConfirmation:
		return s.pairing.HandleConfirmation(ctx, m)
	case models.SyncRequest:
		return s.handleSnapshot(ctx, m.FromDevice, m.Data, m.Bidirectional)
	case models.SyncResponse:
		// The response leg is never answered; that breaks the cycle.
		return s.handleSnapshot(ctx, m.FromDevice, m.Data, false)
	default:
		return fmt.Errorf("unhandled message type %T", msg)
	}
}

// HandleDirect processes a message received over a direct channel. Direct
// deliveries are final: no response leg, even when the sender sets the
// bidirectional flag.
func (s *SyncService) HandleDirect(ctx context.Context, in transport.Inbound) error {
	msg, err := models.DecodeMessage(in.Payload)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case models.PairingConfirmation:
		return s.pairing.HandleConfirmation(ctx, m)
	case models.SyncRequest:
		return s.handleSnapshot(ctx, m.FromDevice, m.Data, false)
	case models.SyncResponse:
		return s.handleSnapshot(ctx, m.FromDevice, m.Data, false)
	default:
		return fmt.Errorf("unhandled message type %T", msg)
	}
}

// handleSnapshot decrypts and merges one incoming snapshot. Decryption
// happens in full before any write, so a wrong key or corrupted envelope
// leaves every collection untouched; the envelope is simply discarded.
// When respond is set (bidirectional relay request), the merged side sends
// its own snapshot back flagged as a response.
func (s *SyncService) handleSnapshot(ctx context.Context, fromDevice, ciphertext string, respond bool) error {
	key, err := s.pairing.SharedKey(ctx, fromDevice)
	if err != nil {
		return err
	}

	var snap models.SyncSnapshot
	if err := cryptox.Decrypt(ciphertext, key, &snap); err != nil {
		return fmt.Errorf("snapshot from %s: %w", fromDevice, err)
	}

	if err := s.mergeSnapshot(ctx, snap); err != nil {
		return err
	}

	s.log.Info(ctx, "snapshot merged", "peer", fromDevice,
		"entries", len(snap.Entries), "expenses", len(snap.Expenses), "actions", len(snap.ActionItems))
	s.events.Publish(Event{Type: EventSnapshotMerged, PeerID: fromDevice})

	if respond {
		if err := s.sendResponse(ctx, fromDevice, key); err != nil {
			s.log.Warn(ctx, "sync response not delivered", "peer", fromDevice, "error", err)
		}
	}

	if err := s.pairing.UpdateLastSync(ctx, fromDevice, timeNow()); err != nil {
		s.log.Warn(ctx, "updating last sync time failed", "peer", fromDevice, "error", err)
	}
	return nil
}

func (s *SyncService) sendResponse(ctx context.Context, peerID, key string) error {
	snap, err := s.buildSnapshot(ctx)
	if err != nil {
		return err
	}
	ciphertext, err := cryptox.Encrypt(snap, key)
	if err != nil {
		return err
	}
	raw, err := models.EncodeMessage(models.SyncResponse{
		FromDevice: s.identity.DeviceID,
		Data:       ciphertext,
		Timestamp:  timeNow().UnixMilli(),
	})
	if err != nil {
		return err
	}
	return s.relay.Put(ctx, relay.MailboxKey(peerID), raw)
}

func (s *SyncService) buildSnapshot(ctx context.Context) (models.SyncSnapshot, error) {
	entries, err := s.entryRepo.GetAll(ctx)
	if err != nil {
		return models.SyncSnapshot{}, err
	}
	expenses, err := s.expenseRepo.GetAll(ctx)
	if err != nil {
		return models.SyncSnapshot{}, err
	}
	actions, err := s.actionRepo.GetAll(ctx)
	if err != nil {
		return models.SyncSnapshot{}, err
	}
	return models.NewSyncSnapshot(entries, expenses, actions, timeNow()), nil
}

// mergeSnapshot applies the resolver to each collection and writes the
// result back wholesale, one transaction per collection.
func (s *SyncService) mergeSnapshot(ctx context.Context, snap models.SyncSnapshot) error {
	localEntries, err := s.entryRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := s.entryRepo.ReplaceAll(ctx, Merge(localEntries, snap.Entries)); err != nil {
		return fmt.Errorf("merging entries: %w", err)
	}

	localExpenses, err := s.expenseRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.ReplaceAll(ctx, Merge(localExpenses, snap.Expenses)); err != nil {
		return fmt.Errorf("merging expenses: %w", err)
	}

	localActions, err := s.actionRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := s.actionRepo.ReplaceAll(ctx, Merge(localActions, snap.ActionItems)); err != nil {
		return fmt.Errorf("merging action items: %w", err)
	}
	return nil
}

// ConnectPeers makes a best-effort direct-channel dial to every paired
// device. Failures are swallowed: a device stays paired even when it is
// never directly reachable.
func (s *SyncService) ConnectPeers(ctx context.Context, provider transport.Provider) {
	if !provider.Available() {
		return
	}
	devices, err := s.pairing.PairedDevices(ctx)
	if err != nil {
		s.log.Warn(ctx, "paired device list unavailable", "error", err)
		return
	}
	for _, d := range devices {
		if err := provider.Connect(ctx, d.ID); err != nil {
			s.log.Debug(ctx, "direct connect failed", "peer", d.ID, "error", err)
		}
	}
}
