package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
	"github.com/dmitrijs2005/jotkeeper/internal/client/relay"
	"github.com/dmitrijs2005/jotkeeper/internal/client/repositories/settings"
	"github.com/dmitrijs2005/jotkeeper/internal/common"
	"github.com/dmitrijs2005/jotkeeper/internal/logging"
)

const (
	settingPairedDevices = "paired_devices"
	syncKeyPrefix        = "sync_key/"
)

// timeNow is a test seam.
var timeNow = time.Now

// PairingService turns a scanned or typed code into a trust relationship:
// a PairedDevice record plus the shared sync key, mirrored to the other
// device through a relay confirmation.
type PairingService struct {
	settings   settings.Repository
	relay      relay.Store
	identity   models.DeviceIdentity
	deviceName string
	events     *Events
	log        logging.Logger
}

func NewPairingService(st settings.Repository, relayStore relay.Store, identity models.DeviceIdentity, deviceName string, events *Events, log logging.Logger) *PairingService {
	return &PairingService{
		settings:   st,
		relay:      relayStore,
		identity:   identity,
		deviceName: deviceName,
		events:     events,
		log:        log,
	}
}

// GeneratePairingPayload builds the data embedded in this device's QR code.
// The sync key offered is this device's own local key: once the counterpart
// accepts, the same key is held on both sides.
func (p *PairingService) GeneratePairingPayload() models.PairingPayload {
	return models.PairingPayload{
		DeviceID:   p.identity.DeviceID,
		SyncKey:    p.identity.LocalKey,
		DeviceName: p.deviceName,
		Timestamp:  timeNow().UnixMilli(),
	}
}

// AcceptPairing processes a code from another device. On success the peer
// is upserted into the paired device list (pairing the same device twice
// updates in place, never duplicates), the offered key is stored as the
// shared sync key, and a confirmation carrying that same key is pushed to
// the peer's relay mailbox. The confirmation is best-effort: a relay
// failure leaves this side paired and only delays the counterpart's
// awareness.
func (p *PairingService) AcceptPairing(ctx context.Context, code string) (*models.PairedDevice, error) {
	payload, err := models.ParsePairingPayload(code)
	if err != nil {
		return nil, err
	}

	if err := p.storeSharedKey(ctx, payload.DeviceID, payload.SyncKey); err != nil {
		return nil, err
	}

	device, err := p.upsertDevice(ctx, payload.DeviceID, payload.DeviceName)
	if err != nil {
		// Do not leave a shared key behind for a peer that never made the
		// paired list.
		if delErr := p.settings.Delete(ctx, syncKeyPrefix+payload.DeviceID); delErr != nil {
			p.log.Warn(ctx, "shared key cleanup failed",
				"peer", payload.DeviceID, "error", delErr)
		}
		return nil, err
	}

	confirmation := models.PairingConfirmation{
		FromDevice: p.identity.DeviceID,
		DeviceName: p.deviceName,
		SyncKey:    payload.SyncKey,
		Timestamp:  timeNow().UnixMilli(),
	}
	raw, err := models.EncodeMessage(confirmation)
	if err != nil {
		return nil, err
	}
	if err := p.relay.Put(ctx, relay.MailboxKey(payload.DeviceID), raw); err != nil {
		p.log.Warn(ctx, "pairing confirmation not delivered",
			"peer", payload.DeviceID, "error", err)
	}

	p.events.Publish(Event{Type: EventPaired, PeerID: payload.DeviceID})
	return device, nil
}

// HandleConfirmation processes a pairing confirmation observed in this
// device's mailbox: store the embedded shared key under the sender's id and
// make sure the sender is in the paired list. Replays are harmless.
func (p *PairingService) HandleConfirmation(ctx context.Context, msg models.PairingConfirmation) error {
	if msg.FromDevice == "" || msg.SyncKey == "" {
		return fmt.Errorf("%w: confirmation missing device or key", common.ErrInvalidPairingData)
	}

	if err := p.storeSharedKey(ctx, msg.FromDevice, msg.SyncKey); err != nil {
		return err
	}
	if _, err := p.upsertDevice(ctx, msg.FromDevice, msg.DeviceName); err != nil {
		if delErr := p.settings.Delete(ctx, syncKeyPrefix+msg.FromDevice); delErr != nil {
			p.log.Warn(ctx, "shared key cleanup failed",
				"peer", msg.FromDevice, "error", delErr)
		}
		return err
	}

	p.events.Publish(Event{Type: EventPairingConfirmed, PeerID: msg.FromDevice})
	p.log.Info(ctx, "pairing confirmed", "peer", msg.FromDevice)
	return nil
}

// PairedDevices returns the trusted peer list. An empty list is not an
// error.
func (p *PairingService) PairedDevices(ctx context.Context) ([]models.PairedDevice, error) {
	raw, err := p.settings.Get(ctx, settingPairedDevices)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var devices []models.PairedDevice
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, fmt.Errorf("corrupted paired device list: %w", err)
	}
	return devices, nil
}

// IsPaired reports whether peerID is a trusted device. Used as the direct
// channel authorization check.
func (p *PairingService) IsPaired(ctx context.Context, peerID string) bool {
	devices, err := p.PairedDevices(ctx)
	if err != nil {
		p.log.Warn(ctx, "paired device lookup failed", "error", err)
		return false
	}
	for _, d := range devices {
		if d.ID == peerID {
			return true
		}
	}
	return false
}

// SharedKey returns the shared sync key for a peer, or ErrNoSharedKey when
// pairing never completed.
func (p *PairingService) SharedKey(ctx context.Context, peerID string) (string, error) {
	raw, err := p.settings.Get(ctx, syncKeyPrefix+peerID)
	if errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("%w: %s", common.ErrNoSharedKey, peerID)
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// UpdateLastSync stamps the peer's record after a successful sync.
func (p *PairingService) UpdateLastSync(ctx context.Context, peerID string, t time.Time) error {
	devices, err := p.PairedDevices(ctx)
	if err != nil {
		return err
	}
	for i := range devices {
		if devices[i].ID == peerID {
			devices[i].LastSyncAt = t.UnixMilli()
			return p.saveDevices(ctx, devices)
		}
	}
	return nil
}

func (p *PairingService) storeSharedKey(ctx context.Context, peerID, key string) error {
	return p.settings.Set(ctx, syncKeyPrefix+peerID, []byte(key))
}

func (p *PairingService) upsertDevice(ctx context.Context, peerID, displayName string) (*models.PairedDevice, error) {
	devices, err := p.PairedDevices(ctx)
	if err != nil {
		return nil, err
	}

	for i := range devices {
		if devices[i].ID == peerID {
			if displayName != "" {
				devices[i].DisplayName = displayName
			}
			devices[i].PairedAt = timeNow().UnixMilli()
			if err := p.saveDevices(ctx, devices); err != nil {
				return nil, err
			}
			return &devices[i], nil
		}
	}

	device := models.PairedDevice{
		ID:          peerID,
		DisplayName: displayName,
		PairedAt:    timeNow().UnixMilli(),
	}
	devices = append(devices, device)
	if err := p.saveDevices(ctx, devices); err != nil {
		return nil, err
	}
	return &device, nil
}

func (p *PairingService) saveDevices(ctx context.Context, devices []models.PairedDevice) error {
	b, err := json.Marshal(devices)
	if err != nil {
		return err
	}
	return p.settings.Set(ctx, settingPairedDevices, b)
}
