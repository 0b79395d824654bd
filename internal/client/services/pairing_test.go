package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
	"github.com/dmitrijs2005/jotkeeper/internal/client/relay"
	"github.com/dmitrijs2005/jotkeeper/internal/common"
)

func TestAcceptPairing(t *testing.T) {
	ctx := context.Background()
	store := relay.NewMemoryStore()
	alice := newTestEngine("alice", "Alice's phone", store)
	bob := newTestEngine("bob", "Bob's laptop", store)

	device, err := alice.pairing.AcceptPairing(ctx, pairingCode(t, bob))
	require.NoError(t, err)
	assert.Equal(t, "bob", device.ID)
	assert.Equal(t, "Bob's laptop", device.DisplayName)
	assert.NotZero(t, device.PairedAt)

	assert.True(t, alice.pairing.IsPaired(ctx, "bob"))
	assert.False(t, alice.pairing.IsPaired(ctx, "carol"))

	key, err := alice.pairing.SharedKey(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.identity.LocalKey, key)

	// A confirmation carrying the same key lands in bob's mailbox.
	raw, err := store.Get(ctx, relay.MailboxKey("bob"))
	require.NoError(t, err)
	msg, err := models.DecodeMessage(raw)
	require.NoError(t, err)
	conf, ok := msg.(models.PairingConfirmation)
	require.True(t, ok)
	assert.Equal(t, "alice", conf.FromDevice)
	assert.Equal(t, bob.identity.LocalKey, conf.SyncKey)
}

func TestAcceptPairing_InvalidCode(t *testing.T) {
	ctx := context.Background()
	alice := newTestEngine("alice", "Alice's phone", relay.NewMemoryStore())

	for _, code := range []string{
		"not a pairing code",
		`{"deviceId":"d1","deviceName":"Phone"}`, // missing syncKey
	} {
		_, err := alice.pairing.AcceptPairing(ctx, code)
		assert.ErrorIs(t, err, common.ErrInvalidPairingData, code)
	}

	devices, err := alice.pairing.PairedDevices(ctx)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestAcceptPairing_TwiceUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	store := relay.NewMemoryStore()
	alice := newTestEngine("alice", "Alice's phone", store)
	bob := newTestEngine("bob", "Bob's laptop", store)

	code := pairingCode(t, bob)
	_, err := alice.pairing.AcceptPairing(ctx, code)
	require.NoError(t, err)
	_, err = alice.pairing.AcceptPairing(ctx, code)
	require.NoError(t, err)

	devices, err := alice.pairing.PairedDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestAcceptPairing_RelayDownStillPairs(t *testing.T) {
	ctx := context.Background()
	store := relay.NewMemoryStore()
	alice := newTestEngine("alice", "Alice's phone", store)
	bob := newTestEngine("bob", "Bob's laptop", store)

	code := pairingCode(t, bob)
	store.FailPuts = relay.ReasonUnknown

	_, err := alice.pairing.AcceptPairing(ctx, code)
	require.NoError(t, err)
	assert.True(t, alice.pairing.IsPaired(ctx, "bob"))
}

func TestAcceptPairing_UpsertFailureDropsKey(t *testing.T) {
	ctx := context.Background()
	store := relay.NewMemoryStore()
	alice := newTestEngine("alice", "Alice's phone", store)
	bob := newTestEngine("bob", "Bob's laptop", store)

	alice.settings.failSet = context.DeadlineExceeded
	alice.settings.failKey = settingPairedDevices

	_, err := alice.pairing.AcceptPairing(ctx, pairingCode(t, bob))
	require.Error(t, err)

	// No half-pairing: the stored key must not outlive the failed upsert.
	_, err = alice.pairing.SharedKey(ctx, "bob")
	assert.ErrorIs(t, err, common.ErrNoSharedKey)
	assert.False(t, alice.pairing.IsPaired(ctx, "bob"))
}

func TestHandleConfirmation(t *testing.T) {
	ctx := context.Background()
	bob := newTestEngine("bob", "Bob's laptop", relay.NewMemoryStore())

	conf := models.PairingConfirmation{
		FromDevice: "alice",
		DeviceName: "Alice's phone",
		SyncKey:    "shared-key",
		Timestamp:  100,
	}
	require.NoError(t, bob.pairing.HandleConfirmation(ctx, conf))
	assert.True(t, bob.pairing.IsPaired(ctx, "alice"))

	key, err := bob.pairing.SharedKey(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "shared-key", key)

	// Replays are harmless.
	require.NoError(t, bob.pairing.HandleConfirmation(ctx, conf))
	devices, err := bob.pairing.PairedDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestHandleConfirmation_Invalid(t *testing.T) {
	ctx := context.Background()
	bob := newTestEngine("bob", "Bob's laptop", relay.NewMemoryStore())

	err := bob.pairing.HandleConfirmation(ctx, models.PairingConfirmation{FromDevice: "alice"})
	assert.ErrorIs(t, err, common.ErrInvalidPairingData)
	assert.False(t, bob.pairing.IsPaired(ctx, "alice"))
}

func TestHandleConfirmation_UpsertFailureDropsKey(t *testing.T) {
	ctx := context.Background()
	bob := newTestEngine("bob", "Bob's laptop", relay.NewMemoryStore())

	bob.settings.failSet = context.DeadlineExceeded
	bob.settings.failKey = settingPairedDevices

	err := bob.pairing.HandleConfirmation(ctx, models.PairingConfirmation{
		FromDevice: "alice",
		DeviceName: "Alice's phone",
		SyncKey:    "shared-key",
	})
	require.Error(t, err)

	_, err = bob.pairing.SharedKey(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNoSharedKey)
	assert.False(t, bob.pairing.IsPaired(ctx, "alice"))
}

func TestSharedKey_NotPaired(t *testing.T) {
	ctx := context.Background()
	alice := newTestEngine("alice", "Alice's phone", relay.NewMemoryStore())

	_, err := alice.pairing.SharedKey(ctx, "stranger")
	assert.ErrorIs(t, err, common.ErrNoSharedKey)
}

func TestUpdateLastSync(t *testing.T) {
	ctx := context.Background()
	store := relay.NewMemoryStore()
	alice := newTestEngine("alice", "Alice's phone", store)
	bob := newTestEngine("bob", "Bob's laptop", store)

	_, err := alice.pairing.AcceptPairing(ctx, pairingCode(t, bob))
	require.NoError(t, err)

	require.NoError(t, alice.pairing.UpdateLastSync(ctx, "bob", timeNow()))
	devices, err := alice.pairing.PairedDevices(ctx)
	require.NoError(t, err)
	assert.NotZero(t, devices[0].LastSyncAt)

	// Unknown peers are ignored.
	require.NoError(t, alice.pairing.UpdateLastSync(ctx, "carol", timeNow()))
}
