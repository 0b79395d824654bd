// Package common defines shared constants and sentinel errors used across
// JotKeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrIdentityUnavailable is fatal: without a stable device identity the
	// sync engine cannot operate at all.
	ErrIdentityUnavailable = errors.New("device identity unavailable")

	// Pairing errors.
	ErrInvalidPairingData = errors.New("invalid pairing data")
	ErrNoSharedKey        = errors.New("no shared sync key for device")

	// ErrTransportUnavailable means no direct channel could be used for a
	// peer. The transport selector falls back to the relay automatically,
	// so this is never surfaced to the user on its own.
	ErrTransportUnavailable = errors.New("transport unavailable")
)
