// Package transport picks the delivery path for sync traffic: a direct
// peer-to-peer channel when one is open, the relay mailbox otherwise.
package transport

import (
	"context"

	"github.com/dmitrijs2005/jotkeeper/internal/common"
)

// Inbound is a message received over a direct channel.
type Inbound struct {
	PeerID  string
	Payload []byte
}

// Channel is an open point-to-point message channel to one peer.
type Channel interface {
	Send(payload []byte) error
	Close() error
}

// Provider is the platform capability for direct peer channels. It may be
// entirely absent on some platforms; callers must treat "no channel open"
// identically whether the capability is missing or the peer is offline.
type Provider interface {
	// Available reports whether this platform supports direct channels
	// at all.
	Available() bool

	// Channel returns the open channel to peerID, if any. It is a
	// synchronous snapshot of current connectivity and never blocks.
	Channel(peerID string) (Channel, bool)

	// Connect attempts to open a channel to peerID. Best-effort: callers
	// swallow failures, a device stays paired even if never reachable
	// directly.
	Connect(ctx context.Context, peerID string) error

	// Inbound delivers messages received over any open channel.
	Inbound() <-chan Inbound

	Close() error
}

// Unavailable is the Provider wired on platforms without direct-channel
// support. Everything is a miss; sync falls back to the relay.
type Unavailable struct{}

func (Unavailable) Available() bool                       { return false }
func (Unavailable) Channel(string) (Channel, bool)        { return nil, false }
func (Unavailable) Connect(context.Context, string) error { return common.ErrTransportUnavailable }
func (Unavailable) Inbound() <-chan Inbound               { return nil }
func (Unavailable) Close() error                          { return nil }
