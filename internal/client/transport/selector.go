package transport

import (
	"context"

	"github.com/dmitrijs2005/jotkeeper/internal/client/relay"
)

// Kind names the transport a Route will use.
type Kind string

const (
	KindDirect Kind = "direct"
	KindRelay  Kind = "relay"
)

// Route is a resolved delivery path for one peer.
type Route struct {
	Kind Kind
	send func(ctx context.Context, payload []byte) error
}

func (r Route) Send(ctx context.Context, payload []byte) error {
	return r.send(ctx, payload)
}

// Selector resolves the transport for a target device: the direct channel
// if one is currently open, else the relay mailbox. Resolution is a
// synchronous snapshot and never waits for a channel to appear.
type Selector struct {
	provider Provider
	relay    relay.Store
}

func NewSelector(provider Provider, relayStore relay.Store) *Selector {
	return &Selector{provider: provider, relay: relayStore}
}

func (s *Selector) Resolve(peerID string) Route {
	if s.provider.Available() {
		if ch, ok := s.provider.Channel(peerID); ok {
			return Route{
				Kind: KindDirect,
				send: func(ctx context.Context, payload []byte) error {
					return ch.Send(payload)
				},
			}
		}
	}
	return Route{
		Kind: KindRelay,
		send: func(ctx context.Context, payload []byte) error {
			return s.relay.Put(ctx, relay.MailboxKey(peerID), payload)
		},
	}
}
