package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jotkeeper/internal/client/relay"
	"github.com/dmitrijs2005/jotkeeper/internal/common"
)

// SignalMessage is one SDP offer or answer exchanged through the signaling
// broker.
type SignalMessage struct {
	From string `json:"from"`
	Kind string `json:"kind"` // "offer" or "answer"
	SDP  string `json:"sdp"`
}

// Signaler exchanges SDP between peers. Production signaling rides on the
// relay store; tests use the same implementation over a MemoryStore.
type Signaler interface {
	PublishOffer(ctx context.Context, from, to, sdp string) error
	PublishAnswer(ctx context.Context, from, to, sdp string) error

	// PollOffers consumes a pending offer addressed to self, if any.
	PollOffers(ctx context.Context, self string) ([]SignalMessage, error)

	// PollAnswers consumes a pending answer addressed to self, if any.
	PollAnswers(ctx context.Context, self string) ([]SignalMessage, error)
}

// StoreSignaler keeps one signaling slot per device in the relay store at
// signal/{deviceId}. The slot is last-write-wins like the data mailbox:
// with the handful of devices one person pairs, a clobbered offer just
// means the dial retries.
type StoreSignaler struct {
	store relay.Store
}

func NewStoreSignaler(store relay.Store) *StoreSignaler {
	return &StoreSignaler{store: store}
}

func (s *StoreSignaler) PublishOffer(ctx context.Context, from, to, sdp string) error {
	return s.publish(ctx, to, SignalMessage{From: from, Kind: "offer", SDP: sdp})
}

func (s *StoreSignaler) PublishAnswer(ctx context.Context, from, to, sdp string) error {
	return s.publish(ctx, to, SignalMessage{From: from, Kind: "answer", SDP: sdp})
}

func (s *StoreSignaler) publish(ctx context.Context, to string, m SignalMessage) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, relay.SignalKey(to), b); err != nil {
		return fmt.Errorf("publishing %s to %s: %w", m.Kind, to, err)
	}
	return nil
}

func (s *StoreSignaler) PollOffers(ctx context.Context, self string) ([]SignalMessage, error) {
	return s.poll(ctx, self, "offer")
}

func (s *StoreSignaler) PollAnswers(ctx context.Context, self string) ([]SignalMessage, error) {
	return s.poll(ctx, self, "answer")
}

// poll consumes the slot only when the pending message matches the wanted
// kind; otherwise it is left in place for the other poll loop.
func (s *StoreSignaler) poll(ctx context.Context, self, kind string) ([]SignalMessage, error) {
	raw, err := s.store.Get(ctx, relay.SignalKey(self))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var m SignalMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		// Unreadable slot: clear it so signaling can make progress.
		_ = s.store.Delete(ctx, relay.SignalKey(self))
		return nil, fmt.Errorf("decoding signal message: %w", err)
	}
	if m.Kind != kind {
		return nil, nil
	}

	if err := s.store.Delete(ctx, relay.SignalKey(self)); err != nil {
		return nil, err
	}
	return []SignalMessage{m}, nil
}
