// Package services implements the sync engine: device identity, pairing,
// the sync orchestrator, and the merge resolver.
package services

import "time"

// EventType names engine events published to the UI layer.
type EventType string

const (
	// EventPaired fires when this device accepts a pairing code.
	EventPaired EventType = "paired"

	// EventPairingConfirmed fires when a counterpart's confirmation
	// arrives through the relay.
	EventPairingConfirmed EventType = "pairing_confirmed"

	// EventSyncCompleted fires after a snapshot is sent successfully.
	EventSyncCompleted EventType = "sync_completed"

	// EventSnapshotMerged fires after a received snapshot is merged into
	// the local collections.
	EventSnapshotMerged EventType = "snapshot_merged"
)

// Event is one engine notification.
type Event struct {
	Type   EventType
	PeerID string
	At     time.Time
}

// Events is the engine's outbound event stream. The engine publishes,
// subscribers (the UI) read from C. Publishing never blocks: when nobody
// drains the channel, the oldest events are dropped.
type Events struct {
	ch chan Event
}

func NewEvents(buffer int) *Events {
	if buffer < 1 {
		buffer = 1
	}
	return &Events{ch: make(chan Event, buffer)}
}

func (e *Events) C() <-chan Event { return e.ch }

func (e *Events) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	for {
		select {
		case e.ch <- ev:
			return
		default:
			// Full: drop the oldest and retry.
			select {
			case <-e.ch:
			default:
			}
		}
	}
}
