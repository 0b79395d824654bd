package models

import (
	"encoding/json"
	"fmt"
)

// envelopeTypePairing is the only explicit type tag on the wire; sync
// envelopes are recognized by the presence of the data field, matching
// what earlier app versions already write to the relay.
const envelopeTypePairing = "pairing_confirmation"

// relayEnvelope is the single wire shape written to a relay mailbox at
// mailbox/{deviceId}. It is decoded exactly once, at the transport boundary,
// into one of the Message variants below.
type relayEnvelope struct {
	Type          string `json:"type,omitempty"`
	Data          string `json:"data,omitempty"`
	Timestamp     int64  `json:"timestamp"`
	FromDevice    string `json:"fromDevice"`
	DeviceName    string `json:"deviceName,omitempty"`
	SyncKey       string `json:"syncKey,omitempty"`
	Bidirectional bool   `json:"bidirectional,omitempty"`
	IsResponse    bool   `json:"isResponse,omitempty"`
}

// Message is the decoded form of a relay or direct-channel envelope.
type Message interface {
	Sender() string
}

// PairingConfirmation propagates the shared sync key back to the device
// whose pairing code was scanned, making pairing bidirectional from a single
// one-directional scan. SyncKey is the same shared key the accepting side
// stored, never a newly generated one.
type PairingConfirmation struct {
	FromDevice string
	DeviceName string
	SyncKey    string
	Timestamp  int64
}

// SyncRequest carries an encrypted snapshot. Bidirectional asks the receiver
// to send its own snapshot back after merging.
type SyncRequest struct {
	FromDevice    string
	Data          string
	Timestamp     int64
	Bidirectional bool
}

// SyncResponse is the answer leg of a bidirectional relay sync. A response
// must never be answered again; that is the cycle-breaking invariant.
type SyncResponse struct {
	FromDevice string
	Data       string
	Timestamp  int64
}

func (m PairingConfirmation) Sender() string { return m.FromDevice }
func (m SyncRequest) Sender() string         { return m.FromDevice }
func (m SyncResponse) Sender() string        { return m.FromDevice }

// DecodeMessage parses raw envelope bytes into a typed Message.
func DecodeMessage(raw []byte) (Message, error) {
	var e relayEnvelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	switch {
	case e.Type == envelopeTypePairing:
		return PairingConfirmation{
			FromDevice: e.FromDevice,
			DeviceName: e.DeviceName,
			SyncKey:    e.SyncKey,
			Timestamp:  e.Timestamp,
		}, nil
	case e.Data != "":
		if e.IsResponse {
			return SyncResponse{FromDevice: e.FromDevice, Data: e.Data, Timestamp: e.Timestamp}, nil
		}
		return SyncRequest{
			FromDevice:    e.FromDevice,
			Data:          e.Data,
			Timestamp:     e.Timestamp,
			Bidirectional: e.Bidirectional,
		}, nil
	default:
		return nil, fmt.Errorf("unrecognized envelope from %q", e.FromDevice)
	}
}

// EncodeMessage renders a typed Message back into envelope bytes.
func EncodeMessage(m Message) ([]byte, error) {
	var e relayEnvelope
	switch v := m.(type) {
	case PairingConfirmation:
		e = relayEnvelope{
			Type:       envelopeTypePairing,
			FromDevice: v.FromDevice,
			DeviceName: v.DeviceName,
			SyncKey:    v.SyncKey,
			Timestamp:  v.Timestamp,
		}
	case SyncRequest:
		e = relayEnvelope{
			Data:          v.Data,
			FromDevice:    v.FromDevice,
			Timestamp:     v.Timestamp,
			Bidirectional: v.Bidirectional,
		}
	case SyncResponse:
		e = relayEnvelope{
			Data:       v.Data,
			FromDevice: v.FromDevice,
			Timestamp:  v.Timestamp,
			IsResponse: true,
		}
	default:
		return nil, fmt.Errorf("unsupported message type %T", m)
	}
	return json.Marshal(e)
}
