package models

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/jotkeeper/internal/common"
)

// PairingPayload is the data embedded in a QR code or copy-pasted as a
// shareable code. SyncKey is the generating device's own local key; once the
// counterpart accepts the payload it becomes the shared sync key for the
// pairing. The payload is not signed; authenticity rests entirely on
// physical possession of the code.
type PairingPayload struct {
	DeviceID   string `json:"deviceId"`
	SyncKey    string `json:"syncKey"`
	DeviceName string `json:"deviceName"`
	Timestamp  int64  `json:"timestamp"`
}

// ParsePairingPayload decodes a scanned or typed pairing code. A payload
// that is not well-formed JSON or is missing deviceId or syncKey fails with
// common.ErrInvalidPairingData.
func ParsePairingPayload(raw string) (*PairingPayload, error) {
	var p PairingPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPairingData, err)
	}
	if p.DeviceID == "" {
		return nil, fmt.Errorf("%w: missing deviceId", common.ErrInvalidPairingData)
	}
	if p.SyncKey == "" {
		return nil, fmt.Errorf("%w: missing syncKey", common.ErrInvalidPairingData)
	}
	return &p, nil
}

// Encode renders the payload as the JSON string shown to the user.
func (p PairingPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
