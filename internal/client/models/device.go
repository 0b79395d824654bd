package models

// DeviceIdentity is created once per installation and persisted for the app
// lifetime. LocalKey is this device's own secret; it is shared with a peer
// only through the pairing payload, where it becomes the shared sync key.
type DeviceIdentity struct {
	DeviceID string `json:"deviceId"`
	LocalKey string `json:"localKey"`
}

// PairedDevice is one trusted peer, keyed by its device id. Created on
// successful pairing, updated in place on pairing retry and after each
// successful sync. Never deleted automatically.
type PairedDevice struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PairedAt    int64  `json:"pairedAt"`
	LastSyncAt  int64  `json:"lastSyncAt,omitempty"`
}
