// Package relay implements the store-and-forward transport: a key-value
// store with per-key last-write-wins semantics hosting one mailbox slot per
// device. A mailbox value is written once and consumed (read then deleted)
// by exactly one reader; it is not an append log.
package relay

import (
	"context"
	"fmt"
)

// Store is the relay key-value contract. Implementations: S3-compatible
// object storage for production, an in-memory map for tests.
type Store interface {
	// Put writes value at key, overwriting any previous value. Upload
	// failures are reported as *UploadError so callers can distinguish a
	// missing backing store from a permission problem.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the value at key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MailboxKey is the store key holding the single pending envelope for a
// device.
func MailboxKey(deviceID string) string {
	return "mailbox/" + deviceID
}

// SignalKey is the store key used for WebRTC signaling messages addressed
// to a device.
func SignalKey(deviceID string) string {
	return "signal/" + deviceID
}

// UploadReason classifies why a relay upload failed. The UI routes the user
// toward a configuration fix for the first two and a plain retry otherwise.
type UploadReason string

const (
	ReasonMissingStore UploadReason = "missing-store"
	ReasonPermission   UploadReason = "permission"
	ReasonUnknown      UploadReason = "unknown"
)

// UploadError is a relay write failure with a classified reason.
type UploadError struct {
	Reason UploadReason
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("relay upload failed (%s): %v", e.Reason, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
