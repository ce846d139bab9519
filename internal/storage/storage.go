// Package storage writes uploaded audio to object storage.
package storage

import (
	"context"
	"errors"

	"audioscribe/internal/model"
)

// ErrCredentials marks a write that failed because the storage credentials
// were rejected. Such failures are not worth retrying.
var ErrCredentials = errors.New("storage credentials rejected")

// Uploader writes one object and returns its reference.
// Implementations must be safe for concurrent use.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (model.StoredObjectRef, error)
}
