// Package storage defines the object store surface shared by the GCS
// and in-memory backends.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound reports a key with no stored object behind it.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore persists raw blob payloads under opaque keys.
type ObjectStore interface {
	UploadObject(ctx context.Context, key, contentType string, payload io.Reader) error
	DownloadObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
}
