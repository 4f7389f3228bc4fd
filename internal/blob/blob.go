// Package blob defines the opaque binary store the asset services write
// uploads to. Keys are generated here and never interpreted beyond
// pass-through.
package blob

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Info describes stored content when opening it back up.
type Info struct {
	ContentType string
	Size        int64
}

type Store interface {
	// Put stores the content under key and reports the number of bytes
	// written.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, *Info, error)
	Delete(ctx context.Context, key string) error
	// UploadURL returns a pre-authorized, expiring upload target for key.
	UploadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// NewKey mints a fresh opaque blob reference.
func NewKey() string {
	return uuid.New().String()
}
