package storage

import (
	"context"
	"io"
)

// BlobStore keeps document bytes by storage key. Get on a missing key
// returns models.ErrBlobNotFound.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
