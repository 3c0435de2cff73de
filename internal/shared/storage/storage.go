package storage

import (
	"context"
	"time"
)

// BlobStore keeps uploaded files and generated documents. References are the
// object paths handed back by Put.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) (bool, error)
	Exists(ctx context.Context, ref string) (bool, error)
	ListOlderThan(ctx context.Context, prefix string, before time.Time) ([]string, error)
}
