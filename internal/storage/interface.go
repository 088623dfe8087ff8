package storage

import (
	"context"
	"io"
)

// Storage archives raw uploaded gradebooks. Archived files are never
// deleted; like courses, history is kept.
type Storage interface {
	Upload(ctx context.Context, key string, data io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}
