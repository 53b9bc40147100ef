package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by page generators when a route code resolves to nothing.
var ErrNotFound = errors.New("not found")

// ErrCacheCorrupt marks a cached value that exists but no longer decodes.
var ErrCacheCorrupt = errors.New("corrupt cache entry")

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// PageSink persists rendered pages under a relative, slash-separated path.
type PageSink interface {
	Write(ctx context.Context, path string, body []byte) error
}
