// Package metadata implements the client's durable key-value storage:
// string-named entries (tokens, serialized profile) backed by sqlite.
package metadata

import (
	"context"
)

// Repository is the durable key-value store the session layer persists into.
// Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
