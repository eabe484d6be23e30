// Package metadata stores small key/value pairs in the local database. The
// session store keeps its token and user record here.
package metadata

import "context"

// Repository is a durable key/value store. Get returns (nil, nil) when the
// key is absent. Writers are last-write-wins.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
