// Package results persists timestamped API results in the local database so
// slow-changing listings survive restarts and can be served until a
// freshness window elapses.
package results

import (
	"context"
	"time"
)

// Result is one cached payload with the moment it was fetched.
type Result struct {
	Key       string
	Value     []byte
	FetchedAt time.Time
}

// Repository stores results by key. Get returns (nil, nil) when absent.
type Repository interface {
	Get(ctx context.Context, key string) (*Result, error)
	Put(ctx context.Context, r Result) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Result, error)
	PurgeBefore(ctx context.Context, t time.Time) (int64, error)
}
