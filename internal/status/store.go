// Package status provides the keyed, TTL-bound string store backing
// the shared move-car session record.
package status

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or expired.
var ErrNotFound = errors.New("status: not found")

// Store is the minimal key-value capability the session logic needs.
// Every value carries its own time-to-live from the moment it is
// written; implementations must treat expired keys as absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
