// Package idempotency deduplicates mutating requests by caller-supplied
// key. A hit returns the response recorded for the first attempt.
package idempotency

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL bounds how long a recorded response is replayable.
const DefaultTTL = 24 * time.Hour

var ErrEmptyKey = errors.New("empty_idempotency_key")

// Store records responses keyed by idempotency key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Sweep(ctx context.Context) (int, error)
}
