package cache

import (
	"context"
	"errors"
	"time"
)

var ErrLockTimeout = errors.New("lock wait timed out")

// TTLStore holds short-lived markers (webhook dedup keys). Entries vanish
// after their ttl.
type TTLStore interface {
	// SetNX stores key if absent and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Locker serializes critical sections across requests (and, with Redis,
// across instances). unlock is safe to call once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
