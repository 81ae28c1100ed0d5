package repository

import (
	"context"
	"time"
)

// DefaultTimeout bounds a store call when none is configured.
const DefaultTimeout = 5 * time.Second

// withTimeout gives every repository call its own deadline, including
// callers that run on a long-lived context such as the expiry sweeper.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}
