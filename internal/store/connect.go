package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/roach88/stockroom/internal/domain"
)

// Opener opens a store once. Connect calls it until it succeeds.
type Opener func(ctx context.Context) (Store, error)

// RetryPolicy bounds connection attempts at startup.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// Interval is the fixed wait between tries.
	Interval time.Duration
}

// DefaultRetryPolicy retries five times, five seconds apart.
var DefaultRetryPolicy = RetryPolicy{Attempts: 5, Interval: 5 * time.Second}

// Connect opens a store, retrying failures with a constant backoff.
// Errors classified as KindInvalidInput (a malformed DSN, an unknown
// driver) are not retried. The last error is returned as
// KindStorageUnavailable.
func Connect(ctx context.Context, open Opener, policy RetryPolicy, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	var (
		st      Store
		attempt int
	)
	op := func() error {
		attempt++
		s, err := open(ctx)
		if err != nil {
			if domain.IsKind(err, domain.KindInvalidInput) {
				return backoff.Permanent(err)
			}
			return err
		}
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return err
		}
		st = s
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("store connect failed, retrying",
			"attempt", attempt,
			"of", policy.Attempts,
			"wait", wait,
			"error", err)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Interval), uint64(policy.Attempts-1)),
		ctx,
	)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		if domain.IsKind(err, domain.KindInvalidInput) {
			return nil, err
		}
		return nil, domain.Unavailable(fmt.Errorf("connect after %d attempts: %w", attempt, err))
	}

	logger.Debug("store connected", "attempts", attempt)
	return st, nil
}
