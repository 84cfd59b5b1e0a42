package engine

import (
	"context"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/store"
)

// ExpireOrdersBefore deletes every order dated strictly before cutoff,
// returning each one's positions to stock first. All of it is one unit.
// It returns how many orders were removed.
func (e *Engine) ExpireOrdersBefore(ctx context.Context, cutoff domain.Day) (int, error) {
	if cutoff.IsZero() {
		return 0, domain.InvalidInput("cutoff date is required")
	}

	var n int
	err := e.unit(ctx, "expire orders", func(tx store.Tx) error {
		var err error
		n, err = expireBefore(ctx, tx, cutoff, false)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.logger.Info("expired orders", "cutoff", cutoff, "count", n)
	}
	return n, nil
}

func expireBefore(ctx context.Context, tx store.Tx, cutoff domain.Day, lockAllProducts bool) (int, error) {
	expired, err := tx.Orders().LockBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(expired))
	for _, o := range expired {
		ids = append(ids, o.ID)
	}
	if err := removeOrders(ctx, tx, ids, lockAllProducts); err != nil {
		return 0, err
	}
	return len(ids), nil
}
