package engine

import (
	"context"
	"fmt"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/store"
)

// AdvanceResult reports one time advance.
type AdvanceResult struct {
	Date         domain.Day           `json:"date"`
	ExpiredCount int                  `json:"expiredCount"`
	Replenished  []domain.StockChange `json:"replenished"`

	// State is read inside the advancing unit.
	State domain.Snapshot `json:"-"`
}

// Advance moves the virtual current date to day, expires every order
// dated before day and replenishes all products, as one unit. Moving the
// date backwards fails with KindPastDate; advancing to the current date
// again is allowed. The calendar row stays locked for the whole unit, so
// concurrent advances and order date checks wait for it.
func (e *Engine) Advance(ctx context.Context, day domain.Day) (AdvanceResult, error) {
	if day.IsZero() {
		return AdvanceResult{}, domain.InvalidInput("date is required")
	}

	var res AdvanceResult
	err := e.unit(ctx, "advance", func(tx store.Tx) error {
		current, err := e.lockCurrentDate(ctx, tx)
		if err != nil {
			return err
		}
		if day.Before(current) {
			return &domain.Error{
				Kind:    domain.KindPastDate,
				Message: fmt.Sprintf("cannot advance to %s: current date is %s", day, current),
			}
		}
		if err := tx.Calendar().SetVirtualDate(ctx, day); err != nil {
			return err
		}

		n, err := expireBefore(ctx, tx, day, true)
		if err != nil {
			return err
		}
		changes, err := e.replenish(ctx, tx)
		if err != nil {
			return err
		}
		state, err := e.snapshot(ctx, tx)
		if err != nil {
			return err
		}
		res = AdvanceResult{Date: day, ExpiredCount: n, Replenished: changes, State: state}
		return nil
	})
	if err != nil {
		return AdvanceResult{}, err
	}

	e.logger.Info("advanced",
		"date", day,
		"expired", res.ExpiredCount,
		"replenished", len(res.Replenished))
	return res, nil
}
