package engine

import (
	"context"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/store"
)

// Snapshot reads every order, position and product in one unit.
func (e *Engine) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := e.unit(ctx, "snapshot", func(tx store.Tx) error {
		var err error
		snap, err = e.snapshot(ctx, tx)
		return err
	})
	return snap, err
}

func (e *Engine) snapshot(ctx context.Context, tx store.Tx) (domain.Snapshot, error) {
	current, err := e.currentDate(ctx, tx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	orders, err := tx.Orders().List(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	positions, err := tx.Positions().List(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	products, err := tx.Products().List(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.BuildSnapshot(current, orders, positions, products), nil
}

// CurrentDate returns the later of the clock's date and the virtual date.
func (e *Engine) CurrentDate(ctx context.Context) (domain.Day, error) {
	var d domain.Day
	err := e.unit(ctx, "current date", func(tx store.Tx) error {
		var err error
		d, err = e.currentDate(ctx, tx)
		return err
	})
	return d, err
}
