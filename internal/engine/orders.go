package engine

import (
	"context"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/ledger"
	"github.com/roach88/stockroom/internal/store"
)

// validateOrder normalizes the customer name and checks the date is set.
func validateOrder(in domain.OrderInput) (string, error) {
	name := domain.NormalizeName(in.CustomerName)
	if !domain.ValidName(name) {
		return "", domain.InvalidInput("customer name is required (1-%d characters)", domain.MaxNameLength)
	}
	if in.OrderDate.IsZero() {
		return "", domain.InvalidInput("order date is required")
	}
	return name, nil
}

func (e *Engine) checkNotPast(ctx context.Context, tx store.Tx, date domain.Day) error {
	current, err := e.lockCurrentDate(ctx, tx)
	if err != nil {
		return err
	}
	if date.Before(current) {
		return domain.PastDate(date, current)
	}
	return nil
}

// CreateOrder creates an empty order. An order dated the current day is
// accepted; an earlier one fails with KindPastDate.
func (e *Engine) CreateOrder(ctx context.Context, in domain.OrderInput) (domain.Order, error) {
	name, err := validateOrder(in)
	if err != nil {
		return domain.Order{}, err
	}
	id, err := e.newID("order", in.ID)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:           id,
		CustomerName: name,
		OrderDate:    in.OrderDate,
		PositionIDs:  []string{},
	}
	err = e.unit(ctx, "create order", func(tx store.Tx) error {
		if err := e.checkNotPast(ctx, tx, order.OrderDate); err != nil {
			return err
		}
		if _, err := tx.Orders().Get(ctx, id); err == nil {
			return domain.InvalidInput("order %s already exists", id)
		} else if !domain.IsKind(err, domain.KindNotFound) {
			return err
		}
		return tx.Orders().Insert(ctx, order)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// UpdateOrder replaces an order's customer name and date. The new date
// must not be earlier than the current date.
func (e *Engine) UpdateOrder(ctx context.Context, id string, in domain.OrderInput) (domain.Order, error) {
	if err := requireID("order", id); err != nil {
		return domain.Order{}, err
	}
	name, err := validateOrder(in)
	if err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	err = e.unit(ctx, "update order", func(tx store.Tx) error {
		// The calendar is locked before the order, as Advance does.
		current, err := e.lockCurrentDate(ctx, tx)
		if err != nil {
			return err
		}
		existing, err := tx.Orders().Lock(ctx, id)
		if err != nil {
			return err
		}
		if in.OrderDate.Before(current) {
			return domain.PastDate(in.OrderDate, current)
		}
		existing.CustomerName = name
		existing.OrderDate = in.OrderDate
		if err := tx.Orders().Update(ctx, existing); err != nil {
			return err
		}
		order = existing
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// DeleteOrder returns every owned position's quantity to stock, deletes
// the positions and then the order.
func (e *Engine) DeleteOrder(ctx context.Context, id string) error {
	if err := requireID("order", id); err != nil {
		return err
	}

	return e.unit(ctx, "delete order", func(tx store.Tx) error {
		if _, err := tx.Orders().Lock(ctx, id); err != nil {
			return err
		}
		return removeOrders(ctx, tx, []string{id}, false)
	})
}

// removeOrders releases, then deletes, every position of the given
// (already locked) orders, then deletes the orders. With lockAllProducts
// every product row is locked, in id order, before any stock moves, for
// callers that go on to touch all products in the same unit.
func removeOrders(ctx context.Context, tx store.Tx, orderIDs []string, lockAllProducts bool) error {
	var owned []domain.Position
	for _, id := range orderIDs {
		ps, err := tx.Positions().ListByOrder(ctx, id)
		if err != nil {
			return err
		}
		owned = append(owned, ps...)
	}

	if lockAllProducts {
		if _, err := tx.Products().LockAll(ctx); err != nil {
			return err
		}
	}

	if _, err := ledger.For(tx).ReleaseAll(ctx, owned); err != nil {
		return err
	}

	for _, id := range orderIDs {
		if _, err := tx.Positions().DeleteByOrder(ctx, id); err != nil {
			return err
		}
		if err := tx.Orders().Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// GetOrder returns one order with its positions resolved.
func (e *Engine) GetOrder(ctx context.Context, id string) (domain.OrderView, error) {
	if err := requireID("order", id); err != nil {
		return domain.OrderView{}, err
	}

	var view domain.OrderView
	err := e.unit(ctx, "get order", func(tx store.Tx) error {
		o, err := tx.Orders().Get(ctx, id)
		if err != nil {
			return err
		}
		ps, err := tx.Positions().ListByOrder(ctx, id)
		if err != nil {
			return err
		}
		products, err := tx.Products().List(ctx)
		if err != nil {
			return err
		}
		view = domain.BuildOrderView(o, ps, products)
		return nil
	})
	return view, err
}

// ListOrders returns every order ordered by date, then id.
func (e *Engine) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := e.unit(ctx, "list orders", func(tx store.Tx) error {
		var err error
		out, err = tx.Orders().List(ctx)
		return err
	})
	return out, err
}
