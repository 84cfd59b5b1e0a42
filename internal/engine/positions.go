package engine

import (
	"context"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/ledger"
	"github.com/roach88/stockroom/internal/store"
)

func validateQuantity(q int) error {
	if q <= 0 {
		return domain.InvalidInput("quantity must be positive, got %d", q)
	}
	if q > domain.MaxQuantity {
		return domain.InvalidInput("quantity must not exceed %d, got %d", domain.MaxQuantity, q)
	}
	return nil
}

// AddPosition allocates quantity units of a product to an order.
//
// The order and product must exist and the product must have at least
// quantity units in stock; a failed check leaves nothing written. An order
// holds at most one position per product, so adding a product the order
// already has fails with KindInvalidInput.
func (e *Engine) AddPosition(ctx context.Context, in domain.PositionInput) (domain.Position, error) {
	if err := requireID("order", in.OrderID); err != nil {
		return domain.Position{}, err
	}
	if err := requireID("product", in.ProductID); err != nil {
		return domain.Position{}, err
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return domain.Position{}, err
	}
	id, err := e.newID("position", in.ID)
	if err != nil {
		return domain.Position{}, err
	}

	pos := domain.Position{
		ID:        id,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		OrderID:   in.OrderID,
	}
	err = e.unit(ctx, "add position", func(tx store.Tx) error {
		if _, err := tx.Orders().Lock(ctx, pos.OrderID); err != nil {
			return err
		}
		if _, err := tx.Positions().Lock(ctx, pos.ID); err == nil {
			return domain.InvalidInput("position %s already exists", pos.ID)
		} else if !domain.IsKind(err, domain.KindNotFound) {
			return err
		}
		existing, ok, err := tx.Positions().FindByOrderAndProduct(ctx, pos.OrderID, pos.ProductID)
		if err != nil {
			return err
		}
		if ok {
			return domain.InvalidInput("order %s already has position %s for product %s; update its quantity instead",
				pos.OrderID, existing.ID, pos.ProductID)
		}

		if _, err := ledger.For(tx).Reserve(ctx, pos.ProductID, pos.Quantity); err != nil {
			return err
		}
		if err := tx.Positions().Insert(ctx, pos); err != nil {
			return err
		}
		return tx.Orders().AttachPosition(ctx, pos.OrderID, pos.ID)
	})
	if err != nil {
		return domain.Position{}, err
	}
	return pos, nil
}

// UpdatePosition sets a position's quantity, reserving or releasing the
// difference. Setting the current quantity writes nothing.
func (e *Engine) UpdatePosition(ctx context.Context, id string, quantity int) (domain.Position, error) {
	if err := requireID("position", id); err != nil {
		return domain.Position{}, err
	}
	if err := validateQuantity(quantity); err != nil {
		return domain.Position{}, err
	}

	var pos domain.Position
	err := e.unit(ctx, "update position", func(tx store.Tx) error {
		p, err := tx.Positions().Lock(ctx, id)
		if err != nil {
			return err
		}

		diff := quantity - p.Quantity
		switch {
		case diff == 0:
			pos = p
			return nil
		case diff > 0:
			_, err = ledger.For(tx).Reserve(ctx, p.ProductID, diff)
		default:
			_, err = ledger.For(tx).Release(ctx, p.ProductID, -diff)
		}
		if err != nil {
			return err
		}

		if err := tx.Positions().SetQuantity(ctx, id, quantity); err != nil {
			return err
		}
		p.Quantity = quantity
		pos = p
		return nil
	})
	if err != nil {
		return domain.Position{}, err
	}
	return pos, nil
}

// DeletePosition returns a position's quantity to stock and removes it
// from its order.
func (e *Engine) DeletePosition(ctx context.Context, id string) error {
	if err := requireID("position", id); err != nil {
		return err
	}

	return e.unit(ctx, "delete position", func(tx store.Tx) error {
		p, err := tx.Positions().Lock(ctx, id)
		if err != nil {
			return err
		}
		if _, err := ledger.For(tx).Release(ctx, p.ProductID, p.Quantity); err != nil {
			return err
		}
		if err := tx.Orders().DetachPosition(ctx, p.OrderID, p.ID); err != nil {
			return err
		}
		return tx.Positions().Delete(ctx, p.ID)
	})
}
