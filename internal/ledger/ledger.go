// Package ledger is the only path by which product stock changes.
//
// A Ledger is bound to one store unit. Reserve moves quantity from stock
// into an allocation, Release returns it, Replenish adds new stock. Every
// call records a domain.StockChange so callers can report what moved.
// Stock never exceeds domain.MaxQuantity.
package ledger

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/store"
)

// Ledger applies stock mutations inside one unit of work.
type Ledger struct {
	products store.ProductRepository
}

// For binds a ledger to the unit tx.
func For(tx store.Tx) *Ledger {
	return &Ledger{products: tx.Products()}
}

// Reserve takes quantity units of productID out of stock. The product row
// is locked before the availability check, so the check and the decrement
// see the same value.
func (l *Ledger) Reserve(ctx context.Context, productID string, quantity int) (domain.StockChange, error) {
	if quantity <= 0 {
		return domain.StockChange{}, domain.InvalidInput("reserve quantity must be positive, got %d", quantity)
	}
	p, err := l.products.Lock(ctx, productID)
	if err != nil {
		return domain.StockChange{}, err
	}
	if p.StockQuantity < quantity {
		return domain.StockChange{}, domain.InsufficientStock(productID, p.StockQuantity, quantity)
	}
	return l.adjust(ctx, productID, -quantity)
}

// Release returns quantity units of productID to stock. A release that
// would push stock above domain.MaxQuantity fails with KindInvalidInput.
func (l *Ledger) Release(ctx context.Context, productID string, quantity int) (domain.StockChange, error) {
	if quantity <= 0 {
		return domain.StockChange{}, domain.InvalidInput("release quantity must be positive, got %d", quantity)
	}
	p, err := l.products.Lock(ctx, productID)
	if err != nil {
		return domain.StockChange{}, err
	}
	if p.StockQuantity > domain.MaxQuantity-quantity {
		return domain.StockChange{}, domain.InvalidInput("releasing %d units would push %s stock above %d",
			quantity, productID, domain.MaxQuantity)
	}
	return l.adjust(ctx, productID, quantity)
}

// ReleaseAll returns the quantities of every given position to stock.
// Quantities are summed per product and applied in product id order.
func (l *Ledger) ReleaseAll(ctx context.Context, positions []domain.Position) ([]domain.StockChange, error) {
	totals := make(map[string]int, len(positions))
	for _, p := range positions {
		totals[p.ProductID] += p.Quantity
	}

	changes := make([]domain.StockChange, 0, len(totals))
	for _, id := range slices.Sorted(maps.Keys(totals)) {
		c, err := l.Release(ctx, id, totals[id])
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, nil
}

// Replenish adds delta new units of productID to stock, capped so stock
// stays within domain.MaxQuantity. A product already at the cap records a
// zero change.
func (l *Ledger) Replenish(ctx context.Context, productID string, delta int) (domain.StockChange, error) {
	if delta <= 0 {
		return domain.StockChange{}, domain.InvalidInput("replenish amount must be positive, got %d", delta)
	}
	p, err := l.products.Lock(ctx, productID)
	if err != nil {
		return domain.StockChange{}, err
	}
	delta = min(delta, domain.MaxQuantity-p.StockQuantity)
	if delta <= 0 {
		return domain.StockChange{ProductID: productID, StockQuantity: p.StockQuantity}, nil
	}
	return l.adjust(ctx, productID, delta)
}

func (l *Ledger) adjust(ctx context.Context, productID string, delta int) (domain.StockChange, error) {
	qty, err := l.products.AdjustStock(ctx, productID, delta)
	if err != nil {
		return domain.StockChange{}, fmt.Errorf("ledger: %w", err)
	}
	return domain.StockChange{ProductID: productID, Delta: delta, StockQuantity: qty}, nil
}
