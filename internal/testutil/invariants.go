package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/store"
)

// State is every row of a store, read in one unit.
type State struct {
	Products  []domain.Product
	Orders    []domain.Order
	Positions []domain.Position
}

// ReadState reads all products, orders and positions.
func ReadState(ctx context.Context, st store.Store) (State, error) {
	var s State
	err := st.InTx(ctx, func(tx store.Tx) error {
		var err error
		if s.Products, err = tx.Products().List(ctx); err != nil {
			return err
		}
		if s.Orders, err = tx.Orders().List(ctx); err != nil {
			return err
		}
		s.Positions, err = tx.Positions().List(ctx)
		return err
	})
	return s, err
}

// Totals returns stock + allocated quantity per product. Across any
// operation other than replenishment these must not change.
func (s State) Totals() map[string]int {
	totals := make(map[string]int, len(s.Products))
	for _, p := range s.Products {
		totals[p.ID] += p.StockQuantity
	}
	for _, p := range s.Positions {
		totals[p.ProductID] += p.Quantity
	}
	return totals
}

// Stock returns the available quantity per product.
func (s State) Stock() map[string]int {
	stock := make(map[string]int, len(s.Products))
	for _, p := range s.Products {
		stock[p.ID] = p.StockQuantity
	}
	return stock
}

// Order returns the order with the given id.
func (s State) Order(id string) (domain.Order, bool) {
	i := slices.IndexFunc(s.Orders, func(o domain.Order) bool { return o.ID == id })
	if i < 0 {
		return domain.Order{}, false
	}
	return s.Orders[i], true
}

// Position returns the position with the given id.
func (s State) Position(id string) (domain.Position, bool) {
	i := slices.IndexFunc(s.Positions, func(p domain.Position) bool { return p.ID == id })
	if i < 0 {
		return domain.Position{}, false
	}
	return s.Positions[i], true
}

// CheckIntegrity verifies the structural invariants of a state:
//   - no product has negative stock
//   - every position has a positive quantity and references an existing
//     product and order
//   - each order's PositionIDs is exactly the set of positions naming it
//   - an order holds at most one position per product
//
// All violations are joined into one error.
func (s State) CheckIntegrity() error {
	var errs []error

	products := make(map[string]bool, len(s.Products))
	for _, p := range s.Products {
		products[p.ID] = true
		if p.StockQuantity < 0 {
			errs = append(errs, fmt.Errorf("product %s: negative stock %d", p.ID, p.StockQuantity))
		}
	}

	owned := make(map[string][]string, len(s.Orders))
	pairs := make(map[[2]string]string, len(s.Positions))
	for _, p := range s.Positions {
		if p.Quantity <= 0 {
			errs = append(errs, fmt.Errorf("position %s: non-positive quantity %d", p.ID, p.Quantity))
		}
		if !products[p.ProductID] {
			errs = append(errs, fmt.Errorf("position %s: unknown product %s", p.ID, p.ProductID))
		}
		owned[p.OrderID] = append(owned[p.OrderID], p.ID)

		key := [2]string{p.OrderID, p.ProductID}
		if other, dup := pairs[key]; dup {
			errs = append(errs, fmt.Errorf("order %s: positions %s and %s share product %s", p.OrderID, other, p.ID, p.ProductID))
		}
		pairs[key] = p.ID
	}

	orders := make(map[string]bool, len(s.Orders))
	for _, o := range s.Orders {
		orders[o.ID] = true
		want := slices.Sorted(slices.Values(owned[o.ID]))
		got := slices.Sorted(slices.Values(o.PositionIDs))
		if !slices.Equal(want, got) {
			errs = append(errs, fmt.Errorf("order %s: lists positions %v, owns %v", o.ID, got, want))
		}
	}
	for orderID, ids := range owned {
		if !orders[orderID] {
			errs = append(errs, fmt.Errorf("positions %v reference missing order %s", ids, orderID))
		}
	}

	return errors.Join(errs...)
}

// CheckConservation compares per-product totals of two states. Totals may
// only grow, and only where grow allows it (replenishment).
func CheckConservation(before, after State, grow bool) error {
	var errs []error
	b, a := before.Totals(), after.Totals()
	for id, want := range b {
		got, ok := a[id]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("product %s disappeared", id))
		case grow && got < want:
			errs = append(errs, fmt.Errorf("product %s: total shrank %d -> %d", id, want, got))
		case !grow && got != want:
			errs = append(errs, fmt.Errorf("product %s: total changed %d -> %d", id, want, got))
		}
	}
	return errors.Join(errs...)
}
