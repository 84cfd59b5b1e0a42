package domain

import (
	"cmp"
	"slices"
)

// PositionView is a position joined with its product name, as served to
// clients.
type PositionView struct {
	ID          string `json:"positionID"`
	ProductID   string `json:"productID"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	OrderID     string `json:"orderID"`
}

// OrderView is an order with its positions resolved.
type OrderView struct {
	ID           string         `json:"orderID"`
	CustomerName string         `json:"customerName"`
	OrderDate    Day            `json:"orderDate"`
	Positions    []PositionView `json:"positions"`
}

// Snapshot is the full observable state: every order with its positions and
// every product with its stock.
type Snapshot struct {
	CurrentDate Day         `json:"currentDate"`
	Orders      []OrderView `json:"orders"`
	Products    []Product   `json:"products"`
}

// BuildSnapshot joins orders, positions and products into views.
//
// Orders are sorted by date then id; each order's positions follow the
// order's PositionIDs sequence; products are sorted by name then id.
// Positions that no order lists are not shown. Slices are never nil so the
// JSON encoding is stable.
func BuildSnapshot(current Day, orders []Order, positions []Position, products []Product) Snapshot {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	byID := make(map[string]Position, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, buildOrderView(o, byID, names))
	}
	slices.SortStableFunc(views, func(a, b OrderView) int {
		if c := a.OrderDate.Time().Compare(b.OrderDate.Time()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return Snapshot{CurrentDate: current, Orders: views, Products: SortProducts(products)}
}

// SortProducts returns a copy of products sorted by name, then id.
// The result is never nil.
func SortProducts(products []Product) []Product {
	sorted := slices.Clone(products)
	if sorted == nil {
		sorted = []Product{}
	}
	slices.SortStableFunc(sorted, func(a, b Product) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

// BuildOrderView resolves one order against its positions and products.
func BuildOrderView(o Order, positions []Position, products []Product) OrderView {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	byID := make(map[string]Position, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}
	return buildOrderView(o, byID, names)
}

func buildOrderView(o Order, positions map[string]Position, names map[string]string) OrderView {
	view := OrderView{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		OrderDate:    o.OrderDate,
		Positions:    []PositionView{},
	}
	for _, id := range o.PositionIDs {
		p, ok := positions[id]
		if !ok {
			continue
		}
		view.Positions = append(view.Positions, PositionView{
			ID:          p.ID,
			ProductID:   p.ProductID,
			ProductName: names[p.ProductID],
			Quantity:    p.Quantity,
			OrderID:     p.OrderID,
		})
	}
	return view
}
