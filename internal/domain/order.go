package domain

import "slices"

// Order is a customer's order for a calendar day.
//
// PositionIDs is exactly the set of positions whose OrderID equals ID.
// Storage adapters either persist it (id-array encoding) or derive it from
// positions.order_id (join-table encoding); the engine treats both alike.
type Order struct {
	ID           string   `json:"orderID"`
	CustomerName string   `json:"customerName"`
	OrderDate    Day      `json:"orderDate"`
	PositionIDs  []string `json:"positionIDs"`
}

// HasPosition reports whether the order owns the given position.
func (o Order) HasPosition(positionID string) bool {
	return slices.Contains(o.PositionIDs, positionID)
}

// OrderInput carries the caller-supplied fields of an order.
// An empty ID on create asks the engine to generate one.
type OrderInput struct {
	ID           string `json:"orderID,omitempty"`
	CustomerName string `json:"customerName"`
	OrderDate    Day    `json:"orderDate"`
}
