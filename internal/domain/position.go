package domain

// Position is a line item allocating Quantity units of one product to one
// order. Quantity is always positive.
type Position struct {
	ID        string `json:"positionID"`
	ProductID string `json:"productID"`
	Quantity  int    `json:"quantity"`
	OrderID   string `json:"orderID"`
}

// PositionInput carries the caller-supplied fields of a new position.
// An empty ID asks the engine to generate one.
type PositionInput struct {
	ID        string `json:"positionID,omitempty"`
	OrderID   string `json:"orderID"`
	ProductID string `json:"productID"`
	Quantity  int    `json:"quantity"`
}
