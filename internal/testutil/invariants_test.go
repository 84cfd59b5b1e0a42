package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/stockroom/internal/domain"
)

func validState() State {
	return State{
		Products: []domain.Product{
			{ID: "coffee", Name: "Coffee", StockQuantity: 8},
			{ID: "laptop", Name: "Laptop", StockQuantity: 0},
		},
		Orders: []domain.Order{
			{ID: "o-1", CustomerName: "A", OrderDate: domain.MustParseDay("2025-03-10"), PositionIDs: []string{"p-2", "p-1"}},
			{ID: "o-2", CustomerName: "B", OrderDate: domain.MustParseDay("2025-03-11"), PositionIDs: []string{}},
		},
		Positions: []domain.Position{
			{ID: "p-1", ProductID: "coffee", Quantity: 2, OrderID: "o-1"},
			{ID: "p-2", ProductID: "laptop", Quantity: 5, OrderID: "o-1"},
		},
	}
}

func TestCheckIntegrity_Valid(t *testing.T) {
	assert.NoError(t, validState().CheckIntegrity())
}

func TestCheckIntegrity_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *State)
		want   string
	}{
		{"negative stock", func(s *State) { s.Products[0].StockQuantity = -1 }, "negative stock"},
		{"zero quantity", func(s *State) { s.Positions[0].Quantity = 0 }, "non-positive quantity"},
		{"missing from order list", func(s *State) { s.Orders[0].PositionIDs = []string{"p-1"} }, "lists positions"},
		{"listed by wrong order", func(s *State) { s.Orders[1].PositionIDs = []string{"p-1"} }, "order o-2"},
		{"dangling order", func(s *State) { s.Positions[1].OrderID = "o-9" }, "missing order o-9"},
		{"duplicate product", func(s *State) { s.Positions[1].ProductID = "coffee" }, "share product coffee"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validState()
			tt.mutate(&s)
			err := s.CheckIntegrity()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestCheckConservation(t *testing.T) {
	before := validState()
	assert.Equal(t, map[string]int{"coffee": 10, "laptop": 5}, before.Totals())

	moved := validState()
	moved.Products[0].StockQuantity = 10
	moved.Positions = moved.Positions[1:]
	moved.Orders[0].PositionIDs = []string{"p-2"}
	assert.NoError(t, CheckConservation(before, moved, false), "release keeps totals")

	grown := validState()
	grown.Products[1].StockQuantity = 20
	assert.Error(t, CheckConservation(before, grown, false))
	assert.NoError(t, CheckConservation(before, grown, true))

	shrunk := validState()
	shrunk.Products[0].StockQuantity = 1
	assert.Error(t, CheckConservation(before, shrunk, true))
}
