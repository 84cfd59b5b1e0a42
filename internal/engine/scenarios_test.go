package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/testutil"
)

func TestScenario_InsufficientStockLeavesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "widget", 10)
	f.order(t, "order1", today)
	f.order(t, "order2", today)

	_, err := f.eng.AddPosition(ctx, domain.PositionInput{OrderID: "order1", ProductID: "widget", Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, "widget"))

	_, err = f.eng.AddPosition(ctx, domain.PositionInput{OrderID: "order2", ProductID: "widget", Quantity: 5})
	de := requireKind(t, err, domain.KindInsufficientStock)
	assert.Equal(t, 3, de.Available)
	assert.Contains(t, de.Message, "available 3")
	assert.Equal(t, 3, f.stock(t, "widget"))

	o, _ := f.state(t).Order("order2")
	assert.Empty(t, o.PositionIDs)
}

func TestScenario_DecreaseReleasesDifference(t *testing.T) {
	f := newFixture(t)
	f.product(t, "widget", 10)
	f.order(t, "order1", today)
	f.position(t, "P1", "order1", "widget", 4)
	before := f.stock(t, "widget")

	_, err := f.eng.UpdatePosition(context.Background(), "P1", 2)
	require.NoError(t, err)
	assert.Equal(t, before+2, f.stock(t, "widget"))
}

func TestScenario_MoveMergesIntoSibling(t *testing.T) {
	f := newFixture(t)
	f.product(t, "widget", 10)
	f.order(t, "order1", today)
	f.order(t, "order2", today)
	f.position(t, "P1", "order1", "widget", 3)
	f.position(t, "P2", "order2", "widget", 2)
	before := f.state(t)

	res, err := f.eng.MovePosition(context.Background(), "P1", "order1", "order2")
	require.NoError(t, err)
	assert.True(t, res.Merged)

	after := f.state(t)
	p2, ok := after.Position("P2")
	require.True(t, ok)
	assert.Equal(t, 5, p2.Quantity)
	_, ok = after.Position("P1")
	assert.False(t, ok, "P1 deleted")
	assert.Equal(t, before.Stock(), after.Stock(), "stock unchanged")
	require.NoError(t, testutil.CheckConservation(before, after, false))

	src, _ := after.Order("order1")
	dest, _ := after.Order("order2")
	assert.Empty(t, src.PositionIDs)
	assert.Equal(t, []string{"P2"}, dest.PositionIDs)
}

func TestScenario_DeleteOrderReturnsStock(t *testing.T) {
	f := newFixture(t)
	f.product(t, "widget", 10)
	f.product(t, "gadget", 10)
	f.order(t, "order1", today)
	f.position(t, "P1", "order1", "widget", 3)
	f.position(t, "P2", "order1", "gadget", 4)
	before := f.state(t)

	require.NoError(t, f.eng.DeleteOrder(context.Background(), "order1"))

	after := f.state(t)
	assert.Equal(t, 10, after.Stock()["widget"])
	assert.Equal(t, 10, after.Stock()["gadget"])
	assert.Empty(t, after.Orders)
	assert.Empty(t, after.Positions)
	require.NoError(t, testutil.CheckConservation(before, after, false))
}

func TestScenario_ExpireOnlyOlderOrders(t *testing.T) {
	f := newFixture(t)
	f.product(t, "widget", 100)
	for i, id := range []string{"old1", "old2", "old3"} {
		f.order(t, id, today)
		f.position(t, "P-"+id, id, "widget", i+1)
	}
	f.order(t, "future", "2025-03-20")
	f.position(t, "P-future", "future", "widget", 10)
	before := f.state(t)

	n, err := f.eng.ExpireOrdersBefore(context.Background(), domain.MustParseDay("2025-03-15"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	after := f.state(t)
	require.Len(t, after.Orders, 1)
	assert.Equal(t, "future", after.Orders[0].ID)
	p, ok := after.Position("P-future")
	require.True(t, ok)
	assert.Equal(t, 10, p.Quantity)
	assert.Equal(t, 100-10, after.Stock()["widget"], "1+2+3 units returned")
	require.NoError(t, testutil.CheckConservation(before, after, false))
}
