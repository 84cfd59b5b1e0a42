package engine_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/engine"
	"github.com/roach88/stockroom/internal/store"
	"github.com/roach88/stockroom/internal/store/sqlite"
	"github.com/roach88/stockroom/internal/testutil"
)

// today is the test clock's date.
const today = "2025-03-10"

type fixture struct {
	eng   *engine.Engine
	store store.Store
	clock *testutil.FixedClock
}

// newFixture creates an engine over a fresh in-memory store with a frozen
// clock, sequential ids and replenishment draws of exactly 20.
func newFixture(t *testing.T, opts ...engine.Option) *fixture {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := testutil.NewFixedClockOn(today)
	base := []engine.Option{
		engine.WithClock(clock),
		engine.WithIDGenerator(testutil.NewSequenceGenerator("gen")),
		engine.WithRand(testutil.FixedRand{Value: 10}),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return &fixture{
		eng:   engine.New(st, append(base, opts...)...),
		store: st,
		clock: clock,
	}
}

func (f *fixture) product(t *testing.T, id string, stock int) {
	t.Helper()
	_, err := f.eng.CreateProduct(context.Background(), domain.ProductInput{ID: id, Name: id, StockQuantity: stock})
	require.NoError(t, err)
}

func (f *fixture) order(t *testing.T, id, date string) {
	t.Helper()
	_, err := f.eng.CreateOrder(context.Background(), domain.OrderInput{
		ID: id, CustomerName: "Customer " + id, OrderDate: domain.MustParseDay(date),
	})
	require.NoError(t, err)
}

func (f *fixture) position(t *testing.T, id, orderID, productID string, qty int) {
	t.Helper()
	_, err := f.eng.AddPosition(context.Background(), domain.PositionInput{
		ID: id, OrderID: orderID, ProductID: productID, Quantity: qty,
	})
	require.NoError(t, err)
}

func (f *fixture) state(t *testing.T) testutil.State {
	t.Helper()
	s, err := testutil.ReadState(context.Background(), f.store)
	require.NoError(t, err)
	require.NoError(t, s.CheckIntegrity())
	return s
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	return f.state(t).Stock()[productID]
}

// requireKind asserts err carries kind.
func requireKind(t *testing.T, err error, kind domain.Kind) *domain.Error {
	t.Helper()
	require.Error(t, err)
	de, ok := domain.AsError(err)
	require.True(t, ok, "error %v is not a *domain.Error", err)
	require.Equal(t, kind, de.Kind, "error: %v", err)
	return de
}
