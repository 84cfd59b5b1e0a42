package timeline_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/engine"
	"github.com/roach88/stockroom/internal/store"
	"github.com/roach88/stockroom/internal/store/sqlite"
	"github.com/roach88/stockroom/internal/testutil"
	"github.com/roach88/stockroom/internal/timeline"
)

type fixture struct {
	eng   *engine.Engine
	tl    *timeline.Orchestrator
	clock *testutil.FixedClock
}

func newFixture(t *testing.T, today string) *fixture {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := testutil.NewFixedClockOn(today)
	eng := engine.New(st,
		engine.WithClock(clock),
		engine.WithRand(testutil.FixedRand{Value: 5}),
		engine.WithLogger(logger),
	)
	return &fixture{eng: eng, tl: timeline.New(eng, logger), clock: clock}
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.eng.CreateProduct(ctx, domain.ProductInput{ID: "widget", Name: "Widget", StockQuantity: 10})
	require.NoError(t, err)
	for _, o := range []struct{ id, date string }{
		{"o-early", "2025-03-10"},
		{"o-mid", "2025-03-12"},
		{"o-late", "2025-03-20"},
	} {
		_, err := f.eng.CreateOrder(ctx, domain.OrderInput{ID: o.id, CustomerName: "C", OrderDate: domain.MustParseDay(o.date)})
		require.NoError(t, err)
		_, err = f.eng.AddPosition(ctx, domain.PositionInput{OrderID: o.id, ProductID: "widget", Quantity: 2})
		require.NoError(t, err)
	}
}

func TestStartup_ExpiresOrdersBeforeWallClock(t *testing.T) {
	f := newFixture(t, "2025-03-10")
	f.seed(t)
	f.clock.AddDays(3) // 2025-03-13

	n, err := f.tl.Startup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	orders, err := f.eng.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o-late", orders[0].ID)

	products, err := f.eng.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, products[0].StockQuantity, "two orders of 2 returned")
}

func TestStartup_NothingToExpire(t *testing.T) {
	f := newFixture(t, "2025-03-10")
	f.seed(t)

	n, err := f.tl.Startup(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAdvance_ReturnsStateAfterward(t *testing.T) {
	f := newFixture(t, "2025-03-10")
	f.seed(t)

	res, err := f.tl.Advance(context.Background(), domain.MustParseDay("2025-03-15"))
	require.NoError(t, err)

	assert.Equal(t, "Processed 2 expired orders and replenished stock", res.Message)
	assert.Equal(t, 2, res.ExpiredCount)
	assert.Equal(t, "2025-03-15", res.Date.String())
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "o-late", res.Orders[0].ID)

	// 10 - 6 reserved + 4 released + (10 + 5) replenished
	require.Len(t, res.Products, 1)
	assert.Equal(t, 23, res.Products[0].StockQuantity)
	require.Len(t, res.Replenished, 1)
	assert.Equal(t, 15, res.Replenished[0].Delta)

	current, err := f.eng.CurrentDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", current.String())
}

func TestAdvance_RejectsEarlierDate(t *testing.T) {
	f := newFixture(t, "2025-03-10")
	f.seed(t)

	_, err := f.tl.Advance(context.Background(), domain.MustParseDay("2025-03-15"))
	require.NoError(t, err)

	_, err = f.tl.Advance(context.Background(), domain.MustParseDay("2025-03-14"))
	assert.True(t, domain.IsKind(err, domain.KindPastDate), "got %v", err)
}

func TestAdvance_EmptyStore(t *testing.T) {
	f := newFixture(t, "2025-03-10")

	res, err := f.tl.Advance(context.Background(), domain.MustParseDay("2025-03-10"))
	require.NoError(t, err)
	assert.Equal(t, "Processed 0 expired orders and replenished stock", res.Message)
	assert.NotNil(t, res.Orders)
	assert.NotNil(t, res.Products)
	assert.NotNil(t, res.Replenished)
}

// commitHookStore runs after once, right after the next unit commits.
type commitHookStore struct {
	store.Store
	after func()
}

func (s *commitHookStore) InTx(ctx context.Context, fn func(store.Tx) error) error {
	err := s.Store.InTx(ctx, fn)
	if err == nil && s.after != nil {
		after := s.after
		s.after = nil
		after()
	}
	return err
}

func TestAdvance_StateExcludesLaterWrites(t *testing.T) {
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hooked := &commitHookStore{Store: st}
	eng := engine.New(hooked,
		engine.WithClock(testutil.NewFixedClockOn("2025-03-10")),
		engine.WithRand(testutil.FixedRand{Value: 5}),
		engine.WithLogger(logger),
	)
	_, err = eng.CreateProduct(ctx, domain.ProductInput{ID: "widget", Name: "Widget", StockQuantity: 10})
	require.NoError(t, err)

	hooked.after = func() {
		require.NoError(t, st.InTx(ctx, func(tx store.Tx) error {
			return tx.Products().Insert(ctx, domain.Product{ID: "late", Name: "Late", StockQuantity: 1})
		}))
	}
	res, err := timeline.New(eng, logger).Advance(ctx, domain.MustParseDay("2025-03-11"))
	require.NoError(t, err)

	require.Len(t, res.Products, 1)
	assert.Equal(t, "widget", res.Products[0].ID)
	assert.Equal(t, 25, res.Products[0].StockQuantity)

	products, err := eng.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2, "the later write did commit")
}
