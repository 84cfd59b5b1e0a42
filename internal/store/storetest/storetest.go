// Package storetest is a conformance suite every store.Store adapter must
// pass. Adapter packages call Run from their own tests with a factory that
// returns an empty store.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/store"
)

// Factory returns a fresh, empty store. The suite does not close it.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, st store.Store)
	}{
		{"ProductRoundTrip", testProductRoundTrip},
		{"ProductDuplicateID", testProductDuplicateID},
		{"AdjustStock", testAdjustStock},
		{"AdjustStockNeverNegative", testAdjustStockNeverNegative},
		{"OrderRoundTrip", testOrderRoundTrip},
		{"OrderListOrdering", testOrderListOrdering},
		{"OrderNotFound", testOrderNotFound},
		{"LockBefore", testLockBefore},
		{"Membership", testMembership},
		{"PositionMove", testPositionMove},
		{"PositionUniquePerOrderProduct", testPositionUniquePerOrderProduct},
		{"DeleteByOrder", testDeleteByOrder},
		{"RollbackOnError", testRollbackOnError},
		{"Calendar", testCalendar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

var errAbort = errors.New("abort unit")

func inTx(t *testing.T, st store.Store, fn func(ctx context.Context, tx store.Tx) error) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.InTx(ctx, func(tx store.Tx) error { return fn(ctx, tx) }))
}

func seed(t *testing.T, st store.Store) {
	t.Helper()
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		for _, p := range []domain.Product{
			{ID: "coffee", Name: "Coffee", StockQuantity: 10},
			{ID: "laptop", Name: "Laptop", StockQuantity: 5},
		} {
			if err := tx.Products().Insert(ctx, p); err != nil {
				return err
			}
		}
		for _, o := range []domain.Order{
			{ID: "o-1", CustomerName: "Alice", OrderDate: domain.MustParseDay("2025-03-10")},
			{ID: "o-2", CustomerName: "Bob", OrderDate: domain.MustParseDay("2025-03-12")},
		} {
			if err := tx.Orders().Insert(ctx, o); err != nil {
				return err
			}
		}
		return nil
	})
}

// addPosition inserts and attaches a position the way the engine does.
func addPosition(ctx context.Context, tx store.Tx, p domain.Position) error {
	if err := tx.Positions().Insert(ctx, p); err != nil {
		return err
	}
	return tx.Orders().AttachPosition(ctx, p.OrderID, p.ID)
}

func testProductRoundTrip(t *testing.T, st store.Store) {
	seed(t, st)
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		p, err := tx.Products().Get(ctx, "coffee")
		require.NoError(t, err)
		assert.Equal(t, domain.Product{ID: "coffee", Name: "Coffee", StockQuantity: 10}, p)

		locked, err := tx.Products().Lock(ctx, "laptop")
		require.NoError(t, err)
		assert.Equal(t, 5, locked.StockQuantity)

		all, err := tx.Products().LockAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "coffee", all[0].ID)
		assert.Equal(t, "laptop", all[1].ID)

		_, err = tx.Products().Get(ctx, "missing")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		return nil
	})
}

func testProductDuplicateID(t *testing.T, st store.Store) {
	seed(t, st)
	err := st.InTx(context.Background(), func(tx store.Tx) error {
		return tx.Products().Insert(context.Background(), domain.Product{ID: "coffee", Name: "Again"})
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func testAdjustStock(t *testing.T, st store.Store) {
	seed(t, st)
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		qty, err := tx.Products().AdjustStock(ctx, "coffee", -4)
		require.NoError(t, err)
		assert.Equal(t, 6, qty)

		qty, err = tx.Products().AdjustStock(ctx, "coffee", 14)
		require.NoError(t, err)
		assert.Equal(t, 20, qty)

		_, err = tx.Products().AdjustStock(ctx, "missing", 1)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		return nil
	})
}

func testAdjustStockNeverNegative(t *testing.T, st store.Store) {
	seed(t, st)
	err := st.InTx(context.Background(), func(tx store.Tx) error {
		_, err := tx.Products().AdjustStock(context.Background(), "laptop", -6)
		return err
	})
	require.Error(t, err, "storage must reject negative stock")

	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		p, err := tx.Products().Get(ctx, "laptop")
		require.NoError(t, err)
		assert.Equal(t, 5, p.StockQuantity)
		return nil
	})
}

func testOrderRoundTrip(t *testing.T, st store.Store) {
	seed(t, st)
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		o, err := tx.Orders().Get(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", o.CustomerName)
		assert.Equal(t, "2025-03-10", o.OrderDate.String())
		assert.Empty(t, o.PositionIDs)

		o.CustomerName = "Alicia"
		o.OrderDate = domain.MustParseDay("2025-03-15")
		require.NoError(t, tx.Orders().Update(ctx, o))

		got, err := tx.Orders().Lock(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, "Alicia", got.CustomerName)
		assert.Equal(t, "2025-03-15", got.OrderDate.String())
		return nil
	})
}

func testOrderListOrdering(t *testing.T, st store.Store) {
	seed(t, st)
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		require.NoError(t, tx.Orders().Insert(ctx, domain.Order{
			ID: "o-0", CustomerName: "Carol", OrderDate: domain.MustParseDay("2025-03-12"),
		}))
		list, err := tx.Orders().List(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(list))
		for _, o := range list {
			ids = append(ids, o.ID)
		}
		assert.Equal(t, []string{"o-1", "o-0", "o-2"}, ids)
		return nil
	})
}

func testOrderNotFound(t *testing.T, st store.Store) {
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Orders().Get(ctx, "nope")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		_, err = tx.Orders().Lock(ctx, "nope")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		err = tx.Orders().Update(ctx, domain.Order{ID: "nope", CustomerName: "x", OrderDate: domain.MustParseDay("2025-01-01")})
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		err = tx.Orders().Delete(ctx, "nope")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		_, err = tx.Positions().Lock(ctx, "nope")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		return nil
	})
}

func testLockBefore(t *testing.T, st store.Store) {
	seed(t, st)
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		expired, err := tx.Orders().LockBefore(ctx, domain.MustParseDay("2025-03-12"))
		require.NoError(t, err)
		require.Len(t, expired, 1, "cutoff is exclusive")
		assert.Equal(t, "o-1", expired[0].ID)

		none, err := tx.Orders().LockBefore(ctx, domain.MustParseDay("2025-03-10"))
		require.NoError(t, err)
		assert.Empty(t, none)
		return nil
	})
}

func testMembership(t *testing.T, st store.Store) {
	seed(t, st)
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		require.NoError(t, addPosition(ctx, tx, domain.Position{ID: "p-1", ProductID: "coffee", Quantity: 2, OrderID: "o-1"}))
		require.NoError(t, addPosition(ctx, tx, domain.Position{ID: "p-2", ProductID: "laptop", Quantity: 1, OrderID: "o-1"}))
		return nil
	})

	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		o, err := tx.Orders().Get(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"p-1", "p-2"}, o.PositionIDs)

		owned, err := tx.Positions().ListByOrder(ctx, "o-1")
		require.NoError(t, err)
		require.Len(t, owned, 2)
		assert.Equal(t, "p-1", owned[0].ID)

		found, ok, err := tx.Positions().FindByOrderAndProduct(ctx, "o-1", "laptop")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "p-2", found.ID)

		_, ok, err = tx.Positions().FindByOrderAndProduct(ctx, "o-2", "laptop")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, tx.Positions().SetQuantity(ctx, "p-1", 7))
		require.NoError(t, tx.Orders().DetachPosition(ctx, "o-1", "p-2"))
		require.NoError(t, tx.Positions().Delete(ctx, "p-2"))
		return nil
	})

	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		o, err := tx.Orders().Get(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"p-1"}, o.PositionIDs)

		p, err := tx.Positions().Lock(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, 7, p.Quantity)
		return nil
	})
}

func testPositionMove(t *testing.T, st store.Store) {
	seed(t, st)
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		require.NoError(t, addPosition(ctx, tx, domain.Position{ID: "p-1", ProductID: "coffee", Quantity: 2, OrderID: "o-1"}))
		require.NoError(t, tx.Positions().SetOrder(ctx, "p-1", "o-2"))
		require.NoError(t, tx.Orders().DetachPosition(ctx, "o-1", "p-1"))
		require.NoError(t, tx.Orders().AttachPosition(ctx, "o-2", "p-1"))
		return nil
	})

	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		src, err := tx.Orders().Get(ctx, "o-1")
		require.NoError(t, err)
		dest, err := tx.Orders().Get(ctx, "o-2")
		require.NoError(t, err)
		assert.Empty(t, src.PositionIDs)
		assert.Equal(t, []string{"p-1"}, dest.PositionIDs)

		p, err := tx.Positions().Lock(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, "o-2", p.OrderID)
		return nil
	})
}

func testPositionUniquePerOrderProduct(t *testing.T, st store.Store) {
	seed(t, st)
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return addPosition(ctx, tx, domain.Position{ID: "p-1", ProductID: "coffee", Quantity: 1, OrderID: "o-1"})
	})
	err := st.InTx(context.Background(), func(tx store.Tx) error {
		return tx.Positions().Insert(context.Background(),
			domain.Position{ID: "p-2", ProductID: "coffee", Quantity: 1, OrderID: "o-1"})
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func testDeleteByOrder(t *testing.T, st store.Store) {
	seed(t, st)
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		require.NoError(t, addPosition(ctx, tx, domain.Position{ID: "p-1", ProductID: "coffee", Quantity: 1, OrderID: "o-1"}))
		require.NoError(t, addPosition(ctx, tx, domain.Position{ID: "p-2", ProductID: "laptop", Quantity: 1, OrderID: "o-1"}))
		require.NoError(t, addPosition(ctx, tx, domain.Position{ID: "p-3", ProductID: "laptop", Quantity: 1, OrderID: "o-2"}))

		n, err := tx.Positions().DeleteByOrder(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.NoError(t, tx.Orders().Delete(ctx, "o-1"))

		left, err := tx.Positions().List(ctx)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, "p-3", left[0].ID)
		return nil
	})
}

func testRollbackOnError(t *testing.T, st store.Store) {
	seed(t, st)
	err := st.InTx(context.Background(), func(tx store.Tx) error {
		ctx := context.Background()
		if _, err := tx.Products().AdjustStock(ctx, "coffee", -3); err != nil {
			return err
		}
		if err := addPosition(ctx, tx, domain.Position{ID: "p-1", ProductID: "coffee", Quantity: 3, OrderID: "o-1"}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		p, err := tx.Products().Get(ctx, "coffee")
		require.NoError(t, err)
		assert.Equal(t, 10, p.StockQuantity, "stock write rolled back")

		all, err := tx.Positions().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all, "position insert rolled back")

		o, err := tx.Orders().Get(ctx, "o-1")
		require.NoError(t, err)
		assert.Empty(t, o.PositionIDs, "membership rolled back")
		return nil
	})
}

func testCalendar(t *testing.T, st store.Store) {
	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		_, ok, err := tx.Calendar().VirtualDate(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = tx.Calendar().LockVirtualDate(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, tx.Calendar().SetVirtualDate(ctx, domain.MustParseDay("2025-03-11")))
		require.NoError(t, tx.Calendar().SetVirtualDate(ctx, domain.MustParseDay("2025-03-12")))
		return nil
	})

	inTx(t, st, func(ctx context.Context, tx store.Tx) error {
		d, ok, err := tx.Calendar().VirtualDate(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "2025-03-12", d.String())

		locked, ok, err := tx.Calendar().LockVirtualDate(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, d, locked)

		// Writing after the locking read in the same unit is allowed.
		return tx.Calendar().SetVirtualDate(ctx, domain.MustParseDay("2025-03-13"))
	})
}
