package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/ledger"
	"github.com/roach88/stockroom/internal/store"
	"github.com/roach88/stockroom/internal/store/sqlite"
)

func createTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		for _, p := range []domain.Product{
			{ID: "coffee", Name: "Coffee", StockQuantity: 10},
			{ID: "laptop", Name: "Laptop", StockQuantity: 2},
		} {
			if err := tx.Products().Insert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))
	return s
}

func stockOf(t *testing.T, s store.Store, id string) int {
	t.Helper()
	var qty int
	ctx := context.Background()
	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		p, err := tx.Products().Get(ctx, id)
		qty = p.StockQuantity
		return err
	}))
	return qty
}

func TestReserve(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var change domain.StockChange
	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		var err error
		change, err = ledger.For(tx).Reserve(ctx, "coffee", 4)
		return err
	}))

	assert.Equal(t, domain.StockChange{ProductID: "coffee", Delta: -4, StockQuantity: 6}, change)
	assert.Equal(t, 6, stockOf(t, s, "coffee"))
}

func TestReserve_ExactStockAllowed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		_, err := ledger.For(tx).Reserve(ctx, "laptop", 2)
		return err
	}))
	assert.Equal(t, 0, stockOf(t, s, "laptop"))
}

func TestReserve_Insufficient(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx store.Tx) error {
		_, err := ledger.For(tx).Reserve(ctx, "laptop", 3)
		return err
	})
	require.Error(t, err)

	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindInsufficientStock, de.Kind)
	assert.Equal(t, 2, de.Available)
	assert.Equal(t, 3, de.Requested)
	assert.Equal(t, 2, stockOf(t, s, "laptop"), "rejected reserve leaves stock untouched")
}

func TestReserve_UnknownProduct(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx store.Tx) error {
		_, err := ledger.For(tx).Reserve(ctx, "ghost", 1)
		return err
	})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestNonPositiveQuantities(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func(l *ledger.Ledger) error
	}{
		{"reserve zero", func(l *ledger.Ledger) error { _, err := l.Reserve(ctx, "coffee", 0); return err }},
		{"release negative", func(l *ledger.Ledger) error { _, err := l.Release(ctx, "coffee", -1); return err }},
		{"replenish zero", func(l *ledger.Ledger) error { _, err := l.Replenish(ctx, "coffee", 0); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.InTx(ctx, func(tx store.Tx) error { return tt.call(ledger.For(tx)) })
			assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
		})
	}
	assert.Equal(t, 10, stockOf(t, s, "coffee"))
}

func TestReleaseAll_SumsPerProduct(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var changes []domain.StockChange
	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		var err error
		changes, err = ledger.For(tx).ReleaseAll(ctx, []domain.Position{
			{ID: "p1", ProductID: "laptop", Quantity: 1},
			{ID: "p2", ProductID: "coffee", Quantity: 3},
			{ID: "p3", ProductID: "laptop", Quantity: 2},
		})
		return err
	}))

	assert.Equal(t, []domain.StockChange{
		{ProductID: "coffee", Delta: 3, StockQuantity: 13},
		{ProductID: "laptop", Delta: 3, StockQuantity: 5},
	}, changes)
}

func TestReplenish(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		_, err := ledger.For(tx).Replenish(ctx, "laptop", 25)
		return err
	}))
	assert.Equal(t, 27, stockOf(t, s, "laptop"))
}

func insertProduct(t *testing.T, s store.Store, p domain.Product) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		return tx.Products().Insert(ctx, p)
	}))
}

func TestReplenish_CapsAtMaxQuantity(t *testing.T) {
	s := createTestStore(t)
	insertProduct(t, s, domain.Product{ID: "bulk", Name: "Bulk", StockQuantity: domain.MaxQuantity - 5})
	ctx := context.Background()

	var changes []domain.StockChange
	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		l := ledger.For(tx)
		for range 2 {
			c, err := l.Replenish(ctx, "bulk", 20)
			if err != nil {
				return err
			}
			changes = append(changes, c)
		}
		return nil
	}))

	assert.Equal(t, []domain.StockChange{
		{ProductID: "bulk", Delta: 5, StockQuantity: domain.MaxQuantity},
		{ProductID: "bulk", Delta: 0, StockQuantity: domain.MaxQuantity},
	}, changes)
	assert.Equal(t, domain.MaxQuantity, stockOf(t, s, "bulk"))
}

func TestRelease_RejectsOverflow(t *testing.T) {
	s := createTestStore(t)
	insertProduct(t, s, domain.Product{ID: "bulk", Name: "Bulk", StockQuantity: domain.MaxQuantity - 1})
	ctx := context.Background()

	err := s.InTx(ctx, func(tx store.Tx) error {
		_, err := ledger.For(tx).Release(ctx, "bulk", 2)
		return err
	})
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput), "got %v", err)
	assert.Equal(t, domain.MaxQuantity-1, stockOf(t, s, "bulk"))

	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		_, err := ledger.For(tx).Release(ctx, "bulk", 1)
		return err
	}))
	assert.Equal(t, domain.MaxQuantity, stockOf(t, s, "bulk"))
}
