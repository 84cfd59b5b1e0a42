package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/stockroom/internal/domain"
)

type products struct {
	tx *sqlx.Tx
}

const productColumns = `id, name, stock_quantity`

func (r products) get(ctx context.Context, id, suffix string) (domain.Product, error) {
	var row productRow
	err := r.tx.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = $1`+suffix, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.NotFound("product", id)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, classify(err))
	}
	return row.toDomain(), nil
}

func (r products) Get(ctx context.Context, id string) (domain.Product, error) {
	return r.get(ctx, id, "")
}

func (r products) Lock(ctx context.Context, id string) (domain.Product, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r products) list(ctx context.Context, suffix string) ([]domain.Product, error) {
	var rows []productRow
	if err := r.tx.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM products ORDER BY id`+suffix); err != nil {
		return nil, fmt.Errorf("list products: %w", classify(err))
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r products) List(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, "")
}

func (r products) LockAll(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, " FOR UPDATE")
}

func (r products) Insert(ctx context.Context, p domain.Product) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO products (id, name, stock_quantity) VALUES (:id, :name, :stock_quantity)
	`, productRow{ID: p.ID, Name: p.Name, StockQuantity: p.StockQuantity})
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID, classify(err))
	}
	return nil
}

func (r products) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	var qty int
	err := r.tx.GetContext(ctx, &qty, `
		UPDATE products SET stock_quantity = stock_quantity + $1
		WHERE id = $2
		RETURNING stock_quantity
	`, delta, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFound("product", id)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust stock of %s by %d: %w", id, delta, classify(err))
	}
	return qty, nil
}
