package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/stockroom/internal/domain"
)

type products struct {
	tx *sql.Tx
}

func (r products) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.tx.QueryRowContext(ctx, `
		SELECT id, name, stock_quantity FROM products WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.StockQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.NotFound("product", id)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, classify(err))
	}
	return p, nil
}

// Lock is Get: the unit already holds the database write lock.
func (r products) Lock(ctx context.Context, id string) (domain.Product, error) {
	return r.Get(ctx, id)
}

func (r products) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT id, name, stock_quantity FROM products ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", classify(err))
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", classify(err))
	}
	return out, nil
}

func (r products) LockAll(ctx context.Context) ([]domain.Product, error) {
	return r.List(ctx)
}

func (r products) Insert(ctx context.Context, p domain.Product) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO products (id, name, stock_quantity) VALUES (?, ?, ?)
	`, p.ID, p.Name, p.StockQuantity)
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID, classify(err))
	}
	return nil
}

func (r products) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	var qty int
	err := r.tx.QueryRowContext(ctx, `
		UPDATE products SET stock_quantity = stock_quantity + ?
		WHERE id = ?
		RETURNING stock_quantity
	`, delta, id).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFound("product", id)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust stock of %s by %d: %w", id, delta, classify(err))
	}
	return qty, nil
}
