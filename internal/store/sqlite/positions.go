package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/stockroom/internal/domain"
)

type positions struct {
	tx *sql.Tx
}

const positionColumns = `id, product_id, quantity, order_id`

func scanPosition(row scanner) (domain.Position, error) {
	var p domain.Position
	err := row.Scan(&p.ID, &p.ProductID, &p.Quantity, &p.OrderID)
	return p, err
}

// Lock reads a position; the unit already holds the database write lock.
func (r positions) Lock(ctx context.Context, id string) (domain.Position, error) {
	p, err := scanPosition(r.tx.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Position{}, domain.NotFound("position", id)
	}
	if err != nil {
		return domain.Position{}, fmt.Errorf("get position %s: %w", id, classify(err))
	}
	return p, nil
}

func (r positions) ListByOrder(ctx context.Context, orderID string) ([]domain.Position, error) {
	return r.query(ctx, "positions of "+orderID,
		`SELECT `+positionColumns+` FROM positions WHERE order_id = ? ORDER BY rowid`, orderID)
}

func (r positions) FindByOrderAndProduct(ctx context.Context, orderID, productID string) (domain.Position, bool, error) {
	p, err := scanPosition(r.tx.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE order_id = ? AND product_id = ?`, orderID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Position{}, false, nil
	}
	if err != nil {
		return domain.Position{}, false, fmt.Errorf("find %s in order %s: %w", productID, orderID, classify(err))
	}
	return p, true, nil
}

func (r positions) List(ctx context.Context) ([]domain.Position, error) {
	return r.query(ctx, "list positions",
		`SELECT `+positionColumns+` FROM positions ORDER BY rowid`)
}

func (r positions) query(ctx context.Context, op, q string, args ...any) ([]domain.Position, error) {
	rows, err := r.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	defer rows.Close()

	out := []domain.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, classify(err))
	}
	return out, nil
}

func (r positions) Insert(ctx context.Context, p domain.Position) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO positions (id, product_id, quantity, order_id) VALUES (?, ?, ?, ?)
	`, p.ID, p.ProductID, p.Quantity, p.OrderID)
	if err != nil {
		return fmt.Errorf("insert position %s: %w", p.ID, classify(err))
	}
	return nil
}

func (r positions) SetQuantity(ctx context.Context, id string, quantity int) error {
	res, err := r.tx.ExecContext(ctx, `UPDATE positions SET quantity = ? WHERE id = ?`, quantity, id)
	if err != nil {
		return fmt.Errorf("set quantity of %s: %w", id, classify(err))
	}
	return requireOne(res, "position", id)
}

func (r positions) SetOrder(ctx context.Context, id, orderID string) error {
	res, err := r.tx.ExecContext(ctx, `UPDATE positions SET order_id = ? WHERE id = ?`, orderID, id)
	if err != nil {
		return fmt.Errorf("move position %s to %s: %w", id, orderID, classify(err))
	}
	return requireOne(res, "position", id)
}

func (r positions) Delete(ctx context.Context, id string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM positions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete position %s: %w", id, classify(err))
	}
	return requireOne(res, "position", id)
}

func (r positions) DeleteByOrder(ctx context.Context, orderID string) (int, error) {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM positions WHERE order_id = ?`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete positions of %s: %w", orderID, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete positions of %s: rows affected: %w", orderID, err)
	}
	return int(n), nil
}
