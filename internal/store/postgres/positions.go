package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/stockroom/internal/domain"
)

type positions struct {
	tx *sqlx.Tx
}

const positionColumns = `id, product_id, quantity, order_id`

func (r positions) Lock(ctx context.Context, id string) (domain.Position, error) {
	var row positionRow
	err := r.tx.GetContext(ctx, &row, `SELECT `+positionColumns+` FROM positions WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Position{}, domain.NotFound("position", id)
	}
	if err != nil {
		return domain.Position{}, fmt.Errorf("get position %s: %w", id, classify(err))
	}
	return row.toDomain(), nil
}

func (r positions) ListByOrder(ctx context.Context, orderID string) ([]domain.Position, error) {
	return r.selectPositions(ctx, "positions of "+orderID,
		`SELECT `+positionColumns+` FROM positions WHERE order_id = $1 ORDER BY seq FOR UPDATE`, orderID)
}

func (r positions) FindByOrderAndProduct(ctx context.Context, orderID, productID string) (domain.Position, bool, error) {
	var row positionRow
	err := r.tx.GetContext(ctx, &row, `
		SELECT `+positionColumns+` FROM positions
		WHERE order_id = $1 AND product_id = $2
		FOR UPDATE
	`, orderID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Position{}, false, nil
	}
	if err != nil {
		return domain.Position{}, false, fmt.Errorf("find %s in order %s: %w", productID, orderID, classify(err))
	}
	return row.toDomain(), true, nil
}

func (r positions) List(ctx context.Context) ([]domain.Position, error) {
	return r.selectPositions(ctx, "list positions",
		`SELECT `+positionColumns+` FROM positions ORDER BY seq`)
}

func (r positions) selectPositions(ctx context.Context, op, q string, args ...any) ([]domain.Position, error) {
	var rows []positionRow
	if err := r.tx.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	out := make([]domain.Position, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r positions) Insert(ctx context.Context, p domain.Position) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO positions (id, product_id, quantity, order_id)
		VALUES (:id, :product_id, :quantity, :order_id)
	`, positionRow{ID: p.ID, ProductID: p.ProductID, Quantity: p.Quantity, OrderID: p.OrderID})
	if err != nil {
		return fmt.Errorf("insert position %s: %w", p.ID, classify(err))
	}
	return nil
}

func (r positions) SetQuantity(ctx context.Context, id string, quantity int) error {
	res, err := r.tx.ExecContext(ctx, `UPDATE positions SET quantity = $1 WHERE id = $2`, quantity, id)
	if err != nil {
		return fmt.Errorf("set quantity of %s: %w", id, classify(err))
	}
	return requireOne(res, "position", id)
}

func (r positions) SetOrder(ctx context.Context, id, orderID string) error {
	res, err := r.tx.ExecContext(ctx, `UPDATE positions SET order_id = $1 WHERE id = $2`, orderID, id)
	if err != nil {
		return fmt.Errorf("move position %s to %s: %w", id, orderID, classify(err))
	}
	return requireOne(res, "position", id)
}

func (r positions) Delete(ctx context.Context, id string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete position %s: %w", id, classify(err))
	}
	return requireOne(res, "position", id)
}

func (r positions) DeleteByOrder(ctx context.Context, orderID string) (int, error) {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM positions WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete positions of %s: %w", orderID, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete positions of %s: rows affected: %w", orderID, err)
	}
	return int(n), nil
}
