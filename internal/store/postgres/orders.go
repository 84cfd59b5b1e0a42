package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/stockroom/internal/domain"
)

type orders struct {
	tx *sqlx.Tx
}

const orderColumns = `id, customer_name, to_char(order_date, 'YYYY-MM-DD') AS order_date`

func (r orders) get(ctx context.Context, id, suffix string) (domain.Order, error) {
	var row orderRow
	err := r.tx.GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE id = $1`+suffix, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.NotFound("order", id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, classify(err))
	}

	var ids []string
	if err := r.tx.SelectContext(ctx, &ids, `SELECT id FROM positions WHERE order_id = $1 ORDER BY seq`, id); err != nil {
		return domain.Order{}, fmt.Errorf("position ids of %s: %w", id, classify(err))
	}
	return row.toDomain(ids)
}

func (r orders) Get(ctx context.Context, id string) (domain.Order, error) {
	return r.get(ctx, id, "")
}

func (r orders) Lock(ctx context.Context, id string) (domain.Order, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r orders) List(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.tx.SelectContext(ctx, &rows, `SELECT `+orderColumns+` FROM orders ORDER BY orders.order_date, id`); err != nil {
		return nil, fmt.Errorf("list orders: %w", classify(err))
	}
	var members []membershipRow
	if err := r.tx.SelectContext(ctx, &members, `SELECT id, order_id FROM positions ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("list orders: membership: %w", classify(err))
	}
	return joinMembership(rows, members)
}

func (r orders) LockBefore(ctx context.Context, cutoff domain.Day) ([]domain.Order, error) {
	var rows []orderRow
	err := r.tx.SelectContext(ctx, &rows, `
		SELECT `+orderColumns+` FROM orders
		WHERE orders.order_date < $1::date
		ORDER BY id
		FOR UPDATE
	`, cutoff.String())
	if err != nil {
		return nil, fmt.Errorf("orders before %s: %w", cutoff, classify(err))
	}
	if len(rows) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	var members []membershipRow
	err = r.tx.SelectContext(ctx, &members, `
		SELECT id, order_id FROM positions WHERE order_id = ANY($1) ORDER BY seq
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("orders before %s: membership: %w", cutoff, classify(err))
	}
	return joinMembership(rows, members)
}

func joinMembership(rows []orderRow, members []membershipRow) ([]domain.Order, error) {
	byOrder := make(map[string][]string, len(rows))
	for _, m := range members {
		byOrder[m.OrderID] = append(byOrder[m.OrderID], m.ID)
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.toDomain(byOrder[row.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r orders) Insert(ctx context.Context, o domain.Order) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, order_date) VALUES ($1, $2, $3::date)
	`, o.ID, o.CustomerName, o.OrderDate.String())
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, classify(err))
	}
	return nil
}

func (r orders) Update(ctx context.Context, o domain.Order) error {
	res, err := r.tx.ExecContext(ctx, `
		UPDATE orders SET customer_name = $1, order_date = $2::date WHERE id = $3
	`, o.CustomerName, o.OrderDate.String(), o.ID)
	if err != nil {
		return fmt.Errorf("update order %s: %w", o.ID, classify(err))
	}
	return requireOne(res, "order", o.ID)
}

func (r orders) Delete(ctx context.Context, id string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, classify(err))
	}
	return requireOne(res, "order", id)
}

// AttachPosition is a no-op: membership is positions.order_id.
func (r orders) AttachPosition(context.Context, string, string) error { return nil }

// DetachPosition is a no-op: membership is positions.order_id.
func (r orders) DetachPosition(context.Context, string, string) error { return nil }

func requireOne(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", entity, id, err)
	}
	if n == 0 {
		return domain.NotFound(entity, id)
	}
	return nil
}
