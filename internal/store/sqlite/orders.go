package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/stockroom/internal/domain"
)

type orders struct {
	tx *sql.Tx
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (domain.Order, error) {
	var (
		o       domain.Order
		date    string
		idsJSON string
	)
	if err := row.Scan(&o.ID, &o.CustomerName, &date, &idsJSON); err != nil {
		return domain.Order{}, err
	}
	d, err := domain.ParseDay(date)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: stored date: %w", o.ID, err)
	}
	o.OrderDate = d
	ids, err := decodeIDs(idsJSON)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: position_ids: %w", o.ID, err)
	}
	o.PositionIDs = ids
	return o, nil
}

func decodeIDs(s string) ([]string, error) {
	ids := []string{}
	if s == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

const orderColumns = `id, customer_name, order_date, position_ids`

func (r orders) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(r.tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.NotFound("order", id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, classify(err))
	}
	return o, nil
}

// Lock is Get: the unit already holds the database write lock.
func (r orders) Lock(ctx context.Context, id string) (domain.Order, error) {
	return r.Get(ctx, id)
}

func (r orders) List(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, "list orders",
		`SELECT `+orderColumns+` FROM orders ORDER BY order_date, id`)
}

func (r orders) LockBefore(ctx context.Context, cutoff domain.Day) ([]domain.Order, error) {
	return r.query(ctx, "orders before "+cutoff.String(),
		`SELECT `+orderColumns+` FROM orders WHERE order_date < ? ORDER BY id`, cutoff.String())
}

func (r orders) query(ctx context.Context, op, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, classify(err))
	}
	return out, nil
}

func (r orders) Insert(ctx context.Context, o domain.Order) error {
	ids, err := encodeIDs(o.PositionIDs)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	_, err = r.tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, order_date, position_ids) VALUES (?, ?, ?, ?)
	`, o.ID, o.CustomerName, o.OrderDate.String(), ids)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, classify(err))
	}
	return nil
}

func (r orders) Update(ctx context.Context, o domain.Order) error {
	res, err := r.tx.ExecContext(ctx, `
		UPDATE orders SET customer_name = ?, order_date = ? WHERE id = ?
	`, o.CustomerName, o.OrderDate.String(), o.ID)
	if err != nil {
		return fmt.Errorf("update order %s: %w", o.ID, classify(err))
	}
	return requireOne(res, "order", o.ID)
}

func (r orders) Delete(ctx context.Context, id string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, classify(err))
	}
	return requireOne(res, "order", id)
}

func (r orders) AttachPosition(ctx context.Context, orderID, positionID string) error {
	return r.editIDs(ctx, orderID, func(ids []string) []string {
		if slices.Contains(ids, positionID) {
			return ids
		}
		return append(ids, positionID)
	})
}

func (r orders) DetachPosition(ctx context.Context, orderID, positionID string) error {
	return r.editIDs(ctx, orderID, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(id string) bool { return id == positionID })
	})
}

// editIDs rewrites an order's position_ids array in place.
func (r orders) editIDs(ctx context.Context, orderID string, edit func([]string) []string) error {
	var raw string
	err := r.tx.QueryRowContext(ctx, `SELECT position_ids FROM orders WHERE id = ?`, orderID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("order", orderID)
	}
	if err != nil {
		return fmt.Errorf("read position ids of %s: %w", orderID, classify(err))
	}
	ids, err := decodeIDs(raw)
	if err != nil {
		return fmt.Errorf("order %s: position_ids: %w", orderID, err)
	}
	encoded, err := encodeIDs(edit(ids))
	if err != nil {
		return fmt.Errorf("order %s: position_ids: %w", orderID, err)
	}
	if _, err := r.tx.ExecContext(ctx, `UPDATE orders SET position_ids = ? WHERE id = ?`, encoded, orderID); err != nil {
		return fmt.Errorf("write position ids of %s: %w", orderID, classify(err))
	}
	return nil
}

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
