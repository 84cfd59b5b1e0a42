package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/stockroom/internal/domain"
)

type calendar struct {
	tx *sql.Tx
}

func (r calendar) VirtualDate(ctx context.Context) (domain.Day, bool, error) {
	var raw string
	err := r.tx.QueryRowContext(ctx, `SELECT virtual_date FROM calendar WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Day{}, false, nil
	}
	if err != nil {
		return domain.Day{}, false, fmt.Errorf("read virtual date: %w", classify(err))
	}
	d, err := domain.ParseDay(raw)
	if err != nil {
		return domain.Day{}, false, fmt.Errorf("read virtual date: %w", err)
	}
	return d, true, nil
}

// LockVirtualDate is VirtualDate: the unit already holds the database
// write lock.
func (r calendar) LockVirtualDate(ctx context.Context) (domain.Day, bool, error) {
	return r.VirtualDate(ctx)
}

func (r calendar) SetVirtualDate(ctx context.Context, day domain.Day) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO calendar (id, virtual_date) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET virtual_date = excluded.virtual_date
	`, day.String())
	if err != nil {
		return fmt.Errorf("set virtual date: %w", classify(err))
	}
	return nil
}
