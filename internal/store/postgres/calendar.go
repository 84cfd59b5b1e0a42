package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/stockroom/internal/domain"
)

type calendar struct {
	tx *sqlx.Tx
}

// The calendar row is seeded by migration with a NULL date, so FOR SHARE
// always has a row to lock.
func (r calendar) get(ctx context.Context, suffix string) (domain.Day, bool, error) {
	var raw sql.NullString
	err := r.tx.GetContext(ctx, &raw, `SELECT to_char(virtual_date, 'YYYY-MM-DD') FROM calendar WHERE id = 1`+suffix)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Day{}, false, nil
	}
	if err != nil {
		return domain.Day{}, false, fmt.Errorf("read virtual date: %w", classify(err))
	}
	if !raw.Valid {
		return domain.Day{}, false, nil
	}
	d, err := domain.ParseDay(raw.String)
	if err != nil {
		return domain.Day{}, false, fmt.Errorf("read virtual date: %w", err)
	}
	return d, true, nil
}

func (r calendar) VirtualDate(ctx context.Context) (domain.Day, bool, error) {
	return r.get(ctx, "")
}

func (r calendar) LockVirtualDate(ctx context.Context) (domain.Day, bool, error) {
	return r.get(ctx, " FOR SHARE")
}

func (r calendar) SetVirtualDate(ctx context.Context, day domain.Day) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO calendar (id, virtual_date) VALUES (1, $1::date)
		ON CONFLICT (id) DO UPDATE SET virtual_date = EXCLUDED.virtual_date
	`, day.String())
	if err != nil {
		return fmt.Errorf("set virtual date: %w", classify(err))
	}
	return nil
}
