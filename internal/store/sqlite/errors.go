package sqlite

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/stockroom/internal/domain"
)

// classify maps driver errors onto domain kinds. Unrecognized errors are
// returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsError(err); ok {
		return err
	}
	if errors.Is(err, sql.ErrConnDone) {
		return domain.Unavailable(err)
	}

	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return domain.Conflict(err)
	case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrNotADB, sqlite3.ErrCorrupt, sqlite3.ErrFull:
		return domain.Unavailable(err)
	case sqlite3.ErrConstraint:
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return &domain.Error{Kind: domain.KindInvalidInput, Message: "record already exists", Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &domain.Error{Kind: domain.KindInvalidInput, Message: "referenced record does not exist", Err: err}
		default:
			return &domain.Error{Kind: domain.KindInvalidInput, Message: "constraint violated", Err: err}
		}
	}
	return err
}
