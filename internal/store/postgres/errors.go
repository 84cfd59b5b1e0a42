package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roach88/stockroom/internal/domain"
)

// SQLSTATE codes the adapter classifies.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeAdminShutdown        = "57P01"
	codeCannotConnectNow     = "57P03"
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
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return domain.Unavailable(err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return domain.Unavailable(err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == codeSerializationFailure,
		pgErr.Code == codeDeadlockDetected,
		pgErr.Code == codeLockNotAvailable:
		return domain.Conflict(err)
	case pgErr.Code == codeUniqueViolation:
		return &domain.Error{Kind: domain.KindInvalidInput, Message: "record already exists", Err: err}
	case pgErr.Code == codeForeignKeyViolation:
		return &domain.Error{Kind: domain.KindInvalidInput, Message: "referenced record does not exist", Err: err}
	case pgErr.Code == codeCheckViolation:
		return &domain.Error{Kind: domain.KindInvalidInput, Message: "constraint violated", Err: err}
	case pgErr.Code == codeNumericOutOfRange:
		return &domain.Error{Kind: domain.KindInvalidInput, Message: "value out of range", Err: err}
	case strings.HasPrefix(pgErr.Code, "08"),
		pgErr.Code == codeAdminShutdown,
		pgErr.Code == codeCannotConnectNow:
		return domain.Unavailable(err)
	}
	return err
}
