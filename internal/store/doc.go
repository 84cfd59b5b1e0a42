// Package store defines the repositories and the atomic unit of work that
// the transaction engine runs against.
//
// A Store hands out one Tx per unit through InTx. Everything done through
// that Tx commits together when the callback returns nil and rolls back
// when it returns an error, so a rejected operation leaves no partial
// writes behind.
//
// # Lock Discipline
//
// Lock* methods take a row lock for the rest of the unit. Adapters that
// serialize whole units (SQLite with BEGIN IMMEDIATE) implement them as
// plain reads. Callers acquire locks in a fixed order to stay deadlock-free:
//
//   - orders, by id ascending
//   - positions
//   - products, by id ascending
//
// # Membership Encodings
//
// The order → positions relation is stored either as an id array on the
// order row (sqlite) or derived from positions.order_id (postgres).
// OrderRepository.AttachPosition and DetachPosition maintain the array in
// the first encoding and are no-ops in the second; the engine always calls
// them, so it never needs to know which encoding is in use.
//
// # Errors
//
// Adapters return *domain.Error for absent rows (KindNotFound), duplicate
// keys (KindInvalidInput), lock or serialization failures (KindConflict)
// and connection loss (KindStorageUnavailable). Anything else is wrapped
// with fmt.Errorf and %w.
package store
