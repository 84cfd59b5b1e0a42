// Package engine implements the order, position and stock transaction
// engine.
//
// Every exported operation runs as exactly one store unit (store.Store.InTx):
// it either applies all of its row mutations or none of them. Stock is only
// changed through the ledger, so for every product
//
//	stockQuantity + sum(quantity of its positions)
//
// stays constant across every operation except replenishment, which only
// increases it.
//
// ARCHITECTURE:
//
// Units take row locks in a fixed order: orders by id, then positions, then
// products by id. Validation reads happen after the rows are locked, inside
// the same unit, so there is no window between checking stock and
// reserving it.
//
// The current date is the later of the clock's civil date and the stored
// virtual date. Orders dated before it are rejected; Advance moves it
// forward, expires older orders and replenishes stock.
//
// Failures are *domain.Error values with a closed Kind; anything else is a
// storage fault wrapped with the operation name.
package engine
