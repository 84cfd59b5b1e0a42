// Package postgres implements store.Store on PostgreSQL using the
// join-table membership encoding: an order's positions are exactly the
// rows of positions whose order_id references it, so AttachPosition and
// DetachPosition have nothing to write.
//
// Units run at READ COMMITTED. Lock* methods issue SELECT ... FOR UPDATE,
// and the engine takes row locks in a fixed order (orders by id, then
// positions, then products by id). Units that check an order date
// against the virtual date first take a FOR SHARE lock on the single
// calendar row, which an advance must update before it sweeps.
// Serialization failures, deadlocks and lock timeouts surface as
// domain.KindConflict.
//
// The schema is versioned with golang-migrate; migrations are embedded
// and applied by Open.
package postgres
