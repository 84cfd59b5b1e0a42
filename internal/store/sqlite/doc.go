// Package sqlite implements store.Store on SQLite using the id-array
// membership encoding: each order row carries a JSON array of its position
// ids next to positions.order_id.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - _txlock=immediate: Every unit takes the write lock at BEGIN
//
// With a single pooled connection and immediate transactions, units are
// fully serialized, so the Lock* repository methods are plain reads.
package sqlite
