// Package harness runs YAML scenarios against the engine.
//
// A scenario seeds products, runs a list of steps (create_order,
// add_position, move_position, advance, ...) on a fresh in-memory store
// with a fixed clock, sequential ids and a fixed replenishment amount, and
// then checks assertions on the final state:
//
//	name: insufficient-stock
//	description: a second reservation larger than the remaining stock fails
//	today: "2025-03-10"
//	products:
//	  - {id: widget, name: Widget, stock: 10}
//	steps:
//	  - op: create_order
//	    args: {id: o-1, customer: Ann, date: "2025-03-10"}
//	  - op: create_order
//	    args: {id: o-2, customer: Bob, date: "2025-03-10"}
//	  - op: add_position
//	    args: {id: p-1, order: o-1, product: widget, quantity: 7}
//	  - op: add_position
//	    args: {order: o-2, product: widget, quantity: 5}
//	    expect: {error: INSUFFICIENT_STOCK, available: 3}
//	assertions:
//	  - {type: stock, product: widget, equals: 3}
//
// Because runs are deterministic, the outcome of every step and the final
// snapshot can be compared against golden files (see RunWithGolden).
package harness
