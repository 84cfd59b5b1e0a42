// Package domain defines the stockroom data model: products with a stock
// level, orders dated by calendar day, and the positions that allocate
// product stock to an order.
//
// The package is a leaf: it has no knowledge of storage or transport. Every
// failure the engine reports is a *Error carrying one of the closed Kind
// values, so callers branch on kind rather than on message text.
//
// # Conservation
//
// For every product p, StockQuantity(p) plus the quantities of all positions
// referencing p is constant except for replenishment, which only increases
// it. Stock never drops below zero.
package domain
