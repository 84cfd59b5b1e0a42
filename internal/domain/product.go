package domain

import "math"

// MaxQuantity bounds stock and position quantities. Both are stored in
// 32-bit integer columns.
const MaxQuantity = math.MaxInt32

// Product is a stocked item. StockQuantity is the available (unallocated)
// quantity and is only ever changed through the stock ledger.
type Product struct {
	ID            string `json:"productID"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stockQuantity"`
}

// ProductInput describes a product to seed into the catalog.
// An empty ID asks the engine to generate one.
type ProductInput struct {
	ID            string `json:"productID,omitempty" yaml:"id,omitempty"`
	Name          string `json:"name" yaml:"name"`
	StockQuantity int    `json:"stockQuantity" yaml:"stock"`
}

// StockChange records a ledger mutation applied to one product.
type StockChange struct {
	ProductID     string `json:"productID"`
	Delta         int    `json:"delta"`
	StockQuantity int    `json:"stockQuantity"`
}
