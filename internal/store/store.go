package store

import (
	"context"

	"github.com/roach88/stockroom/internal/domain"
)

// Store is a durable backing for products, orders and positions.
type Store interface {
	// InTx runs fn inside one atomic unit. The unit commits if fn returns
	// nil and rolls back otherwise; fn's error is returned unchanged.
	InTx(ctx context.Context, fn func(Tx) error) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}

// Tx exposes the repositories of one unit of work. A Tx must not be used
// after the InTx callback that received it returns.
type Tx interface {
	Products() ProductRepository
	Orders() OrderRepository
	Positions() PositionRepository
	Calendar() CalendarRepository
}

// ProductRepository reads and writes product rows.
type ProductRepository interface {
	// Get reads a product without locking it.
	Get(ctx context.Context, id string) (domain.Product, error)

	// Lock reads a product and holds its row lock until the unit ends.
	Lock(ctx context.Context, id string) (domain.Product, error)

	// List returns every product ordered by id.
	List(ctx context.Context) ([]domain.Product, error)

	// LockAll locks every product row in id order.
	LockAll(ctx context.Context) ([]domain.Product, error)

	Insert(ctx context.Context, p domain.Product) error

	// AdjustStock adds delta to the product's stock and returns the new
	// quantity. A result below zero is rejected by the storage layer.
	// Only the stock ledger calls this.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}

// OrderRepository reads and writes order rows and their position lists.
type OrderRepository interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	Lock(ctx context.Context, id string) (domain.Order, error)

	// List returns every order ordered by date, then id.
	List(ctx context.Context) ([]domain.Order, error)

	// LockBefore locks and returns every order dated strictly before
	// cutoff, in id order.
	LockBefore(ctx context.Context, cutoff domain.Day) ([]domain.Order, error)

	Insert(ctx context.Context, o domain.Order) error

	// Update writes the customer name and order date.
	Update(ctx context.Context, o domain.Order) error

	// Delete removes the order row. Its positions must already be gone.
	Delete(ctx context.Context, id string) error

	// AttachPosition appends positionID to the order's position list.
	AttachPosition(ctx context.Context, orderID, positionID string) error

	// DetachPosition removes positionID from the order's position list.
	DetachPosition(ctx context.Context, orderID, positionID string) error
}

// PositionRepository reads and writes position rows.
type PositionRepository interface {
	Lock(ctx context.Context, id string) (domain.Position, error)

	// ListByOrder returns the positions owned by an order, in insertion order.
	ListByOrder(ctx context.Context, orderID string) ([]domain.Position, error)

	// FindByOrderAndProduct returns the position of productID in orderID.
	// ok is false when the order holds no such position.
	FindByOrderAndProduct(ctx context.Context, orderID, productID string) (p domain.Position, ok bool, err error)

	// List returns every position.
	List(ctx context.Context) ([]domain.Position, error)

	Insert(ctx context.Context, p domain.Position) error
	SetQuantity(ctx context.Context, id string, quantity int) error
	SetOrder(ctx context.Context, id, orderID string) error
	Delete(ctx context.Context, id string) error

	// DeleteByOrder removes every position owned by orderID and returns
	// how many rows were deleted.
	DeleteByOrder(ctx context.Context, orderID string) (int, error)
}

// CalendarRepository persists the virtual current date.
type CalendarRepository interface {
	// VirtualDate returns the last advanced day; ok is false before the
	// first advance.
	VirtualDate(ctx context.Context) (day domain.Day, ok bool, err error)

	// LockVirtualDate is VirtualDate holding a shared lock on the calendar
	// until the unit ends, so SetVirtualDate in another unit waits for it.
	LockVirtualDate(ctx context.Context) (day domain.Day, ok bool, err error)

	SetVirtualDate(ctx context.Context, day domain.Day) error
}
