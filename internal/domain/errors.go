package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the engine reports. The set is closed:
// callers (HTTP handlers, the CLI) switch on it to pick a status or an exit
// code instead of matching message text.
type Kind string

const (
	// KindInvalidInput indicates malformed or missing caller-supplied fields.
	KindInvalidInput Kind = "INVALID_INPUT"

	// KindPastDate indicates an order date earlier than the current virtual date.
	KindPastDate Kind = "PAST_DATE"

	// KindNotFound indicates a referenced order, position or product is absent.
	KindNotFound Kind = "NOT_FOUND"

	// KindInsufficientStock indicates the requested quantity exceeds available stock.
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"

	// KindConflict indicates a lock or serialization failure. Retryable.
	KindConflict Kind = "CONFLICT"

	// KindStorageUnavailable indicates the underlying store cannot be reached.
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
)

// Error is the engine's classified failure.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is a human-readable description echoing the violated constraint.
	Message string

	// Entity and ID name the record involved, when there is one
	// ("order", "position", "product").
	Entity string
	ID     string

	// Available and Requested are set for KindInsufficientStock.
	Available int
	Requested int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// err is nil or unclassified.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// InvalidInput creates a KindInvalidInput error.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// PastDate creates a KindPastDate error for an order dated before current.
func PastDate(date, current Day) *Error {
	return &Error{
		Kind:    KindPastDate,
		Message: fmt.Sprintf("order date %s is earlier than current date %s", date, current),
	}
}

// NotFound creates a KindNotFound error for the given entity.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
		Entity:  entity,
		ID:      id,
	}
}

// InsufficientStock creates a KindInsufficientStock error. The message
// always carries the available quantity.
func InsufficientStock(productID string, available, requested int) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", productID, requested, available),
		Entity:    "product",
		ID:        productID,
		Available: available,
		Requested: requested,
	}
}

// Conflict wraps a lock or serialization failure.
func Conflict(err error) *Error {
	return &Error{Kind: KindConflict, Message: "concurrent update, retry the operation", Err: err}
}

// Unavailable wraps a failure to reach the store.
func Unavailable(err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Message: "storage unavailable", Err: err}
}
