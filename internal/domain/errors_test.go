package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_Wrapped(t *testing.T) {
	base := InsufficientStock("widget", 3, 5)
	wrapped := fmt.Errorf("add position: %w", base)

	assert.Equal(t, KindInsufficientStock, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindInsufficientStock))
	assert.False(t, IsKind(wrapped, KindNotFound))

	de, ok := AsError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 3, de.Available)
	assert.Equal(t, 5, de.Requested)
	assert.Contains(t, de.Error(), "available 3")
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindNotFound))
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("database is locked")
	err := Conflict(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindConflict, err.Kind)
	assert.Contains(t, err.Error(), "database is locked")

	unavailable := Unavailable(cause)
	assert.Equal(t, KindStorageUnavailable, KindOf(unavailable))
}

func TestConstructors_Messages(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: order o-1 not found", NotFound("order", "o-1").Error())
	assert.Equal(t,
		"PAST_DATE: order date 2025-03-09 is earlier than current date 2025-03-10",
		PastDate(MustParseDay("2025-03-09"), MustParseDay("2025-03-10")).Error())
	assert.Equal(t, "INVALID_INPUT: quantity must be positive, got 0",
		InvalidInput("quantity must be positive, got %d", 0).Error())
}

func TestNames(t *testing.T) {
	// "é" as e + combining acute accent normalizes to the precomposed form.
	assert.Equal(t, "Caf\u00e9", NormalizeName("  Cafe\u0301 "))
	assert.True(t, ValidName("Alice"))
	assert.False(t, ValidName(""))

	assert.True(t, ValidID("order-1"))
	assert.True(t, ValidID("0195b5a4-6f0e-7c43-9d1e-2f6a7b8c9d0e"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("has space"))
	assert.False(t, ValidID("-leading-dash"))
}
