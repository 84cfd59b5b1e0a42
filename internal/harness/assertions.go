package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/stockroom/internal/testutil"
)

// AssertionContext is what assertions are evaluated against.
type AssertionContext struct {
	State       testutil.State
	Seeded      map[string]int // initial stock per product
	Replenished map[string]int // total replenished per product
	Expired     int            // orders expired across all steps
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, actual %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(a Assertion, actx *AssertionContext) error {
	s := actx.State
	switch a.Type {
	case AssertStock:
		got, ok := s.Stock()[a.Product]
		if !ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("product %s", a.Product), Actual: "no such product"}
		}
		if got != *a.Equals {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s stock %d", a.Product, *a.Equals), Actual: fmt.Sprint(got)}
		}

	case AssertOrderPositions:
		o, ok := s.Order(a.Order)
		if !ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("order %s", a.Order), Actual: "no such order"}
		}
		if !slices.Equal(o.PositionIDs, a.Positions) && (len(o.PositionIDs) != 0 || len(a.Positions) != 0) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%v", a.Positions), Actual: fmt.Sprintf("%v", o.PositionIDs)}
		}

	case AssertOrderAbsent:
		if _, ok := s.Order(a.Order); ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("order %s absent", a.Order), Actual: "present"}
		}

	case AssertPosition:
		p, ok := s.Position(a.Position)
		if !ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("position %s", a.Position), Actual: "no such position"}
		}
		if a.Quantity != nil && p.Quantity != *a.Quantity {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s quantity %d", a.Position, *a.Quantity), Actual: fmt.Sprint(p.Quantity)}
		}
		if a.Order != "" && p.OrderID != a.Order {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s in order %s", a.Position, a.Order), Actual: p.OrderID}
		}

	case AssertPositionAbsent:
		if _, ok := s.Position(a.Position); ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("position %s absent", a.Position), Actual: "present"}
		}

	case AssertExpired:
		if actx.Expired != *a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(*a.Count), Actual: fmt.Sprint(actx.Expired)}
		}

	case AssertConservation:
		totals := s.Totals()
		var diffs []string
		for id, seeded := range actx.Seeded {
			want := seeded + actx.Replenished[id]
			if totals[id] != want {
				diffs = append(diffs, fmt.Sprintf("%s: %d != %d", id, totals[id], want))
			}
		}
		if len(diffs) > 0 {
			slices.Sort(diffs)
			return &AssertionError{Type: a.Type, Expected: "stock + allocations == seeded + replenished", Actual: strings.Join(diffs, ", ")}
		}

	case AssertMembership:
		if err := s.CheckIntegrity(); err != nil {
			return &AssertionError{Type: a.Type, Expected: "consistent state", Actual: err.Error()}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
