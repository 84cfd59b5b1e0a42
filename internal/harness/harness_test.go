package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_PassingScenarioTracesEveryStep(t *testing.T) {
	s := mustParse(t, `
name: trace
description: trace records outcomes
today: "2025-03-10"
products:
  - {id: widget, name: Widget, stock: 5}
steps:
  - op: create_order
    args: {id: o-1, customer: Ann, date: "2025-03-10"}
  - op: add_position
    args: {order: o-1, product: widget, quantity: 9}
    expect: {error: insufficient_stock}
  - op: add_position
    args: {order: o-1, product: widget, quantity: 2}
  - op: replenish
assertions:
  - {type: stock, product: widget, equals: 13}
  - {type: conservation}
  - {type: membership}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 4)
	assert.Equal(t, OutcomeOK, result.Trace[0].Outcome)
	assert.Equal(t, "INSUFFICIENT_STOCK", result.Trace[1].Outcome)
	assert.Equal(t, OutcomeOK, result.Trace[2].Outcome)
	assert.Equal(t, 3, result.Trace[2].Seq)

	// The failed add consumed gen-1 before its unit was rejected.
	require.Len(t, result.State.Orders, 1)
	require.Len(t, result.State.Orders[0].Positions, 1)
	assert.Equal(t, "gen-2", result.State.Orders[0].Positions[0].ID)
}

func TestRun_ReportsUnexpectedOutcomes(t *testing.T) {
	s := mustParse(t, `
name: failing
description: every kind of mismatch
today: "2025-03-10"
products:
  - {id: widget, name: Widget, stock: 5}
steps:
  - op: delete_order
    args: {order: ghost}
  - op: create_order
    args: {id: o-1, customer: Ann, date: "2025-03-10"}
    expect: {error: PAST_DATE}
  - op: add_position
    args: {order: o-1, product: widget, quantity: 9}
    expect: {error: INSUFFICIENT_STOCK, available: 4}
  - op: add_position
    args: {order: o-1, product: gizmo, quantity: 1}
    expect: {error: INSUFFICIENT_STOCK}
assertions:
  - {type: stock, product: widget, equals: 4}
  - {type: order_absent, order: o-1}
  - {type: expired, count: 1}
  - {type: membership}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	require.Len(t, result.Errors, 7)
	assert.Contains(t, result.Errors[0], "steps[0] delete_order: unexpected error")
	assert.Contains(t, result.Errors[1], "steps[1] create_order: expected PAST_DATE, got success")
	assert.Contains(t, result.Errors[2], "expected available 4")
	assert.Contains(t, result.Errors[3], "steps[3] add_position: expected INSUFFICIENT_STOCK")
	assert.Contains(t, result.Errors[4], "assertions[0]: assertion failed: stock")
	assert.Contains(t, result.Errors[5], "assertions[1]: assertion failed: order_absent")
	assert.Contains(t, result.Errors[6], "assertions[2]: assertion failed: expired")
}

func TestRun_ConservationTracksReplenishment(t *testing.T) {
	s := mustParse(t, `
name: conservation
description: conservation allows exactly the replenished amount
today: "2025-03-10"
replenish: 30
products:
  - {id: widget, name: Widget, stock: 5}
  - {id: gadget, name: Gadget, stock: 0}
steps:
  - op: create_order
    args: {id: o-1, customer: Ann, date: "2025-03-11"}
  - op: add_position
    args: {order: o-1, product: widget, quantity: 5}
  - op: advance
    args: {date: "2025-03-12"}
assertions:
  - {type: stock, product: widget, equals: 35}
  - {type: stock, product: gadget, equals: 30}
  - {type: expired, count: 1}
  - {type: conservation}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "2025-03-12", result.State.CurrentDate.String())

	require.NotNil(t, result.Trace[2].Expired)
	assert.Equal(t, 1, *result.Trace[2].Expired)
}

func TestRun_SeedFailure(t *testing.T) {
	s := mustParse(t, `
name: bad-seed
description: negative seed stock
today: "2025-03-10"
products:
  - {id: widget, name: Widget, stock: -1}
steps: [{op: replenish}]
assertions: [{type: membership}]
`)
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed products")
}
