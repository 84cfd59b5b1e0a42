package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/engine"
	"github.com/roach88/stockroom/internal/store/sqlite"
	"github.com/roach88/stockroom/internal/testutil"
	"github.com/roach88/stockroom/internal/timeline"
)

// Harness runs one scenario with a fixed clock, sequential ids and a fixed
// replenishment amount.
type Harness struct {
	engine   *engine.Engine
	timeline *timeline.Orchestrator
	clock    *testutil.FixedClock
	logger   *slog.Logger

	seeded      map[string]int
	replenished map[string]int
	expired     int
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. A non-nil error means
// the scenario could not be executed at all; failed steps and assertions
// are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := sqlite.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	replenish := scenario.Replenish
	if replenish == 0 {
		replenish = engine.ReplenishMin
	}
	clock := testutil.NewFixedClockOn(scenario.Today)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(st,
		engine.WithClock(clock),
		engine.WithIDGenerator(testutil.NewSequenceGenerator("gen")),
		engine.WithRand(testutil.FixedRand{Value: replenish - engine.ReplenishMin}),
		engine.WithLogger(logger),
	)

	h := &Harness{
		engine:      eng,
		timeline:    timeline.New(eng, logger),
		clock:       clock,
		logger:      logger,
		seeded:      make(map[string]int),
		replenished: make(map[string]int),
	}

	ctx := context.Background()
	if err := h.seed(ctx, scenario.Products); err != nil {
		return nil, fmt.Errorf("failed to seed products: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	state, err := testutil.ReadState(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	snap, err := eng.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	result.State = snap

	actx := &AssertionContext{
		State:       state,
		Seeded:      h.seeded,
		Replenished: h.replenished,
		Expired:     h.expired,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) seed(ctx context.Context, products []ProductSeed) error {
	for _, p := range products {
		if _, err := h.engine.CreateProduct(ctx, domain.ProductInput{ID: p.ID, Name: p.Name, StockQuantity: p.Stock}); err != nil {
			return err
		}
		h.seeded[p.ID] = p.Stock
	}
	return nil
}

// executeStep runs one step, records it in the trace and checks it against
// its expect clause.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) {
	event := TraceEvent{Seq: i + 1, Op: step.Op, Args: step.Args, Outcome: OutcomeOK}

	expired, err := h.apply(ctx, step)
	if err != nil {
		event.Outcome = string(domain.KindOf(err))
		if event.Outcome == "" {
			event.Outcome = "ERROR"
		}
	} else if expired != nil {
		event.Expired = expired
		h.expired += *expired
	}
	result.Trace = append(result.Trace, event)

	h.logger.Debug("step completed", "seq", event.Seq, "op", step.Op, "outcome", event.Outcome)

	prefix := fmt.Sprintf("steps[%d] %s", i, step.Op)
	switch {
	case step.Expect == nil && err != nil:
		result.AddError(fmt.Sprintf("%s: unexpected error: %v", prefix, err))
	case step.Expect != nil && err == nil:
		result.AddError(fmt.Sprintf("%s: expected %s, got success", prefix, step.Expect.Error))
	case step.Expect != nil:
		if !strings.EqualFold(event.Outcome, step.Expect.Error) {
			result.AddError(fmt.Sprintf("%s: expected %s, got %v", prefix, step.Expect.Error, err))
			return
		}
		if step.Expect.Available != nil {
			de, _ := domain.AsError(err)
			if de == nil || de.Available != *step.Expect.Available {
				result.AddError(fmt.Sprintf("%s: expected available %d, got %v", prefix, *step.Expect.Available, err))
			}
		}
	}
}

// apply runs the engine call for step. For steps that expire orders it
// returns how many were removed.
func (h *Harness) apply(ctx context.Context, step Step) (*int, error) {
	a := step.Args
	switch step.Op {
	case OpCreateOrder:
		date, err := parseDate(a.Date)
		if err != nil {
			return nil, err
		}
		_, err = h.engine.CreateOrder(ctx, domain.OrderInput{ID: a.ID, CustomerName: a.Customer, OrderDate: date})
		return nil, err

	case OpUpdateOrder:
		date, err := parseDate(a.Date)
		if err != nil {
			return nil, err
		}
		_, err = h.engine.UpdateOrder(ctx, a.Order, domain.OrderInput{CustomerName: a.Customer, OrderDate: date})
		return nil, err

	case OpDeleteOrder:
		return nil, h.engine.DeleteOrder(ctx, a.Order)

	case OpAddPosition:
		_, err := h.engine.AddPosition(ctx, domain.PositionInput{
			ID: a.ID, OrderID: a.Order, ProductID: a.Product, Quantity: a.Quantity,
		})
		return nil, err

	case OpUpdatePosition:
		_, err := h.engine.UpdatePosition(ctx, a.Position, a.Quantity)
		return nil, err

	case OpDeletePosition:
		return nil, h.engine.DeletePosition(ctx, a.Position)

	case OpMovePosition:
		_, err := h.engine.MovePosition(ctx, a.Position, a.From, a.To)
		return nil, err

	case OpReplenish:
		changes, err := h.engine.ReplenishStock(ctx)
		if err != nil {
			return nil, err
		}
		h.recordReplenished(changes)
		return nil, nil

	case OpExpire:
		date, err := parseDate(a.Date)
		if err != nil {
			return nil, err
		}
		n, err := h.engine.ExpireOrdersBefore(ctx, date)
		if err != nil {
			return nil, err
		}
		return &n, nil

	case OpAdvance:
		date, err := parseDate(a.Date)
		if err != nil {
			return nil, err
		}
		res, err := h.timeline.Advance(ctx, date)
		if err != nil {
			return nil, err
		}
		h.recordReplenished(res.Replenished)
		return &res.ExpiredCount, nil

	case OpStartup:
		n, err := h.timeline.Startup(ctx)
		if err != nil {
			return nil, err
		}
		return &n, nil

	case OpPassDays:
		h.clock.AddDays(a.Days)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func (h *Harness) recordReplenished(changes []domain.StockChange) {
	for _, c := range changes {
		h.replenished[c.ProductID] += c.Delta
	}
}

// parseDate lets an empty date reach the engine so its validation reports
// it.
func parseDate(s string) (domain.Day, error) {
	if s == "" {
		return domain.Day{}, nil
	}
	d, err := domain.ParseDay(s)
	if err != nil {
		return domain.Day{}, domain.InvalidInput("%v", err)
	}
	return d, nil
}
