package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/store"
)

// Replenishment draws are uniform in [ReplenishMin, ReplenishMin+ReplenishSpan).
const (
	ReplenishMin  = 10
	ReplenishSpan = 40
)

// Rand is the source of replenishment draws.
type Rand interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// globalRand uses the math/rand/v2 top-level source, which is safe for
// concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Engine runs business operations against a store.
//
// Thread-safety: every method is safe for concurrent use; isolation between
// concurrent operations comes from the store's units and row locks.
type Engine struct {
	store  store.Store
	clock  Clock
	ids    IDGenerator
	rand   Rand
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the wall clock used for the current date.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDGenerator sets the generator for ids the caller leaves empty.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithRand sets the replenishment source.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine over st.
func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		clock:  SystemClock{},
		ids:    UUIDv7Generator{},
		rand:   globalRand{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the engine's store.
func (e *Engine) Store() store.Store {
	return e.store
}

// unit runs fn as one atomic unit and logs the outcome.
func (e *Engine) unit(ctx context.Context, op string, fn func(tx store.Tx) error) error {
	err := e.store.InTx(ctx, fn)
	if err == nil {
		e.logger.Debug("unit committed", "op", op)
		return nil
	}

	if kind := domain.KindOf(err); kind != "" {
		e.logger.Warn("unit rejected", "op", op, "kind", kind, "error", err)
	} else {
		e.logger.Error("unit failed", "op", op, "error", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Today returns the civil date of the wall clock, ignoring any virtual
// date.
func (e *Engine) Today() domain.Day {
	return e.today()
}

func (e *Engine) today() domain.Day {
	return domain.DayOf(e.clock.Now())
}

// currentDate is the later of today and the stored virtual date.
func (e *Engine) currentDate(ctx context.Context, tx store.Tx) (domain.Day, error) {
	return e.laterOfVirtual(tx.Calendar().VirtualDate(ctx))
}

// lockCurrentDate is currentDate, keeping the calendar locked until the
// unit ends so an advance cannot commit between the check and the write.
func (e *Engine) lockCurrentDate(ctx context.Context, tx store.Tx) (domain.Day, error) {
	return e.laterOfVirtual(tx.Calendar().LockVirtualDate(ctx))
}

func (e *Engine) laterOfVirtual(virtual domain.Day, ok bool, err error) (domain.Day, error) {
	today := e.today()
	if err != nil {
		return domain.Day{}, err
	}
	if !ok {
		return today, nil
	}
	return domain.Later(today, virtual), nil
}

// newID returns the caller's id after validating it, or a generated one.
func (e *Engine) newID(entity, id string) (string, error) {
	if id == "" {
		return e.ids.Generate(), nil
	}
	if !domain.ValidID(id) {
		return "", domain.InvalidInput("invalid %s id %q", entity, id)
	}
	return id, nil
}

func requireID(entity, id string) error {
	if id == "" {
		return domain.InvalidInput("%s id is required", entity)
	}
	return nil
}
