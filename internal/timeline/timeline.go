// Package timeline drives the virtual calendar: the expiry sweep run once
// at startup and the daily advance that expires old orders and restocks.
package timeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/engine"
)

// Result is the outcome of one advance together with the state it left.
type Result struct {
	Message      string               `json:"message"`
	ExpiredCount int                  `json:"expiredCount"`
	Date         domain.Day           `json:"date"`
	Replenished  []domain.StockChange `json:"replenished"`
	Orders       []domain.OrderView   `json:"orders"`
	Products     []domain.Product     `json:"products"`
}

// Orchestrator sequences calendar work on top of an engine.
type Orchestrator struct {
	eng    *engine.Engine
	logger *slog.Logger
}

// New creates an Orchestrator. A nil logger means slog.Default().
func New(eng *engine.Engine, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{eng: eng, logger: logger}
}

// Startup expires every order dated before the wall-clock date. It is run
// once before the service accepts requests.
func (o *Orchestrator) Startup(ctx context.Context) (int, error) {
	today := o.eng.Today()
	n, err := o.eng.ExpireOrdersBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("startup sweep: %w", err)
	}
	if n > 0 {
		o.logger.Info("removed expired orders on startup", "count", n, "date", today)
	}
	return n, nil
}

// Advance moves the calendar to day and returns the state the advance
// committed.
func (o *Orchestrator) Advance(ctx context.Context, day domain.Day) (Result, error) {
	adv, err := o.eng.Advance(ctx, day)
	if err != nil {
		return Result{}, err
	}

	replenished := adv.Replenished
	if replenished == nil {
		replenished = []domain.StockChange{}
	}
	return Result{
		Message:      Message(adv.ExpiredCount),
		ExpiredCount: adv.ExpiredCount,
		Date:         adv.Date,
		Replenished:  replenished,
		Orders:       adv.State.Orders,
		Products:     adv.State.Products,
	}, nil
}

// Message is the summary line reported for an advance.
func Message(expired int) string {
	return fmt.Sprintf("Processed %d expired orders and replenished stock", expired)
}
