package engine_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"pgregory.net/rapid"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/engine"
	"github.com/roach88/stockroom/internal/store/sqlite"
	"github.com/roach88/stockroom/internal/testutil"
)

var (
	propProducts = []string{"prod-a", "prod-b", "prod-c"}
	propOrders   = []string{"ord-1", "ord-2", "ord-3", "ord-4"}
)

// TestProperty_RandomOperationSequences runs random operation sequences
// and checks after every step that
//   - stock plus allocations per product is unchanged (except replenish,
//     which may only grow it)
//   - no stock is negative and membership agrees in both directions
//   - a rejected operation leaves the state exactly as it was
func TestProperty_RandomOperationSequences(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		st, err := sqlite.Open(":memory:")
		if err != nil {
			rt.Fatalf("open: %v", err)
		}
		defer st.Close()

		eng := engine.New(st,
			engine.WithClock(testutil.NewFixedClockOn(today)),
			engine.WithIDGenerator(testutil.NewSequenceGenerator("pos")),
			engine.WithRand(testutil.FixedRand{Value: rapid.IntRange(0, 39).Draw(rt, "draw")}),
			engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)

		for _, id := range propProducts {
			stock := rapid.IntRange(0, 20).Draw(rt, "stock-"+id)
			if _, err := eng.CreateProduct(ctx, domain.ProductInput{ID: id, Name: id, StockQuantity: stock}); err != nil {
				rt.Fatalf("create product: %v", err)
			}
		}
		for i, id := range propOrders {
			date := domain.MustParseDay(today).AddDays(i % 3)
			if _, err := eng.CreateOrder(ctx, domain.OrderInput{ID: id, CustomerName: id, OrderDate: date}); err != nil {
				rt.Fatalf("create order: %v", err)
			}
		}

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			before, err := testutil.ReadState(ctx, st)
			if err != nil {
				rt.Fatalf("read state: %v", err)
			}

			op, grows, opErr := randomOp(ctx, rt, eng, before)

			after, err := testutil.ReadState(ctx, st)
			if err != nil {
				rt.Fatalf("read state: %v", err)
			}
			if err := after.CheckIntegrity(); err != nil {
				rt.Fatalf("step %d (%s): integrity: %v", i, op, err)
			}
			if opErr != nil {
				if domain.KindOf(opErr) == "" {
					rt.Fatalf("step %d (%s): unclassified error: %v", i, op, opErr)
				}
				if err := testutil.CheckConservation(before, after, false); err != nil {
					rt.Fatalf("step %d (%s) rejected but changed totals: %v", i, op, err)
				}
				if fmt.Sprint(before) != fmt.Sprint(after) {
					rt.Fatalf("step %d (%s) rejected but wrote: %v", i, op, opErr)
				}
				continue
			}
			if err := testutil.CheckConservation(before, after, grows); err != nil {
				rt.Fatalf("step %d (%s): %v", i, op, err)
			}
		}
	})
}

func randomOp(ctx context.Context, rt *rapid.T, eng *engine.Engine, s testutil.State) (string, bool, error) {
	positionID := func() string {
		if len(s.Positions) == 0 || rapid.IntRange(0, 9).Draw(rt, "ghost") == 0 {
			return "pos-missing"
		}
		return rapid.SampledFrom(s.Positions).Draw(rt, "position").ID
	}
	orderID := func(label string) string {
		return rapid.SampledFrom(propOrders).Draw(rt, label)
	}
	qty := func() int { return rapid.IntRange(-1, 12).Draw(rt, "qty") }

	switch rapid.IntRange(0, 6).Draw(rt, "op") {
	case 0:
		_, err := eng.AddPosition(ctx, domain.PositionInput{
			OrderID:   orderID("order"),
			ProductID: rapid.SampledFrom(propProducts).Draw(rt, "product"),
			Quantity:  qty(),
		})
		return "add", false, err
	case 1:
		_, err := eng.UpdatePosition(ctx, positionID(), qty())
		return "update", false, err
	case 2:
		return "delete position", false, eng.DeletePosition(ctx, positionID())
	case 3:
		id := positionID()
		src := orderID("src")
		if p, ok := s.Position(id); ok && rapid.Bool().Draw(rt, "true-src") {
			src = p.OrderID
		}
		_, err := eng.MovePosition(ctx, id, src, orderID("dest"))
		return "move", false, err
	case 4:
		_, err := eng.ReplenishStock(ctx)
		return "replenish", true, err
	case 5:
		cutoff := domain.MustParseDay(today).AddDays(rapid.IntRange(0, 3).Draw(rt, "cutoff"))
		_, err := eng.ExpireOrdersBefore(ctx, cutoff)
		return "expire", false, err
	default:
		return "delete order", false, eng.DeleteOrder(ctx, orderID("order"))
	}
}
