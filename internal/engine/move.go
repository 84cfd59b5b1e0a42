package engine

import (
	"context"
	"fmt"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/store"
)

// MoveResult describes where a moved position ended up.
type MoveResult struct {
	// Position is the destination position after the move: the moved
	// position itself, or the sibling it was merged into.
	Position domain.Position `json:"position"`

	// Merged is true when the destination already held the product and
	// the moved position was folded into it.
	Merged bool `json:"merged"`

	// RemovedPositionID is the id of the merged-away position.
	RemovedPositionID string `json:"removedPositionID,omitempty"`
}

// MovePosition transfers a position from srcOrderID to destOrderID.
//
// If the destination already has a position for the same product, the
// quantities are merged into that position and the moved one is deleted.
// Stock is never touched.
func (e *Engine) MovePosition(ctx context.Context, positionID, srcOrderID, destOrderID string) (MoveResult, error) {
	if err := requireID("position", positionID); err != nil {
		return MoveResult{}, err
	}
	if err := requireID("source order", srcOrderID); err != nil {
		return MoveResult{}, err
	}
	if err := requireID("destination order", destOrderID); err != nil {
		return MoveResult{}, err
	}
	if srcOrderID == destOrderID {
		return MoveResult{}, domain.InvalidInput("source and destination order are both %s", srcOrderID)
	}

	var res MoveResult
	err := e.unit(ctx, "move position", func(tx store.Tx) error {
		first, second := srcOrderID, destOrderID
		if second < first {
			first, second = second, first
		}
		for _, id := range []string{first, second} {
			if _, err := tx.Orders().Lock(ctx, id); err != nil {
				return err
			}
		}

		p, err := tx.Positions().Lock(ctx, positionID)
		if err != nil {
			return err
		}
		if p.OrderID != srcOrderID {
			nf := domain.NotFound("position", positionID)
			nf.Message = fmt.Sprintf("position %s not found in order %s", positionID, srcOrderID)
			return nf
		}

		sibling, ok, err := tx.Positions().FindByOrderAndProduct(ctx, destOrderID, p.ProductID)
		if err != nil {
			return err
		}

		if ok {
			if sibling.Quantity > domain.MaxQuantity-p.Quantity {
				return domain.InvalidInput("merged quantity of %s would exceed %d", p.ProductID, domain.MaxQuantity)
			}
			sibling.Quantity += p.Quantity
			if err := tx.Positions().SetQuantity(ctx, sibling.ID, sibling.Quantity); err != nil {
				return err
			}
			if err := tx.Orders().DetachPosition(ctx, srcOrderID, p.ID); err != nil {
				return err
			}
			if err := tx.Positions().Delete(ctx, p.ID); err != nil {
				return err
			}
			res = MoveResult{Position: sibling, Merged: true, RemovedPositionID: p.ID}
			return nil
		}

		if err := tx.Positions().SetOrder(ctx, p.ID, destOrderID); err != nil {
			return err
		}
		if err := tx.Orders().DetachPosition(ctx, srcOrderID, p.ID); err != nil {
			return err
		}
		if err := tx.Orders().AttachPosition(ctx, destOrderID, p.ID); err != nil {
			return err
		}
		p.OrderID = destOrderID
		res = MoveResult{Position: p}
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}
	return res, nil
}
