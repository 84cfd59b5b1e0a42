package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stockroom/internal/domain"
)

// NewPositionCommand creates the position command group.
func NewPositionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position",
		Short: "Add, update, delete and move order positions",
	}
	cmd.AddCommand(newPositionAddCommand(rootOpts))
	cmd.AddCommand(newPositionUpdateCommand(rootOpts))
	cmd.AddCommand(newPositionDeleteCommand(rootOpts))
	cmd.AddCommand(newPositionMoveCommand(rootOpts))
	return cmd
}

func newPositionAddCommand(rootOpts *RootOptions) *cobra.Command {
	var in domain.PositionInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a position to an order, reserving its quantity from stock",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			pos, err := s.engine.AddPosition(cmd.Context(), in)
			if err != nil {
				return err
			}
			return s.out.Success(pos, renderPosition(pos))
		}),
	}
	cmd.Flags().StringVar(&in.ID, "id", "", "position id (generated when empty)")
	cmd.Flags().StringVar(&in.OrderID, "order", "", "owning order id (required)")
	cmd.Flags().StringVar(&in.ProductID, "product", "", "product id (required)")
	cmd.Flags().IntVar(&in.Quantity, "qty", 0, "quantity to reserve (required)")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func newPositionUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "update <position-id>",
		Short: "Change a position's quantity",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			pos, err := s.engine.UpdatePosition(cmd.Context(), args[0], qty)
			if err != nil {
				return err
			}
			return s.out.Success(pos, renderPosition(pos))
		}),
	}
	cmd.Flags().IntVar(&qty, "qty", 0, "new quantity (required)")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func newPositionDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <position-id>",
		Short: "Delete a position, returning its quantity to stock",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.engine.DeletePosition(cmd.Context(), args[0]); err != nil {
				return err
			}
			return s.out.Success(map[string]string{"positionID": args[0]}, fmt.Sprintf("Deleted position %s\n", args[0]))
		}),
	}
}

func newPositionMoveCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "move <position-id>",
		Short: "Move a position to another order, merging with a sibling for the same product",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			res, err := s.engine.MovePosition(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			text := renderPosition(res.Position)
			if res.Merged {
				text = fmt.Sprintf("merged %s into %s", res.RemovedPositionID, text)
			}
			return s.out.Success(res, text)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "source order id (required)")
	cmd.Flags().StringVar(&to, "to", "", "destination order id (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
