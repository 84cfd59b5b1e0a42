package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stockroom/internal/domain"
)

// NewAdvanceCommand creates the advance command.
func NewAdvanceCommand(rootOpts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance the virtual date, expiring old orders and restocking",
		Long: `Move the virtual current date forward. Every order dated before the new
date is deleted with its positions returned to stock, then every product
is replenished. The date may not move backwards.

Example:
  stockroom advance --date 2025-03-15`,
		Args: cobra.NoArgs,
		RunE: withSession(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			day, err := domain.ParseDay(date)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --date", err)
			}
			res, err := s.timeline.Advance(cmd.Context(), day)
			if err != nil {
				return err
			}
			text := fmt.Sprintf("%s\n\n%s\n%s", res.Message, renderOrderViews(res.Orders), renderProducts(res.Products))
			return s.out.Success(res, text)
		}),
	}

	cmd.Flags().StringVar(&date, "date", "", "new current date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire orders dated before today",
		Long: `Run the startup sweep on its own: delete every order dated before the
wall-clock date and return its positions to stock.`,
		Args: cobra.NoArgs,
		RunE: withSession(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			n, err := s.timeline.Startup(cmd.Context())
			if err != nil {
				return err
			}
			return s.out.Success(map[string]int{"expiredCount": n}, fmt.Sprintf("Removed %d expired orders\n", n))
		}),
	}
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print every order and product",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			snap, err := s.engine.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return s.out.Success(snap, renderSnapshot(snap))
		}),
	}
}
