package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stockroom/internal/domain"
)

type orderFlags struct {
	id       string
	customer string
	date     string
}

func (f *orderFlags) input() (domain.OrderInput, error) {
	day, err := domain.ParseDay(f.date)
	if err != nil {
		return domain.OrderInput{}, WrapExitError(ExitCommandError, "invalid --date", err)
	}
	return domain.OrderInput{ID: f.id, CustomerName: f.customer, OrderDate: day}, nil
}

// NewOrderCommand creates the order command group.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Create, update and delete orders",
	}
	cmd.AddCommand(newOrderCreateCommand(rootOpts))
	cmd.AddCommand(newOrderUpdateCommand(rootOpts))
	cmd.AddCommand(newOrderDeleteCommand(rootOpts))
	return cmd
}

func newOrderCreateCommand(rootOpts *RootOptions) *cobra.Command {
	f := &orderFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty order",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			order, err := s.engine.CreateOrder(cmd.Context(), in)
			if err != nil {
				return err
			}
			return s.out.Success(order, renderOrder(order))
		}),
	}
	cmd.Flags().StringVar(&f.id, "id", "", "order id (generated when empty)")
	cmd.Flags().StringVar(&f.customer, "customer", "", "customer name (required)")
	cmd.Flags().StringVar(&f.date, "date", "", "order date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newOrderUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	f := &orderFlags{}
	cmd := &cobra.Command{
		Use:   "update <order-id>",
		Short: "Replace an order's customer name and date",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			order, err := s.engine.UpdateOrder(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return s.out.Success(order, renderOrder(order))
		}),
	}
	cmd.Flags().StringVar(&f.customer, "customer", "", "customer name (required)")
	cmd.Flags().StringVar(&f.date, "date", "", "order date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newOrderDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <order-id>",
		Short: "Delete an order, returning its positions to stock",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.engine.DeleteOrder(cmd.Context(), args[0]); err != nil {
				return err
			}
			return s.out.Success(map[string]string{"orderID": args[0]}, fmt.Sprintf("Deleted order %s\n", args[0]))
		}),
	}
}
