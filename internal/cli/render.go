package cli

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/roach88/stockroom/internal/domain"
)

func renderOrder(o domain.Order) string {
	return fmt.Sprintf("order %s  %s  %s  positions=%d\n", o.ID, o.OrderDate, o.CustomerName, len(o.PositionIDs))
}

func renderPosition(p domain.Position) string {
	return fmt.Sprintf("position %s  order=%s  product=%s  quantity=%d\n", p.ID, p.OrderID, p.ProductID, p.Quantity)
}

func renderOrderViews(orders []domain.OrderView) string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tCUSTOMER\t")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", o.ID, o.OrderDate, o.CustomerName)
		for _, p := range o.Positions {
			fmt.Fprintf(tw, "  %s\t%s\tx%d\t\n", p.ID, p.ProductName, p.Quantity)
		}
	}
	tw.Flush()
	return buf.String()
}

func renderProducts(products []domain.Product) string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tSTOCK\t")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%d\t\n", p.ID, p.Name, p.StockQuantity)
	}
	tw.Flush()
	return buf.String()
}

func renderSnapshot(s domain.Snapshot) string {
	return fmt.Sprintf("current date %s\n\n%s\n%s", s.CurrentDate, renderOrderViews(s.Orders), renderProducts(s.Products))
}
