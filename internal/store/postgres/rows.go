package postgres

import (
	"fmt"

	"github.com/roach88/stockroom/internal/domain"
)

type productRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	StockQuantity int    `db:"stock_quantity"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{ID: r.ID, Name: r.Name, StockQuantity: r.StockQuantity}
}

type orderRow struct {
	ID           string `db:"id"`
	CustomerName string `db:"customer_name"`
	OrderDate    string `db:"order_date"`
}

func (r orderRow) toDomain(positionIDs []string) (domain.Order, error) {
	d, err := domain.ParseDay(r.OrderDate)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: stored date: %w", r.ID, err)
	}
	if positionIDs == nil {
		positionIDs = []string{}
	}
	return domain.Order{
		ID:           r.ID,
		CustomerName: r.CustomerName,
		OrderDate:    d,
		PositionIDs:  positionIDs,
	}, nil
}

type positionRow struct {
	ID        string `db:"id"`
	ProductID string `db:"product_id"`
	Quantity  int    `db:"quantity"`
	OrderID   string `db:"order_id"`
}

func (r positionRow) toDomain() domain.Position {
	return domain.Position{ID: r.ID, ProductID: r.ProductID, Quantity: r.Quantity, OrderID: r.OrderID}
}

type membershipRow struct {
	ID      string `db:"id"`
	OrderID string `db:"order_id"`
}
