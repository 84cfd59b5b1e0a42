package engine

import (
	"context"

	"github.com/roach88/stockroom/internal/domain"
	"github.com/roach88/stockroom/internal/ledger"
	"github.com/roach88/stockroom/internal/store"
)

// ReplenishStock adds an independent draw in [ReplenishMin,
// ReplenishMin+ReplenishSpan) to every product's stock, in one unit.
func (e *Engine) ReplenishStock(ctx context.Context) ([]domain.StockChange, error) {
	var changes []domain.StockChange
	err := e.unit(ctx, "replenish stock", func(tx store.Tx) error {
		var err error
		changes, err = e.replenish(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (e *Engine) replenish(ctx context.Context, tx store.Tx) ([]domain.StockChange, error) {
	products, err := tx.Products().LockAll(ctx)
	if err != nil {
		return nil, err
	}

	l := ledger.For(tx)
	changes := make([]domain.StockChange, 0, len(products))
	for _, p := range products {
		c, err := l.Replenish(ctx, p.ID, ReplenishMin+e.rand.IntN(ReplenishSpan))
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func validateProduct(in domain.ProductInput) (string, error) {
	name := domain.NormalizeName(in.Name)
	if !domain.ValidName(name) {
		return "", domain.InvalidInput("product name is required (1-%d characters)", domain.MaxNameLength)
	}
	if in.StockQuantity < 0 {
		return "", domain.InvalidInput("stock quantity must not be negative, got %d", in.StockQuantity)
	}
	if in.StockQuantity > domain.MaxQuantity {
		return "", domain.InvalidInput("stock quantity must not exceed %d, got %d", domain.MaxQuantity, in.StockQuantity)
	}
	return name, nil
}

// CreateProduct adds a product with its opening stock. Opening stock is
// the product's starting balance, not a ledger mutation.
func (e *Engine) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	name, err := validateProduct(in)
	if err != nil {
		return domain.Product{}, err
	}
	id, err := e.newID("product", in.ID)
	if err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{ID: id, Name: name, StockQuantity: in.StockQuantity}
	err = e.unit(ctx, "create product", func(tx store.Tx) error {
		exists, err := productExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if exists {
			return domain.InvalidInput("product %s already exists", id)
		}
		return tx.Products().Insert(ctx, p)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// SeedResult reports what SeedProducts did.
type SeedResult struct {
	Created []domain.Product `json:"created"`
	Skipped []string         `json:"skipped"`
}

// SeedProducts creates every product of a catalog in one unit. Products
// whose id already exists are skipped and left untouched.
func (e *Engine) SeedProducts(ctx context.Context, catalog []domain.ProductInput) (SeedResult, error) {
	batch := make([]domain.Product, 0, len(catalog))
	seen := make(map[string]bool, len(catalog))
	for i, in := range catalog {
		name, err := validateProduct(in)
		if err != nil {
			return SeedResult{}, domain.InvalidInput("product #%d: %s", i+1, domainMessage(err))
		}
		id, err := e.newID("product", in.ID)
		if err != nil {
			return SeedResult{}, err
		}
		if seen[id] {
			return SeedResult{}, domain.InvalidInput("product id %s listed twice", id)
		}
		seen[id] = true
		batch = append(batch, domain.Product{ID: id, Name: name, StockQuantity: in.StockQuantity})
	}

	res := SeedResult{Created: []domain.Product{}, Skipped: []string{}}
	err := e.unit(ctx, "seed products", func(tx store.Tx) error {
		for _, p := range batch {
			exists, err := productExists(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			if exists {
				res.Skipped = append(res.Skipped, p.ID)
				continue
			}
			if err := tx.Products().Insert(ctx, p); err != nil {
				return err
			}
			res.Created = append(res.Created, p)
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}

func productExists(ctx context.Context, tx store.Tx, id string) (bool, error) {
	_, err := tx.Products().Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case domain.IsKind(err, domain.KindNotFound):
		return false, nil
	default:
		return false, err
	}
}

func domainMessage(err error) string {
	if de, ok := domain.AsError(err); ok {
		return de.Message
	}
	return err.Error()
}

// ListProducts returns every product sorted by name, then id.
func (e *Engine) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := e.unit(ctx, "list products", func(tx store.Tx) error {
		ps, err := tx.Products().List(ctx)
		if err != nil {
			return err
		}
		out = domain.SortProducts(ps)
		return nil
	})
	return out, err
}
