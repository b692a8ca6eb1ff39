package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type Availability struct {
	ProductID  int
	Requested  int
	InStock    int
	Sufficient bool
}

// CheckAvailability looks up current stock for every line, in cart order.
// It never changes the cart.
func (s *Store) CheckAvailability(ctx context.Context) ([]Availability, error) {
	items := s.Cart()
	out := make([]Availability, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			stock, err := s.stock.Stock(ctx, it.ID)
			if err != nil {
				return fmt.Errorf("stock for product %d: %w", it.ID, err)
			}
			out[idx] = Availability{
				ProductID:  it.ID,
				Requested:  it.Amount,
				InStock:    stock,
				Sufficient: it.Amount <= stock,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
