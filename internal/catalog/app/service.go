package app

import (
	"context"
	"errors"

	"github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	products ProductRepo
	stock    StockRepo
}

func NewService(products ProductRepo, stock StockRepo) *Service {
	return &Service{
		products: products,
		stock:    stock,
	}
}

func (s *Service) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, ErrInvalidInput
	}
	return s.products.Get(ctx, id)
}

func (s *Service) GetStock(ctx context.Context, id int) (domain.Stock, error) {
	if id <= 0 {
		return domain.Stock{}, ErrInvalidInput
	}
	return s.stock.Stock(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.products.List(ctx, limit)
}
