package app

import (
	"context"

	"github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
)

type ProductRepo interface {
	Get(ctx context.Context, id int) (domain.Product, error)
	List(ctx context.Context, limit int) ([]domain.Product, error)
}

type StockRepo interface {
	Stock(ctx context.Context, id int) (domain.Stock, error)
}
