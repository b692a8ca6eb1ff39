package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
)

type StockReader interface {
	Stock(ctx context.Context, productID int) (int, error)
}

type ProductReader interface {
	Product(ctx context.Context, productID int) (domain.Product, error)
}

// Slot is the durable place the cart survives restarts in.
// Load returns an empty cart and no error when nothing was stored yet.
type Slot interface {
	Load(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Recorder receives operation outcomes for metrics.
type Recorder interface {
	ObserveOperation(op, outcome string, elapsed time.Duration)
	ObservePersist(ok bool)
}
