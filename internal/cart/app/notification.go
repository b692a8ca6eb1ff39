package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
)

type Notification struct {
	ID        string             `json:"id"`
	Kind      domain.FailureKind `json:"kind"`
	Message   string             `json:"message"`
	ProductID int                `json:"product_id"`
	At        time.Time          `json:"at"`
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string, time.Duration) {}
func (nopRecorder) ObservePersist(bool)                            {}
