package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dwikikusuma/shoping-cart/internal/cart/app"
)

// Log writes notifications to a structured logger.
type Log struct {
	log *slog.Logger
}

func NewLog(l *slog.Logger) *Log {
	if l == nil {
		l = slog.Default()
	}
	return &Log{log: l}
}

func (n *Log) Notify(ctx context.Context, note app.Notification) error {
	n.log.LogAttrs(ctx, slog.LevelWarn, note.Message,
		slog.String("notification_id", note.ID),
		slog.String("kind", string(note.Kind)),
		slog.Int("product_id", note.ProductID),
	)
	return nil
}

// Fanout delivers to every notifier, even when an earlier one fails.
type Fanout []app.Notifier

func (f Fanout) Notify(ctx context.Context, note app.Notification) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
