package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dwikikusuma/shoping-cart/internal/cart/app"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of *amqp.Channel the notifier needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Notifier publishes cart failure notifications so a display service can toast them.
type Notifier struct {
	ch       Publisher
	exchange string
}

func NewNotifier(ch Publisher, exchange string) *Notifier {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Notifier{ch: ch, exchange: exchange}
}

// RoutingKey is cart.<kind>, e.g. cart.out_of_stock.
func RoutingKey(n app.Notification) string {
	return fmt.Sprintf("cart.%s", n.Kind)
}

func (p *Notifier) Notify(ctx context.Context, n app.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("could not marshal notification: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		p.exchange,    // exchange
		RoutingKey(n), // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   n.ID,
			Timestamp:   n.At,
			Body:        body,
		},
	)
}
