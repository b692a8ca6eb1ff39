package redis

import (
	"context"
	"errors"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/redis/go-redis/v9"
)

// CartSlot keeps the whole cart as one JSON value under a single key.
type CartSlot struct {
	client redis.Cmdable
	key    string
}

func NewCartSlot(client redis.Cmdable, key string) *CartSlot {
	if key == "" {
		key = domain.StorageKey
	}
	return &CartSlot{
		client: client,
		key:    key,
	}
}

func (s *CartSlot) Load(ctx context.Context) (domain.Cart, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return nil, err
	}
	return domain.DecodeCart([]byte(raw))
}

func (s *CartSlot) Save(ctx context.Context, cart domain.Cart) error {
	payload, err := domain.EncodeCart(cart)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, string(payload), 0).Err()
}
