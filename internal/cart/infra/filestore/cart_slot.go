package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
)

// CartSlot keeps the cart as a JSON file. Writes go to a temp file in the same
// directory and are renamed over the target.
type CartSlot struct {
	path string
}

func NewCartSlot(path string) *CartSlot {
	return &CartSlot{path: path}
}

func (s *CartSlot) Path() string { return s.path }

func (s *CartSlot) Load(ctx context.Context) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return nil, err
	}
	return domain.DecodeCart(raw)
}

func (s *CartSlot) Save(ctx context.Context, cart domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := domain.EncodeCart(cart)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cart-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
