package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dwikikusuma/shoping-cart/internal/cart/app"
	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"golang.org/x/sync/errgroup"
)

type staticCatalog struct {
	stock map[int]int
}

func (c staticCatalog) Stock(ctx context.Context, productID int) (int, error) {
	lvl, ok := c.stock[productID]
	if !ok {
		return 0, errors.New("no such product")
	}
	return lvl, nil
}

func (c staticCatalog) Product(ctx context.Context, productID int) (domain.Product, error) {
	return domain.Product{ID: productID, Title: "Tênis"}, nil
}

type lockedSlot struct {
	mu   sync.Mutex
	last domain.Cart
}

func (s *lockedSlot) Load(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Clone(), nil
}

func (s *lockedSlot) Save(ctx context.Context, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = cart.Clone()
	return nil
}

func newTestStore(t *testing.T, stock map[int]int) (*app.Store, *lockedSlot) {
	t.Helper()
	catalog := staticCatalog{stock: stock}
	slot := &lockedSlot{}
	store, err := app.NewStore(context.Background(), slot, catalog, catalog)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store, slot
}

func TestCart_ConcurrentAddIncrement(t *testing.T) {
	const N = 100
	store, slot := newTestStore(t, map[int]int{7: N})

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			return store.AddProduct(ctx, 7)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddProduct failed: %v", err)
	}

	cart := store.Cart()
	if len(cart) != 1 {
		t.Fatalf("expected exactly 1 line, got %d: %+v", len(cart), cart)
	}
	if cart[0].Amount != N {
		t.Fatalf("expected amount=%d, got=%d", N, cart[0].Amount)
	}

	persisted, _ := slot.Load(context.Background())
	if len(persisted) != 1 || persisted[0].Amount != N {
		t.Fatalf("slot holds stale cart: %+v", persisted)
	}
}

func TestCart_ConcurrentAddNeverExceedsStock(t *testing.T) {
	const N = 50
	const stock = 10
	store, _ := newTestStore(t, map[int]int{7: stock})

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		outOfStock int
	)
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.AddProduct(context.Background(), 7)
			if errors.Is(err, domain.ErrOutOfStock) {
				mu.Lock()
				outOfStock++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if got := store.Cart().AmountOf(7); got != stock {
		t.Fatalf("expected amount=%d, got=%d", stock, got)
	}
	if outOfStock != N-stock {
		t.Fatalf("expected %d out of stock failures, got %d", N-stock, outOfStock)
	}
}

func TestCart_ConcurrentDistinctProductsKeepOneLineEach(t *testing.T) {
	const N = 20
	stock := make(map[int]int, N)
	for id := 1; id <= N; id++ {
		stock[id] = 1
	}
	store, _ := newTestStore(t, stock)

	g, ctx := errgroup.WithContext(context.Background())
	for id := 1; id <= N; id++ {
		g.Go(func() error {
			return store.AddProduct(ctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddProduct failed: %v", err)
	}

	if store.Size() != N {
		t.Fatalf("expected %d lines, got %d", N, store.Size())
	}
	for _, it := range store.Cart() {
		if it.Amount != 1 {
			t.Fatalf("product %d has amount %d", it.ID, it.Amount)
		}
	}
}
