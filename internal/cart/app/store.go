package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/google/uuid"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"

	outcomeOK      = "ok"
	outcomeIgnored = "ignored"
	outcomeError   = "error"
)

type UpdateAmount struct {
	ProductID int
	Amount    int
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithMaxConcurrent bounds the stock lookups CheckAvailability runs at once.
func WithMaxConcurrent(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store owns the shopping cart. Every mutation is checked against fresh stock,
// committed as a new Cart value and then written to the slot.
//
// Network calls run outside the lock. The commit step re-applies the change to
// whatever is committed at that moment, so concurrent operations compose.
type Store struct {
	stock         StockReader
	products      ProductReader
	slot          Slot
	notifier      Notifier
	recorder      Recorder
	log           *slog.Logger
	now           func() time.Time
	maxConcurrent int

	mu      sync.RWMutex
	cart    domain.Cart
	version uint64
	dirty   bool
	subs    map[uint64]func(domain.Cart)
	nextSub uint64

	// serializes slot writes so an older snapshot never lands after a newer one
	persistMu sync.Mutex
}

func NewStore(ctx context.Context, slot Slot, stock StockReader, products ProductReader, opts ...Option) (*Store, error) {
	s := &Store{
		stock:         stock,
		products:      products,
		slot:          slot,
		notifier:      nopNotifier{},
		recorder:      nopRecorder{},
		log:           slog.Default(),
		now:           time.Now,
		maxConcurrent: 10,
		subs:          make(map[uint64]func(domain.Cart)),
	}
	for _, opt := range opts {
		opt(s)
	}

	cart, err := slot.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrCorruptCart):
		s.log.Warn("stored cart unreadable, starting empty", slog.Any("err", err))
		cart = nil
	case err != nil:
		return nil, fmt.Errorf("load cart: %w", err)
	}
	s.cart = cart.Normalize()

	return s, nil
}

// Cart returns a copy of the committed cart.
func (s *Store) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// Size is the number of distinct products in the cart.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cart)
}

// Dirty reports whether the committed cart has not reached the slot yet.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Subscribe registers fn to receive a copy of the cart after every commit.
// The returned func unregisters it and is safe to call more than once.
func (s *Store) Subscribe(fn func(domain.Cart)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) AddProduct(ctx context.Context, productID int) error {
	start := s.now()
	err := s.addProduct(ctx, productID)
	s.finish(ctx, opAdd, productID, start, err)
	return err
}

func (s *Store) RemoveProduct(ctx context.Context, productID int) error {
	start := s.now()
	err := s.removeProduct(ctx, productID)
	s.finish(ctx, opRemove, productID, start, err)
	return err
}

// UpdateProductAmount sets the amount of a product already in the cart.
// Amounts <= 0 are ignored without error or notification.
func (s *Store) UpdateProductAmount(ctx context.Context, req UpdateAmount) error {
	if req.Amount <= 0 {
		s.recorder.ObserveOperation(opUpdate, outcomeIgnored, 0)
		return nil
	}
	start := s.now()
	err := s.updateProductAmount(ctx, req)
	s.finish(ctx, opUpdate, req.ProductID, start, err)
	return err
}

func (s *Store) addProduct(ctx context.Context, productID int) error {
	stock, err := s.stock.Stock(ctx, productID)
	if err != nil {
		return fmt.Errorf("%w: stock for product %d: %w", domain.ErrAddFailed, productID, err)
	}

	current := s.amountOf(productID)
	if current+1 > stock {
		return outOfStock(productID, current+1, stock)
	}

	var product *domain.Product
	if current == 0 {
		p, err := s.products.Product(ctx, productID)
		if err != nil {
			return fmt.Errorf("%w: product %d: %w", domain.ErrAddFailed, productID, err)
		}
		if p.ID != productID {
			return fmt.Errorf("%w: asked for product %d, catalog returned %d", domain.ErrAddFailed, productID, p.ID)
		}
		product = &p
	}

	return s.commit(ctx, func(c domain.Cart) (domain.Cart, error) {
		existing := c.AmountOf(productID)
		if existing+1 > stock {
			return nil, outOfStock(productID, existing+1, stock)
		}
		if existing > 0 {
			return c.WithAmount(productID, existing+1), nil
		}
		if product == nil {
			return nil, fmt.Errorf("%w: product %d left the cart while adding", domain.ErrAddFailed, productID)
		}
		return c.Append(*product), nil
	})
}

func (s *Store) removeProduct(ctx context.Context, productID int) error {
	return s.commit(ctx, func(c domain.Cart) (domain.Cart, error) {
		if !c.Contains(productID) {
			return nil, fmt.Errorf("%w: %w: %d", domain.ErrRemoveFailed, domain.ErrNotInCart, productID)
		}
		return c.Without(productID), nil
	})
}

func (s *Store) updateProductAmount(ctx context.Context, req UpdateAmount) error {
	stock, err := s.stock.Stock(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("%w: stock for product %d: %w", domain.ErrUpdateFailed, req.ProductID, err)
	}
	if req.Amount > stock {
		return outOfStock(req.ProductID, req.Amount, stock)
	}

	return s.commit(ctx, func(c domain.Cart) (domain.Cart, error) {
		if !c.Contains(req.ProductID) {
			return nil, fmt.Errorf("%w: %w: %d", domain.ErrUpdateFailed, domain.ErrNotInCart, req.ProductID)
		}
		return c.WithAmount(req.ProductID, req.Amount), nil
	})
}

func (s *Store) amountOf(productID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.AmountOf(productID)
}

// commit swaps in the cart produced by apply, then persists and fans out.
// Nothing changes when apply fails.
func (s *Store) commit(ctx context.Context, apply func(domain.Cart) (domain.Cart, error)) error {
	s.mu.Lock()
	next, err := apply(s.cart)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.cart = next
	s.version++
	s.dirty = true
	subs := make([]func(domain.Cart), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if err := s.Flush(ctx); err != nil {
		s.log.Error("persist cart failed", slog.Any("err", err))
	}

	for _, fn := range subs {
		fn(next.Clone())
	}
	return nil
}

// Flush writes the committed cart to the slot if it changed since the last
// successful write.
func (s *Store) Flush(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	if !s.dirty {
		s.mu.RUnlock()
		return nil
	}
	snapshot, version := s.cart, s.version
	s.mu.RUnlock()

	if err := s.slot.Save(ctx, snapshot); err != nil {
		s.recorder.ObservePersist(false)
		return fmt.Errorf("save cart: %w", err)
	}
	s.recorder.ObservePersist(true)

	s.mu.Lock()
	if s.version == version {
		s.dirty = false
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) finish(ctx context.Context, op string, productID int, start time.Time, err error) {
	elapsed := s.now().Sub(start)
	if err == nil {
		s.recorder.ObserveOperation(op, outcomeOK, elapsed)
		s.log.Debug("cart updated", slog.String("op", op), slog.Int("product_id", productID))
		return
	}

	kind, ok := domain.KindOf(err)
	if !ok {
		s.recorder.ObserveOperation(op, outcomeError, elapsed)
		s.log.Error("cart operation failed", slog.String("op", op), slog.Int("product_id", productID), slog.Any("err", err))
		return
	}
	s.recorder.ObserveOperation(op, string(kind), elapsed)
	s.log.Warn("cart operation failed",
		slog.String("op", op),
		slog.Int("product_id", productID),
		slog.String("kind", string(kind)),
		slog.Any("err", err),
	)

	n := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   kind.Message(),
		ProductID: productID,
		At:        s.now().UTC(),
	}
	if nerr := s.notifier.Notify(context.WithoutCancel(ctx), n); nerr != nil {
		s.log.Error("notify failed", slog.String("kind", string(kind)), slog.Any("err", nerr))
	}
}

func outOfStock(productID, want, stock int) error {
	return fmt.Errorf("%w: product %d wants %d, stock %d", domain.ErrOutOfStock, productID, want, stock)
}
