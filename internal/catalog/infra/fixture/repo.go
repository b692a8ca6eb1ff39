package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dwikikusuma/shoping-cart/internal/catalog/app"
	"github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
	"gopkg.in/yaml.v3"
)

type document struct {
	Products []domain.Product `json:"products" yaml:"products"`
	Stock    []domain.Stock   `json:"stock" yaml:"stock"`
}

// Repo serves products and stock from a file read once at startup.
// It is read-only, so concurrent use needs no locking.
type Repo struct {
	products []domain.Product
	byID     map[int]int
	stock    map[int]domain.Stock
}

// Load reads a catalog file. Files ending in .json are decoded as JSON,
// anything else as YAML.
func Load(path string) (*Repo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var doc document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &doc)
	default:
		err = yaml.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return New(doc.Products, doc.Stock)
}

func New(products []domain.Product, stock []domain.Stock) (*Repo, error) {
	r := &Repo{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
		stock:    make(map[int]domain.Stock, len(stock)),
	}
	for _, p := range products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("product %q: id must be positive", p.Title)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %d listed twice", p.ID)
		}
		r.byID[p.ID] = len(r.products)
		r.products = append(r.products, p)
	}
	for _, s := range stock {
		if s.Amount < 0 {
			return nil, fmt.Errorf("stock %d: negative amount %d", s.ID, s.Amount)
		}
		r.stock[s.ID] = s
	}
	return r, nil
}

func (r *Repo) Get(ctx context.Context, id int) (domain.Product, error) {
	idx, ok := r.byID[id]
	if !ok {
		return domain.Product{}, app.ErrNotFound
	}
	return r.products[idx], nil
}

func (r *Repo) List(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit > len(r.products) {
		limit = len(r.products)
	}
	out := make([]domain.Product, limit)
	copy(out, r.products[:limit])
	return out, nil
}

func (r *Repo) Stock(ctx context.Context, id int) (domain.Stock, error) {
	s, ok := r.stock[id]
	if !ok {
		return domain.Stock{}, app.ErrNotFound
	}
	return s, nil
}
