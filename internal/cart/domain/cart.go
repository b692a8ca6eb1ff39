package domain

import (
	"encoding/json"
	"fmt"
)

// StorageKey is the slot the cart has always been kept under.
const StorageKey = "@RocketShoes:cart"

type Product struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

type LineItem struct {
	Product
	Amount int `json:"amount"`
}

// Cart is an ordered list of line items, in the order products were first added.
// Methods never modify the receiver; mutating helpers return a new Cart.
type Cart []LineItem

func (c Cart) Index(productID int) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) Contains(productID int) bool {
	return c.Index(productID) >= 0
}

// AmountOf returns the requested amount for productID, or 0 when absent.
func (c Cart) AmountOf(productID int) int {
	if i := c.Index(productID); i >= 0 {
		return c[i].Amount
	}
	return 0
}

func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Append returns a copy with p added at the end with amount 1.
func (c Cart) Append(p Product) Cart {
	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, LineItem{Product: p, Amount: 1})
}

// WithAmount returns a copy where productID has the given amount, keeping its position.
// The caller must check presence first; an absent id yields an unchanged copy.
func (c Cart) WithAmount(productID, amount int) Cart {
	out := c.Clone()
	if i := out.Index(productID); i >= 0 {
		out[i].Amount = amount
	}
	return out
}

// Without returns a copy with productID removed, preserving the order of the rest.
func (c Cart) Without(productID int) Cart {
	out := make(Cart, 0, len(c))
	for _, it := range c {
		if it.ID != productID {
			out = append(out, it)
		}
	}
	return out
}

// Normalize drops lines with amount < 1 and keeps only the first line per product id.
func (c Cart) Normalize() Cart {
	out := make(Cart, 0, len(c))
	seen := make(map[int]struct{}, len(c))
	for _, it := range c {
		if it.Amount < 1 {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

func (it LineItem) Subtotal() float64 {
	return it.Price * float64(it.Amount)
}

func (c Cart) Total() float64 {
	var total float64
	for _, it := range c {
		total += it.Subtotal()
	}
	return total
}

func EncodeCart(c Cart) ([]byte, error) {
	if c == nil {
		c = Cart{}
	}
	return json.Marshal(c)
}

func DecodeCart(b []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}
	return c.Normalize(), nil
}
