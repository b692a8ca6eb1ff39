package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrMalformedResponse = errors.New("malformed response")
)

type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.Code, e.Body)
}

// Client reads stock and product data from the storefront API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

type stockResponse struct {
	ID     int  `json:"id"`
	Amount *int `json:"amount"`
}

func (c *Client) Stock(ctx context.Context, productID int) (int, error) {
	var res stockResponse
	if err := c.get(ctx, fmt.Sprintf("/stock/%d", productID), &res); err != nil {
		return 0, err
	}
	if res.Amount == nil || *res.Amount < 0 {
		return 0, fmt.Errorf("%w: stock for product %d has no valid amount", ErrMalformedResponse, productID)
	}
	return *res.Amount, nil
}

func (c *Client) Product(ctx context.Context, productID int) (domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("GET %s: %w", url, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{URL: url, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrMalformedResponse, url, err)
	}
	return nil
}
