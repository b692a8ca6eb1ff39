package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dwikikusuma/shoping-cart/internal/cart/app"
	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/internal/cart/infra/filestore"
	"github.com/dwikikusuma/shoping-cart/internal/cart/infra/httpapi"
	catalogapp "github.com/dwikikusuma/shoping-cart/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
	"github.com/dwikikusuma/shoping-cart/internal/catalog/infra/fixture"
	"github.com/dwikikusuma/shoping-cart/internal/catalog/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collected struct {
	mu    sync.Mutex
	notes []app.Notification
}

func (c *collected) Notify(_ context.Context, n app.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, n)
	return nil
}

func startStorefront(t *testing.T) string {
	t.Helper()
	repo, err := fixture.New(
		[]catalogdomain.Product{
			{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "shoe1.jpg"},
			{ID: 2, Title: "Tênis VR Caminhada Confortável", Price: 139.9, Image: "shoe2.jpg"},
		},
		[]catalogdomain.Stock{{ID: 1, Amount: 2}, {ID: 2, Amount: 5}},
	)
	require.NoError(t, err)

	mux := http.NewServeMux()
	rest.NewHandler(catalogapp.NewService(repo, repo), nil).Register(mux, nil)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestStore_AgainstStorefront(t *testing.T) {
	ctx := context.Background()
	api := httpapi.NewClient(startStorefront(t), &http.Client{Timeout: 2 * time.Second})
	slot := filestore.NewCartSlot(filepath.Join(t.TempDir(), "cart.json"))
	notes := &collected{}

	store, err := app.NewStore(ctx, slot, api, api, app.WithNotifier(notes))
	require.NoError(t, err)

	require.NoError(t, store.AddProduct(ctx, 1))
	require.NoError(t, store.AddProduct(ctx, 1))
	assert.ErrorIs(t, store.AddProduct(ctx, 1), domain.ErrOutOfStock)

	require.NoError(t, store.AddProduct(ctx, 2))
	require.NoError(t, store.UpdateProductAmount(ctx, app.UpdateAmount{ProductID: 2, Amount: 4}))
	assert.ErrorIs(t, store.UpdateProductAmount(ctx, app.UpdateAmount{ProductID: 2, Amount: 6}), domain.ErrOutOfStock)

	// the storefront has no stock entry for 3
	assert.ErrorIs(t, store.AddProduct(ctx, 3), domain.ErrAddFailed)

	want := domain.Cart{
		{Product: domain.Product{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "shoe1.jpg"}, Amount: 2},
		{Product: domain.Product{ID: 2, Title: "Tênis VR Caminhada Confortável", Price: 139.9, Image: "shoe2.jpg"}, Amount: 4},
	}
	assert.Equal(t, want, store.Cart())

	reloaded, err := app.NewStore(ctx, slot, api, api)
	require.NoError(t, err)
	assert.Equal(t, want, reloaded.Cart())

	report, err := reloaded.CheckAvailability(ctx)
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.True(t, report[0].Sufficient)
	assert.Equal(t, 5, report[1].InStock)

	notes.mu.Lock()
	defer notes.mu.Unlock()
	require.Len(t, notes.notes, 3)
	assert.Equal(t, "Quantidade solicitada fora de estoque", notes.notes[0].Message)
	assert.Equal(t, "Quantidade solicitada fora de estoque", notes.notes[1].Message)
	assert.Equal(t, "Erro na adição do produto", notes.notes[2].Message)
}
