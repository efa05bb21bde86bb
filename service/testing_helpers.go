package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/quickview/internal/cart"
	"github.com/loganlanou/quickview/internal/catalog"
	"github.com/loganlanou/quickview/internal/quickview"
	"github.com/loganlanou/quickview/internal/variants"
	"github.com/loganlanou/quickview/storage"
)

// fakeStorefront records cart adds and serves a fixed quick view section
type fakeStorefront struct {
	mu      sync.Mutex
	adds    [][]cart.LineItem
	addErr  error
	section string
}

func (f *fakeStorefront) AddToCart(_ context.Context, items []cart.LineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, items)
	return f.addErr
}

func (f *fakeStorefront) QuickViewSection(_ context.Context, productURL string) (string, error) {
	if f.section == "" {
		return "", catalog.ErrNotFound
	}
	return f.section, nil
}

func (f *fakeStorefront) ProductURL(handle string) string {
	return "https://shop.example.com/products/" + handle
}

func testCatalog() []variants.Product {
	compareAt := int64(1500)
	return []variants.Product{
		{
			Handle:  "dino-tee",
			Title:   "Dino Tee",
			Options: []string{"Size", "Color"},
			Variants: []variants.Variant{
				{ID: 1, Options: []string{"S", "Red"}, Price: 1000, Available: true},
				{ID: 2, Options: []string{"M", "Red"}, Price: 1200, CompareAtPrice: &compareAt, Available: true},
				{ID: 3, Options: []string{"M", "Blue"}, Price: 1200, Available: false},
			},
		},
		{
			Handle:  "free-sticker",
			Title:   "Free Sticker",
			Options: []string{"Size", "Color"},
			Variants: []variants.Variant{
				{ID: 90, Options: []string{"S", "Red"}, Price: 0, Available: true},
				{ID: 91, Options: []string{"M", "Red"}, Price: 0, Available: true},
			},
		},
	}
}

// newTestStore creates an in-memory catalog seeded with testCatalog
func newTestStore(t *testing.T) *storage.Storage {
	t.Helper()

	store, cleanup, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(cleanup)

	if err := store.Seed(context.Background(), testCatalog()); err != nil {
		t.Fatalf("failed to seed test catalog: %v", err)
	}
	return store
}

func testConfig() *Config {
	config := &Config{
		Environment:     "test",
		Port:            "8080",
		CatalogSource:   CatalogSQLite,
		MoneyFormat:     "${{amount}}",
		Strings:         quickview.DefaultStrings,
		ErrorClearAfter: quickview.DefaultErrorClearAfter,
	}
	config.FreeGift.ProductHandle = "free-sticker"
	config.FreeGift.Options = cart.NewOptionSet("S", "M", "Red")
	return config
}

// setupTestService creates a service backed by an in-memory catalog
func setupTestService(t *testing.T, sf *fakeStorefront) *Service {
	t.Helper()
	return New(testConfig(), newTestStore(t), sf)
}

// countingSource records which product handles were looked up
type countingSource struct {
	catalog.Source

	mu      sync.Mutex
	lookups map[string]int
}

func (c *countingSource) Product(ctx context.Context, handle string) (*variants.Product, error) {
	c.mu.Lock()
	if c.lookups == nil {
		c.lookups = map[string]int{}
	}
	c.lookups[handle]++
	c.mu.Unlock()
	return c.Source.Product(ctx, handle)
}

func (c *countingSource) count(handle string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookups[handle]
}

// setupTestEcho creates an Echo instance with routes registered
func setupTestEcho(t *testing.T, sf *fakeStorefront) (*echo.Echo, *Service) {
	t.Helper()

	e := echo.New()
	svc := setupTestService(t, sf)
	svc.RegisterRoutes(e)

	return e, svc
}

// doJSON sends body as JSON and decodes the JSON response
func doJSON(t *testing.T, e *echo.Echo, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get(echo.HeaderContentType) != echo.MIMETextHTMLCharsetUTF8 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}
