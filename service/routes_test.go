package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/quickview/internal/cart"
	"github.com/loganlanou/quickview/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutes(t *testing.T) {
	e, _ := setupTestEcho(t, &fakeStorefront{section: "<h2>Dino Tee</h2>"})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"Health check", "GET", "/health", http.StatusOK},
		{"Product", "GET", "/api/products/dino-tee", http.StatusOK},
		{"Unknown product", "GET", "/api/products/missing", http.StatusNotFound},
		{"Quick view", "GET", "/api/products/dino-tee/quick-view", http.StatusOK},
		{"Quick view unknown product", "GET", "/api/products/missing/quick-view", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code,
				"Route %s %s should return %d, got %d",
				tt.method, tt.path, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetProduct(t *testing.T) {
	e, _ := setupTestEcho(t, &fakeStorefront{})

	rec, body := doJSON(t, e, http.MethodGet, "/api/products/dino-tee", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dino-tee", body["handle"])
	assert.Equal(t, []any{"Size", "Color"}, body["options"])
	assert.Len(t, body["variants"], 3)
}

func TestQuickView(t *testing.T) {
	e, _ := setupTestEcho(t, &fakeStorefront{section: `<h2 class="quick-view__title">Dino Tee</h2>`})

	req := httptest.NewRequest(http.MethodGet, "/api/products/dino-tee/quick-view", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, `<h2 class="quick-view__title">Dino Tee</h2>`, rec.Body.String())
}

func TestResolveVariant(t *testing.T) {
	e, _ := setupTestEcho(t, &fakeStorefront{})

	tests := []struct {
		name         string
		body         map[string]any
		wantStatus   int
		wantResolved bool
		wantLabel    string
		wantPrice    string
	}{
		{
			name:         "on sale variant",
			body:         map[string]any{"options": []string{"M", "Red"}},
			wantStatus:   http.StatusOK,
			wantResolved: true,
			wantLabel:    "Add to cart",
			wantPrice:    "<span>$12.00</span><s>$15.00</s>",
		},
		{
			name:         "sold out variant by name",
			body:         map[string]any{"selected": map[string]string{"Size": "M", "Color": "Blue"}},
			wantStatus:   http.StatusOK,
			wantResolved: true,
			wantLabel:    "Sold out",
			wantPrice:    "<span>$12.00</span>",
		},
		{
			name:       "partial selection",
			body:       map[string]any{"options": []string{"M"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown option name",
			body:       map[string]any{"selected": map[string]string{"Material": "Cotton"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "too many values",
			body:       map[string]any{"options": []string{"M", "Red", "Cotton"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doJSON(t, e, http.MethodPost, "/api/products/dino-tee/variant", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			assert.Equal(t, tt.wantResolved, body["resolved"])
			if tt.wantResolved {
				assert.Equal(t, tt.wantLabel, body["button_label"])
				assert.Equal(t, tt.wantPrice, body["price_html"])
			} else {
				assert.Nil(t, body["variant"])
				assert.Equal(t, []any{"Color"}, body["missing"])
			}
		})
	}
}

func TestResolveVariant_SkipsGiftLookup(t *testing.T) {
	src := &countingSource{Source: newTestStore(t)}
	sf := &fakeStorefront{}
	e := echo.New()
	New(testConfig(), src, sf).RegisterRoutes(e)

	rec, _ := doJSON(t, e, http.MethodPost, "/api/products/dino-tee/variant", map[string]any{
		"options": []string{"M", "Red"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, src.count("dino-tee"))
	assert.Zero(t, src.count("free-sticker"), "resolving a variant must not load gift data")

	rec, _ = doJSON(t, e, http.MethodPost, "/api/cart/add", map[string]any{
		"handle":  "dino-tee",
		"options": []string{"M", "Red"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, src.count("free-sticker"))
}

func TestAddToCart(t *testing.T) {
	sf := &fakeStorefront{}
	e, _ := setupTestEcho(t, sf)

	rec, body := doJSON(t, e, http.MethodPost, "/api/cart/add", map[string]any{
		"handle":  "dino-tee",
		"options": []string{"M", "Red"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/cart", body["redirect"])
	require.Len(t, sf.adds, 1)
	assert.Equal(t, []cart.LineItem{{ID: 2, Quantity: 1}, {ID: 91, Quantity: 1}}, sf.adds[0])

	var sessionSet bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" && c.Value != "" {
			sessionSet = true
		}
	}
	assert.True(t, sessionSet, "add to cart should set a session cookie")
}

func TestAddToCart_NotEligibleForGift(t *testing.T) {
	sf := &fakeStorefront{}
	e, _ := setupTestEcho(t, sf)

	// Blue is not a gift-qualifying value
	rec, _ := doJSON(t, e, http.MethodPost, "/api/cart/add", map[string]any{
		"handle":  "dino-tee",
		"options": []string{"M", "Blue"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sf.adds, 1)
	assert.Equal(t, []cart.LineItem{{ID: 3, Quantity: 1}}, sf.adds[0])
}

func TestAddToCart_SelectionErrors(t *testing.T) {
	sf := &fakeStorefront{}
	e, _ := setupTestEcho(t, sf)

	tests := []struct {
		name        string
		body        map[string]any
		wantStatus  int
		wantMissing []any
	}{
		{
			name:        "incomplete",
			body:        map[string]any{"handle": "dino-tee", "selected": map[string]string{"Color": "Red"}},
			wantStatus:  http.StatusBadRequest,
			wantMissing: []any{"Size"},
		},
		{
			name:       "invalid combination",
			body:       map[string]any{"handle": "dino-tee", "options": []string{"S", "Blue"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing handle",
			body:       map[string]any{"options": []string{"S", "Red"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown product",
			body:       map[string]any{"handle": "missing", "options": []string{"S"}},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doJSON(t, e, http.MethodPost, "/api/cart/add", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMissing != nil {
				assert.Equal(t, tt.wantMissing, body["missing"])
			}
		})
	}

	assert.Empty(t, sf.adds)
}

func TestAddToCart_Rejected(t *testing.T) {
	sf := &fakeStorefront{addErr: &storefront.SubmissionError{
		Status:      "422",
		Message:     "Cart Error",
		Description: "All 1 Dino Tee - S / Red are in your cart.",
	}}
	e, _ := setupTestEcho(t, sf)

	rec, body := doJSON(t, e, http.MethodPost, "/api/cart/add", map[string]any{
		"handle":  "dino-tee",
		"options": []string{"S", "Red"},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "All 1 Dino Tee - S / Red are in your cart.", body["error"])
	assert.Equal(t, float64(3000), body["clear_after_ms"])
}

func TestAddToCart_TransportFailure(t *testing.T) {
	sf := &fakeStorefront{addErr: assert.AnError}
	e, _ := setupTestEcho(t, sf)

	rec, _ := doJSON(t, e, http.MethodPost, "/api/cart/add", map[string]any{
		"handle":  "dino-tee",
		"options": []string{"S", "Red"},
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
