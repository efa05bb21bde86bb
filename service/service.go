package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/quickview/internal/cart"
	"github.com/loganlanou/quickview/internal/catalog"
	"github.com/loganlanou/quickview/internal/quickview"
	"github.com/loganlanou/quickview/internal/variants"
	"github.com/oklog/ulid/v2"
)

// Storefront is the part of the storefront client the service needs.
type Storefront interface {
	quickview.Submitter
	QuickViewSection(ctx context.Context, productURL string) (string, error)
	ProductURL(handle string) string
}

type Service struct {
	config     *Config
	catalog    catalog.Source
	storefront Storefront
	guard      quickview.Guard
}

func New(config *Config, src catalog.Source, sf Storefront) *Service {
	return &Service{
		config:     config,
		catalog:    src,
		storefront: sf,
	}
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.handleHealth)

	api := e.Group("/api")
	api.GET("/products/:handle", s.handleGetProduct)
	api.POST("/products/:handle/variant", s.handleResolveVariant)
	api.GET("/products/:handle/quick-view", s.handleQuickView)
	api.POST("/cart/add", s.handleAddToCart)
}

func (s *Service) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "healthy",
		"environment": s.config.Environment,
		"catalog":     s.config.CatalogSource,
	})
}

// selectionRequest carries the shopper's choices either positionally or by
// option name.
type selectionRequest struct {
	Handle   string            `json:"handle"`
	Options  []string          `json:"options"`
	Selected map[string]string `json:"selected"`
}

func (s *Service) handleGetProduct(c echo.Context) error {
	product, err := s.loadProduct(c.Request().Context(), c.Param("handle"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (s *Service) handleResolveVariant(c echo.Context) error {
	var req selectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	ctx := c.Request().Context()
	form, err := s.buildForm(ctx, c.Param("handle"), req, false)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, form.View())
}

func (s *Service) handleQuickView(c echo.Context) error {
	ctx := c.Request().Context()
	handle := c.Param("handle")

	product, err := s.loadProduct(ctx, handle)
	if err != nil {
		return err
	}

	productURL := product.URL
	if productURL == "" {
		productURL = s.storefront.ProductURL(handle)
	}

	html, err := s.storefront.QuickViewSection(ctx, productURL)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		slog.Error("failed to fetch quick view section", "error", err, "product", handle)
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to load quick view")
	}

	return c.HTML(http.StatusOK, html)
}

// handleAddToCart adds the selected variant, and any free gift it earns, to
// the storefront cart
func (s *Service) handleAddToCart(c echo.Context) error {
	var req selectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Handle == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing product handle")
	}

	sessionID := s.getOrCreateSessionID(c)
	ctx := c.Request().Context()

	form, err := s.buildForm(ctx, req.Handle, req, true)
	if err != nil {
		return err
	}

	submissionID := ulid.Make().String()
	out, shared, err := s.guard.Submit(ctx, sessionID+":"+req.Handle, form)

	var selErr *quickview.SelectionError
	switch {
	case errors.As(err, &selErr):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   selErr.Error(),
			"missing": selErr.Missing,
		})
	case err != nil:
		slog.Error("failed to add to cart", "error", err, "product", req.Handle, "submission_id", submissionID)
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to add to cart")
	}

	slog.Info("add to cart handled",
		"submission_id", submissionID,
		"product", req.Handle,
		"line_items", len(out.Items),
		"shared", shared,
		"rejected", out.Error != "",
	)

	if out.Error != "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":          out.Error,
			"items":          out.Items,
			"clear_after_ms": out.ClearAfter.Milliseconds(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"redirect": out.Redirect,
		"items":    out.Items,
	})
}

func (s *Service) loadProduct(ctx context.Context, handle string) (*variants.Product, error) {
	if handle == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Missing product handle")
	}

	product, err := s.catalog.Product(ctx, handle)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		slog.Error("failed to load product", "error", err, "product", handle)
		return nil, echo.NewHTTPError(http.StatusBadGateway, "Failed to load product")
	}
	return product, nil
}

// buildForm loads the product and replays the request's choices onto a
// fresh form. Gift data is only loaded for forms that will add to cart.
func (s *Service) buildForm(ctx context.Context, handle string, req selectionRequest, forCart bool) (*quickview.Form, error) {
	product, err := s.loadProduct(ctx, handle)
	if err != nil {
		return nil, err
	}

	if len(req.Options) > len(product.Options) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Too many option values")
	}

	var composer *cart.Composer
	if forCart {
		composer = cart.NewComposer(s.giftRule(ctx, handle))
	}

	form := quickview.NewForm(product, quickview.Options{
		Composer:        composer,
		Submitter:       s.storefront,
		Strings:         s.config.Strings,
		MoneyFormat:     s.config.MoneyFormat,
		ErrorClearAfter: s.config.ErrorClearAfter,
	})

	for i, value := range req.Options {
		form.Select(i, value)
	}
	for name, value := range req.Selected {
		if _, err := form.SelectNamed(name, value); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	return form, nil
}

// giftRule returns the free gift promotion for a purchase of handle, or nil
// when none applies. Gift data that fails to load disables the gift for this
// request only.
func (s *Service) giftRule(ctx context.Context, handle string) *cart.GiftRule {
	eligible := s.config.FreeGift.Options
	if len(eligible) == 0 {
		return nil
	}

	promo := catalog.GiftPromotion{
		ProductHandle: s.config.FreeGift.ProductHandle,
		Eligible:      eligible,
	}
	if promo.Active() {
		rule, err := catalog.LoadGiftRule(ctx, s.catalog, promo)
		if err != nil {
			slog.Warn("free gift unavailable", "error", err, "product", handle)
			return nil
		}
		return rule
	}

	gs, ok := s.catalog.(catalog.GiftSource)
	if !ok {
		return nil
	}
	candidates, err := gs.GiftCandidates(ctx, handle)
	if err != nil {
		slog.Warn("free gift unavailable", "error", err, "product", handle)
		return nil
	}
	if candidates == nil {
		return nil
	}
	return &cart.GiftRule{Candidates: candidates, Eligible: eligible}
}

func (s *Service) getOrCreateSessionID(c echo.Context) string {
	cookie, err := c.Cookie("session_id")
	if err != nil || cookie.Value == "" {
		// Create new session ID
		sessionID := uuid.New().String()

		// Set session cookie
		c.SetCookie(&http.Cookie{
			Name:     "session_id",
			Value:    sessionID,
			Path:     "/",
			MaxAge:   86400 * 30, // 30 days
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		return sessionID
	}

	return cookie.Value
}
