// Package catalog defines where quick view product data comes from.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/loganlanou/quickview/internal/cart"
	"github.com/loganlanou/quickview/internal/variants"
)

// ErrNotFound is returned when a product handle is unknown.
var ErrNotFound = errors.New("product not found")

// Source supplies the variant data of a product.
type Source interface {
	Product(ctx context.Context, handle string) (*variants.Product, error)
}

// GiftSource supplies free gift candidates embedded alongside a product,
// for promotions configured on the storefront rather than here.
type GiftSource interface {
	GiftCandidates(ctx context.Context, handle string) ([]variants.Variant, error)
}

// GiftPromotion describes a configured free-gift promotion: the product whose
// variants are given away and the option values that qualify a purchase.
// Without a product handle the candidates are read per product from a
// GiftSource.
type GiftPromotion struct {
	ProductHandle string
	Eligible      cart.OptionSet
}

// Active reports whether a promotion is configured.
func (g GiftPromotion) Active() bool {
	return g.ProductHandle != ""
}

// LoadGiftRule resolves the promotion's candidates from src. It returns nil
// when no promotion is configured.
func LoadGiftRule(ctx context.Context, src Source, promo GiftPromotion) (*cart.GiftRule, error) {
	if !promo.Active() {
		return nil, nil
	}

	product, err := src.Product(ctx, promo.ProductHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to load free gift product %s: %w", promo.ProductHandle, err)
	}

	slog.Debug("loaded free gift candidates",
		"gift_product", promo.ProductHandle,
		"candidates", len(product.Variants),
		"eligible_values", len(promo.Eligible),
	)

	return &cart.GiftRule{
		Candidates: product.Variants,
		Eligible:   promo.Eligible,
	}, nil
}
