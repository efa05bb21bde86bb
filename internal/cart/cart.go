// Package cart builds the line items of a single add-to-cart request,
// including the free gift that rides along with eligible purchases.
package cart

import (
	"strings"

	"github.com/loganlanou/quickview/internal/variants"
)

// LineItem is one entry of a cart add request.
type LineItem struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// AddRequest is the body posted to the storefront cart endpoint.
type AddRequest struct {
	Items []LineItem `json:"items"`
}

// OptionSet is a set of option values.
type OptionSet map[string]struct{}

// NewOptionSet returns a set holding values.
func NewOptionSet(values ...string) OptionSet {
	set := make(OptionSet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// ParseOptionSet reads a comma separated list such as "Red, Blue".
func ParseOptionSet(csv string) OptionSet {
	var values []string
	for _, part := range strings.Split(csv, ",") {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	return NewOptionSet(values...)
}

// Has reports whether value is in the set.
func (s OptionSet) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// ContainsAll reports whether every value is in the set.
func (s OptionSet) ContainsAll(values []string) bool {
	for _, v := range values {
		if !s.Has(v) {
			return false
		}
	}
	return true
}

// GiftRule is an active free-gift promotion.
type GiftRule struct {
	// Candidates is ordered; the first entry is the default gift.
	Candidates []variants.Variant
	Eligible   OptionSet
}
