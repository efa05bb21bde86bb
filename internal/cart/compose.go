package cart

import (
	"slices"

	"github.com/loganlanou/quickview/internal/variants"
)

// Compose returns the line items for buying v. The purchase always comes
// first. When every option value of v is gift eligible, the gift whose
// options match v is added, falling back to the first candidate. A gift
// with the purchased variant's id is never added.
func Compose(v variants.Variant, gifts []variants.Variant, eligible OptionSet) []LineItem {
	items := []LineItem{{ID: v.ID, Quantity: 1}}

	if !eligible.ContainsAll(v.Options) {
		return items
	}

	gift, ok := pickGift(v, gifts)
	if !ok || gift.ID == v.ID {
		return items
	}

	return append(items, LineItem{ID: gift.ID, Quantity: 1})
}

func pickGift(v variants.Variant, gifts []variants.Variant) (variants.Variant, bool) {
	for _, g := range gifts {
		if slices.Equal(g.Options, v.Options) {
			return g, true
		}
	}
	if len(gifts) > 0 {
		return gifts[0], true
	}
	return variants.Variant{}, false
}

// Composer composes cart adds under one gift configuration.
type Composer struct {
	rule *GiftRule
}

// NewComposer returns a Composer. A nil rule means no promotion is active.
func NewComposer(rule *GiftRule) *Composer {
	return &Composer{rule: rule}
}

// Compose composes the line items for v.
func (c *Composer) Compose(v variants.Variant) []LineItem {
	if c == nil || c.rule == nil {
		return []LineItem{{ID: v.ID, Quantity: 1}}
	}
	return Compose(v, c.rule.Candidates, c.rule.Eligible)
}

// GiftRule returns the active promotion, or nil.
func (c *Composer) GiftRule() *GiftRule {
	if c == nil {
		return nil
	}
	return c.rule
}
