// Package variants resolves a shopper's option selection to a concrete
// product variant and derives what the quick view displays for it.
package variants

import "slices"

// Resolve returns the first variant, in list order, whose options equal the
// selection position by position. Incomplete selections never match.
//
// Catalogs with duplicate option tuples resolve to the earliest entry.
func Resolve(sel Selection, vs []Variant) (Variant, bool) {
	if !sel.Complete() {
		return Variant{}, false
	}
	for _, v := range vs {
		if slices.Equal(v.Options, sel.values) {
			return v, true
		}
	}
	return Variant{}, false
}

// Resolve resolves sel against the product's own variants.
func (p *Product) Resolve(sel Selection) (Variant, bool) {
	return Resolve(sel, p.Variants)
}

// Variant looks a variant up by id.
func (p *Product) Variant(id int64) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
