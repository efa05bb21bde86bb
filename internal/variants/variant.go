package variants

// Variant is one purchasable SKU of a product. Options are positional and
// line up with Product.Options.
type Variant struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title,omitempty"`
	Options        []string `json:"options"`
	Price          int64    `json:"price"`
	CompareAtPrice *int64   `json:"compare_at_price"`
	Available      bool     `json:"available"`
}

// Product is the read-only variant catalog of one product as embedded in a
// storefront page.
type Product struct {
	Handle   string    `json:"handle"`
	Title    string    `json:"title,omitempty"`
	URL      string    `json:"url,omitempty"`
	Options  []string  `json:"options"`
	Variants []Variant `json:"variants"`
}

// Price is what the price block shows for a variant. Original is only set
// when the variant is on sale.
type Price struct {
	Current  int64  `json:"current"`
	Original *int64 `json:"original,omitempty"`
}

// OnSale reports whether a strikethrough price should be shown.
func (p Price) OnSale() bool {
	return p.Original != nil
}

// IsAvailableForDisplay drives add-to-cart enablement and the sold out label.
func IsAvailableForDisplay(v Variant) bool {
	return v.Available
}

// PriceDisplay returns the current price and, when compare_at_price is
// greater than price, the original price.
func PriceDisplay(v Variant) Price {
	p := Price{Current: v.Price}
	if v.CompareAtPrice != nil && *v.CompareAtPrice > v.Price {
		original := *v.CompareAtPrice
		p.Original = &original
	}
	return p
}
