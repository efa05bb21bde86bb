package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/loganlanou/quickview/internal/variants"
)

const (
	modalContentSelector = ".quick-view__modal-content"
	variantDataSelector  = `quick-variant-selects script[type="application/json"]`
	optionSelector       = ".quick-view__product-option"
	freeGiftSelector     = "#FreeGiftProduct"
)

// ErrNoQuickView is returned when a rendered section has no modal content.
var ErrNoQuickView = errors.New("section has no quick view content")

// SectionURL returns productURL with the quick view section requested.
func SectionURL(productURL string) (string, error) {
	u, err := url.Parse(productURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse product url: %w", err)
	}
	q := u.Query()
	q.Set("section_id", QuickViewSectionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) fetchSection(ctx context.Context, productURL string) (*goquery.Document, error) {
	sectionURL, err := SectionURL(c.resolve(productURL))
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, sectionURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse section html: %w", err)
	}
	return doc, nil
}

// QuickViewSection returns the modal body markup for a product page.
func (c *Client) QuickViewSection(ctx context.Context, productURL string) (string, error) {
	doc, err := c.fetchSection(ctx, productURL)
	if err != nil {
		return "", err
	}
	return modalContent(doc)
}

// Product implements catalog.Source by reading the variant data embedded in
// the product's quick view section.
func (c *Client) Product(ctx context.Context, handle string) (*variants.Product, error) {
	productURL := c.ProductURL(handle)

	doc, err := c.fetchSection(ctx, productURL)
	if err != nil {
		return nil, err
	}

	product, err := productFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", handle, err)
	}
	product.Handle = handle
	product.URL = productURL
	return product, nil
}

// ParseQuickView extracts the modal body markup from a rendered section.
func ParseQuickView(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse section html: %w", err)
	}
	return modalContent(doc)
}

// ParseProductData reads the option names and variants embedded in a quick
// view section.
func ParseProductData(html string) (*variants.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse section html: %w", err)
	}
	return productFromDocument(doc)
}

// ParseFreeGift reads the free gift candidates embedded in a page. It
// returns nil, nil when the page carries no gift data.
func ParseFreeGift(html string) ([]variants.Variant, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page html: %w", err)
	}
	return freeGiftFromDocument(doc)
}

func freeGiftFromDocument(doc *goquery.Document) ([]variants.Variant, error) {
	sel := doc.Find(freeGiftSelector).First()
	if sel.Length() == 0 {
		return nil, nil
	}

	var gifts []variants.Variant
	if err := json.Unmarshal([]byte(sel.Text()), &gifts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal free gift data: %w", err)
	}
	return gifts, nil
}

func modalContent(doc *goquery.Document) (string, error) {
	sel := doc.Find(modalContentSelector).First()
	if sel.Length() == 0 {
		return "", ErrNoQuickView
	}
	inner, err := sel.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render quick view content: %w", err)
	}
	return strings.TrimSpace(inner), nil
}

func productFromDocument(doc *goquery.Document) (*variants.Product, error) {
	data := doc.Find(variantDataSelector).First()
	if data.Length() == 0 {
		return nil, errors.New("no embedded variant data")
	}

	var vs []variants.Variant
	if err := json.Unmarshal([]byte(data.Text()), &vs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variant data: %w", err)
	}

	product := &variants.Product{
		Title:    strings.TrimSpace(doc.Find(".quick-view__title").First().Text()),
		Variants: vs,
	}

	doc.Find(optionSelector).Each(func(i int, s *goquery.Selection) {
		name, ok := s.Attr("data-option-name")
		if !ok || strings.TrimSpace(name) == "" {
			name = strings.TrimSpace(s.Find("legend").First().Text())
		}
		if name == "" {
			name = fmt.Sprintf("Option %d", i+1)
		}
		product.Options = append(product.Options, strings.TrimSpace(name))
	})

	// Sections without option markup still carry positional options.
	if len(product.Options) == 0 && len(vs) > 0 {
		for i := range vs[0].Options {
			product.Options = append(product.Options, fmt.Sprintf("Option %d", i+1))
		}
	}

	for _, v := range vs {
		if len(v.Options) != len(product.Options) {
			return nil, fmt.Errorf("variant %d has %d options, product has %d", v.ID, len(v.Options), len(product.Options))
		}
	}

	return product, nil
}

// GiftCandidates implements catalog.GiftSource by reading the free gift data
// embedded in the product's quick view section.
func (c *Client) GiftCandidates(ctx context.Context, handle string) ([]variants.Variant, error) {
	doc, err := c.fetchSection(ctx, c.ProductURL(handle))
	if err != nil {
		return nil, err
	}
	return freeGiftFromDocument(doc)
}
