// Package quickview drives the quick view product form: option selection,
// the price and button state derived from it, and the add-to-cart action.
package quickview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/loganlanou/quickview/internal/cart"
	"github.com/loganlanou/quickview/internal/money"
	"github.com/loganlanou/quickview/internal/storefront"
	"github.com/loganlanou/quickview/internal/variants"
)

var (
	// ErrIncompleteSelection means at least one option has no value yet.
	ErrIncompleteSelection = errors.New("please select all options")
	// ErrInvalidCombination means every option has a value but no variant
	// has that combination.
	ErrInvalidCombination = errors.New("this combination is unavailable")
)

// DefaultErrorClearAfter is how long an inline cart error stays visible.
const DefaultErrorClearAfter = 3 * time.Second

// Submitter sends line items to the cart.
type Submitter interface {
	AddToCart(ctx context.Context, items []cart.LineItem) error
}

// Strings are the button labels shown for a resolved variant.
type Strings struct {
	AddToCart string
	SoldOut   string
}

// DefaultStrings are used for any label left empty.
var DefaultStrings = Strings{AddToCart: "Add to cart", SoldOut: "Sold out"}

type Options struct {
	Composer        *cart.Composer
	Submitter       Submitter
	Strings         Strings
	MoneyFormat     string
	ErrorClearAfter time.Duration
}

// Form is the state of one quick view product form.
type Form struct {
	product    *variants.Product
	selection  variants.Selection
	composer   *cart.Composer
	submitter  Submitter
	strings    Strings
	format     string
	clearAfter time.Duration
}

// NewForm returns a form with nothing selected.
func NewForm(product *variants.Product, opts Options) *Form {
	s := opts.Strings
	if s.AddToCart == "" {
		s.AddToCart = DefaultStrings.AddToCart
	}
	if s.SoldOut == "" {
		s.SoldOut = DefaultStrings.SoldOut
	}
	clearAfter := opts.ErrorClearAfter
	if clearAfter <= 0 {
		clearAfter = DefaultErrorClearAfter
	}

	return &Form{
		product:    product,
		selection:  product.NewSelection(),
		composer:   opts.Composer,
		submitter:  opts.Submitter,
		strings:    s,
		format:     opts.MoneyFormat,
		clearAfter: clearAfter,
	}
}

// Product returns the product the form sells.
func (f *Form) Product() *variants.Product {
	return f.product
}

// Selection returns the live selection.
func (f *Form) Selection() variants.Selection {
	return f.selection
}

// View is what the UI renders after a selection change. Button and price
// fields are only meaningful when Resolved is true; otherwise the UI keeps
// what it last showed.
type View struct {
	Resolved      bool              `json:"resolved"`
	Complete      bool              `json:"complete"`
	Variant       *variants.Variant `json:"variant,omitempty"`
	ButtonEnabled bool              `json:"button_enabled"`
	ButtonLabel   string            `json:"button_label,omitempty"`
	Price         *variants.Price   `json:"price,omitempty"`
	PriceHTML     string            `json:"price_html,omitempty"`
	Missing       []string          `json:"missing,omitempty"`
}

// Select sets the value of option dim and returns the updated view. An
// empty value clears the dimension; "" is never a selectable option value.
func (f *Form) Select(dim int, value string) View {
	if value == "" {
		f.selection.Clear(dim)
	} else {
		f.selection.Set(dim, value)
	}
	return f.View()
}

// SelectNamed is Select keyed by option name.
func (f *Form) SelectNamed(name, value string) (View, error) {
	dim := f.product.OptionIndex(name)
	if dim < 0 {
		return View{}, fmt.Errorf("product %s has no option %q", f.product.Handle, name)
	}
	return f.Select(dim, value), nil
}

// View returns the view for the current selection.
func (f *Form) View() View {
	view := View{
		Complete: f.selection.Complete(),
		Missing:  f.product.MissingOptions(f.selection),
	}

	v, ok := f.product.Resolve(f.selection)
	if !ok {
		return view
	}

	price := variants.PriceDisplay(v)
	view.Resolved = true
	view.Variant = &v
	view.ButtonEnabled = variants.IsAvailableForDisplay(v)
	view.ButtonLabel = f.strings.SoldOut
	if view.ButtonEnabled {
		view.ButtonLabel = f.strings.AddToCart
	}
	view.Price = &price
	view.PriceHTML = money.PriceHTML(price, f.format)
	return view
}

// SelectionError is returned by AddToCart when nothing can be bought yet.
type SelectionError struct {
	Err     error
	Missing []string
}

func (e *SelectionError) Error() string {
	return e.Err.Error()
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// Outcome is the result of an add-to-cart action the UI acts on: navigate to
// Redirect on success, or show Error inline for ClearAfter.
type Outcome struct {
	Items      []cart.LineItem `json:"items"`
	Redirect   string          `json:"redirect,omitempty"`
	Error      string          `json:"error,omitempty"`
	ClearAfter time.Duration   `json:"-"`
}

// CartPath is where shoppers land after a successful add.
const CartPath = "/cart"

// AddToCart composes the cart add for the selected variant and submits it
// once. A rejected submission is reported in the Outcome, not as an error;
// errors are selection problems or transport failures.
func (f *Form) AddToCart(ctx context.Context) (Outcome, error) {
	v, ok := f.product.Resolve(f.selection)
	if !ok {
		if !f.selection.Complete() {
			return Outcome{}, &SelectionError{Err: ErrIncompleteSelection, Missing: f.product.MissingOptions(f.selection)}
		}
		return Outcome{}, &SelectionError{Err: ErrInvalidCombination}
	}

	items := f.composer.Compose(v)

	if f.submitter == nil {
		return Outcome{}, fmt.Errorf("no cart submitter configured")
	}

	if err := f.submitter.AddToCart(ctx, items); err != nil {
		var subErr *storefront.SubmissionError
		if errors.As(err, &subErr) {
			slog.Info("cart add rejected",
				"product", f.product.Handle,
				"variant_id", v.ID,
				"status", subErr.Status,
				"description", subErr.Description,
			)
			msg := subErr.Description
			if msg == "" {
				msg = subErr.Message
			}
			return Outcome{Items: items, Error: msg, ClearAfter: f.clearAfter}, nil
		}
		return Outcome{}, fmt.Errorf("failed to add to cart: %w", err)
	}

	slog.Info("cart add submitted",
		"product", f.product.Handle,
		"variant_id", v.ID,
		"line_items", len(items),
	)

	return Outcome{Items: items, Redirect: CartPath}, nil
}
