package quickview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/loganlanou/quickview/internal/cart"
	"github.com/loganlanou/quickview/internal/storefront"
	"github.com/loganlanou/quickview/internal/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	mu      sync.Mutex
	calls   [][]cart.LineItem
	err     error
	wait    chan struct{}
	entered chan struct{}
}

func (r *recordingSubmitter) AddToCart(_ context.Context, items []cart.LineItem) error {
	if r.entered != nil {
		r.entered <- struct{}{}
	}
	if r.wait != nil {
		<-r.wait
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, items)
	return r.err
}

func (r *recordingSubmitter) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func compareAt(n int64) *int64 {
	return &n
}

func testProduct() *variants.Product {
	return &variants.Product{
		Handle:  "dino-tee",
		Options: []string{"Size", "Color"},
		Variants: []variants.Variant{
			{ID: 1, Options: []string{"S", "Red"}, Price: 1000, Available: true},
			{ID: 2, Options: []string{"M", "Red"}, Price: 1200, CompareAtPrice: compareAt(1500), Available: true},
			{ID: 3, Options: []string{"M", "Blue"}, Price: 1200, Available: false},
		},
	}
}

func giftComposer() *cart.Composer {
	return cart.NewComposer(&cart.GiftRule{
		Candidates: []variants.Variant{{ID: 90, Options: []string{"S", "Red"}}, {ID: 91, Options: []string{"M", "Red"}}},
		Eligible:   cart.NewOptionSet("S", "M", "Red"),
	})
}

func TestForm_Select(t *testing.T) {
	form := NewForm(testProduct(), Options{Strings: Strings{AddToCart: "Add", SoldOut: "Gone"}})

	view := form.Select(0, "M")
	assert.False(t, view.Resolved)
	assert.False(t, view.Complete)
	assert.Equal(t, []string{"Color"}, view.Missing)
	assert.Empty(t, view.PriceHTML)

	view = form.Select(1, "Red")
	require.True(t, view.Resolved)
	assert.True(t, view.Complete)
	assert.Equal(t, int64(2), view.Variant.ID)
	assert.True(t, view.ButtonEnabled)
	assert.Equal(t, "Add", view.ButtonLabel)
	assert.Equal(t, "<span>$12.00</span><s>$15.00</s>", view.PriceHTML)

	view, err := form.SelectNamed("Color", "Blue")
	require.NoError(t, err)
	require.True(t, view.Resolved)
	assert.False(t, view.ButtonEnabled)
	assert.Equal(t, "Gone", view.ButtonLabel)
	assert.Equal(t, "<span>$12.00</span>", view.PriceHTML)

	view = form.Select(0, "S")
	assert.True(t, view.Complete)
	assert.False(t, view.Resolved, "S / Blue is not a variant")

	view = form.Select(0, "")
	assert.False(t, view.Complete)
	assert.Equal(t, []string{"Size"}, view.Missing)

	_, err = form.SelectNamed("Material", "Cotton")
	assert.Error(t, err)
}

func TestForm_DefaultStrings(t *testing.T) {
	form := NewForm(testProduct(), Options{MoneyFormat: "{{amount_with_comma_separator}} €"})
	form.Select(0, "S")
	view := form.Select(1, "Red")

	assert.Equal(t, DefaultStrings.AddToCart, view.ButtonLabel)
	assert.Equal(t, "<span>10,00 €</span>", view.PriceHTML)
}

func TestForm_AddToCart(t *testing.T) {
	sub := &recordingSubmitter{}
	form := NewForm(testProduct(), Options{Composer: giftComposer(), Submitter: sub})
	form.Select(0, "M")
	form.Select(1, "Red")

	out, err := form.AddToCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CartPath, out.Redirect)
	assert.Empty(t, out.Error)
	assert.Equal(t, []cart.LineItem{{ID: 2, Quantity: 1}, {ID: 91, Quantity: 1}}, out.Items)
	require.Equal(t, 1, sub.callCount())
	assert.Equal(t, out.Items, sub.calls[0])
}

func TestForm_AddToCart_NoPromotion(t *testing.T) {
	sub := &recordingSubmitter{}
	form := NewForm(testProduct(), Options{Submitter: sub})
	form.Select(0, "S")
	form.Select(1, "Red")

	out, err := form.AddToCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []cart.LineItem{{ID: 1, Quantity: 1}}, out.Items)
}

func TestForm_AddToCart_SelectionErrors(t *testing.T) {
	sub := &recordingSubmitter{}

	t.Run("incomplete", func(t *testing.T) {
		form := NewForm(testProduct(), Options{Submitter: sub})
		form.Select(1, "Red")

		_, err := form.AddToCart(context.Background())
		require.ErrorIs(t, err, ErrIncompleteSelection)

		var selErr *SelectionError
		require.True(t, errors.As(err, &selErr))
		assert.Equal(t, []string{"Size"}, selErr.Missing)
	})

	t.Run("invalid combination", func(t *testing.T) {
		form := NewForm(testProduct(), Options{Submitter: sub})
		form.Select(0, "S")
		form.Select(1, "Blue")

		_, err := form.AddToCart(context.Background())
		require.ErrorIs(t, err, ErrInvalidCombination)
	})

	assert.Zero(t, sub.callCount(), "nothing is submitted without a variant")
}

func TestForm_AddToCart_Rejected(t *testing.T) {
	sub := &recordingSubmitter{err: &storefront.SubmissionError{
		Status:      "422",
		Message:     "Cart Error",
		Description: "You can't add more Dino Tee to the cart.",
	}}
	form := NewForm(testProduct(), Options{Submitter: sub, ErrorClearAfter: time.Second})
	form.Select(0, "S")
	form.Select(1, "Red")

	out, err := form.AddToCart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.Redirect)
	assert.Equal(t, "You can't add more Dino Tee to the cart.", out.Error)
	assert.Equal(t, time.Second, out.ClearAfter)
	assert.Equal(t, 1, sub.callCount(), "rejections are not retried")
}

func TestForm_AddToCart_TransportError(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("connection refused")}
	form := NewForm(testProduct(), Options{Submitter: sub})
	form.Select(0, "S")
	form.Select(1, "Red")

	_, err := form.AddToCart(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGuard_SharesInFlightSubmission(t *testing.T) {
	sub := &recordingSubmitter{wait: make(chan struct{})}
	form := NewForm(testProduct(), Options{Submitter: sub})
	form.Select(0, "S")
	form.Select(1, "Red")

	var guard Guard
	var wg sync.WaitGroup
	var sharedCount atomic.Int32
	started := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		close(started)
		out, shared, err := guard.Submit(context.Background(), "session:dino-tee", form)
		assert.NoError(t, err)
		assert.Equal(t, CartPath, out.Redirect)
		if shared {
			sharedCount.Add(1)
		}
	}()

	<-started
	time.Sleep(20 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		out, shared, err := guard.Submit(context.Background(), "session:dino-tee", form)
		assert.NoError(t, err)
		assert.Equal(t, CartPath, out.Redirect)
		if shared {
			sharedCount.Add(1)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	close(sub.wait)
	wg.Wait()

	assert.Equal(t, 1, sub.callCount())
	assert.Equal(t, int32(2), sharedCount.Load())
}

func TestGuard_DifferentVariantsSubmitSeparately(t *testing.T) {
	sub := &recordingSubmitter{wait: make(chan struct{}), entered: make(chan struct{}, 2)}

	small := NewForm(testProduct(), Options{Submitter: sub})
	small.Select(0, "S")
	small.Select(1, "Red")

	medium := NewForm(testProduct(), Options{Submitter: sub})
	medium.Select(0, "M")
	medium.Select(1, "Red")

	var guard Guard
	var wg sync.WaitGroup
	results := make([]Outcome, 2)
	shared := make([]bool, 2)

	for i, form := range []*Form{small, medium} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, s, err := guard.Submit(context.Background(), "session:dino-tee", form)
			assert.NoError(t, err)
			results[i] = out
			shared[i] = s
		}()
		// Both submissions must reach the storefront while the first is
		// still running.
		<-sub.entered
	}

	close(sub.wait)
	wg.Wait()

	assert.Equal(t, 2, sub.callCount())
	assert.Equal(t, []bool{false, false}, shared)
	assert.Equal(t, []cart.LineItem{{ID: 1, Quantity: 1}}, results[0].Items)
	assert.Equal(t, []cart.LineItem{{ID: 2, Quantity: 1}}, results[1].Items)
}

func TestGuard_SelectionError(t *testing.T) {
	var guard Guard
	form := NewForm(testProduct(), Options{Submitter: &recordingSubmitter{}})

	_, shared, err := guard.Submit(context.Background(), "k", form)
	assert.False(t, shared)
	assert.ErrorIs(t, err, ErrIncompleteSelection)
}
