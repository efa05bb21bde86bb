package quickview

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Guard allows one in-flight add-to-cart per form key and variant. A second
// click for the same purchase that arrives while a submission is running
// shares its outcome instead of submitting again; a different variant
// under the same key submits on its own.
type Guard struct {
	group singleflight.Group
}

// Submit runs f.AddToCart unless a submission of the same variant for key
// is already running. shared reports whether the outcome came from another
// caller's submission.
func (g *Guard) Submit(ctx context.Context, key string, f *Form) (out Outcome, shared bool, err error) {
	v, ok := f.product.Resolve(f.selection)
	if !ok {
		// Nothing to submit; report this form's own selection error.
		out, err = f.AddToCart(ctx)
		return out, false, err
	}

	res, err, shared := g.group.Do(key+":"+strconv.FormatInt(v.ID, 10), func() (any, error) {
		return f.AddToCart(ctx)
	})
	if res != nil {
		out = res.(Outcome)
	}
	return out, shared, err
}
