package variants

import (
	"fmt"
)

// Selection holds the chosen value for each option dimension. A zero
// Selection has no dimensions.
type Selection struct {
	values []string
	set    []bool
}

// NewSelection returns an empty selection over n option dimensions.
func NewSelection(n int) Selection {
	if n < 0 {
		n = 0
	}
	return Selection{
		values: make([]string, n),
		set:    make([]bool, n),
	}
}

// Len returns the number of option dimensions.
func (s Selection) Len() int {
	return len(s.values)
}

// Set chooses value for dimension i. Out of range indexes are ignored.
func (s Selection) Set(i int, value string) {
	if i < 0 || i >= len(s.values) {
		return
	}
	s.values[i] = value
	s.set[i] = true
}

// Clear unsets dimension i.
func (s Selection) Clear(i int) {
	if i < 0 || i >= len(s.values) {
		return
	}
	s.values[i] = ""
	s.set[i] = false
}

// Value returns the chosen value for dimension i.
func (s Selection) Value(i int) (string, bool) {
	if i < 0 || i >= len(s.values) {
		return "", false
	}
	return s.values[i], s.set[i]
}

// Complete reports whether every dimension has a value.
func (s Selection) Complete() bool {
	for _, ok := range s.set {
		if !ok {
			return false
		}
	}
	return true
}

// Missing returns the indexes of unset dimensions in order.
func (s Selection) Missing() []int {
	var missing []int
	for i, ok := range s.set {
		if !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// Values returns a copy of the chosen values. Unset dimensions are empty.
func (s Selection) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// NewSelection returns an empty selection sized to the product's options.
func (p *Product) NewSelection() Selection {
	return NewSelection(len(p.Options))
}

// SelectionFromValues builds a selection from positional values. An empty
// string always means "not chosen", so an option whose real value is the
// empty string can never be selected this way.
func (p *Product) SelectionFromValues(values []string) (Selection, error) {
	if len(values) > len(p.Options) {
		return Selection{}, fmt.Errorf("product %s has %d options, got %d values", p.Handle, len(p.Options), len(values))
	}
	sel := p.NewSelection()
	for i, v := range values {
		if v != "" {
			sel.Set(i, v)
		}
	}
	return sel, nil
}

// SelectionFromNamed builds a selection keyed by option name.
func (p *Product) SelectionFromNamed(named map[string]string) (Selection, error) {
	sel := p.NewSelection()
	for name, v := range named {
		i := p.OptionIndex(name)
		if i < 0 {
			return Selection{}, fmt.Errorf("product %s has no option %q", p.Handle, name)
		}
		if v != "" {
			sel.Set(i, v)
		}
	}
	return sel, nil
}

// OptionIndex returns the position of the named dimension or -1.
func (p *Product) OptionIndex(name string) int {
	for i, opt := range p.Options {
		if opt == name {
			return i
		}
	}
	return -1
}

// MissingOptions returns the names of the dimensions sel leaves unset.
func (p *Product) MissingOptions(sel Selection) []string {
	var names []string
	for _, i := range sel.Missing() {
		if i < len(p.Options) {
			names = append(names, p.Options[i])
		}
	}
	return names
}
