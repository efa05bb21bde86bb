// Package money formats minor-unit amounts with storefront money format
// strings such as "${{amount}}" or "{{amount_with_comma_separator}} €".
package money

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/loganlanou/quickview/internal/variants"
)

// DefaultFormat is used when a shop has no money format configured.
const DefaultFormat = "${{amount}}"

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

type style struct {
	precision int
	thousands string
	decimal   string
}

var styles = map[string]style{
	"amount":                                  {2, ",", "."},
	"amount_no_decimals":                      {0, ",", "."},
	"amount_with_comma_separator":             {2, ".", ","},
	"amount_no_decimals_with_comma_separator": {0, ".", ","},
	"amount_with_apostrophe_separator":        {2, "'", "."},
	"amount_no_decimals_with_space_separator": {0, " ", ""},
	"amount_with_space_separator":             {2, " ", ","},
	"amount_with_period_and_space_separator":  {2, " ", "."},
}

// Format renders cents using format. The first placeholder is replaced;
// unknown placeholder names render like {{amount}}.
func Format(cents int64, format string) string {
	if format == "" {
		format = DefaultFormat
	}

	loc := placeholder.FindStringSubmatchIndex(format)
	if loc == nil {
		return format
	}

	st, ok := styles[format[loc[2]:loc[3]]]
	if !ok {
		st = styles["amount"]
	}

	return format[:loc[0]] + formatAmount(cents, st) + format[loc[1]:]
}

func formatAmount(cents int64, st style) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	var major, minor int64
	if st.precision == 0 {
		major = (cents + 50) / 100
	} else {
		major = cents / 100
		minor = cents % 100
	}

	out := groupThousands(major, st.thousands)
	if st.precision > 0 {
		out += st.decimal + fmt.Sprintf("%02d", minor)
	}
	if neg {
		return "-" + out
	}
	return out
}

func groupThousands(n int64, sep string) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// PriceHTML renders the price block of the quick view: the current price,
// followed by the struck through original price when on sale.
func PriceHTML(p variants.Price, format string) string {
	out := "<span>" + html.EscapeString(Format(p.Current, format)) + "</span>"
	if p.Original != nil {
		out += "<s>" + html.EscapeString(Format(*p.Original, format)) + "</s>"
	}
	return out
}
