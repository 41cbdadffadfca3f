package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// parsePrice converts a price cell into cents. Under unitAuto a bare integer is
// already in cents ("1999") and anything with a decimal mark is in major units
// ("19.99", "19,99"). unitMajor always reads major units ("3" is 300).
func parsePrice(s string, unit priceUnit) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimLeft(clean, "$£€")
	clean = strings.ReplaceAll(clean, " ", "")

	hasMark := strings.ContainsAny(clean, ".,")

	// A lone comma is a decimal mark; with both marks present the last one wins.
	if i := strings.LastIndexAny(clean, ".,"); i >= 0 {
		clean = strings.NewReplacer(".", "", ",", "").Replace(clean[:i]) + "." + clean[i+1:]
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}

	if d.IsNegative() {
		return 0, fmt.Errorf("invalid price %q: negative", s)
	}

	if unit == unitAuto && !hasMark {
		return d.IntPart(), nil
	}

	return d.Mul(hundred).Round(0).IntPart(), nil
}
