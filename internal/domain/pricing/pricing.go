// internal/domain/pricing/pricing.go
package pricing

import "fmt"

// Prices are stored as int64 cents across the application. Display formatting
// follows a single fixed convention; it is not configurable per call site.
const (
	currencySymbol = "$"
)

// Effective returns the price a buyer pays: the sale price when one is set
// (greater than zero), otherwise the base price.
func Effective(basePrice, salePrice int64) int64 {
	if salePrice > 0 {
		return salePrice
	}
	return basePrice
}

// Range represents a min/max price span in cents. Min == Max when all
// candidates share one price.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Single reports whether the range collapses to one value
func (r Range) Single() bool {
	return r.Min == r.Max
}

// Display renders the range using the fixed currency convention
func (r Range) Display() string {
	if r.Single() {
		return FormatCurrency(r.Min)
	}
	return fmt.Sprintf("%s - %s", FormatCurrency(r.Min), FormatCurrency(r.Max))
}

// PriceRange computes the min/max across the given prices. The boolean is
// false when the input is empty.
func PriceRange(prices []int64) (Range, bool) {
	if len(prices) == 0 {
		return Range{}, false
	}

	r := Range{Min: prices[0], Max: prices[0]}
	for _, p := range prices[1:] {
		if p < r.Min {
			r.Min = p
		}
		if p > r.Max {
			r.Max = p
		}
	}
	return r, true
}

// FormatCurrency renders an amount in cents using the fixed currency
// convention, e.g. 1950 -> "$19.50"
func FormatCurrency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, currencySymbol, cents/100, cents%100)
}
