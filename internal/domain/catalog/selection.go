// internal/domain/catalog/selection.go
package catalog

import (
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

// Selection errors
var (
	ErrUnknownAttribute = fmt.Errorf("unknown attribute")
	ErrUnknownOption    = fmt.Errorf("unknown option")
)

// Selection tracks a buyer's current choice on each of a product's attribute
// axes and resolves it against the declared variants. Each axis defaults to
// its first declared option, so a freshly created selection is complete.
type Selection struct {
	product *Product
	choices OptionMap
}

// NewSelection creates a selection for the given product with every axis
// pre-selected to its first declared option
func NewSelection(product *Product) *Selection {
	choices := make(OptionMap, len(product.Attributes))
	for _, attr := range product.Attributes {
		if len(attr.Options) > 0 {
			choices[attr.Name] = attr.Options[0]
		}
	}
	return &Selection{
		product: product,
		choices: choices,
	}
}

// Select records the choice for one attribute axis, overwriting any prior
// choice for that axis. Unknown attributes or options are rejected before any
// state changes.
func (s *Selection) Select(attribute, option string) error {
	for _, attr := range s.product.Attributes {
		if attr.Name != attribute {
			continue
		}
		for _, opt := range attr.Options {
			if opt == option {
				s.choices[attribute] = option
				return nil
			}
		}
		return fmt.Errorf("%w: %q is not an option of attribute %q", ErrUnknownOption, option, attribute)
	}
	return fmt.Errorf("%w: product %q has no attribute %q", ErrUnknownAttribute, s.product.SKU, attribute)
}

// Choices returns a copy of the current per-axis choices
func (s *Selection) Choices() OptionMap {
	copied := make(OptionMap, len(s.choices))
	for name, option := range s.choices {
		copied[name] = option
	}
	return copied
}

// Complete reports whether every declared axis has a choice
func (s *Selection) Complete() bool {
	return len(s.choices) == len(s.product.Attributes)
}

// CurrentVariant returns the unique variant whose option map exactly equals
// the full current selection, or false when the selection is incomplete or no
// variant matches
func (s *Selection) CurrentVariant() (*Variant, bool) {
	if !s.Complete() {
		return nil, false
	}
	return s.product.FindVariant(s.choices)
}

// Unavailable reports whether the selection is complete but matches no
// variant. The variant matrix may be sparse, so this is an expected state the
// UI renders distinctly, not an error.
func (s *Selection) Unavailable() bool {
	if !s.product.HasVariants() || !s.Complete() {
		return false
	}
	_, ok := s.CurrentVariant()
	return !ok
}

// EffectivePrice computes the price to display for the current selection:
// the resolved variant's effective price; the product's own effective price
// when it declares no variants; otherwise the min/max range across all
// variants.
func (s *Selection) EffectivePrice() pricing.Range {
	if variant, ok := s.CurrentVariant(); ok {
		price := variant.EffectivePrice()
		return pricing.Range{Min: price, Max: price}
	}

	if !s.product.HasVariants() {
		price := s.product.EffectivePrice()
		return pricing.Range{Min: price, Max: price}
	}

	priceRange, _ := s.product.VariantPriceRange()
	return priceRange
}
