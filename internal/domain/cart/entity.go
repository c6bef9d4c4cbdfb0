// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// Item represents one cart entry. The product (and variant, when one was
// chosen) is embedded by value as captured at add time; later catalog edits
// do not retroactively change items already in the cart.
type Item struct {
	Product  catalog.Product  `json:"product"`
	Variant  *catalog.Variant `json:"variant,omitempty"`
	Quantity int              `json:"quantity"`
	AddedAt  time.Time        `json:"added_at"`
}

// ItemKey identifies a cart entry for merge purposes: the product id plus the
// variant SKU when a variant was chosen
type ItemKey struct {
	ProductID  uint   `json:"product_id"`
	VariantSKU string `json:"variant_sku,omitempty"`
}

// Key returns the merge identity of the item
func (i Item) Key() ItemKey {
	key := ItemKey{ProductID: i.Product.ID}
	if i.Variant != nil {
		key.VariantSKU = i.Variant.SKU
	}
	return key
}

// UnitPrice returns the per-unit price captured in the snapshot: the
// variant's effective price when a variant was chosen, otherwise the
// product's
func (i Item) UnitPrice() int64 {
	if i.Variant != nil {
		return i.Variant.EffectivePrice()
	}
	return i.Product.EffectivePrice()
}

// Subtotal returns UnitPrice multiplied by quantity
func (i Item) Subtotal() int64 {
	return i.UnitPrice() * int64(i.Quantity)
}

// Totals represents calculated cart totals
type Totals struct {
	UniqueItems int   `json:"unique_items"` // Number of distinct entries
	ItemCount   int   `json:"item_count"`   // Sum of all quantities
	Subtotal    int64 `json:"subtotal"`     // Sum of item subtotals in cents
}

// snapshot is the serialized form persisted after every mutation
type snapshot struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}
