// internal/domain/catalog/entity.go
package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"gorm.io/gorm"
)

// OptionMap maps an attribute name to the one option value a variant selects
// for that axis. Stored as a JSON text column.
type OptionMap map[string]string

// Value implements driver.Valuer
func (m OptionMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (m *OptionMap) Scan(value interface{}) error {
	if value == nil {
		*m = OptionMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for OptionMap: %T", value)
	}
}

// Equal reports whether two option maps select the same value on every axis
func (m OptionMap) Equal(other OptionMap) bool {
	if len(m) != len(other) {
		return false
	}
	for name, option := range m {
		if other[name] != option {
			return false
		}
	}
	return true
}

// StringList is an ordered list of strings stored as a JSON text column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// Product represents the product entity
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SKU         string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"` // Price in cents
	SalePrice   int64          `json:"sale_price"`            // 0 means no sale
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	BrandID     *uint          `gorm:"index" json:"brand_id"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	IsFeatured  bool           `gorm:"default:false" json:"is_featured"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category   Category    `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Brand      *Brand      `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"brand,omitempty"`
	Images     []Image     `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Attributes []Attribute `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attributes,omitempty"`
	Variants   []Variant   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
	Reviews    []Review    `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reviews,omitempty"`
}

// Attribute declares one configuration axis of a product (e.g. "Color") with
// its ordered list of allowed option values
type Attribute struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProductID uint       `gorm:"not null;index" json:"product_id"`
	Name      string     `gorm:"not null;size:100" json:"name"`
	Options   StringList `gorm:"type:text" json:"options"`
	SortOrder int        `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Variant represents a specific purchasable configuration of a product,
// selecting one option per declared attribute axis
type Variant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	SKU       string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Options   OptionMap      `gorm:"type:text" json:"options"`
	Price     int64          `gorm:"not null" json:"price"` // Price in cents
	SalePrice int64          `json:"sale_price"`            // 0 means no sale
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// Brand represents product brands
type Brand struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Logo      string         `gorm:"size:500" json:"logo"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Image represents product images
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	AltText   string    `gorm:"size:255" json:"alt_text"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review represents customer reviews
type Review struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Rating    int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Title     string         `gorm:"size:255" json:"title"`
	Content   string         `gorm:"type:text" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string   { return "products" }
func (Attribute) TableName() string { return "product_attributes" }
func (Variant) TableName() string   { return "product_variants" }
func (Category) TableName() string  { return "categories" }
func (Brand) TableName() string     { return "brands" }
func (Image) TableName() string     { return "product_images" }
func (Review) TableName() string    { return "product_reviews" }

// Business methods for Product

// HasVariants reports whether the product declares any variants
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// EffectivePrice returns the product-level price a buyer pays
func (p *Product) EffectivePrice() int64 {
	return pricing.Effective(p.Price, p.SalePrice)
}

// VariantPriceRange computes the min/max base price across all variants.
// The boolean is false when the product has no variants.
func (p *Product) VariantPriceRange() (pricing.Range, bool) {
	prices := make([]int64, len(p.Variants))
	for i, v := range p.Variants {
		prices[i] = v.Price
	}
	return pricing.PriceRange(prices)
}

// FindVariant returns the unique variant whose option map exactly equals the
// given selection, or false when no variant matches. A sparse variant matrix
// is expected; absence of a match is a normal outcome.
func (p *Product) FindVariant(selection OptionMap) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Options.Equal(selection) {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// EffectivePrice returns the variant-level price a buyer pays
func (v *Variant) EffectivePrice() int64 {
	return pricing.Effective(v.Price, v.SalePrice)
}

// ValidateVariants enforces the attribute/variant invariants: every declared
// attribute carries at least one option, every variant selects exactly one
// declared option per declared axis, and no two variants share the same
// combination.
func (p *Product) ValidateVariants() error {
	if len(p.Variants) > 0 && len(p.Attributes) == 0 {
		return fmt.Errorf("product %q declares variants but no attributes", p.SKU)
	}

	allowed := make(map[string]map[string]bool, len(p.Attributes))
	for _, attr := range p.Attributes {
		if attr.Name == "" {
			return fmt.Errorf("product %q declares an attribute with an empty name", p.SKU)
		}
		if len(attr.Options) == 0 {
			return fmt.Errorf("attribute %q of product %q has no options", attr.Name, p.SKU)
		}
		if _, dup := allowed[attr.Name]; dup {
			return fmt.Errorf("attribute %q of product %q is declared twice", attr.Name, p.SKU)
		}
		options := make(map[string]bool, len(attr.Options))
		for _, opt := range attr.Options {
			if options[opt] {
				return fmt.Errorf("attribute %q of product %q repeats option %q", attr.Name, p.SKU, opt)
			}
			options[opt] = true
		}
		allowed[attr.Name] = options
	}

	seen := make(map[string]string, len(p.Variants))
	for _, variant := range p.Variants {
		if len(variant.Options) != len(allowed) {
			return fmt.Errorf("variant %q must select exactly one option per attribute axis", variant.SKU)
		}
		for name, option := range variant.Options {
			options, ok := allowed[name]
			if !ok {
				return fmt.Errorf("variant %q references undeclared attribute %q", variant.SKU, name)
			}
			if !options[option] {
				return fmt.Errorf("variant %q selects unknown option %q for attribute %q", variant.SKU, option, name)
			}
		}

		key := combinationKey(variant.Options, p.Attributes)
		if other, dup := seen[key]; dup {
			return fmt.Errorf("variants %q and %q share the same attribute combination", other, variant.SKU)
		}
		seen[key] = variant.SKU
	}

	return nil
}

// combinationKey renders an option map in declared attribute order so equal
// combinations produce equal keys
func combinationKey(options OptionMap, attributes []Attribute) string {
	key := ""
	for _, attr := range attributes {
		key += attr.Name + "=" + options[attr.Name] + ";"
	}
	return key
}
