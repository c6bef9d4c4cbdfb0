// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&catalog.Category{},
		&catalog.Brand{},
		&catalog.Product{},
		&catalog.Image{},
		&catalog.Attribute{},
		&catalog.Variant{},
		&catalog.Review{},
		&SavedProducts{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured_active ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_active ON product_variants(product_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_attributes_product ON product_attributes(product_id, sort_order)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Additional indexes created")
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🔄 Seeding initial data...")

	var count int64
	m.db.Model(&catalog.Category{}).Count(&count)
	if count > 0 {
		log.Println("ℹ️  Initial data already present, skipping seed")
		return nil
	}

	apparel := catalog.Category{
		Name:        "Apparel",
		Slug:        "apparel",
		Description: "Clothing and accessories",
		IsActive:    true,
	}
	if err := m.db.Create(&apparel).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	shirt := catalog.Product{
		SKU:         "SHIRT-001",
		Name:        "Classic Shirt",
		Slug:        "classic-shirt",
		Description: "A classic shirt available in multiple colors and sizes",
		Price:       1000,
		CategoryID:  apparel.ID,
		IsActive:    true,
		IsFeatured:  true,
		Attributes: []catalog.Attribute{
			{Name: "Color", Options: catalog.StringList{"Red", "Blue"}, SortOrder: 0},
			{Name: "Size", Options: catalog.StringList{"S", "M"}, SortOrder: 1},
		},
		Variants: []catalog.Variant{
			{SKU: "SHIRT-001-RED-S", Options: catalog.OptionMap{"Color": "Red", "Size": "S"}, Price: 1000, IsActive: true},
			{SKU: "SHIRT-001-RED-M", Options: catalog.OptionMap{"Color": "Red", "Size": "M"}, Price: 1200, IsActive: true},
			{SKU: "SHIRT-001-BLUE-S", Options: catalog.OptionMap{"Color": "Blue", "Size": "S"}, Price: 1100, IsActive: true},
		},
	}
	if err := shirt.ValidateVariants(); err != nil {
		return fmt.Errorf("seed product is invalid: %w", err)
	}
	if err := m.db.Create(&shirt).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Println("✅ Initial data seeded")
	return nil
}
