// internal/infrastructure/database/postgres/saved_products.go
package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IDList is a list of ids stored as a JSON text column
type IDList []uint

// Value implements driver.Valuer
func (l IDList) Value() (driver.Value, error) {
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
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = IDList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for IDList: %T", value)
	}
}

// SavedProducts is the per-identity remote copy of a user's saved product
// set, one row per user
type SavedProducts struct {
	UserID     uint      `gorm:"primaryKey" json:"user_id"`
	ProductIDs IDList    `gorm:"type:text" json:"product_ids"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (SavedProducts) TableName() string {
	return "user_saved_products"
}

// SavedProductsStore implements the wishlist remote port over Postgres
type SavedProductsStore struct {
	db *gorm.DB
}

// NewSavedProductsStore creates a saved-products store
func NewSavedProductsStore(db *gorm.DB) *SavedProductsStore {
	return &SavedProductsStore{db: db}
}

// ReadSavedProductIDs reads the saved set for a user. A user without a row
// has an empty set.
func (s *SavedProductsStore) ReadSavedProductIDs(ctx context.Context, userID uint) ([]uint, error) {
	var record SavedProducts
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return []uint{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read saved products: %w", err)
	}
	return record.ProductIDs, nil
}

// WriteSavedProductIDs replaces the saved set for a user, creating the row if
// needed
func (s *SavedProductsStore) WriteSavedProductIDs(ctx context.Context, userID uint, ids []uint) error {
	record := SavedProducts{
		UserID:     userID,
		ProductIDs: IDList(ids),
		UpdatedAt:  time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"product_ids", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to write saved products: %w", err)
	}
	return nil
}
