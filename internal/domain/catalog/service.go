// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles catalog reads. Product data is treated as immutable input
// by the cart and wishlist stores.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	BrandID    uint   `form:"brand_id"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
	MinPrice   int64  `form:"min_price"`
	MaxPrice   int64  `form:"max_price"`
	IsFeatured *bool  `form:"is_featured"`
}

// ProductListResponse represents product response with pagination
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves active products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	query := s.productQuery().Where("is_active = ?", true)

	// Apply filters
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.BrandID > 0 {
		query = query.Where("brand_id = ?", req.BrandID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}

	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}

	if req.IsFeatured != nil {
		query = query.Where("is_featured = ?", *req.IsFeatured)
	}

	// Count before pagination
	if err := query.Model(&Product{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting and pagination
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	offset := (req.Page - 1) * req.Limit
	err := query.Order(s.buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(offset).Limit(req.Limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetProductByID retrieves a single active product with its attributes and
// variants loaded
func (s *Service) GetProductByID(id uint) (*Product, error) {
	var product Product
	err := s.productQuery().
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetProductBySlug retrieves a single active product by its slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var product Product
	err := s.productQuery().
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetProductsByIDs resolves a set of product ids to full product records.
// IDs that no longer resolve are silently dropped.
func (s *Service) GetProductsByIDs(ctx context.Context, ids []uint) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	var products []Product
	err := s.productQuery().WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	return products, nil
}

// GetFeaturedProducts retrieves featured products, cached in Redis
func (s *Service) GetFeaturedProducts(ctx context.Context) ([]Product, error) {
	const cacheKey = "catalog:featured"

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var products []Product
			if jsonErr := json.Unmarshal([]byte(cached), &products); jsonErr == nil {
				return products, nil
			}
			// Corrupt cache entry; fall through to the database
		}
	}

	var products []Product
	err := s.productQuery().WithContext(ctx).
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("updated_at DESC").
		Limit(20).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve featured products: %w", err)
	}

	if s.redisClient != nil {
		if data, jsonErr := json.Marshal(products); jsonErr == nil {
			s.redisClient.Set(ctx, cacheKey, data, s.config.Store.FeaturedCacheTTL)
		}
	}

	return products, nil
}

// GetCategories retrieves all active categories ordered for display
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	err := s.db.Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateProduct persists a new product after validating its attribute and
// variant invariants
func (s *Service) CreateProduct(product *Product) error {
	if err := product.ValidateVariants(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	if err := s.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Private helper methods

func (s *Service) productQuery() *gorm.DB {
	return s.db.Model(&Product{}).
		Preload("Category").
		Preload("Brand").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC, id ASC")
		}).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Variants", "is_active = ?", true)
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"price":      true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
