// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	catalogService *catalog.Service
	config         *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogService *catalog.Service, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		config:         cfg,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req catalog.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.catalogService.GetProducts(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    response,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	product, err := h.catalogService.GetProductByID(uint(productID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    product,
	})
}

// GetProductBySlug handles GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    product,
	})
}

// GetFeaturedProducts handles GET /products/featured
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	products, err := h.catalogService.GetFeaturedProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve featured products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Featured products retrieved successfully",
		"data":    products,
	})
}

// GetCategories handles GET /products/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.GetCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve categories",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    categories,
	})
}

// ResolvePriceRequest represents a price resolution request
type ResolvePriceRequest struct {
	Selections map[string]string `json:"selections"`
}

// ResolvePriceResponse represents the resolved variant and display price for
// a selection
type ResolvePriceResponse struct {
	Variant     *catalog.Variant  `json:"variant,omitempty"`
	Price       pricing.Range     `json:"price"`
	Display     string            `json:"display"`
	Unavailable bool              `json:"unavailable"`
	Selections  catalog.OptionMap `json:"selections"`
}

// ResolvePrice handles POST /products/:id/price
func (h *ProductHandler) ResolvePrice(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req ResolvePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalogService.GetProductByID(uint(productID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	selection := catalog.NewSelection(product)
	for attribute, option := range req.Selections {
		if err := selection.Select(attribute, option); err != nil {
			status := http.StatusBadRequest
			if !errors.Is(err, catalog.ErrUnknownAttribute) && !errors.Is(err, catalog.ErrUnknownOption) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{
				"error": err.Error(),
			})
			return
		}
	}

	priceRange := selection.EffectivePrice()
	response := ResolvePriceResponse{
		Price:       priceRange,
		Display:     priceRange.Display(),
		Unavailable: selection.Unavailable(),
		Selections:  selection.Choices(),
	}
	if variant, ok := selection.CurrentVariant(); ok {
		response.Variant = variant
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Price resolved successfully",
		"data":    response,
	})
}
