// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlists      *wishlist.Manager
	catalogService *catalog.Service
	config         *config.Config
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlists *wishlist.Manager, catalogService *catalog.Service, cfg *config.Config) *WishlistHandler {
	return &WishlistHandler{
		wishlists:      wishlists,
		catalogService: catalogService,
		config:         cfg,
	}
}

// AddToWishlistRequest represents add to wishlist request
type AddToWishlistRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// WishlistResponse represents a wishlist with its saved products
type WishlistResponse struct {
	Products []catalog.Product `json:"products"`
	Count    int               `json:"count"`
}

// store returns the wishlist for the current session, propagating the
// request's identity so the none-to-identity transition reconciles the local
// and remote sets
func (h *WishlistHandler) store(c *gin.Context) *wishlist.Store {
	sessionKey := "session:" + middleware.GetSessionIDFromContext(c)
	store := h.wishlists.Get(c.Request.Context(), sessionKey)

	userID, _ := middleware.GetUserIDFromContext(c)
	store.SetIdentity(c.Request.Context(), userID)
	return store
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	store := h.store(c)
	products := store.Products()

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data":    WishlistResponse{Products: products, Count: len(products)},
	})
}

// AddToWishlist handles POST /wishlist/items
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	var req AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalogService.GetProductByID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Product not found or inactive",
		})
		return
	}

	store := h.store(c)
	store.Add(c.Request.Context(), *product)
	products := store.Products()

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to wishlist successfully",
		"data":    WishlistResponse{Products: products, Count: len(products)},
	})
}

// RemoveFromWishlist handles DELETE /wishlist/items/:id
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	store := h.store(c)
	store.Remove(c.Request.Context(), uint(productID))
	products := store.Products()

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from wishlist successfully",
		"data":    WishlistResponse{Products: products, Count: len(products)},
	})
}

// GetWishlistCount handles GET /wishlist/count
func (h *WishlistHandler) GetWishlistCount(c *gin.Context) {
	store := h.store(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist count retrieved successfully",
		"data": gin.H{
			"count": store.Count(),
		},
	})
}
