// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	carts          *cart.Manager
	catalogService *catalog.Service
	config         *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Manager, catalogService *catalog.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		carts:          carts,
		catalogService: catalogService,
		config:         cfg,
	}
}

// CartResponse represents a cart with items and totals
type CartResponse struct {
	Items  []cart.Item `json:"items"`
	Totals cart.Totals `json:"totals"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity   int    `json:"quantity"`
	VariantSKU string `json:"variant_sku"`
}

// store returns the cart for the current request owner. A signed-in user
// first adopts whatever was added under the anonymous session, so items put
// in the cart before authentication survive sign-in.
func (h *CartHandler) store(c *gin.Context) *cart.Store {
	ctx := c.Request.Context()
	ownerKey := middleware.OwnerKey(c)
	if _, ok := middleware.GetUserIDFromContext(c); ok {
		sessionKey := "session:" + middleware.GetSessionIDFromContext(c)
		return h.carts.Adopt(ctx, sessionKey, ownerKey)
	}
	return h.carts.Get(ctx, ownerKey)
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	store := h.store(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    CartResponse{Items: store.Items(), Totals: store.Totals()},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
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

	// Resolve the variant snapshot when a SKU is given
	var variant *catalog.Variant
	if req.VariantSKU != "" {
		for i := range product.Variants {
			if product.Variants[i].SKU == req.VariantSKU {
				variant = &product.Variants[i]
				break
			}
		}
		if variant == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Product variant not found or inactive",
			})
			return
		}
	}

	store := h.store(c)
	if err := store.Add(c.Request.Context(), *product, variant, req.Quantity); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, cart.ErrInvalidQuantity) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    CartResponse{Items: store.Items(), Totals: store.Totals()},
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	key := cart.ItemKey{ProductID: uint(productID), VariantSKU: req.VariantSKU}
	store := h.store(c)
	store.UpdateQuantity(c.Request.Context(), key, req.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    CartResponse{Items: store.Items(), Totals: store.Totals()},
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	key := cart.ItemKey{ProductID: uint(productID), VariantSKU: c.Query("variant_sku")}
	store := h.store(c)
	store.Remove(c.Request.Context(), key)

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    CartResponse{Items: store.Items(), Totals: store.Totals()},
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	store := h.store(c)
	store.Clear(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    CartResponse{Items: store.Items(), Totals: store.Totals()},
	})
}

// GetCartItemCount handles GET /cart/count
func (h *CartHandler) GetCartItemCount(c *gin.Context) {
	store := h.store(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item count retrieved successfully",
		"data": gin.H{
			"item_count": store.Totals().ItemCount,
		},
	})
}
