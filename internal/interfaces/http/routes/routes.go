// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// SetupProductRoutes sets up catalog related routes
func SetupProductRoutes(rg *gin.RouterGroup, catalogService *catalog.Service, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(catalogService, cfg)

	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/featured", productHandler.GetFeaturedProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("/:id/price", productHandler.ResolvePrice)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, carts *cart.Manager, catalogService *catalog.Service, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(carts, catalogService, cfg)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.GET("/count", cartHandler.GetCartItemCount)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
	}
}

// SetupWishlistRoutes sets up wishlist related routes
func SetupWishlistRoutes(rg *gin.RouterGroup, wishlists *wishlist.Manager, catalogService *catalog.Service, cfg *config.Config) {
	wishlistHandler := handlers.NewWishlistHandler(wishlists, catalogService, cfg)

	wishlistGroup := rg.Group("/wishlist")
	wishlistGroup.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		wishlistGroup.GET("", wishlistHandler.GetWishlist)
		wishlistGroup.GET("/count", wishlistHandler.GetWishlistCount)
		wishlistGroup.POST("/items", wishlistHandler.AddToWishlist)
		wishlistGroup.DELETE("/items/:id", wishlistHandler.RemoveFromWishlist)
	}
}
