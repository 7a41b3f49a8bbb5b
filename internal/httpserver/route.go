package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	CartHandler     *CartHTTP
	OrderHandler    *OrderHTTP
	CatalogHandler  *CatalogHTTP
	WishlistHandler *WishlistHTTP
	ReviewHandler   *ReviewHTTP
	AuthHandler     *AuthHTTP
	AdminHandler    *AdminHTTP

	JWTSecret []byte
	Refresher middleware.Refresher
	// Roles re-reads the caller's role on admin routes.
	Roles middleware.RoleLookup
	// DB backs the readiness probe.
	DB *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Warn("ready_check_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.Refresher)
	authMW.Roles = d.Roles
	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/user", d.AuthHandler.CurrentUser, authMW.RequireAuth)
	auth.POST("/request-admin", d.AuthHandler.RequestAdmin, authMW.RequireAuth)

	api.GET("/categories", d.CatalogHandler.ListCategories)
	api.GET("/products", d.CatalogHandler.ListProducts)
	api.GET("/products/featured", d.CatalogHandler.Featured)
	api.GET("/products/:id", d.CatalogHandler.GetProduct)
	api.GET("/products/:id/reviews", d.ReviewHandler.ListByProduct)
	api.GET("/search", d.CatalogHandler.Search)

	cart := api.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/add", d.CartHandler.AddItem)
	cart.PATCH("/items/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)
	cart.DELETE("", d.CartHandler.Clear)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.POST("", d.OrderHandler.Create)
	orders.GET("", d.OrderHandler.List)
	orders.GET("/:id", d.OrderHandler.Get)

	wishlist := api.Group("/wishlist", authMW.RequireAuth)
	wishlist.GET("", d.WishlistHandler.List)
	wishlist.POST("", d.WishlistHandler.Add)
	wishlist.DELETE("/:productId", d.WishlistHandler.Remove)

	api.POST("/reviews", d.ReviewHandler.Create, authMW.RequireAuth)

	admin := api.Group("/admin", authMW.RequireAdmin)
	admin.GET("/stats", d.AdminHandler.Stats)
	admin.GET("/orders", d.OrderHandler.ListAll)
	admin.GET("/orders/export", d.AdminHandler.ExportOrders)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)

	admin.GET("/products/export", d.AdminHandler.ExportProducts)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PUT("/products/:id", d.CatalogHandler.ReplaceProduct)
	admin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)

	admin.POST("/categories", d.CatalogHandler.CreateCategory)
	admin.PATCH("/categories/:id", d.CatalogHandler.UpdateCategory)
	admin.DELETE("/categories/:id", d.CatalogHandler.DeleteCategory)
}
