package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/obioha-dev/campusmarket/internal/admin"
	"github.com/obioha-dev/campusmarket/internal/alerts"
	"github.com/obioha-dev/campusmarket/internal/auth"
	"github.com/obioha-dev/campusmarket/internal/cache"
	"github.com/obioha-dev/campusmarket/internal/cart"
	"github.com/obioha-dev/campusmarket/internal/config"
	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/market"
	"github.com/obioha-dev/campusmarket/internal/messaging"
	"github.com/obioha-dev/campusmarket/internal/middleware"
	"github.com/obioha-dev/campusmarket/internal/rating"
	"github.com/obioha-dev/campusmarket/internal/recommend"
	"github.com/obioha-dev/campusmarket/internal/user"
	"github.com/obioha-dev/campusmarket/internal/utils"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db.Init(cfg.DatabaseURL)
	cache.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SummaryCacheTTL)
	alerts.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	auth.SetTokenExpiry(cfg.TokenExpiry)
	auth.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Validator = utils.NewRequestValidator()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// Public browsing. Product detail takes an optional identity so views by
	// signed-in users feed the recommender.
	e.GET("/", market.Home)
	e.GET("/products", market.List)
	e.GET("/products/:id", market.Detail, middleware.OptionalJWT)
	e.GET("/users/:username", user.PublicProfile)
	e.GET("/sellers/:username/ratings", rating.ListForSeller)

	authGroup := e.Group("/auth")
	authGroup.Use(echoMiddleware.RateLimiter(echoMiddleware.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)
	authGroup.GET("/me", auth.Me, middleware.JWTMiddleware)

	api := e.Group("")
	api.Use(middleware.JWTMiddleware)

	api.PATCH("/users/me", user.UpdateProfile)

	api.GET("/products/mine", market.Mine, middleware.RequireRoles("seller", "both"))
	api.POST("/products", market.Create, middleware.RequireRoles("seller", "both"))
	api.PATCH("/products/:id", market.Update)
	api.DELETE("/products/:id", market.Delete)

	api.POST("/cart/items/:productID", cart.Add)
	api.GET("/cart", cart.View)
	api.PATCH("/cart/items/:id", cart.UpdateQuantity)
	api.DELETE("/cart/items/:id", cart.Remove)

	api.POST("/products/:id/conversations", messaging.Start)
	api.GET("/conversations", messaging.List)
	api.GET("/conversations/unread_count", messaging.UnreadCount)
	api.GET("/conversations/:id", messaging.Detail)
	api.POST("/conversations/:id/messages", messaging.Post)

	api.POST("/sellers/:username/ratings", rating.Submit)
	api.GET("/recommendations", recommend.ForUser)

	api.GET("/notifications", alerts.List)
	api.POST("/notifications/:id/read", alerts.MarkRead)

	adminGroup := e.Group("/admin")
	adminGroup.Use(middleware.JWTMiddleware, middleware.AdminGuard)
	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/users", admin.Users)
	adminGroup.GET("/products", admin.Products)
	adminGroup.POST("/products/:id/hide", admin.HideProduct)
	adminGroup.POST("/products/:id/unhide", admin.UnhideProduct)

	log.Printf("campus market listening on :%s", cfg.Port)
	log.Fatal(e.Start(":" + cfg.Port))
}
