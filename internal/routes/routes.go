package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/oremi-app/oremi-backend/internal/config"
	"github.com/oremi-app/oremi-backend/internal/handlers"
	"github.com/oremi-app/oremi-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	friendHandler *handlers.FriendHandler,
	settingsHandler *handlers.SettingsHandler,
	backupHandler *handlers.BackupHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected auth routes
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Everything below requires a valid JWT.
	protected := api.Group("", middleware.JWTProtected(cfg))

	friends := protected.Group("/friends")
	friends.Post("", friendHandler.Create)
	friends.Get("", friendHandler.List)
	friends.Get("/search", friendHandler.Search)
	friends.Get("/:id", friendHandler.Get)
	friends.Put("/:id", friendHandler.Update)
	friends.Post("/:id/seen", friendHandler.MarkSeen)
	friends.Delete("/:id", friendHandler.Delete)

	prefs := protected.Group("/settings")
	prefs.Get("", settingsHandler.Get)
	prefs.Put("/sort", settingsHandler.SetSort)
	prefs.Put("/checkin/interval", settingsHandler.SetCheckInInterval)
	prefs.Put("/checkin/every", settingsHandler.SetCheckInEvery)
	prefs.Put("/checkin/enabled", settingsHandler.SetCheckInEnabled)

	backup := protected.Group("/backup")
	backup.Get("/export", backupHandler.Export)
	backup.Post("/import", backupHandler.Import)
}
