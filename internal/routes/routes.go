package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/config"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users middleware.UserLoader,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter, API_RATE_LIMIT req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.APIRateLimit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit, AUTH_RATE_LIMIT req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               cfg.AuthRateLimit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Get("/register/:user_id/:act_id", authHandler.ActivateByLink)
	auth.Post("/otp", authHandler.ActivateByOTP)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/password-reset-unknown", authHandler.RequestPasswordReset)
	auth.Post("/password-reset-unknown/:val_id", authHandler.RedeemPasswordReset)

	// Sensitive routes need a token minted by a full login
	auth.Post("/password-reset", append(middleware.Authenticated(cfg, users, true), authHandler.ChangePassword)...)
	auth.Delete("/delete", append(middleware.Authenticated(cfg, users, true), authHandler.DeleteAccount)...)

	user := api.Group("/user")
	user.Get("", append(middleware.Authenticated(cfg, users, false), profileHandler.Get)...)
	user.Post("/profile", append(middleware.Authenticated(cfg, users, true), profileHandler.Complete)...)
	user.Post("/update", append(middleware.Authenticated(cfg, users, true), profileHandler.Update)...)
}
