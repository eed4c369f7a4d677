package middleware

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/config"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	claimsKey      = "claims"
	currentUserKey = "current_user"
)

// UserLoader resolves the live account behind a token.
type UserLoader interface {
	CurrentUser(ctx context.Context, userID uint) (*models.User, error)
}

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		},
	})
}

// AccessToken admits access tokens only. With fresh set, tokens minted by
// refresh are rejected too.
func AccessToken(fresh bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals("user").(*jwt.Token)
		claims, err := services.ClaimsFromToken(token)
		if err != nil || claims.Type != services.TokenTypeAccess {
			return unauthorized(c, "Unauthorized: access token required")
		}
		if fresh && !claims.Fresh {
			return unauthorized(c, "Unauthorized: fresh token required")
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// LoadUser reloads the token's account so deleted users are turned away
// even while their tokens have not expired.
func LoadUser(users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(claimsKey).(*services.Claims)
		if !ok {
			return unauthorized(c, "Unauthorized")
		}

		user, err := users.CurrentUser(c.UserContext(), claims.UserID)
		if err != nil {
			if services.KindOf(err) == services.KindAuth {
				return unauthorized(c, "Unauthorized: user not found or inactive")
			}
			slog.Error("failed to load current user", "user_id", claims.UserID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// Authenticated chains bearer verification, token type checks and user
// loading.
func Authenticated(cfg *config.Config, users UserLoader, fresh bool) []fiber.Handler {
	return []fiber.Handler{JWTProtected(cfg), AccessToken(fresh), LoadUser(users)}
}

// CurrentUser returns the account loaded by LoadUser.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: msg,
	})
}
