package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const resetPurpose = "password_reset"

// ResetPayload is what a password reset link carries.
type ResetPayload struct {
	Email        string
	ValidationID string
}

// ResetTokenCodec turns a ResetPayload into an opaque, signed, expiring URL
// segment and back.
type ResetTokenCodec struct {
	cfg *config.Config
}

func NewResetTokenCodec(cfg *config.Config) *ResetTokenCodec {
	return &ResetTokenCodec{cfg: cfg}
}

func (c *ResetTokenCodec) Encode(p ResetPayload) (string, error) {
	claims := jwt.MapClaims{
		"purpose":       resetPurpose,
		"email":         p.Email,
		"validation_id": p.ValidationID,
		"iat":           time.Now().Unix(),
		"exp":           time.Now().Add(c.cfg.ResetTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

func (c *ResetTokenCodec) Decode(raw string) (*ResetPayload, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(c.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	if purpose, _ := mc["purpose"].(string); purpose != resetPurpose {
		return nil, errors.New("not a password reset token")
	}

	email, _ := mc["email"].(string)
	vid, _ := mc["validation_id"].(string)
	if email == "" {
		return nil, errors.New("missing email")
	}
	if _, err := uuid.Parse(vid); err != nil {
		return nil, fmt.Errorf("malformed validation id: %w", err)
	}
	return &ResetPayload{Email: email, ValidationID: vid}, nil
}
