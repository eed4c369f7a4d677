package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/config"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the identity carried by an access or refresh token.
type Claims struct {
	UserID uint
	Type   string
	Fresh  bool
}

type TokenService struct {
	cfg *config.Config
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{cfg: cfg}
}

// IssueAccess signs an access token. Only tokens minted by a full login are
// fresh.
func (s *TokenService) IssueAccess(user *models.User, fresh bool) (string, error) {
	return s.sign(jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"type":  TokenTypeAccess,
		"fresh": fresh,
		"role":  string(user.Role),
		"jti":   uuid.NewString(),
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	})
}

func (s *TokenService) IssueRefresh(user *models.User) (string, error) {
	return s.sign(jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"type": TokenTypeRefresh,
		"jti":  uuid.NewString(),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(s.cfg.JWTRefreshExpiry).Unix(),
	})
}

func (s *TokenService) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry of raw and returns its claims.
func (s *TokenService) Parse(raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return ClaimsFromToken(token)
}

// ClaimsFromToken reads Claims out of an already verified token.
func ClaimsFromToken(token *jwt.Token) (*Claims, error) {
	if token == nil || !token.Valid {
		return nil, errors.New("token not valid")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}

	sub, _ := mc["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return nil, errors.New("invalid subject claim")
	}
	typ, _ := mc["type"].(string)
	if typ != TokenTypeAccess && typ != TokenTypeRefresh {
		return nil, errors.New("invalid token type")
	}
	fresh, _ := mc["fresh"].(bool)

	return &Claims{UserID: uint(id), Type: typ, Fresh: fresh}, nil
}
