package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/cache"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/config"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	msgUserCreated       = "User created successfully"
	msgActivationSent    = "Verification email has been sent to your email address"
	msgOTPSent           = "OTP has been sent to your email address"
	msgMailFailed        = "Unable to send email, contact administrator"
	msgResetRequested    = "If an account exists for this email, a password reset link has been sent"
	msgPasswordChanged   = "Password changed successfully"
	msgPasswordReset     = "Password reset successfully"
	msgAccountActivated  = "User account successfully activated"
	msgUserLoggedIn      = "User successfully logged in"
	registerFieldsFormat = "invalid fields username, role, email and password"
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	cache  cache.Cache
	mailer mailer.Mailer
	hasher PasswordHasher
	tokens *TokenService
	resets *ResetTokenCodec
}

func NewAuthService(db *gorm.DB, cfg *config.Config, c cache.Cache, m mailer.Mailer, hasher PasswordHasher, tokens *TokenService) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		cache:  c,
		mailer: m,
		hasher: hasher,
		tokens: tokens,
		resets: NewResetTokenCodec(cfg),
	}
}

// Register creates an unactivated account and sends either an activation
// link or, when otp is set, a one-time code. Mail failures are reported in the
// returned messages and never undo the account.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, otp bool) (messages []string, err error) {
	defer func() { metrics.RecordAuthEvent("register", err) }()

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if fields, err := validation.Struct(req); err != nil {
		return nil, err
	} else if len(fields) > 0 {
		return nil, invalidFields(registerFieldsFormat, fields)
	}

	db := s.db.WithContext(ctx)
	taken, err := exists(db.Model(&models.User{}).Where("username = ?", req.Username))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	taken, err = exists(db.Model(&models.User{}).Where("email = ?", req.Email))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	if err := validation.CheckPassword(req.Password); err != nil {
		return nil, invalid(err)
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	activationID := uuid.NewString()
	user := models.User{
		Username:            req.Username,
		Email:               req.Email,
		Password:            hash,
		Role:                role,
		Active:              true,
		AccountActivationID: &activationID,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrAccountTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "action", "register", "otp", otp)
	messages = []string{msgUserCreated}

	if otp {
		return append(messages, s.sendActivationCode(ctx, &user)), nil
	}

	link := fmt.Sprintf("%s/api/auth/register/%d/%s", s.cfg.AppURL, user.ID, activationID)
	if err := s.mailer.SendActivationLink(ctx, user.Email, link); err != nil {
		slog.Error("activation mail failed", "user_id", user.ID, "action", "register", "error", err)
		return append(messages, msgMailFailed), nil
	}
	return append(messages, msgActivationSent), nil
}

func (s *AuthService) sendActivationCode(ctx context.Context, user *models.User) string {
	code, err := generateNumericCode(otpLength)
	if err != nil {
		slog.Error("otp generation failed", "user_id", user.ID, "action", "register", "error", err)
		return msgMailFailed
	}
	if err := s.cache.Set(ctx, cache.OTPKey(user.Username), code, s.cfg.OTPTTL); err != nil {
		slog.Error("otp store failed", "user_id", user.ID, "action", "register", "error", err)
		return msgMailFailed
	}
	if err := s.mailer.SendActivationCode(ctx, user.Email, code); err != nil {
		slog.Error("otp mail failed", "user_id", user.ID, "action", "register", "error", err)
		return msgMailFailed
	}
	return msgOTPSent
}

// ActivateByLink consumes the activation id of userID. The id is cleared in
// the same update, so a link works once.
func (s *AuthService) ActivateByLink(ctx context.Context, userID uint, activationID string) (msg string, err error) {
	defer func() { metrics.RecordAuthEvent("activate_link", err) }()

	if userID == 0 || activationID == "" {
		return "", ErrInvalidActivation
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND account_activation_id = ? AND active = ?", userID, activationID, true).
			Updates(map[string]interface{}{
				"account_activation":    true,
				"account_activation_id": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to activate user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidActivation
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return msgAccountActivated, nil
}

// ActivateByOTP checks code against the pending entry for username. Only the
// request whose delete removes the entry activates the account.
func (s *AuthService) ActivateByOTP(ctx context.Context, req *dto.ActivateOTPRequest) (msg string, err error) {
	defer func() { metrics.RecordAuthEvent("activate_otp", err) }()

	username := strings.TrimSpace(req.Username)
	code := strings.TrimSpace(req.OTP)
	if username == "" || code == "" {
		return "", ErrOTPRequired
	}

	key := cache.OTPKey(username)
	stored, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return "", ErrOTPMismatch
	}

	removed, err := s.cache.Delete(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to consume otp: %w", err)
	}
	if !removed {
		return "", ErrOTPNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("username = ? AND active = ?", username, true).
			Updates(map[string]interface{}{
				"account_activation":    true,
				"account_activation_id": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to activate user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrOTPNotFound
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == 0 {
			if restoreErr := s.cache.Set(ctx, key, stored, s.cfg.OTPTTL); restoreErr != nil {
				slog.Error("otp restore failed", "action", "activate_otp", "error", restoreErr)
			}
		}
		return "", err
	}

	slog.Info("user activated", "action", "activate_otp", "username", username)
	return msgAccountActivated, nil
}

// Login checks credentials and issues a fresh access token plus a refresh
// token. Unknown, deleted and wrong-password cases are indistinguishable.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (resp *dto.TokenResponse, err error) {
	defer func() { metrics.RecordAuthEvent("login", err) }()

	if fields, err := validation.Struct(req); err != nil {
		return nil, err
	} else if len(fields) > 0 {
		return nil, ErrLoginFieldsMissing
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active || !s.hasher.Verify(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.AccountActivation {
		return nil, ErrNotActivated
	}

	access, err := s.tokens.IssueAccess(&user, true)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(&user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		Message:      msgUserLoggedIn,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh exchanges a refresh token for a new, non-fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (resp *dto.TokenResponse, err error) {
	defer func() { metrics.RecordAuthEvent("refresh", err) }()

	claims, err := s.tokens.Parse(refreshToken)
	if err != nil || claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	user, err := s.CurrentUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccess(user, false)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{AccessToken: access}, nil
}

// CurrentUser loads the live account behind a verified token.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ? AND active = ?", userID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// ChangePassword replaces the password of a logged-in user after verifying
// the current one.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, req *dto.ChangePasswordRequest) (msg string, err error) {
	defer func() { metrics.RecordAuthEvent("password_change", err) }()

	if fields, err := validation.Struct(req); err != nil {
		return "", err
	} else if len(fields) > 0 {
		return "", invalidFields("last_password and new_password are required", fields)
	}
	if err := validation.CheckPassword(req.NewPassword); err != nil {
		return "", invalid(err)
	}
	if !s.hasher.Verify(user.Password, req.LastPassword) {
		return "", ErrWrongLastPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Update("password", hash).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	user.Password = hash
	slog.Info("password changed", "user_id", user.ID, "action", "password_change")
	return msgPasswordChanged, nil
}

// RequestPasswordReset opens a reset ticket for the active account using
// email and mails the link. The reply is the same whether or not an account
// matched.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req *dto.ForgotPasswordRequest) (msg string, err error) {
	defer func() { metrics.RecordAuthEvent("password_reset_request", err) }()

	email := strings.TrimSpace(req.Email)
	if !validation.ValidEmail(email) {
		return "", ErrEmailRequired
	}

	db := s.db.WithContext(ctx)
	var users []models.User
	if err := db.Where("email = ? AND active = ?", email, true).Limit(2).Find(&users).Error; err != nil {
		return "", fmt.Errorf("failed to look up email: %w", err)
	}
	if len(users) > 1 {
		slog.Error("duplicate active email", "action", "password_reset_request", "email", email)
		return "", ErrDuplicateEmail
	}
	if len(users) == 0 {
		slog.Info("password reset for unknown email", "action", "password_reset_request")
		return msgResetRequested, nil
	}
	user := users[0]

	ticket := models.Validation{ID: uuid.NewString(), UserID: user.ID, Active: true}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&ticket).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to create reset ticket: %w", err)
	}

	token, err := s.resets.Encode(ResetPayload{Email: user.Email, ValidationID: ticket.ID})
	if err != nil {
		return "", err
	}
	link := s.cfg.AppURL + "/api/auth/password-reset-unknown/" + token
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		slog.Error("password reset mail failed", "user_id", user.ID, "action", "password_reset_request", "error", err)
	}
	return msgResetRequested, nil
}

// RedeemPasswordReset sets a new password through a reset link. A ticket
// behind a well-formed link is claimed first, and the claim is kept when the
// password, the account or the email check fails afterwards.
func (s *AuthService) RedeemPasswordReset(ctx context.Context, token string, req *dto.RedeemPasswordResetRequest) (msg string, err error) {
	defer func() { metrics.RecordAuthEvent("password_reset_redeem", err) }()

	payload, err := s.resets.Decode(token)
	if err != nil {
		return "", ErrInvalidLink
	}

	var hash string
	passwordErr := checkNewPassword(req.Password)
	if passwordErr == nil {
		if hash, err = s.hasher.Hash(req.Password); err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
	}

	var outcome error
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticket models.Validation
		err := tx.Where("id = ? AND active = ?", payload.ValidationID, true).First(&ticket).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidLink
		}
		if err != nil {
			return fmt.Errorf("failed to load reset ticket: %w", err)
		}

		claim := tx.Model(&models.Validation{}).
			Where("id = ? AND active = ?", ticket.ID, true).
			Update("active", false)
		if claim.Error != nil {
			return fmt.Errorf("failed to claim reset ticket: %w", claim.Error)
		}
		if claim.RowsAffected != 1 {
			return ErrInvalidLink
		}

		if passwordErr != nil {
			outcome = passwordErr
			return nil
		}

		var user models.User
		err = tx.Where("id = ? AND active = ?", ticket.UserID, true).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome = ErrInvalidLink
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if user.Email != payload.Email {
			outcome = ErrEmailMismatch
			return nil
		}

		return tx.Model(&models.User{}).Where("id = ?", user.ID).Update("password", hash).Error
	})
	if err != nil {
		return "", err
	}
	if outcome != nil {
		return "", outcome
	}

	slog.Info("password reset redeemed", "action", "password_reset_redeem", "validation_id", payload.ValidationID)
	return msgPasswordReset, nil
}

func checkNewPassword(pw string) error {
	if pw == "" {
		return ErrPasswordRequired
	}
	if err := validation.CheckPassword(pw); err != nil {
		return invalid(err)
	}
	return nil
}

// SoftDelete deactivates the account. Tokens already issued stop working
// because every authenticated request reloads an active user.
func (s *AuthService) SoftDelete(ctx context.Context, user *models.User) (msg string, err error) {
	defer func() { metrics.RecordAuthEvent("delete", err) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND active = ?", user.ID, true).
			Update("active", false)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyDeleted
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	user.Active = false
	slog.Info("user soft deleted", "user_id", user.ID, "action", "delete")
	return "User " + user.Username + " successfully deleted", nil
}

// ParseUserID converts a path segment to a user id; zero means invalid.
func ParseUserID(s string) uint {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to query: %w", err)
	}
	return n > 0, nil
}
