package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	messages, err := h.authService.Register(c.UserContext(), &req, c.Query("opt") == "yes")
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MessagesResponse{Messages: messages})
}

func (h *AuthHandler) ActivateByLink(c *fiber.Ctx) error {
	userID := services.ParseUserID(c.Params("user_id"))

	msg, err := h.authService.ActivateByLink(c.UserContext(), userID, c.Params("act_id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: msg})
}

func (h *AuthHandler) ActivateByOTP(c *fiber.Ctx) error {
	var req dto.ActivateOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	msg, err := h.authService.ActivateByOTP(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: msg})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// Refresh takes the refresh token from the Authorization bearer header.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	raw := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
	if raw == "" {
		return respondError(c, services.ErrInvalidToken)
	}

	resp, err := h.authService.Refresh(c.UserContext(), raw)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	msg, err := h.authService.ChangePassword(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: msg})
}

func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	msg, err := h.authService.RequestPasswordReset(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: msg})
}

func (h *AuthHandler) RedeemPasswordReset(c *fiber.Ctx) error {
	var req dto.RedeemPasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	msg, err := h.authService.RedeemPasswordReset(c.UserContext(), c.Params("val_id"), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: msg})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	msg, err := h.authService.SoftDelete(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: msg})
}
