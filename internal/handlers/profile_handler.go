package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	resp, err := h.profileService.GetProfile(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *ProfileHandler) Complete(c *fiber.Ctx) error {
	var req dto.CompleteProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.profileService.CompleteProfile(c.UserContext(), middleware.CurrentUser(c), &req)
	if errors.Is(err, services.ErrProfileAlreadyCompleted) {
		return c.JSON(dto.MessagesResponse{Messages: []string{
			"Profile already updated",
			"To update user details, please use the update endpoint",
		}})
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	msg, err := h.profileService.UpdateProfile(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: msg})
}
