package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/services"
	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[services.Kind]int{
	services.KindValidation: fiber.StatusBadRequest,
	services.KindConflict:   fiber.StatusConflict,
	services.KindNotFound:   fiber.StatusNotFound,
	services.KindAuth:       fiber.StatusUnauthorized,
	services.KindForbidden:  fiber.StatusForbidden,
	services.KindIntegrity:  fiber.StatusInternalServerError,
}

// respondError renders a service failure. Anything that is not a
// services.Error is logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		status, ok := kindStatus[svcErr.Kind]
		if !ok {
			status = fiber.StatusInternalServerError
		}
		if status >= fiber.StatusInternalServerError {
			slog.Error("request failed", "request_id", requestID(c), "path", c.Path(), "kind", svcErr.Kind.String(), "error", err)
		}
		return c.Status(status).JSON(dto.ErrorResponse{
			Error:   true,
			Message: svcErr.Message,
			Fields:  svcErr.Fields,
		})
	}

	slog.Error("request failed", "request_id", requestID(c), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func badBody(c *fiber.Ctx) error {
	return respondError(c, services.ErrInvalidBody)
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// ErrorHandler is the fiber.Config ErrorHandler for errors escaping a
// handler or middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "request_id", requestID(c), "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
