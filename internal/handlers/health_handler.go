package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Probe checks one dependency.
type Probe func(ctx context.Context) error

type HealthHandler struct {
	db    Probe
	cache Probe
}

func NewHealthHandler(db, cache Probe) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	dbStatus := runProbe(ctx, h.db)
	cacheStatus := runProbe(ctx, h.cache)
	if dbStatus != "ok" || cacheStatus != "ok" {
		status = "degraded"
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Cache:     cacheStatus,
	})
}

func runProbe(ctx context.Context, probe Probe) string {
	if err := probe(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "ok"
}
