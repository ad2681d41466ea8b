package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mocapboston/onboarding/internal/storage"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version string
	Storage string
	store   storage.Store
	log     zerolog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, storageName string, store storage.Store, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		Version: version,
		Storage: storageName,
		store:   store,
		log:     log,
	}
}

// Check returns the health status of the service. Store errors are logged,
// never echoed to the caller.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "healthy"
	statusCode := fiber.StatusOK
	storeStatus := "connected"
	if err := h.store.Ping(ctx); err != nil {
		h.log.Error().Err(err).Str("storage", h.Storage).Msg("Health check failed")
		status = "unhealthy"
		statusCode = fiber.StatusServiceUnavailable
		storeStatus = "error"
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"service": "Onboarding",
		"version": h.Version,
		"storage": fiber.Map{
			"type":   h.Storage,
			"status": storeStatus,
		},
	})
}
