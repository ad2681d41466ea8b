package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mocapboston/onboarding/internal/storage"
)

// GalleryHandler lists the sessions whose owners opted into the public gallery
type GalleryHandler struct {
	store storage.Store
	limit int
	log   zerolog.Logger
}

func NewGalleryHandler(store storage.Store, limit int, log zerolog.Logger) *GalleryHandler {
	return &GalleryHandler{
		store: store,
		limit: limit,
		log:   log,
	}
}

func (h *GalleryHandler) List(c *fiber.Ctx) error {
	sessions, err := h.store.ListGallery(c.UserContext(), h.limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list gallery")
		return c.Redirect(ServerErrorRedirect)
	}

	return c.Render(ViewGallery, fiber.Map{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
