package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mocapboston/onboarding/internal/middleware"
	"github.com/mocapboston/onboarding/internal/models"
	"github.com/mocapboston/onboarding/internal/storage"
)

// Landing page redirects
const (
	InvalidRedirect     = middleware.InvalidSessionRedirect
	ServerErrorRedirect = "/?serverError"
)

// View names
const (
	ViewIndex      = "index"
	ViewOnboarding = "onboarding"
	ViewSharing    = "sharing"
	ViewGallery    = "gallery"
)

// SessionHandler serves the onboarding and sharing flow for one session.
// Every request does one read and at most one write, in that order.
type SessionHandler struct {
	store storage.Store
	log   zerolog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store storage.Store, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		store: store,
		log:   log,
	}
}

// Onboard asks a new visitor what to do with their capture. Visitors who
// already answered go straight to the sharing page.
func (h *SessionHandler) Onboard(c *fiber.Ctx) error {
	id := middleware.SessionID(c)

	session, err := h.store.GetSession(c.UserContext(), id)
	if err != nil {
		return h.redirectOnError(c, id, "lookup", err)
	}

	if session.ShareAnswer {
		return c.Redirect(sharePath(id))
	}

	return c.Render(ViewOnboarding, viewContext(id, session))
}

// Share renders the sharing page for an existing session
func (h *SessionHandler) Share(c *fiber.Ctx) error {
	id := middleware.SessionID(c)

	session, err := h.store.GetSession(c.UserContext(), id)
	if err != nil {
		return h.redirectOnError(c, id, "lookup", err)
	}

	return c.Render(ViewSharing, viewContext(id, session))
}

// Keep records that the visitor wants to keep their capture
func (h *SessionHandler) Keep(c *fiber.Ctx) error {
	return h.mergeAndShare(c, models.KeepPatch())
}

// Add records that the visitor keeps their capture and opts into the gallery
func (h *SessionHandler) Add(c *fiber.Ctx) error {
	return h.mergeAndShare(c, models.AddToGalleryPatch())
}

// mergeAndShare waits for the write before redirecting so the following
// /share request observes it.
func (h *SessionHandler) mergeAndShare(c *fiber.Ctx, patch models.SessionPatch) error {
	id := middleware.SessionID(c)
	ctx := c.UserContext()

	if _, err := h.store.GetSession(ctx, id); err != nil {
		return h.redirectOnError(c, id, "lookup", err)
	}

	if err := h.store.MergeSession(ctx, id, patch); err != nil {
		return h.redirectOnError(c, id, "update", err)
	}

	h.log.Info().
		Str("session_id", id).
		Interface("fields", patch.Fields()).
		Msg("Session updated")

	return c.Redirect(sharePath(id))
}

func (h *SessionHandler) redirectOnError(c *fiber.Ctx, id, op string, err error) error {
	if errors.Is(err, storage.ErrSessionNotFound) {
		h.log.Debug().Str("session_id", id).Str("op", op).Msg("Unknown session")
		return c.Redirect(InvalidRedirect)
	}

	h.log.Error().
		Err(err).
		Str("session_id", id).
		Str("op", op).
		Msg("Session store failed")
	return c.Redirect(ServerErrorRedirect)
}

func viewContext(id string, session *models.Session) fiber.Map {
	return fiber.Map{
		"id":        id,
		"gifID":     session.GifID,
		"processed": session.Processed,
	}
}

func sharePath(id string) string {
	return "/share/" + id
}
