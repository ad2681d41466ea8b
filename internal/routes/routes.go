package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mocapboston/onboarding/internal/config"
	"github.com/mocapboston/onboarding/internal/handlers"
	"github.com/mocapboston/onboarding/internal/middleware"
	"github.com/mocapboston/onboarding/internal/storage"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Route maps a method and path pattern to its handler chain
type Route struct {
	Method   string
	Path     string
	Handlers []fiber.Handler
}

// Table returns every route the service exposes
func Table(store storage.Store, cfg *config.Config, log zerolog.Logger) []Route {
	sessionHandler := handlers.NewSessionHandler(store, log)
	galleryHandler := handlers.NewGalleryHandler(store, cfg.GalleryLimit, log)
	healthHandler := handlers.NewHealthHandler(Version, storage.Describe(cfg.StoreDriver), store, log)

	sessionID := middleware.NormalizeSessionID("id")

	return []Route{
		{fiber.MethodGet, "/", []fiber.Handler{handlers.Home}},
		{fiber.MethodGet, "/health", []fiber.Handler{healthHandler.Check}},
		{fiber.MethodGet, "/gallery", []fiber.Handler{galleryHandler.List}},

		// Session flow
		{fiber.MethodGet, "/onboard/:id", []fiber.Handler{sessionID, sessionHandler.Onboard}},
		{fiber.MethodGet, "/share/:id", []fiber.Handler{sessionID, sessionHandler.Share}},
		{fiber.MethodGet, "/keep/:id", []fiber.Handler{sessionID, sessionHandler.Keep}},
		{fiber.MethodGet, "/add/:id", []fiber.Handler{sessionID, sessionHandler.Add}},
	}
}

// SetupRoutes registers the route table on app
func SetupRoutes(app *fiber.App, store storage.Store, cfg *config.Config, log zerolog.Logger) {
	for _, r := range Table(store, cfg, log) {
		app.Add(r.Method, r.Path, r.Handlers...)
	}
}
