package routes

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocapboston/onboarding/internal/config"
	"github.com/mocapboston/onboarding/internal/logger"
	"github.com/mocapboston/onboarding/internal/models"
	"github.com/mocapboston/onboarding/internal/storage"
	"github.com/mocapboston/onboarding/views"
)

func setup(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()

	cfg := config.Default()
	cfg.StoreDriver = storage.DriverMemory

	store := storage.NewMemoryStore()
	store.Put(&models.Session{ID: "abc123", GifID: "gif-abc", Processed: true})
	store.Put(&models.Session{ID: "shared", GifID: "gif-shared", Processed: true, ShareAnswer: true})

	app := NewApp(views.Engine(""), nil)
	SetupRoutes(app, store, cfg, logger.Nop())
	return app, store
}

func TestTable(t *testing.T) {
	cfg := config.Default()
	table := Table(storage.NewMemoryStore(), cfg, logger.Nop())

	paths := make(map[string]bool)
	for _, r := range table {
		assert.Equal(t, fiber.MethodGet, r.Method)
		assert.NotEmpty(t, r.Handlers, r.Path)
		paths[r.Path] = true
	}

	for _, p := range []string{"/", "/health", "/gallery", "/onboard/:id", "/share/:id", "/keep/:id", "/add/:id"} {
		assert.True(t, paths[p], "missing route %s", p)
	}
}

func TestUnknownSessionRedirectsEverywhere(t *testing.T) {
	app, _ := setup(t)

	for _, action := range []string{"onboard", "share", "keep", "add"} {
		for _, id := range []string{"nope", "NOPE", "x1y2z3"} {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+action+"/"+id, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusFound, resp.StatusCode)
			assert.Equal(t, "/?invalid", resp.Header.Get("Location"), "/%s/%s", action, id)
		}
	}
}

func TestOnboardingFlow(t *testing.T) {
	app, store := setup(t)
	ctx := context.Background()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/onboard/ABC123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/add/abc123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/share/abc123", resp.Header.Get("Location"))

	s, err := store.GetSession(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, s.ShareAnswer)
	assert.True(t, s.GalleryVisible)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/onboard/abc123", nil))
	require.NoError(t, err)
	assert.Equal(t, "/share/abc123", resp.Header.Get("Location"))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/gallery", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `data-session="abc123"`)
	assert.NotContains(t, string(body), `data-session="shared"`)
}

func TestSharedSessionSkipsOnboarding(t *testing.T) {
	app, _ := setup(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/onboard/Shared", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/share/shared", resp.Header.Get("Location"))
}

func TestRenderedPagesUseLayout(t *testing.T) {
	app, _ := setup(t)

	for _, path := range []string{"/", "/onboard/abc123", "/share/abc123", "/gallery"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		assert.True(t, strings.HasPrefix(string(body), "<!DOCTYPE html>"), path)
	}
}

func TestHealth(t *testing.T) {
	app, _ := setup(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "In-Memory (Testing)")
	assert.Contains(t, string(body), Version)
}

func TestUnknownRoute(t *testing.T) {
	app, _ := setup(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing/abc123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	app := NewApp(views.Engine(""), &buf)
	SetupRoutes(app, storage.NewMemoryStore(), config.Default(), logger.Nop())

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/share/nope", nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "GET /share/nope")
}

func TestPanicIsRecovered(t *testing.T) {
	app := NewApp(views.Engine(""), nil)
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
