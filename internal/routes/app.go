package routes

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mocapboston/onboarding/views"
)

// NewApp creates the fiber app with the shared middleware. A nil accessLog
// disables request logging.
func NewApp(engine fiber.Views, accessLog io.Writer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "Onboarding v" + Version,
		Views:       engine,
		ViewsLayout: views.Layout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	if accessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
			Output: accessLog,
		}))
	}
	app.Use(recover.New())

	return app
}
