package handlers

import "github.com/gofiber/fiber/v2"

// Home renders the landing page. The invalid and serverError query flags
// come from the session redirects.
func Home(c *fiber.Ctx) error {
	args := c.Context().QueryArgs()
	return c.Render(ViewIndex, fiber.Map{
		"invalid":     args.Has("invalid"),
		"serverError": args.Has("serverError"),
	})
}
