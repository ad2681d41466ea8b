package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/mocapboston/onboarding/internal/models"
)

const sessionIDKey = "sessionID"

// InvalidSessionRedirect is where visitors with an unusable session id land
const InvalidSessionRedirect = "/?invalid"

// NormalizeSessionID reads the named route param, folds it to its store key
// and keeps it in Locals for the handler.
func NormalizeSessionID(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Params are backed by the request buffer; copy before keeping it
		id := models.NormalizeSessionID(utils.CopyString(c.Params(param)))
		if id == "" {
			return c.Redirect(InvalidSessionRedirect)
		}

		c.Locals(sessionIDKey, id)
		return c.Next()
	}
}

// SessionID returns the id stored by NormalizeSessionID
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionIDKey).(string)
	return id
}
