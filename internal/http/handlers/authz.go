package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bidmarket/internal/domain"
	"bidmarket/internal/services"
)

const identityKey = "identity"

// RequireToken verifies the bearer token and stores the caller's Identity
// for the handler. It does not check roles; handlers call Authorize.
func RequireToken(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return domain.Unauthorized("Missing or malformed bearer token")
		}
		id, err := auth.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			return err
		}
		c.Locals(identityKey, id)
		c.Locals("user_id", id.UserID)
		return c.Next()
	}
}

func identity(c *fiber.Ctx) services.Identity {
	id, _ := c.Locals(identityKey).(services.Identity)
	return id
}
