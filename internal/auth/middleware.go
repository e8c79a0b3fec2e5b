package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"formspec-backend/internal/api"
)

// Identity is the authenticated user attached to the request.
type Identity struct {
	ID    string
	Email string
}

// Middleware returns a Fiber middleware that validates Bearer tokens and
// sets the Identity on the request.
func Middleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return api.UnauthorizedError("Missing auth token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return api.UnauthorizedError("Invalid auth header format")
		}

		claims, err := ParseToken(parts[1], secret)
		if err != nil {
			return api.UnauthorizedError("Invalid or expired token")
		}

		c.Locals("identity", &Identity{ID: claims.Subject, Email: claims.Email})
		c.Locals("userID", claims.Subject)
		return c.Next()
	}
}

// GetIdentity extracts the Identity from a Fiber context, or nil.
func GetIdentity(c *fiber.Ctx) *Identity {
	id, _ := c.Locals("identity").(*Identity)
	return id
}
