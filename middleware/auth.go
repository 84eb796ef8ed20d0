// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"coinquest/services"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// TokenParser turns a bearer token into the caller's identity.
type TokenParser interface {
	Parse(raw string) (services.Identity, error)
}

// UserContextMiddleware requires "Authorization: Bearer <token>" and stores
// the resolved Identity for handlers. Nothing past it runs without one.
func UserContextMiddleware(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if authHeader == "" || raw == authHeader {
			log.Printf("🚫 [USER_CTX] missing bearer token on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		who, err := tokens.Parse(raw)
		if err != nil {
			log.Printf("❌ [USER_CTX] rejected token on %s (prefix: %.10s...)", c.Path(), raw)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(identityLocal, who)
		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by one of the auth middlewares.
func CurrentIdentity(c *fiber.Ctx) (services.Identity, bool) {
	who, ok := c.Locals(identityLocal).(services.Identity)
	return who, ok && who.UserID != 0
}
