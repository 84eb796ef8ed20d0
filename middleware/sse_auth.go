// middleware/sse_auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware reads the session token from the "token" query parameter,
// since EventSource cannot send headers.
//
// Usage:
//
//	app.Get("/api/stream/coins", middleware.SSEAuthMiddleware(issuer), h.StreamCoins)
func SSEAuthMiddleware(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(c.Query("token"))
		if accessToken == "" {
			log.Printf("[SSEAuth] ❌ missing token query param on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing token in query",
			})
		}

		who, err := tokens.Parse(accessToken)
		if err != nil {
			log.Printf("[SSEAuth] ❌ validation failed (prefix: %.10s...): %v", accessToken, err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(identityLocal, who)
		log.Printf("[SSEAuth] ✅ Authenticated user %d", who.UserID)
		return c.Next()
	}
}
