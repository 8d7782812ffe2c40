package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/notevault/notevault/internal/pkg/auth"
	"github.com/notevault/notevault/internal/pkg/usercontext"
)

// BearerAuth authenticates requests carrying an Authorization bearer token
// and attaches the verified identity to the request context. Missing or
// invalid credentials are a hard 401, never silently dropped.
func BearerAuth(verifier auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid or expired token"})
		}

		usercontext.Set(c, usercontext.UserContext{
			UID:        identity.UID,
			Email:      identity.Email,
			IsLoggedIn: true,
		})

		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
