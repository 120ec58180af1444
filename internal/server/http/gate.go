package httpserver

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"
)

// TokenVerifier resolves a session token to a user id; implemented by *session.Issuer.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// Access Gate rejection messages.
const (
	msgNoToken      = "No token"
	msgInvalidToken = "Invalid token"
)

// AccessGate rejects requests without a valid "Authorization: Bearer <token>"
// header and attaches the resolved user id to the request context otherwise.
// Nothing downstream runs on rejection.
func AccessGate(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if strings.TrimSpace(h) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, msgNoToken)
		}
		tok, err := bearerToken(h)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, msgInvalidToken)
		}
		id, err := v.Verify(tok)
		if err != nil || id == uuid.Nil {
			return fiber.NewError(fiber.StatusUnauthorized, msgInvalidToken)
		}
		c.SetUserContext(WithUserID(c.UserContext(), id))
		return c.Next()
	}
}

// bearerToken splits "Bearer <token>" into its token part.
func bearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("no bearer token")
	}
	return parts[1], nil
}
