package delivery

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"phone-verify/internal/domain"
)

// CredentialLookup resolves bearer tokens issued by a gateway.
type CredentialLookup interface {
	Lookup(token string) (*domain.Credential, error)
}

// TokenHandler checks tokens issued after verification
type TokenHandler struct {
	sessions CredentialLookup
}

// NewTokenHandler creates a token handler
func NewTokenHandler(sessions CredentialLookup) *TokenHandler {
	return &TokenHandler{sessions: sessions}
}

// VerifyToken checks the bearer token in the Authorization header
// POST /api/auth/verify-token
func (h *TokenHandler) VerifyToken(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(domain.TokenStatusResponse{
			Error: "Missing authorization token",
		})
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(domain.TokenStatusResponse{
			Error: "Invalid authorization header format",
		})
	}

	cred, err := h.sessions.Lookup(parts[1])
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(domain.TokenStatusResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(domain.TokenStatusResponse{
		Valid:     true,
		Phone:     cred.Phone.String(),
		UserID:    cred.UserID,
		ExpiresAt: &cred.ExpiresAt,
	})
}
