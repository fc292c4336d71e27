package delivery

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"phone-verify/internal/domain"
)

// ErrorResponse - standard error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// respondWithError - writes an error body with the given status
func respondWithError(c *fiber.Ctx, status int, code, message string, details ...string) error {
	resp := ErrorResponse{
		Error: message,
		Code:  code,
	}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	return c.Status(status).JSON(resp)
}

// respondBadRequest - validation error (400)
func respondBadRequest(c *fiber.Ctx, message string) error {
	return respondWithError(c, fiber.StatusBadRequest, "bad_request", message)
}

// respondOK - success (200)
func respondOK(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// respondDomainError maps a gateway error to a status code and a stable error code.
func respondDomainError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrPhoneBlocked) || errors.Is(err, domain.ErrPhoneNotAllowed) {
		return respondWithError(c, fiber.StatusForbidden, "phone_not_allowed", err.Error())
	}

	kind := domain.Classify(err)
	switch kind {
	case domain.FailureInvalidNumber, domain.FailureCodeRequired:
		return respondWithError(c, fiber.StatusBadRequest, kind.String(), err.Error())
	case domain.FailureCodeMismatch:
		return respondWithError(c, fiber.StatusUnauthorized, kind.String(), err.Error())
	case domain.FailureExpired:
		return respondWithError(c, fiber.StatusGone, kind.String(), err.Error())
	case domain.FailureNoPendingCode:
		return respondWithError(c, fiber.StatusNotFound, kind.String(), err.Error())
	case domain.FailureQuota:
		return respondWithError(c, fiber.StatusTooManyRequests, kind.String(), err.Error())
	case domain.FailureNetwork:
		return respondWithError(c, fiber.StatusBadGateway, kind.String(), err.Error())
	}
	return respondWithError(c, fiber.StatusInternalServerError, "internal", "Verification backend error", err.Error())
}
