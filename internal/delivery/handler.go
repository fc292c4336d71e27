package delivery

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"phone-verify/internal/domain"
	"phone-verify/internal/logging"
	"phone-verify/internal/service"
)

// maxSendTimeout caps the timeout a client may request.
const maxSendTimeout = 10 * time.Minute

// OTPHandler exposes a service.Gateway over HTTP.
type OTPHandler struct {
	gateway        service.Gateway
	countryCode    string
	defaultTimeout time.Duration
	logger         *logging.Logger
}

// NewOTPHandler creates the handler. Numbers without a country code get
// countryCode; requests without a timeout get defaultTimeout.
func NewOTPHandler(gateway service.Gateway, countryCode string, defaultTimeout time.Duration, logger *logging.Logger) *OTPHandler {
	return &OTPHandler{
		gateway:        gateway,
		countryCode:    countryCode,
		defaultTimeout: defaultTimeout,
		logger:         logger.WithComponent("delivery"),
	}
}

// SendCode sends a verification code (step 1)
// POST /api/otp/send
func (h *OTPHandler) SendCode(c *fiber.Ctx) error {
	var req domain.SendCodeRequest

	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn("failed to parse SendCode request", "error", err.Error())
		return respondBadRequest(c, "Invalid request body")
	}

	phone, err := domain.NormalizePhone(req.Phone, h.countryCode)
	if err != nil {
		return respondDomainError(c, err)
	}

	timeout := h.defaultTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	if timeout > maxSendTimeout {
		timeout = maxSendTimeout
	}

	res, err := h.gateway.RequestCode(c.UserContext(), phone, timeout)
	if err != nil {
		h.logger.Warn("code request failed", "phone", phone.Masked(), "error", err.Error())
		return respondDomainError(c, err)
	}

	resp := domain.SendCodeResponse{
		Success: true,
		Status:  res.Status,
		Handle:  string(res.Handle),
		Code:    res.DevCode,
	}
	if !res.ExpiresAt.IsZero() {
		resp.ExpiresAt = &res.ExpiresAt
	}
	if res.Credential != nil {
		resp.Credential = domain.NewVerifyCodeResponse(res.Credential, time.Now())
	}

	return respondOK(c, resp)
}

// VerifyCode checks a code and returns a bearer credential (step 2)
// POST /api/otp/verify
func (h *OTPHandler) VerifyCode(c *fiber.Ctx) error {
	var req domain.VerifyCodeRequest

	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn("failed to parse VerifyCode request", "error", err.Error())
		return respondBadRequest(c, "Invalid request body")
	}

	if req.Handle == "" {
		return respondDomainError(c, domain.ErrNoPendingCode)
	}
	if req.Code == "" {
		return respondDomainError(c, domain.ErrCodeRequired)
	}

	cred, err := h.gateway.VerifyCode(c.UserContext(), domain.PendingHandle(req.Handle), req.Code)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondOK(c, domain.NewVerifyCodeResponse(cred, time.Now()))
}
