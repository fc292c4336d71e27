package domain

import "time"

// SendCodeRequest - request to send a verification code
type SendCodeRequest struct {
	Phone          string `json:"phone" validate:"required,e164"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// SendCodeResponse - response to a code request
type SendCodeResponse struct {
	Success    bool                `json:"success"`
	Status     SendStatus          `json:"status"`
	Handle     string              `json:"handle,omitempty"`
	ExpiresAt  *time.Time          `json:"expires_at,omitempty"`
	Code       string              `json:"code,omitempty"` // dev/test only
	Credential *VerifyCodeResponse `json:"credential,omitempty"`
}

// VerifyCodeRequest - request to verify a code against a pending handle
type VerifyCodeRequest struct {
	Handle string `json:"handle" validate:"required"`
	Code   string `json:"code" validate:"required"`
}

// VerifyCodeResponse - bearer credential issued after verification
type VerifyCodeResponse struct {
	Success     bool      `json:"success"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id,omitempty"`
	Phone       string    `json:"phone"`
}

// TokenStatusResponse - result of a token introspection
type TokenStatusResponse struct {
	Valid     bool       `json:"valid"`
	Phone     string     `json:"phone,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// NewVerifyCodeResponse converts a credential into its wire form.
func NewVerifyCodeResponse(c *Credential, now time.Time) *VerifyCodeResponse {
	expiresIn := int(c.ExpiresAt.Sub(now).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return &VerifyCodeResponse{
		Success:     true,
		AccessToken: c.Token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		ExpiresAt:   c.ExpiresAt,
		UserID:      c.UserID,
		Phone:       c.Phone.String(),
	}
}

// Credential converts the wire form back into a credential.
func (r *VerifyCodeResponse) Credential() *Credential {
	return &Credential{
		Token:     r.AccessToken,
		Phone:     PhoneNumber(r.Phone),
		UserID:    r.UserID,
		ExpiresAt: r.ExpiresAt,
	}
}
