package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"phone-verify/internal/domain"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPGateway talks to a remote gateway API served by `phone-verify serve`.
type HTTPGateway struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewHTTPGateway returns a client for the API at baseURL.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// apiError is the error body written by the delivery layer.
type apiError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// RequestCode posts to /api/otp/send.
func (g *HTTPGateway) RequestCode(ctx context.Context, phone domain.PhoneNumber, timeout time.Duration) (*domain.SendResult, error) {
	var resp domain.SendCodeResponse
	req := domain.SendCodeRequest{
		Phone:          phone.String(),
		TimeoutSeconds: int(timeout / time.Second),
	}
	if err := g.post(ctx, "/api/otp/send", req, &resp); err != nil {
		return nil, err
	}

	res := &domain.SendResult{
		Status:  resp.Status,
		Handle:  domain.PendingHandle(resp.Handle),
		DevCode: resp.Code,
	}
	if resp.ExpiresAt != nil {
		res.ExpiresAt = *resp.ExpiresAt
	}
	if resp.Credential != nil {
		res.Credential = resp.Credential.Credential()
	}
	return res, nil
}

// VerifyCode posts to /api/otp/verify.
func (g *HTTPGateway) VerifyCode(ctx context.Context, handle domain.PendingHandle, code string) (*domain.Credential, error) {
	if handle.Empty() {
		return nil, domain.ErrNoPendingCode
	}
	var resp domain.VerifyCodeResponse
	req := domain.VerifyCodeRequest{Handle: string(handle), Code: code}
	if err := g.post(ctx, "/api/otp/verify", req, &resp); err != nil {
		return nil, err
	}
	return resp.Credential(), nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, in, out interface{}) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return nil
}

// decodeAPIError rebuilds the domain error from an error response.
func decodeAPIError(statusCode int, body []byte) error {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return fmt.Errorf("gateway request failed with status %d: %s", statusCode, string(body))
	}
	if sentinel := domain.ErrorForCode(e.Code); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, e.Error)
	}
	if statusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway error (status %d): %s", statusCode, e.Error)
	}
	return errors.New(e.Error)
}
