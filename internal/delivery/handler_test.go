package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"phone-verify/internal/domain"
	"phone-verify/internal/logging"
	"phone-verify/internal/service"
)

type capturingSender struct {
	codes map[domain.PhoneNumber]string
}

func (s *capturingSender) SendOTP(_ context.Context, phone domain.PhoneNumber, code string) error {
	s.codes[phone] = code
	return nil
}

type testServer struct {
	app    *fiber.App
	sender *capturingSender
}

func newTestServer(t *testing.T, policy *service.PhonePolicy, autoVerify ...string) *testServer {
	t.Helper()
	sender := &capturingSender{codes: make(map[domain.PhoneNumber]string)}
	gw := service.NewLocalGateway(
		service.LocalGatewayConfig{CodeLength: 6, SessionTTL: time.Hour, AutoVerify: autoVerify},
		service.NewOTPStore(3),
		service.NewSessionStore(),
		sender,
		policy,
		logging.NopLogger(),
	)
	otp := NewOTPHandler(gw, "91", 60*time.Second, logging.NopLogger())
	app := NewApp(AppConfig{}, otp, NewTokenHandler(gw.Sessions()))
	return &testServer{app: app, sender: sender}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return resp.StatusCode, data
}

func TestOTPFlow_SendVerifyIntrospect(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, http.MethodPost, "/api/otp/send", `{"phone":"9876543210"}`, nil)
	if status != http.StatusOK {
		t.Fatalf("send status = %d, body = %s", status, body)
	}
	var sent domain.SendCodeResponse
	if err := json.Unmarshal(body, &sent); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if sent.Status != domain.SendStatusCodeSent || sent.Handle == "" {
		t.Fatalf("send response = %+v", sent)
	}
	if sent.ExpiresAt == nil || time.Until(*sent.ExpiresAt) > 61*time.Second {
		t.Errorf("ExpiresAt = %v, want the 60s default", sent.ExpiresAt)
	}

	code := s.sender.codes["+919876543210"]
	if code == "" {
		t.Fatal("code was not sent to the normalized number")
	}

	status, body = s.do(t, http.MethodPost, "/api/otp/verify",
		`{"handle":"`+sent.Handle+`","code":"`+code+`"}`, nil)
	if status != http.StatusOK {
		t.Fatalf("verify status = %d, body = %s", status, body)
	}
	var verified domain.VerifyCodeResponse
	if err := json.Unmarshal(body, &verified); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if verified.AccessToken == "" || verified.TokenType != "Bearer" || verified.Phone != "+919876543210" {
		t.Errorf("verify response = %+v", verified)
	}

	status, body = s.do(t, http.MethodPost, "/api/auth/verify-token", "",
		map[string]string{"Authorization": "Bearer " + verified.AccessToken})
	if status != http.StatusOK {
		t.Fatalf("verify-token status = %d, body = %s", status, body)
	}
	var tokenStatus domain.TokenStatusResponse
	json.Unmarshal(body, &tokenStatus)
	if !tokenStatus.Valid || tokenStatus.Phone != "+919876543210" {
		t.Errorf("token status = %+v", tokenStatus)
	}
}

func TestSendCode_Errors(t *testing.T) {
	s := newTestServer(t, service.NewPhonePolicy([]string{"+79999999999"}, nil))

	tests := []struct {
		name     string
		body     string
		status   int
		wantCode string
	}{
		{"invalid body", `{`, http.StatusBadRequest, "bad_request"},
		{"empty phone", `{"phone":""}`, http.StatusBadRequest, "invalid_number"},
		{"letters", `{"phone":"call me"}`, http.StatusBadRequest, "invalid_number"},
		{"blocked", `{"phone":"+79999999999"}`, http.StatusForbidden, "phone_not_allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, "/api/otp/send", tt.body, nil)
			if status != tt.status {
				t.Errorf("status = %d, want %d (body %s)", status, tt.status, body)
			}
			var e ErrorResponse
			json.Unmarshal(body, &e)
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestVerifyCode_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	_, body := s.do(t, http.MethodPost, "/api/otp/send", `{"phone":"+919876543210"}`, nil)
	var sent domain.SendCodeResponse
	json.Unmarshal(body, &sent)
	wrong := "000000"
	if s.sender.codes["+919876543210"] == wrong {
		wrong = "111111"
	}

	tests := []struct {
		name     string
		body     string
		status   int
		wantCode string
	}{
		{"no handle", `{"code":"000000"}`, http.StatusNotFound, "no_pending_code"},
		{"no code", `{"handle":"` + sent.Handle + `"}`, http.StatusBadRequest, "code_required"},
		{"unknown handle", `{"handle":"nope","code":"000000"}`, http.StatusNotFound, "no_pending_code"},
		{"wrong code", `{"handle":"` + sent.Handle + `","code":"` + wrong + `"}`, http.StatusUnauthorized, "code_mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, "/api/otp/verify", tt.body, nil)
			if status != tt.status {
				t.Errorf("status = %d, want %d (body %s)", status, tt.status, body)
			}
			var e ErrorResponse
			json.Unmarshal(body, &e)
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestSendCode_AutoVerifiedNumber(t *testing.T) {
	s := newTestServer(t, nil, "+919876543210")

	status, body := s.do(t, http.MethodPost, "/api/otp/send", `{"phone":"9876543210"}`, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", status, body)
	}
	var sent domain.SendCodeResponse
	json.Unmarshal(body, &sent)
	if sent.Status != domain.SendStatusCompleted || sent.Credential == nil || sent.Credential.AccessToken == "" {
		t.Errorf("response = %+v", sent)
	}
	if sent.Handle != "" {
		t.Errorf("Handle = %q, want empty", sent.Handle)
	}
}

func TestVerifyToken_Rejections(t *testing.T) {
	s := newTestServer(t, nil)

	for _, header := range []string{"", "Token abc", "Bearer unknown"} {
		headers := map[string]string{}
		if header != "" {
			headers["Authorization"] = header
		}
		status, body := s.do(t, http.MethodPost, "/api/auth/verify-token", "", headers)
		if status != http.StatusUnauthorized {
			t.Errorf("Authorization %q: status = %d, want 401 (body %s)", header, status, body)
		}
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	status, body := s.do(t, http.MethodGet, "/healthz", "", nil)
	if status != http.StatusOK || !strings.Contains(string(body), "ok") {
		t.Errorf("healthz = %d %s", status, body)
	}
}
