// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Gateway backends selectable with GATEWAY_BACKEND.
const (
	BackendLocal   = "local"
	BackendHTTP    = "http"
	BackendZitadel = "zitadel"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogDir is the directory for debug.log; empty means stderr for serve.
	LogDir string `mapstructure:"LOG_DIR"`

	// HTTPAddr is the address the gateway API listens on.
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// CORSAllowOrigins is passed to the fiber CORS middleware.
	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`

	// GatewayBackend selects the authentication gateway: local, http or zitadel.
	GatewayBackend string `mapstructure:"GATEWAY_BACKEND"`
	// GatewayURL is the base URL of a remote gateway API (http backend).
	GatewayURL string `mapstructure:"GATEWAY_URL"`

	// DefaultCountryCode is prefixed to numbers typed without one.
	DefaultCountryCode string `mapstructure:"DEFAULT_COUNTRY_CODE"`
	// CodeLength is the number of slots in the code input.
	CodeLength int `mapstructure:"CODE_LENGTH"`
	// SendTimeoutRaw is how long a sent code stays valid (e.g. "60s").
	SendTimeoutRaw string `mapstructure:"SEND_TIMEOUT"`
	// OTPMaxAttempts is the number of wrong codes allowed per handle.
	OTPMaxAttempts int `mapstructure:"OTP_MAX_ATTEMPTS"`
	// SessionTTLRaw is the lifetime of issued credentials (e.g. "1h").
	SessionTTLRaw string `mapstructure:"SESSION_TTL"`
	// NotifyTimeoutRaw is how long screen notifications stay visible.
	NotifyTimeoutRaw string `mapstructure:"NOTIFY_TIMEOUT"`
	// OTPReturnToClient enables dev OTP mode: no SMS, the code is logged and returned in responses.
	// Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`

	// SMSLocalAPIKey is the API key for SMS Local.
	SMSLocalAPIKey string `mapstructure:"SMS_LOCAL_API_KEY"`
	// SMSLocalSender is the optional sender ID for SMS Local.
	SMSLocalSender string `mapstructure:"SMS_LOCAL_SENDER"`
	// SMSLocalBaseURL is the SMS Local API endpoint.
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`

	// BlockedPhones is a comma-separated list of E.164 numbers that are refused.
	BlockedPhones string `mapstructure:"BLOCKED_PHONES"`
	// AllowedPhonePrefixes is a comma-separated list of accepted prefixes (e.g. "+91,+7"); empty allows all.
	AllowedPhonePrefixes string `mapstructure:"ALLOWED_PHONE_PREFIXES"`
	// AutoVerifyPhones is a comma-separated list of numbers verified without a code (test numbers).
	AutoVerifyPhones string `mapstructure:"AUTO_VERIFY_PHONES"`

	ZitadelDomain  string `mapstructure:"ZITADEL_DOMAIN"`
	ZitadelPAT     string `mapstructure:"ZITADEL_PAT"`
	ZitadelKeyPath string `mapstructure:"ZITADEL_KEY_PATH"`
	ZitadelOrgID   string `mapstructure:"ZITADEL_ORG_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("HTTP_ADDR", ":2222")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000, http://localhost:8080")
	v.SetDefault("GATEWAY_BACKEND", BackendLocal)
	v.SetDefault("GATEWAY_URL", "http://localhost:2222")
	v.SetDefault("DEFAULT_COUNTRY_CODE", "91")
	v.SetDefault("CODE_LENGTH", 6)
	v.SetDefault("SEND_TIMEOUT", "60s")
	v.SetDefault("OTP_MAX_ATTEMPTS", 3)
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("NOTIFY_TIMEOUT", "3s")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("SMS_LOCAL_API_KEY", "")
	v.SetDefault("SMS_LOCAL_SENDER", "")
	v.SetDefault("SMS_LOCAL_BASE_URL", "https://www.smslocal.com/dev/bulkV2")
	v.SetDefault("BLOCKED_PHONES", "")
	v.SetDefault("ALLOWED_PHONE_PREFIXES", "")
	v.SetDefault("AUTO_VERIFY_PHONES", "")
	v.SetDefault("ZITADEL_DOMAIN", "")
	v.SetDefault("ZITADEL_PAT", "")
	v.SetDefault("ZITADEL_KEY_PATH", "")
	v.SetDefault("ZITADEL_ORG_ID", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field rules. It is called by Load and again after
// command-line overrides are applied.
func (c *Config) Validate() error {
	c.GatewayBackend = strings.ToLower(strings.TrimSpace(c.GatewayBackend))
	switch c.GatewayBackend {
	case BackendLocal, BackendHTTP, BackendZitadel:
	default:
		return errors.New("config: GATEWAY_BACKEND must be one of local, http, zitadel")
	}

	if c.CodeLength < 1 {
		return errors.New("config: CODE_LENGTH must be at least 1")
	}
	if c.OTPMaxAttempts < 1 {
		return errors.New("config: OTP_MAX_ATTEMPTS must be at least 1")
	}

	if c.OTPReturnToClient && c.IsProduction() {
		return errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	switch c.GatewayBackend {
	case BackendHTTP:
		if c.GatewayURL == "" {
			return errors.New("config: GATEWAY_URL must be set for the http backend")
		}
	case BackendZitadel:
		if c.ZitadelDomain == "" {
			return errors.New("config: ZITADEL_DOMAIN must be set for the zitadel backend")
		}
		if c.ZitadelPAT == "" && c.ZitadelKeyPath == "" {
			return errors.New("config: either ZITADEL_PAT or ZITADEL_KEY_PATH must be set")
		}
	case BackendLocal:
		if c.IsProduction() && c.SMSLocalAPIKey == "" {
			return errors.New("config: SMS_LOCAL_API_KEY must be set for the local backend in production")
		}
	}

	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DevOTP reports whether codes are delivered to the log instead of by SMS.
// Without an SMS key outside production, dev mode is implied. Codes are
// returned to clients only when OTPReturnToClient is set.
func (c *Config) DevOTP() bool {
	return c.OTPReturnToClient || (c.SMSLocalAPIKey == "" && !c.IsProduction())
}

// SendTimeout parses SEND_TIMEOUT. Returns 60s if unset or invalid.
func (c *Config) SendTimeout() time.Duration {
	return parseDuration(c.SendTimeoutRaw, 60*time.Second)
}

// SessionTTL parses SESSION_TTL. Returns 1h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.SessionTTLRaw, time.Hour)
}

// NotifyTimeout parses NOTIFY_TIMEOUT. Returns 3s if unset or invalid.
func (c *Config) NotifyTimeout() time.Duration {
	return parseDuration(c.NotifyTimeoutRaw, 3*time.Second)
}

// BlockedPhoneList returns BLOCKED_PHONES as a slice.
func (c *Config) BlockedPhoneList() []string {
	return splitList(c.BlockedPhones)
}

// AllowedPrefixList returns ALLOWED_PHONE_PREFIXES as a slice.
func (c *Config) AllowedPrefixList() []string {
	return splitList(c.AllowedPhonePrefixes)
}

// AutoVerifyPhoneList returns AUTO_VERIFY_PHONES as a slice.
func (c *Config) AutoVerifyPhoneList() []string {
	return splitList(c.AutoVerifyPhones)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
