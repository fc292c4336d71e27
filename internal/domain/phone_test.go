package domain

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		cc      string
		want    PhoneNumber
		wantErr error
	}{
		{name: "national number gets default code", raw: "9876543210", cc: "91", want: "+919876543210"},
		{name: "default code with plus", raw: "9876543210", cc: "+91", want: "+919876543210"},
		{name: "explicit plus keeps code", raw: "+7 999 123-45-67", cc: "91", want: "+79991234567"},
		{name: "double zero prefix", raw: "0044 (20) 7946.0958", cc: "91", want: "+442079460958"},
		{name: "trunk zero dropped", raw: "09876543210", cc: "91", want: "+919876543210"},
		{name: "empty", raw: "   ", cc: "91", wantErr: ErrPhoneRequired},
		{name: "letters", raw: "98765abc10", cc: "91", wantErr: ErrInvalidPhone},
		{name: "too short", raw: "+1234", cc: "91", wantErr: ErrInvalidPhone},
		{name: "too long", raw: "+1234567890123456", cc: "91", wantErr: ErrInvalidPhone},
		{name: "no country code configured", raw: "9876543210", cc: "", wantErr: ErrInvalidPhone},
		{name: "country code starting with zero", raw: "+0123456789", cc: "91", wantErr: ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw, tt.cc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NormalizePhone(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPhoneNumber_Masked(t *testing.T) {
	p := PhoneNumber("+919876543210")
	if got := p.Masked(); got != "+********3210" {
		t.Errorf("Masked() = %q, want %q", got, "+********3210")
	}
	if got := p.Digits(); got != "919876543210" {
		t.Errorf("Digits() = %q, want %q", got, "919876543210")
	}
}
