package phone

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+15550100200", "+15550100200", false},
		{" +1 (555) 010-0200 ", "+15550100200", false},
		{"15550100200", "+15550100200", false},
		{"+44.20.7946.0958", "+442079460958", false},
		{"", "", true},
		{"   ", "", true},
		{"+0123456789", "", true},
		{"+12345", "", true},
		{"+1234567890123456", "", true},
		{"+1555abc0100", "", true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Normalize(%q) err = %v, want ErrInvalid", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Normalize(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMask(t *testing.T) {
	if got := Mask("+15550100200"); got != "********0200" {
		t.Errorf("Mask = %q", got)
	}
	if got := Mask("123"); got != "***" {
		t.Errorf("Mask short = %q", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	v := validator.New()
	if err := RegisterValidation(v); err != nil {
		t.Fatalf("RegisterValidation: %v", err)
	}
	type req struct {
		Phone string `validate:"required,phone"`
	}
	if err := v.Struct(req{Phone: "+1 555 010 0200"}); err != nil {
		t.Errorf("valid phone rejected: %v", err)
	}
	if err := v.Struct(req{Phone: "call me"}); err == nil {
		t.Error("invalid phone accepted")
	}
}
