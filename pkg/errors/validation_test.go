package errors

import (
	"strings"
	"testing"
)

func TestValidateResourceID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid opaque id", "1oenPoz35QxrfrSrHeLR-NN5EDI3Nr5UuTbhOID02DsQ", false},
		{"valid short id", "p1", false},
		{"empty", "", true},
		{"path traversal", "../etc", true},
		{"forward slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"control character", "a\x01b", true},
		{"too long", strings.Repeat("x", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResourceID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateResourceID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidID {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		fallback string
		want     string
	}{
		{"plain name", "Q3 Review", "id1", "Q3 Review"},
		{"slash replaced", "a/b", "id1", "a_b"},
		{"empty falls back", "", "id1", "id1"},
		{"dots trimmed", "..", "id1", "id1"},
		{"colon replaced", "a:b", "id1", "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.in, tt.fallback); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
