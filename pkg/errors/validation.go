package errors

import (
	"strings"
	"unicode"
)

// ValidateResourceID validates a presentation, slide, or folder identifier.
// IDs are opaque strings handed to the remote API and used to build output
// directory names, so anything that could escape the output root is rejected.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path traversal sequences (.., /, \)
//   - Maximum length of 256 characters
func ValidateResourceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "resource id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidID, "resource id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "resource id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidID, "resource id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// SanitizeName converts a display name into a safe path component for the
// output layout. Path separators and control characters are replaced with
// underscores; an empty result falls back to fallback (usually the ID).
func SanitizeName(name, fallback string) string {
	if name == "" {
		return fallback
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), ". ")
	if out == "" || out == ".." {
		return fallback
	}
	return out
}
