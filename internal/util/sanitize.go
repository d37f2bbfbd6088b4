package util

import (
	"html"
	"os"
	"strings"
)

// SanitizeInput escapes HTML/script-like characters
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return html.EscapeString(s)
}

// ContainsSuspicious reports whether the input looks like an injection attempt
func ContainsSuspicious(s string) bool {
	badChars := []string{"<", ">", "$", "{", "}", "script", "onerror", "onload"}
	for _, c := range badChars {
		if strings.Contains(strings.ToLower(s), c) {
			return true
		}
	}
	return false
}

// ExtractDomain reduces a user-supplied URL to its bare host: scheme,
// credentials, leading "www.", port, path, and query are all stripped.
// Returns "" for empty input so callers can skip breach lookups entirely.
func ExtractDomain(rawURL string) string {
	s := strings.TrimSpace(strings.ToLower(rawURL))
	if s == "" {
		return ""
	}

	if idx := strings.Index(s, "://"); idx != -1 {
		s = s[idx+3:]
	}
	if idx := strings.Index(s, "@"); idx != -1 {
		s = s[idx+1:]
	}
	for _, sep := range []string{"/", "?", "#"} {
		if idx := strings.Index(s, sep); idx != -1 {
			s = s[:idx]
		}
	}
	if idx := strings.Index(s, ":"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimPrefix(s, "www.")

	return s
}

// GetEnv returns the environment value for key, or defaultValue when unset.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
