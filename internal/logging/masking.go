// Package logging provides utilities for secure logging with data masking.
package logging

import "strings"

// MaskHeader redacts sensitive header values based on header name.
// Returns the redacted value suitable for logging.
//
// Rules:
// - Password/secret headers: "[REDACTED]" (no partial reveal)
// - Credential headers: "****" + last4chars (e.g., "****ab3f")
// - Other headers: returned unchanged
func MaskHeader(name, value string) string {
	lowerName := strings.ToLower(name)

	// Password/secret headers - full redaction
	if strings.Contains(lowerName, "password") ||
		strings.Contains(lowerName, "secret") ||
		strings.Contains(lowerName, "private-key") {
		return "[REDACTED]"
	}

	// Credential headers - show last 4 chars only
	if lowerName == "authorization" ||
		lowerName == "x-api-token" ||
		lowerName == "x-api-key" {
		return MaskSecret(value)
	}

	// All other headers - return unchanged
	return value
}

// MaskSecret redacts a credential value, keeping only the last 4 characters
// for correlation. API token secrets additionally keep their fixed prefix so
// operators can tell token auth from JWT auth in debug logs.
func MaskSecret(value string) string {
	if len(value) < 8 {
		return "****"
	}
	if strings.HasPrefix(value, "dli_") {
		return "dli_****" + value[len(value)-4:]
	}
	return "****" + value[len(value)-4:]
}
