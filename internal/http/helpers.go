package http

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// sanitizeInput trims surrounding space from a user-supplied field and drops
// control characters, keeping tabs and line breaks.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// generateRequestID returns the id echoed in X-Request-ID when the client
// sent none.
func generateRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
