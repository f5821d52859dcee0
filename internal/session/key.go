package session

import (
	"strings"
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/otlp"
)

// DeriveKey resolves the session key for a record: the client's session.id
// when present, otherwise the sanitized user email joined with the UTC hour
// of the record's timestamp. Records with neither are not attributable and
// return ok=false.
func DeriveKey(id otlp.Identity, ts time.Time) (string, bool) {
	if id.SessionID != "" {
		return id.SessionID, true
	}
	if id.UserEmail == "" {
		return "", false
	}
	return sanitize(id.UserEmail) + "-" + ts.UTC().Format("2006-01-02T15"), true
}

// sanitize replaces every character outside [A-Za-z0-9-] with '-'
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
