package util

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>" (Notion integration tokens are opaque
	// bearer tokens). Tokens show up in logs via HTTP error messages.
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// Notion secrets carry a well-known prefix even outside a header.
	notionSecretRe = regexp.MustCompile(`\bsecret_[A-Za-z0-9]+`)

	// Common key=value formats that sometimes leak in error strings.
	secretKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|gemini[_-]?api[_-]?key|email[_-]?pass|smtp[_-]?pass(word)?|token)\b\s*[:=]\s*[^\s"']+`)
)

// RedactSecrets removes obvious secret-bearing substrings from error/log
// strings.
//
// This is intentionally conservative: it should be safe to call on any
// message, including user-provided inputs and upstream error strings.
func RedactSecrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = notionSecretRe.ReplaceAllString(out, "<redacted_secret>")
	out = secretKVRe.ReplaceAllString(out, "<redacted_kv>")
	return strings.TrimSpace(out)
}
