package logger

import (
	"log/slog"
	"strings"

	"github.com/yndnr/tokgate-go/pkg/token"
)

// Keys redacted on exact match. "code" is the login code; matching it as a
// substring would also hide status_code and error_code.
var sensitiveKeys = map[string]struct{}{
	"code":       {},
	"phone_code": {},
	"session":    {},
	"hash":       {},
}

// Key fragments redacted on substring match.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"session_string",
	"api_hash",
	"credential",
	"auth_key",
}

// fingerprintSuffix marks keys holding a fingerprint, which is safe to log.
const fingerprintSuffix = "_fp"

// Shortest token-shaped value that is masked. Real sessions are hundreds of
// characters; the credential half is at least 12.
const (
	minSessionLen = 16
	minCredsLen   = 12
)

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if strVal == "" {
			return a
		}
		// Token shape takes priority: a token keeps its fingerprint.
		if looksLikeToken(strVal) {
			return slog.String(a.Key, maskToken(strVal))
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// maskToken replaces a token with its fingerprint.
func maskToken(value string) string {
	return redactedValue + " fp=" + token.Fingerprint(value)
}

// looksLikeToken reports whether value has the shape of a gateway token:
// a long base64url session, a colon, then a base64url or sealed credential
// segment.
func looksLikeToken(value string) bool {
	session, creds, ok := strings.Cut(value, ":")
	if !ok || len(session) < minSessionLen || len(creds) < minCredsLen {
		return false
	}
	return isTokenAlphabet(session) && isTokenAlphabet(creds)
}

func isTokenAlphabet(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '=', c == '.':
		default:
			return false
		}
	}
	return true
}

// RedactString manually redacts a string value.
// Use this when you need to redact a value before logging.
func RedactString(value string) string {
	if looksLikeToken(value) {
		return maskToken(value)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	if strings.HasSuffix(keyLower, fingerprintSuffix) {
		return false
	}
	if _, ok := sensitiveKeys[keyLower]; ok {
		return true
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value appears to be sensitive.
func IsSensitiveValue(value string) bool {
	return looksLikeToken(value)
}
