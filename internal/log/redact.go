package log

import (
	"log/slog"
	"regexp"
	"strings"
)

// RedactedValue replaces masked attribute values
const RedactedValue = "[REDACTED]"

// SensitiveKeys are attribute keys whose values are always masked
var SensitiveKeys = []string{
	"password",
	"api_key",
	"apikey",
	"authorization",
	"secret",
}

// tokenPatterns catch credentials that leak into free-form attribute values
var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[a-z0-9._\-]{8,}`),
	regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{16,}`),
	regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{35}\b`),
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range SensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// RedactString masks API keys and bearer tokens inside s
func RedactString(s string) string {
	for _, p := range tokenPatterns {
		s = p.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// redactAttr is a slog ReplaceAttr hook
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, RedactedValue)
	}
	if a.Value.Kind() == slog.KindString {
		if v := a.Value.String(); v != "" {
			if masked := RedactString(v); masked != v {
				return slog.String(a.Key, masked)
			}
		}
	}
	return a
}
