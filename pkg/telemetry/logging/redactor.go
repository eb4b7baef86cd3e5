package logging

import (
	"regexp"
	"strings"
)

// Redactor redacts credential-shaped values from log fields. Unlike the
// teacher's broader PII redactor (emails, SSNs, credit cards — none of
// which this domain ever logs), the default pattern set here is narrowed to
// what spec.md §7 actually requires: "error strings must not contain
// credentials or environment-derived secrets," which in this domain means
// the two optional upstream API keys and generic bearer/auth material.
type Redactor struct {
	patterns map[string]*redactPattern
	enabled  bool
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// Pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternDSN         = "dsn_credentials"
)

// NewRedactor creates a Redactor with default and custom patterns.
func NewRedactor(customPatterns []RedactPattern) *Redactor {
	r := &Redactor{patterns: make(map[string]*redactPattern), enabled: true}
	r.addDefaultPatterns()

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns[p.Name] = &redactPattern{regex: regex, replacement: p.Replacement}
	}

	return r
}

func (r *Redactor) addDefaultPatterns() {
	patterns := map[string]struct {
		regex       string
		replacement string
	}{
		PatternAPIKey: {
			regex:       `(?i)(api[-_]?key[-_:=]\s*)[a-zA-Z0-9]+`,
			replacement: "${1}***",
		},
		PatternBearerToken: {
			regex:       `(?i)Bearer\s+[a-zA-Z0-9\-._~+/]+=*`,
			replacement: "Bearer ***",
		},
		// A sqlite DSN or any connection string with a userinfo component
		// (user:password@host) — the database DSN is the one required
		// environment input (§6) and must never appear in full in a log line.
		PatternDSN: {
			regex:       `([a-zA-Z][a-zA-Z0-9+.-]*://[^:/?#\s]+:)[^@/?#\s]+(@)`,
			replacement: "${1}***${2}",
		},
	}

	for name, p := range patterns {
		r.patterns[name] = &redactPattern{regex: regexp.MustCompile(p.regex), replacement: p.replacement}
	}
}

// RedactString redacts credential-shaped substrings from value.
func (r *Redactor) RedactString(value string) string {
	if !r.enabled || value == "" {
		return value
	}
	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// RedactArgs redacts credentials from variadic slog-style key/value
// arguments: key1, value1, key2, value2, ...
func (r *Redactor) RedactArgs(args ...any) []any {
	if !r.enabled || len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		key, ok := redacted[i-1].(string)
		if ok && r.isSensitiveKey(key) {
			redacted[i] = r.redactValue(redacted[i])
			continue
		}
		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}

	return redacted
}

func (r *Redactor) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range []string{"api_key", "apikey", "credential", "dsn", "password", "secret", "token", "authorization"} {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

func (r *Redactor) redactValue(value any) any {
	s, ok := value.(string)
	if !ok {
		return "***"
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "***"
}

// RedactAPIKey redacts an API key, keeping only a short prefix for
// correlation in logs.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}
