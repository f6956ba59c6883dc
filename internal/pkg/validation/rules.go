package validation

import (
	"regexp"
)

// Validation rule patterns
var (
	// letters, digits and . _ -
	UsernamePattern = `^[a-zA-Z0-9._-]+$`

	// 24h HH:MM
	ClockPattern = `^([01]\d|2[0-3]):[0-5]\d$`

	// ISO 4217 alphabetic code, any case
	CurrencyPattern = `^[A-Za-z]{3}$`

	UsernameMinLength = 3
	UsernameMaxLength = 50
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Username *regexp.Regexp
	Clock    *regexp.Regexp
	Currency *regexp.Regexp
}{
	Username: regexp.MustCompile(UsernamePattern),
	Clock:    regexp.MustCompile(ClockPattern),
	Currency: regexp.MustCompile(CurrencyPattern),
}

// IsUsername reports whether s is an acceptable handle
func IsUsername(s string) bool {
	return len(s) >= UsernameMinLength && len(s) <= UsernameMaxLength && CompiledPatterns.Username.MatchString(s)
}

// IsClockTime reports whether s is a HH:MM time of day
func IsClockTime(s string) bool {
	return CompiledPatterns.Clock.MatchString(s)
}

// IsCurrency reports whether s looks like a currency code
func IsCurrency(s string) bool {
	return CompiledPatterns.Currency.MatchString(s)
}
