package pokedex

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidName is returned for lookup names that are empty, too long, or
// contain anything but letters, digits, hyphens and spaces. Since the name
// ends up in a request URL (and, cached, on disk), everything that smells
// like an injection or path traversal attempt is rejected outright.
var ErrInvalidName = errors.New("invalid name")

const maxNameLength = 50

var (
	validNamePattern  = regexp.MustCompile(`^[a-z0-9\- ]+$`)
	dangerousPatterns = []*regexp.Regexp{
		regexp.MustCompile("[;'\"`]"),                     // quotes and statement terminators
		regexp.MustCompile(`--`),                          // SQL comment
		regexp.MustCompile(`/\*|\*/`),                     // SQL block comment
		regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|TRUNCATE|ALTER|CREATE|EXEC|UNION|OR|AND)\b`),
		regexp.MustCompile(`[<>]`),                        // markup brackets
		regexp.MustCompile(`\.\.`),                        // path traversal
		regexp.MustCompile(`[/\\]`),                       // path separators
		regexp.MustCompile(`[\x00-\x1f]`),                 // control characters
	}
)

// SanitizeName validates a raw user-entered Pokémon name and returns the
// canonical form the API expects: trimmed and lowercase. The returned error
// wraps ErrInvalidName with the specific reason.
func SanitizeName(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	sanitized := strings.ToLower(strings.TrimSpace(raw))
	if len(sanitized) > maxNameLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, maxNameLength)
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(raw) {
			return "", fmt.Errorf("%w: dangerous characters", ErrInvalidName)
		}
	}
	if !validNamePattern.MatchString(sanitized) {
		return "", fmt.Errorf("%w: only letters, numbers and hyphens allowed", ErrInvalidName)
	}
	return sanitized, nil
}
