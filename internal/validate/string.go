// Package validate provides centralized input validation and sanitization
// utilities for the matching API: resource identifiers from URL paths and
// free-text skill terms from query parameters and request bodies.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	// Optionally trim whitespace
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	// Check if empty
	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Get actual character count (not byte count)
	length := utf8.RuneCountInString(s)

	// Check minimum length
	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}

	// Check maximum length
	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}

	// Check allowed pattern
	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// idPattern matches resource identifiers: letters, digits, underscores,
// and hyphens. Covers UUIDs, ULIDs, and human-assigned test ids alike.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ID validates a mission or worker identifier taken from a URL path or a
// request body. Identifiers are at most 64 characters.
func ID(s string) (string, error) {
	return String(s, StringConstraints{
		MinLength:      1,
		MaxLength:      64,
		AllowedPattern: idPattern,
		TrimSpace:      true,
	})
}

// SkillTerm validates a free-text skill or diploma term. Terms keep their
// internal spacing and accents; only surrounding whitespace is trimmed.
// A term is at most 128 characters.
func SkillTerm(s string) (string, error) {
	return String(s, StringConstraints{
		MaxLength:  128,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}
