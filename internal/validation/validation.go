package validation

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrLocationEmpty is returned when location is empty or whitespace-only after trim.
var ErrLocationEmpty = errors.New("location is required")

// ErrLocationTooShort is returned when location length is below the minimum.
var ErrLocationTooShort = errors.New("location too short")

// ErrLocationTooLong is returned when location length exceeds the maximum.
var ErrLocationTooLong = errors.New("location too long")

// ErrLocationInvalidChars is returned when location contains disallowed characters.
var ErrLocationInvalidChars = errors.New("location contains invalid characters")

// ValidateLocation trims the input, enforces length bounds (minLen, maxLen in
// runes; zero disables a bound) and restricts it to place-name characters:
// letters, digits, space, comma, hyphen, period and apostrophe. The geocoding
// query is built without escaping, so this is where '&', '?', '#', '%', '='
// and '+' get rejected. Runs of spaces are collapsed to one.
func ValidateLocation(input string, minLen, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrLocationEmpty
	}
	for _, c := range trimmed {
		if !isAllowedLocationRune(c) {
			return "", ErrLocationInvalidChars
		}
	}
	s := strings.Join(strings.Fields(trimmed), " ")
	n := utf8.RuneCountInString(s)
	if minLen > 0 && n < minLen {
		return "", ErrLocationTooShort
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrLocationTooLong
	}
	return s, nil
}

func isAllowedLocationRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'':
		return true
	}
	return false
}
