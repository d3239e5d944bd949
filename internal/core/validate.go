package core

import (
	"strings"
	"unicode/utf8"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
	messageMaxLen  = 1000
)

// ValidateUsername checks that a username, after trimming, is 3-20
// characters of letters, digits and underscores.
func ValidateUsername(name string) error {
	trimmed := strings.TrimSpace(name)
	if utf8.RuneCountInString(trimmed) < usernameMinLen {
		return coreError(ErrCodeInvalidFormat, "Username must be at least 3 characters long")
	}
	if utf8.RuneCountInString(trimmed) > usernameMaxLen {
		return coreError(ErrCodeInvalidFormat, "Username must be less than 20 characters")
	}
	for _, r := range trimmed {
		if !isWordRune(r) {
			return coreError(ErrCodeInvalidFormat, "Username can only contain letters, numbers, and underscores")
		}
	}
	return nil
}

// ValidateMessage trims the text once and returns the canonical form.
// The returned string is exactly what must be persisted and broadcast;
// callers never re-trim.
func ValidateMessage(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", coreError(ErrCodeEmptyMessage, "Message cannot be empty")
	}
	// Limits count characters, not bytes.
	if utf8.RuneCountInString(trimmed) > messageMaxLen {
		return "", coreError(ErrCodeTooLong, "Message must be less than 1000 characters")
	}
	return trimmed, nil
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	}
	return false
}
