// Package validator provides input validation and sanitization functions
// for the ghostnote backend security layer.
package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidIdentityID = errors.New("invalid identity id")
	ErrInputTooLong      = errors.New("input exceeds maximum length")
	ErrEmptyInput        = errors.New("input cannot be empty")
)

// MaxContentLength caps text message content.
const MaxContentLength = 4096

// identityIDRegex matches the 6-digit identity format.
var identityIDRegex = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// ValidateIdentityID validates the 6-digit identity id format.
func ValidateIdentityID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyInput
	}
	if !identityIDRegex.MatchString(id) {
		return ErrInvalidIdentityID
	}
	return nil
}

// SanitizeContent strips control characters from message content and
// enforces the content length cap.
func SanitizeContent(content string) string {
	return SanitizeString(content, MaxContentLength)
}

// SanitizeFilename removes dangerous characters from filename.
// Prevents path traversal and removes control characters.
func SanitizeFilename(filename string) string {
	// Remove path separators to prevent path traversal
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")

	// Remove null bytes
	filename = strings.ReplaceAll(filename, "\x00", "")

	// Remove control characters (ASCII 0-31 and 127)
	filename = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, filename)

	// Trim whitespace
	filename = strings.TrimSpace(filename)

	// Limit length to 255 characters (common filesystem limit)
	if utf8.RuneCountInString(filename) > 255 {
		runes := []rune(filename)
		filename = string(runes[:255])
	}

	// Fallback for empty filename
	if filename == "" {
		return "unnamed"
	}

	return filename
}

// SanitizeString removes potentially dangerous characters and enforces length limits.
// Removes control characters and trims whitespace.
func SanitizeString(input string, maxLength int) string {
	// Remove control characters (ASCII 0-31 and 127)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	// Trim whitespace
	input = strings.TrimSpace(input)

	// Enforce maximum length if specified
	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}

	return input
}
