package utils

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// Request limits
const (
	MaxBodySize        = 64 * 1024 // 64KB - maximum REST request body
	MaxPathLength      = 1024
	MaxQueryLength     = 256
	MaxSuggestions     = 50
	DefaultSuggestions = 10
	MaxMarkNames       = 500
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	if !utf8.ValidString(value) {
		return fmt.Errorf("%s is not valid UTF-8", fieldName)
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateDocumentPath validates a vault-relative, slash-separated document
// path.
func ValidateDocumentPath(p string) error {
	if err := ValidateString(p, "path", 1, MaxPathLength, true); err != nil {
		return err
	}

	if strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return fmt.Errorf("path must be relative and slash-separated")
	}
	if path.Clean(p) != p {
		return fmt.Errorf("path must be clean")
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return fmt.Errorf("path escapes the vault")
	}

	return nil
}

// ValidateQuery validates a switcher query
func ValidateQuery(q string) error {
	return ValidateString(q, "query", 0, MaxQueryLength, false)
}

// ClampLimit bounds a requested result count
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSuggestions
	case limit > MaxSuggestions:
		return MaxSuggestions
	default:
		return limit
	}
}
