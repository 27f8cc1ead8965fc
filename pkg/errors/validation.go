package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds node type names and titles.
const maxNameLength = 256

// ValidateNodeName validates a node type name for registration.
//
// Node type names are the lookup key of the registry and are written verbatim
// into tree documents, so the rules are conservative:
//   - No empty or whitespace-only names
//   - No leading or trailing whitespace
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "node name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "node name too long (max %d characters)", maxNameLength)
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidName, "node name %q has leading or trailing whitespace", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "node name contains invalid control characters")
		}
	}

	return nil
}

// ValidateModulePath validates the file path a module node points at.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateModulePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "module path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "module path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "module path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "module path must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "module path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "module path cannot contain backslashes")
	}

	return nil
}

// ValidateProjectName validates a project name used as a storage key.
// Project names become file names and Redis/Mongo keys, so they must be
// simple identifiers without path separators.
func ValidateProjectName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "project name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidName, "project name too long (max 128 characters)")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "project name cannot start with a dot")
	}
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
		default:
			return New(ErrCodeInvalidName, "project name contains invalid character %q", r)
		}
	}
	return nil
}
