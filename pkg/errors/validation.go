package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxIDLength bounds caller-supplied node ids.
const MaxIDLength = 128

// ValidateID validates a caller-supplied node id before it reaches the
// layout engine. Ids are opaque to the engine, but they travel through
// URLs, DOT labels and storage keys, so the rules are conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - Maximum length of MaxIDLength bytes
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidID, "id contains invalid characters: %q", id)
		}
	}

	return nil
}

// ValidateOptionalID is like ValidateID but accepts the empty string, which
// asks the engine to generate an id.
func ValidateOptionalID(id string) error {
	if id == "" {
		return nil
	}
	return ValidateID(id)
}

// workspaceNameRegex matches names safe to use as file names and keys.
var workspaceNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ValidateName validates a workspace name. Names become file names in the
// file store and key suffixes in Redis, so path separators and traversal
// sequences are rejected.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "workspace name cannot be empty")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "workspace name cannot contain path traversal sequences (..)")
	}

	if !workspaceNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid workspace name: %q", name)
	}

	return nil
}
