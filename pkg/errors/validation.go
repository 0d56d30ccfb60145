package errors

import (
	"path"
	"strings"
	"unicode"
)

// ValidateImageFilename validates a user-supplied image filename for safety.
// It ensures the name is a simple basename without path components, so it can
// be joined with the uploads or exports directory without escaping it.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateImageFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFilename, "filename cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidFilename, "filename too long (max 256 characters)")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidFilename, "filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidFilename, "filename cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidFilename, "filename cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidFilename, "filename cannot be a hidden file")
	}

	return nil
}

// ValidateImageExtension checks a filename extension against the allowed set.
// The comparison is case-insensitive. An empty allowed set rejects everything.
func ValidateImageExtension(name string, allowed []string) error {
	ext := strings.ToLower(path.Ext(name))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFilename, "unsupported image extension: %q", ext)
}
