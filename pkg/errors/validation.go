package errors

import (
	"strings"
	"unicode"
)

// ValidateFolderPath validates a folder path submitted for analysis.
// It rejects paths that could be used for traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - No parent-directory traversal sequences
//   - Maximum length of 4096 characters
//
// Existence checks are done separately by the caller; this only guards
// against structurally dangerous input.
func ValidateFolderPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "folder_path is required")
	}

	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "folder path too long (max 4096 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "folder path contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "\x00"} {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidPath, "folder path contains invalid sequence: %q", pattern)
		}
	}

	return nil
}

// ValidateSnapshotName validates a user-supplied snapshot name.
// Names must be simple identifiers without path separators.
func ValidateSnapshotName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "snapshot name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "snapshot name too long (max 128 characters)")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "snapshot name cannot contain path separators")
	}
	return nil
}
