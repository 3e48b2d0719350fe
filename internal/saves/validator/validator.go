package validator

import (
	"strings"
	"unicode/utf8"

	"github.com/example/isaac-save-manager/internal/saves/domain"
)

// ValidatePath checks that a path reported by the operating system can be shown to the
// user and joined safely.
//
// The function checks for:
//   - Empty or whitespace-only paths
//   - Invalid UTF-8 (paths must round-trip through the console unchanged)
//   - Null bytes
//
// what names the source of the path for the error message, e.g. "Steam installation".
func ValidatePath(what, path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", domain.Newf(domain.CodeExternalLookupFailure, "the %s path is empty", what).
			WithDetail("source", what)
	}
	if !utf8.ValidString(trimmed) {
		return "", domain.Newf(domain.CodePathEncodingFailure, "failed to convert the %s path to UTF-8: %q", what, trimmed).
			WithDetail("source", what).
			WithDetail("path", trimmed)
	}
	if strings.ContainsRune(trimmed, 0) {
		return "", domain.Newf(domain.CodePathEncodingFailure, "the %s path contains a null byte: %q", what, trimmed).
			WithDetail("source", what).
			WithDetail("path", trimmed)
	}
	return trimmed, nil
}

// NormalizeUsername strips a leading "DOMAIN\" qualifier, e.g. "alice-pc\Alice" -> "Alice".
func NormalizeUsername(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if i := strings.LastIndex(trimmed, `\`); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
