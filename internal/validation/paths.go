// Package validation checks paths and names that come from template text or
// configuration before they reach the filesystem.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ContainedIn returns an error unless p, once cleaned, is root itself or lies
// below it. Both paths should be absolute or both relative.
func ContainedIn(root, p string) error {
	root = filepath.Clean(root)
	rel, err := filepath.Rel(root, filepath.Clean(p))
	if err != nil {
		return fmt.Errorf("path %s is not below %s: %w", p, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: %s escapes %s", p, root)
	}
	return nil
}

// ValidateExtension checks a view extension such as ".html.erb".
func ValidateExtension(ext string) error {
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		return fmt.Errorf("extension %q must start with a dot", ext)
	}
	if strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("extension %q contains a path separator", ext)
	}
	if strings.ContainsAny(ext, "\x00 \t\n") {
		return fmt.Errorf("extension %q contains whitespace or control characters", ext)
	}
	return nil
}

// SanitizeName strips NUL bytes and control characters from a name read out
// of a template. Ordinary whitespace is left for the caller to trim.
func SanitizeName(name string) string {
	if strings.IndexFunc(name, isControl) < 0 {
		return name
	}

	var sanitized strings.Builder
	for _, r := range name {
		if !isControl(r) {
			sanitized.WriteRune(r)
		}
	}
	return sanitized.String()
}

func isControl(r rune) bool {
	return (r < 32 && r != '\t' && r != '\n' && r != '\r') || r == 127
}
