package contaix

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Fullpath expands a leading ~ and makes path absolute
func Fullpath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// IsURL reports whether s is an http(s) URL
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// SaveToFile writes data and returns the full path written.
// An empty key writes to a fresh temp file; a '*' in key is replaced by a uuid,
// so "/tmp/*_notes.md" becomes "/tmp/<uuid>_notes.md" and "*.md" lands in the temp directory.
func SaveToFile(data []byte, key string) (string, error) {
	switch {
	case key == "":
		key = filepath.Join(os.TempDir(), uuid.New().String())
	case strings.HasPrefix(key, "*"):
		key = filepath.Join(os.TempDir(), strings.Replace(key, "*", uuid.New().String(), 1))
	case strings.Contains(key, "*"):
		key = strings.Replace(key, "*", uuid.New().String(), 1)
	}
	path := Fullpath(key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

var improperDoubleNewline = regexp.MustCompile(`\n +\n`)

// RemoveImproperDoubleNewlines normalizes CRLF and collapses "\n   \n" runs into a single newline
func RemoveImproperDoubleNewlines(s string) string {
	s = strings.ReplaceAll(s, "\n\r", "\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return improperDoubleNewline.ReplaceAllString(s, "\n")
}
