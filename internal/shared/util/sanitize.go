package util

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const maxFileNameLen = 128

// SanitizeFileName removes path separators and rejects traversal segments.
// Overlong names keep their extension so format detection still works.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	for _, seg := range strings.FieldsFunc(s, isPathSeparator) {
		if seg == ".." {
			return "", errors.New("invalid file name")
		}
	}
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ToValidUTF8(s, "")
	if s == "" || s == "." || s == ".." {
		return "", errors.New("invalid file name")
	}
	if len(s) > maxFileNameLen {
		ext := ""
		if i := strings.LastIndex(s, "."); i >= 0 && len(s)-i <= 10 {
			ext = s[i:]
		}
		s = truncateUTF8(s[:len(s)-len(ext)], maxFileNameLen-len(ext)) + ext
	}
	return s, nil
}

func isPathSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
