package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFileNameLength bounds stored file names, in characters.
const MaxFileNameLength = 255

// HashUserKey returns a filesystem-safe identifier for a user ID.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// SanitizeFileName removes path separators and control characters, rejects
// traversal patterns and caps the name at MaxFileNameLength characters while
// keeping its extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if utf8.RuneCountInString(s) > MaxFileNameLength {
		ext := ""
		if i := strings.LastIndexByte(s, '.'); i > 0 && utf8.RuneCountInString(s[i:]) <= 16 {
			ext = s[i:]
		}
		s = TruncateRunes(strings.TrimSuffix(s, ext), MaxFileNameLength-utf8.RuneCountInString(ext)) + ext
	}
	return s, nil
}

// TruncateRunes returns s cut to at most n characters.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
