package util

import (
	"errors"
	"strings"
)

var (
	ErrEmptyFileName  = errors.New("empty file name")
	ErrUnsafeFileName = errors.New("unsafe file name")
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrUnsafeFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", ErrEmptyFileName
	}
	return s, nil
}

// CheckPlainFileName accepts only a bare file name: no "..", "/" or "\".
// Unlike SanitizeFileName it never rewrites the input.
func CheckPlainFileName(name string) error {
	if name == "" {
		return ErrEmptyFileName
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return ErrUnsafeFileName
	}
	return nil
}
