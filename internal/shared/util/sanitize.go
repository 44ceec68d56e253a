package util

import (
	"errors"
	"strings"
)

var errBadFileName = errors.New("invalid file name")

var separatorReplacer = strings.NewReplacer("/", "_", "\\", "_")

// SanitizeFileName makes an uploaded file name safe to embed in an object
// key. Traversal sequences are rejected outright rather than rewritten.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errBadFileName
	}
	s := separatorReplacer.Replace(strings.TrimSpace(name))
	if s == "" {
		return "", errBadFileName
	}
	return s, nil
}
