package util

import (
	"crypto/sha256"
	"fmt"
)

// HashUserKey derives a stable hex prefix from a user ID so object keys
// never expose the raw identifier.
func HashUserKey(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))
}
