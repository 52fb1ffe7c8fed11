package tracking

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashUserData normalizes a personal value (trim, lowercase) and returns its
// SHA-256 hex digest, the form Meta expects for em/ph. A value that is blank
// after trimming hashes to "" so callers can leave the field out.
func HashUserData(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
