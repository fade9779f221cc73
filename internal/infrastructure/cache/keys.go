package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key derives a stable cache key for an analysis response.  The idea text is
// normalized (trimmed, lowercased) and hashed so arbitrary user input never
// leaks into the key space.
func Key(category, idea string) string {
	normalized := strings.ToLower(strings.TrimSpace(idea))
	sum := sha256.Sum256([]byte(normalized))
	return category + ":" + hex.EncodeToString(sum[:16])
}
