package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashLength is the number of hex characters kept from the digest.
const hashLength = 16

// HashInput returns a fixed-length hex digest of normalized mood text.
func HashInput(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:hashLength]
}

// BuildMoodKey builds the cache key for already-normalized input.
// versionID lets a deploy invalidate every entry at once (e.g. after a prompt change).
func BuildMoodKey(normalized, versionID string) MoodKey {
	versionID = strings.TrimSpace(versionID)
	if versionID == "" {
		versionID = "v1"
	}
	return MoodKey{
		VersionID: versionID,
		Hash:      HashInput(normalized),
	}
}
