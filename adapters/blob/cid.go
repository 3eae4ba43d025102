package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const cidPrefix = "sha256:"

// ComputeCID derives the content identifier for a blob: the hex sha256 of its
// bytes with a hash-scheme prefix. Identical bytes always map to the same CID.
func ComputeCID(data []byte) string {
	sum := sha256.Sum256(data)
	return cidPrefix + hex.EncodeToString(sum[:])
}

// ValidCID reports whether s has the shape of a CID this package produces.
func ValidCID(s string) bool {
	rest, ok := strings.CutPrefix(s, cidPrefix)
	if !ok || len(rest) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil
}
