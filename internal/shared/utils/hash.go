package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bytedance/sonic"
)

// etagLength is how many hex digits of the digest an entity tag keeps
const etagLength = 16

// Hasher derives content hashes for HTTP caching
type Hasher struct {
	api sonic.API
}

// DefaultHasher returns a hasher encoding values with sorted map keys
func DefaultHasher() *Hasher {
	return &Hasher{api: sonic.ConfigStd}
}

// HashJSON hashes the JSON encoding of v. Equal values hash equally
// regardless of map iteration order.
func (h *Hasher) HashJSON(v interface{}) (string, error) {
	data, err := h.api.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return sum(data), nil
}

// ETag returns a strong HTTP entity tag for v
func (h *Hasher) ETag(v interface{}) (string, error) {
	digest, err := h.HashJSON(v)
	if err != nil {
		return "", err
	}
	return `"` + digest[:etagLength] + `"`, nil
}

func sum(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
