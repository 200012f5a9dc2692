package job

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DefaultDigestLength is the number of hex characters kept from the identity
// digest when deriving job names.
const DefaultDigestLength = 10

// IdentityDigest computes a deterministic, order-insensitive digest of an
// identity value. The value is serialized to canonical JSON (round-tripped
// through generic types so map keys are emitted sorted and struct field order
// is irrelevant) and hashed with SHA-256; the hex digest is truncated to
// length characters. length <= 0 or beyond the full digest keeps everything.
func IdentityDigest(identity any, length int) (string, error) {
	canonical, err := canonicalJSON(identity)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize identity: %w", err)
	}

	sum := sha256.Sum256(canonical)
	digest := hex.EncodeToString(sum[:])
	if length > 0 && length < len(digest) {
		digest = digest[:length]
	}
	return digest, nil
}

// canonicalJSON produces a stable serialization of v. Marshaling to JSON and
// back through interface{} collapses structs into maps, and encoding/json
// writes map keys in sorted order, which gives the same bytes for logically
// equal values regardless of declaration or insertion order.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var norm any
	if err := json.Unmarshal(raw, &norm); err != nil {
		return nil, err
	}

	return json.Marshal(norm)
}
