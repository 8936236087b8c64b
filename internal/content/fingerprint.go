package content

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Fingerprint derives a stable content-equality token from a raw feed
// payload. The payload is decoded and re-encoded so that key order and
// insignificant whitespace do not affect the result: two payloads with
// equal content always share a fingerprint, regardless of formatting.
func Fingerprint(payload []byte) (string, error) {
	var value interface{}
	if err := json.Unmarshal(payload, &value); err != nil {
		return "", fmt.Errorf("fingerprint payload: %w", err)
	}

	// encoding/json marshals map keys in sorted order, which makes the
	// re-encoding canonical.
	canonical, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("canonicalize payload: %w", err)
	}

	return fmt.Sprintf("%x", sha256.Sum256(canonical)), nil
}
