package reconcile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// ContentHash returns a deterministic digest of an outbound payload.
//
// The payload is encoded as JSON (struct fields in declaration order, map keys
// sorted, no HTML escaping) and NFC-normalized before hashing, so two values
// that are field-for-field equal always hash the same regardless of how they
// were built. The hash is used for change detection only, never for identity.
func ContentHash(payload any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	canonical := norm.NFC.Bytes(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
