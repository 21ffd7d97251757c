package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// MaxKeyLength is the maximum length accepted by ValidateKey.
const MaxKeyLength = 512

// Keyer derives deterministic string keys from structured inputs.
//
// Contract:
// - Determinism: equal inputs yield equal keys regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key derives a key for input within namespace.
	Key(namespace string, input any) (string, error)
}

// HashKeyer derives keys of the form <namespace>:<hash>, where hash is the
// first 16 hex characters of the SHA-256 of the input's canonical JSON.
type HashKeyer struct{}

// NewHashKeyer returns a HashKeyer.
func NewHashKeyer() *HashKeyer {
	return &HashKeyer{}
}

// Key implements Keyer.
func (k *HashKeyer) Key(namespace string, input any) (string, error) {
	if err := ValidateKey(namespace); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, input); err != nil {
		return "", fmt.Errorf("cache: canonicalize input: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return namespace + ":" + hex.EncodeToString(sum[:8]), nil
}

// ValidateKey rejects empty, oversized and multi-line string keys.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// writeCanonical writes v as JSON with object keys sorted at every depth.
func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(name)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		// encoding/json already sorts map keys of concrete map types.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}
}

var _ Keyer = (*HashKeyer)(nil)
