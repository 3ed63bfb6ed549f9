// Package canonical turns arbitrary nested values into a stable byte string and
// a content hash. Two logically equal objects always canonicalize identically,
// regardless of the order their fields were set in, which makes the hash usable
// as an idempotency key for stored verdicts and report versions.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	nullToken      = "null"
	undefinedToken = "undefined"
)

type undefinedType struct{}

// Undefined is the sentinel for an explicitly undefined value. It serializes to
// a token distinct from null. Recognized inside map[string]any / []any trees.
var Undefined = undefinedType{}

// Canonicalize renders v as a stable string: object keys are sorted by code
// point at every nesting depth, array order is preserved, and scalars use JSON
// encoding. Values it cannot serialize (e.g. cyclic structures) yield an error.
func Canonicalize(v any) (string, error) {
	var b strings.Builder
	if err := encodeValue(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Hash returns the SHA-256 digest of the canonical form as 64 lowercase hex
// characters.
func Hash(v any) (string, error) {
	s, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), nil
}

// BuildReportVersion builds the deterministic version string
// {funnelVersion}-{algorithmVersion}-{promptVersion}-{inputsHashPrefix}, where
// the prefix is the first 8 hex characters of Hash(inputs).
func BuildReportVersion(funnelVersion, algorithmVersion, promptVersion string, inputs any) (string, error) {
	h, err := Hash(inputs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s-%s", funnelVersion, algorithmVersion, promptVersion, h[:8]), nil
}

func encodeValue(b *strings.Builder, v any) error {
	switch val := v.(type) {
	case undefinedType:
		b.WriteString(undefinedToken)
		return nil
	case nil:
		b.WriteString(nullToken)
		return nil
	case map[string]any:
		return encodeObject(b, val)
	case []any:
		return encodeArray(b, val)
	case json.Number:
		b.WriteString(val.String())
		return nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return encodeScalar(b, val)
	default:
		// Structs, typed maps and typed slices are normalized by a round trip
		// through encoding/json, which also rejects cyclic values.
		decoded, err := roundTrip(val)
		if err != nil {
			return err
		}
		return encodeValue(b, decoded)
	}
}

func encodeObject(b *strings.Builder, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := encodeScalar(b, k); err != nil {
			return err
		}
		b.WriteByte(':')
		if err := encodeValue(b, m[k]); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func encodeArray(b *strings.Builder, items []any) error {
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := encodeValue(b, item); err != nil {
			return err
		}
	}
	b.WriteByte(']')
	return nil
}

func encodeScalar(b *strings.Builder, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("canonicalize scalar: %w", err)
	}
	b.Write(raw)
	return nil
}

func roundTrip(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: unsupported value: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("canonicalize: decode normalized value: %w", err)
	}
	return decoded, nil
}
