package hash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonical renders any JSON-marshalable value in a canonical form:
// object keys sorted, no insignificant whitespace. Two documents that
// are JSON-equal canonicalize to identical bytes, so their digests
// match regardless of how the document was produced.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal for canonicalization: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode for canonicalization: %w", err)
	}
	var buf bytes.Buffer
	writeCanonical(&buf, tree)
	return buf.Bytes(), nil
}

// DigestCanonical is the digest of the canonical rendering.
func DigestCanonical(v any) (string, error) {
	c, err := Canonical(v)
	if err != nil {
		return "", err
	}
	return DigestBytes(c), nil
}

func writeCanonical(buf *bytes.Buffer, v any) {
	switch vv := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			writeCanonical(buf, vv[k])
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range vv {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, item)
		}
		buf.WriteByte(']')
	case json.Number:
		buf.WriteString(vv.String())
	default:
		// strings, bools, null: encoding/json is already canonical.
		b, _ := json.Marshal(vv)
		buf.Write(b)
	}
}
