package vector

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EncodeEmbedding encodes vec as a BLOB: a little-endian sequence of IEEE 754
// float32 values without a length prefix. A nil or empty vector encodes to
// nil.
func EncodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	b := make([]byte, 0, len(vec)*4)
	for _, v := range vec {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding. The length is
// derived from the BLOB size.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// ParseVector decodes a textual vector. Accepted forms are a JSON array
// ("[1, 0.5]"), a comma separated list ("1,0.5") and a base64 encoded BLOB as
// produced by EncodeEmbedding. A single number is a one component vector.
func ParseVector(raw string) ([]float32, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("vector: empty vector text")
	}
	if strings.HasPrefix(s, "[") {
		var vec Components
		if err := json.Unmarshal([]byte(s), &vec); err != nil {
			return nil, fmt.Errorf("vector: invalid JSON vector: %w", err)
		}
		return vec, nil
	}
	if vec, err := parseCSV(s); err == nil {
		return vec, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		if vec, err := DecodeEmbedding(b); err == nil && len(vec) > 0 {
			return vec, nil
		}
	}
	return nil, fmt.Errorf("vector: %q is neither a JSON/CSV float list nor a base64 embedding", raw)
}

func parseCSV(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	vec := make([]float32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("vector: empty component in %q", s)
		}
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("vector: invalid float %q: %w", p, err)
		}
		vec = append(vec, float32(f))
	}
	return vec, nil
}

// Components is a JSON array of numbers decoded into float32 values. Unlike a
// plain []float32 it rejects null entries with an *InvalidVectorError
// instead of decoding them as 0.
type Components []float32

// UnmarshalJSON implements json.Unmarshaler.
func (c *Components) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*c = nil
		return nil
	}
	out := make(Components, len(raw))
	for i, f := range raw {
		if f == nil {
			return &InvalidVectorError{Index: i, Null: true}
		}
		out[i] = float32(*f)
	}
	*c = out
	return nil
}
