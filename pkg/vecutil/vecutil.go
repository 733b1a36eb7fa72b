// Package vecutil provides the pure vector helpers shared by the graph store,
// the summarizer, and the query engines: the embedding byte codec and cosine
// similarity. Kept dependency-free so every caller can import it without
// pulling in the sqlite driver.
package vecutil

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeToBlob packs a float32 vector into a little-endian byte blob, 4 bytes
// per component. This is the on-disk layout the graph store persists and the
// layout sqlite-vec's vec0 tables expect and return.
func EncodeToBlob(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeBlob unpacks a little-endian float32 blob back into a vector. Returns
// an error if the blob length is not a multiple of 4.
func DecodeBlob(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vecutil: blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

// Cosine returns the cosine similarity of a and b: ⟨a,b⟩ / (‖a‖‖b‖). Callers
// are responsible for ensuring a and b share a dimension; mismatched lengths
// return 0 rather than panicking, since this is the unit used deep inside
// exhaustive similarity scans where a single bad row must not abort the scan.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		af, bf := float64(a[i]), float64(b[i])
		dot += af * bf
		normA += af * af
		normB += bf * bf
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
