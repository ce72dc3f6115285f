package store

import "slices"

// Record is a single stored entry. Payload is carried through unchanged and
// never inspected.
type Record struct {
	ID      string
	Vector  []float32
	Payload any

	norm float64
}

// Norm returns the magnitude of the vector, cached when the record was
// stored. It is 0 for records that were not obtained from a Store.
func (r Record) Norm() float64 { return r.norm }

// Clone returns a copy of r whose vector does not alias r's.
func (r Record) Clone() Record {
	r.Vector = slices.Clone(r.Vector)
	return r
}
