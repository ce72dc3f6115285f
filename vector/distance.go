package vector

import (
	"math"

	"github.com/viant/vec/search"
)

// Dot returns the dot product of a and b accumulated in float64. Lengths are
// assumed equal; callers validate dimensions first.
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Norm returns the Euclidean magnitude of v.
func Norm(v []float32) float64 { return math.Sqrt(Dot(v, v)) }

// CosineSimilarity computes the cosine similarity between two vectors. It
// returns a *DimensionError if the vectors have different lengths. When
// either vector has zero magnitude the similarity is 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if err := CheckDimension(len(a), len(b)); err != nil {
		return 0, err
	}
	return CosineWithNorms(a, Norm(a), b, Norm(b)), nil
}

// CosineWithNorms computes cosine similarity from precomputed magnitudes. A zero
// magnitude on either side yields 0. The result is clamped to [-1, 1] to
// absorb rounding drift.
func CosineWithNorms(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	s := Dot(a, b) / (aNorm * bNorm)
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}

// L2Distance computes the Euclidean (L2) distance between two vectors. It
// returns a *DimensionError if the vectors have different lengths.
func L2Distance(a, b []float32) (float64, error) {
	if err := CheckDimension(len(a), len(b)); err != nil {
		return 0, err
	}
	return l2(a, b), nil
}

func l2(a, b []float32) float64 {
	return float64(search.Float32s(a).EuclideanDistance(b))
}
