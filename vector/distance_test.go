package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"opposite", []float32{1, 2, 3}, []float32{-1, -2, -3}, -1},
		{"close", []float32{1, 0, 0}, []float32{0.9, 0.1, 0}, 0.9 / math.Sqrt(0.82)},
		{"zero query", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
		{"zero stored", []float32{1, 2, 3}, []float32{0, 0, 0}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	var de *DimensionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Expected)
	assert.Equal(t, 3, de.Actual)
}

func TestCosineSimilarity_Properties(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3},
		{-0.5, 0.25, 8},
		{3, -1, 0},
		{0.001, 0.002, -0.003},
	}
	for i, a := range vectors {
		self, err := CosineSimilarity(a, a)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, self, 1e-9, "self similarity of vector %d", i)

		for j, b := range vectors {
			ab, err := CosineSimilarity(a, b)
			require.NoError(t, err)
			ba, err := CosineSimilarity(b, a)
			require.NoError(t, err)
			assert.InDelta(t, ab, ba, 1e-12, "symmetry %d/%d", i, j)
			assert.GreaterOrEqual(t, ab, -1.0)
			assert.LessOrEqual(t, ab, 1.0)

			for _, c := range []float32{0.1, 2, 1000} {
				scaled := make([]float32, len(a))
				for k := range a {
					scaled[k] = a[k] * c
				}
				got, err := CosineSimilarity(scaled, b)
				require.NoError(t, err)
				assert.InDelta(t, ab, got, 1e-6, "scale invariance %d/%d c=%v", i, j, c)
			}
		}
	}
}

func TestL2Distance(t *testing.T) {
	d, err := L2Distance([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-6)

	_, err = L2Distance([]float32{0}, []float32{3, 4})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestValidate(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	assert.NoError(t, Validate([]float32{0, 0, 0}))
	assert.NoError(t, Validate([]float32{-1, 2.5}))

	for name, v := range map[string][]float32{
		"nil":   nil,
		"empty": {},
		"nan":   {1, nan, 3},
		"+inf":  {inf},
		"-inf":  {0, float32(math.Inf(-1))},
	} {
		t.Run(name, func(t *testing.T) {
			err := Validate(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidVector)
		})
	}

	var ive *InvalidVectorError
	require.ErrorAs(t, Validate([]float32{1, nan}), &ive)
	assert.Equal(t, 1, ive.Index)
}

func TestMetricScore(t *testing.T) {
	q := []float32{1, 0}
	v := []float32{3, 4}

	assert.InDelta(t, 0.6, Cosine.Score(q, Norm(q), v, Norm(v)), 1e-9)
	assert.InDelta(t, 3.0, DotProduct.Score(q, Norm(q), v, Norm(v)), 1e-9)
	assert.InDelta(t, -math.Sqrt(20), Euclidean.Score(q, Norm(q), v, Norm(v)), 1e-5)
}

func TestParseMetric(t *testing.T) {
	for in, want := range map[string]Metric{
		"":          Cosine,
		"COSINE":    Cosine,
		"dot":       DotProduct,
		"l2":        Euclidean,
		"euclidean": Euclidean,
	} {
		got, err := ParseMetric(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMetric("hamming")
	assert.Error(t, err)
}
