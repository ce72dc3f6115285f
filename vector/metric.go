package vector

import (
	"fmt"
	"strings"
)

// Metric names a scoring function. Every metric scores so that a higher value
// means a closer match, which keeps the top-K contract identical across
// metrics.
type Metric string

const (
	// Cosine scores by cosine similarity in [-1, 1].
	Cosine Metric = "cosine"
	// DotProduct scores by the raw inner product.
	DotProduct Metric = "dot"
	// Euclidean scores by the negated L2 distance.
	Euclidean Metric = "euclidean"
)

// ParseMetric resolves a metric name. The empty string selects Cosine.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cos", "cosine":
		return Cosine, nil
	case "dot", "dot_product", "inner":
		return DotProduct, nil
	case "l2", "euclidean":
		return Euclidean, nil
	}
	return "", fmt.Errorf("vector: unsupported metric %q", name)
}

// Score compares a query q against a stored vector v. Norms are passed in so
// the stored side can be cached; metrics that do not need them ignore them.
// Both vectors must already have the same length.
func (m Metric) Score(q []float32, qNorm float64, v []float32, vNorm float64) float64 {
	switch m {
	case DotProduct:
		return Dot(q, v)
	case Euclidean:
		return -l2(q, v)
	default:
		return CosineWithNorms(q, qNorm, v, vNorm)
	}
}

func (m Metric) String() string {
	if m == "" {
		return string(Cosine)
	}
	return string(m)
}
