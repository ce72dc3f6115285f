package index

import (
	"errors"

	"github.com/viant/embedstore/store"
)

// ErrInvalidK is returned when k is negative.
var ErrInvalidK = errors.New("index: k must not be negative")

// Source provides the consistent view a query runs against. Both
// *store.Store and *store.Snapshot satisfy it.
type Source interface {
	Snapshot() *store.Snapshot
}

// Result is a single ranked match. Score is the metric score, for cosine the
// similarity in [-1, 1]; higher is closer.
type Result struct {
	ID      string  `json:"id"`
	Payload any     `json:"payload,omitempty"`
	Score   float64 `json:"score"`
}

// Ranker answers top-K similarity queries.
type Ranker interface {
	// Search scores every record of one snapshot of src against query and
	// returns at most k results ordered by score descending; records that
	// score equally keep their scan order. k == 0 yields no results.
	Search(src Source, query []float32, k int) ([]Result, error)
}
