package bruteforce

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/store"
	"github.com/viant/embedstore/vector"
)

// Ranker is an exact top-K ranker. The zero value ranks by cosine
// similarity.
type Ranker struct {
	metric  vector.Metric
	workers int
	logger  *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithMetric selects the scoring metric. Every metric scores higher for
// closer vectors, so the ranking contract is the same for all of them.
func WithMetric(m vector.Metric) Option {
	return func(r *Ranker) { r.metric = m }
}

// WithWorkers bounds the number of queries SearchBatch runs at once. Values
// below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Ranker) { r.workers = n }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) { r.logger = logger }
}

// New creates a Ranker.
func New(opts ...Option) *Ranker {
	r := &Ranker{metric: vector.Cosine}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metric returns the metric the ranker scores with.
func (r *Ranker) Metric() vector.Metric {
	if r.metric == "" {
		return vector.Cosine
	}
	return r.metric
}

// Search returns the top k records of one snapshot of src, best first.
//
// k == 0 and an empty store (no dimensionality yet) yield an empty result.
// A negative k fails with index.ErrInvalidK, a query that is empty or not
// finite with a *vector.InvalidVectorError, and a query whose length differs
// from the store dimensionality with a *vector.DimensionError.
func (r *Ranker) Search(src index.Source, query []float32, k int) ([]index.Result, error) {
	if src == nil {
		return nil, fmt.Errorf("bruteforce: source is nil")
	}
	return r.search(snapshotOf(src), query, k)
}

// snapshotOf captures one snapshot of src. A typed nil source such as a nil
// *store.Snapshot reads as empty.
func snapshotOf(src index.Source) *store.Snapshot {
	if snap := src.Snapshot(); snap != nil {
		return snap
	}
	return &store.Snapshot{}
}

func (r *Ranker) search(snap *store.Snapshot, query []float32, k int) ([]index.Result, error) {
	if k < 0 {
		return nil, index.ErrInvalidK
	}
	if err := vector.Validate(query); err != nil {
		return nil, err
	}
	dim := snap.Dimension()
	if dim == 0 {
		return []index.Result{}, nil
	}
	if err := vector.CheckDimension(dim, len(query)); err != nil {
		return nil, err
	}
	if k == 0 {
		return []index.Result{}, nil
	}

	metric := r.Metric()
	qNorm := vector.Norm(query)
	best := newTopK(min(k, snap.Len()))
	seq := 0
	for rec := range snap.Scan() {
		best.offer(candidate{
			seq:    seq,
			score:  metric.Score(query, qNorm, rec.Vector, rec.Norm()),
			record: rec,
		})
		seq++
	}

	ranked := best.drain()
	out := make([]index.Result, len(ranked))
	for i, c := range ranked {
		out[i] = index.Result{ID: c.record.ID, Payload: c.record.Payload, Score: c.score}
	}
	r.log().Debug("search", "metric", metric, "k", k, "scanned", seq, "returned", len(out))
	return out, nil
}

// SearchBatch runs several queries against a single snapshot of src and
// returns their results in query order. Queries run on at most the
// configured number of workers; the first failure cancels the rest and is
// returned with the index of the failing query.
func (r *Ranker) SearchBatch(ctx context.Context, src index.Source, queries [][]float32, k int) ([][]index.Result, error) {
	if src == nil {
		return nil, fmt.Errorf("bruteforce: source is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	snap := snapshotOf(src)
	out := make([][]index.Result, len(queries))

	workers := r.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.search(snap, q, k)
			if err != nil {
				return fmt.Errorf("bruteforce: query %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Ranker) log() *slog.Logger {
	if r.logger == nil {
		return discard
	}
	return r.logger
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Ensure Ranker satisfies the index.Ranker interface.
var _ index.Ranker = (*Ranker)(nil)
