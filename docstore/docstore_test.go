package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/embedstore/engine"
	"github.com/viant/embedstore/index/bruteforce"
	"github.com/viant/embedstore/store"
	"github.com/viant/embedstore/vector"
)

type product struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(context.Background(), openDB(t), opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)

	_, err = New(context.Background(), openDB(t), WithTable("docs; DROP TABLE x"))
	assert.Error(t, err)

	s := newStore(t, WithTable("products"))
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Save(ctx, []store.Record{
		{ID: "laptop", Vector: []float32{1, 0, 0}, Payload: product{Name: "Laptop", Category: "electronics", Price: 1899.99}},
		{ID: "desk", Vector: []float32{0, 1, 0}, Payload: json.RawMessage(`{"name":"Desk"}`)},
		{ID: "lamp", Vector: []float32{0, 0, 1}},
	}))
	// upsert keeps the original position
	require.NoError(t, s.Save(ctx, []store.Record{
		{ID: "laptop", Vector: []float32{0.9, 0.1, 0}, Payload: product{Name: "Laptop Pro"}},
	}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mem := store.New()
	loaded, err := s.Load(ctx, mem)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded)
	assert.Equal(t, 3, mem.Dimension())

	var order []string
	for r := range mem.Scan() {
		order = append(order, r.ID)
	}
	assert.Equal(t, []string{"laptop", "desk", "lamp"}, order)

	laptop, ok := mem.Get("laptop")
	require.True(t, ok)
	assert.Equal(t, []float32{0.9, 0.1, 0}, laptop.Vector)
	var p product
	require.NoError(t, json.Unmarshal(laptop.Payload.(json.RawMessage), &p))
	assert.Equal(t, "Laptop Pro", p.Name)

	desk, _ := mem.Get("desk")
	assert.JSONEq(t, `{"name":"Desk"}`, string(desk.Payload.(json.RawMessage)))

	lamp, _ := mem.Get("lamp")
	assert.Nil(t, lamp.Payload)
}

func TestSave_Rejects(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.Save(ctx, []store.Record{{Vector: []float32{1}}})
	assert.Error(t, err)

	err = s.Save(ctx, []store.Record{
		{ID: "ok", Vector: []float32{1, 2}},
		{ID: "nan", Vector: []float32{float32(math.NaN()), 2}},
	})
	assert.ErrorIs(t, err, vector.ErrInvalidVector)

	err = s.Save(ctx, []store.Record{
		{ID: "a", Vector: []float32{1, 2}},
		{ID: "b", Vector: []float32{1, 2, 3}},
	})
	assert.ErrorIs(t, err, vector.ErrDimensionMismatch)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLoad_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	s, err := New(ctx, db)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, []store.Record{
		{ID: "a", Vector: make([]float32, 384)},
		{ID: "b", Vector: make([]float32, 384)},
	}))
	// a row written by another tool with the wrong dimensionality
	_, err = db.ExecContext(ctx, `INSERT INTO docs(id, payload, embedding) VALUES('short', NULL, ?)`,
		vector.EncodeEmbedding([]float32{1, 2, 3, 4, 5}))
	require.NoError(t, err)

	mem := store.New()
	_, err = s.Load(ctx, mem)
	require.Error(t, err)
	assert.ErrorIs(t, err, vector.ErrDimensionMismatch)
	var re *store.RecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "short", re.ID)
	assert.Equal(t, 0, mem.Len())

	_, err = db.ExecContext(ctx, `UPDATE docs SET embedding = X'010203' WHERE id = 'short'`)
	require.NoError(t, err)
	_, err = s.Load(ctx, mem)
	assert.Error(t, err)
	assert.Equal(t, 0, mem.Len())
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Save(ctx, []store.Record{{ID: "a", Vector: []float32{1}}}))

	require.NoError(t, s.Remove(ctx, "a"))
	assert.ErrorIs(t, s.Remove(ctx, "a"), store.ErrNotFound)
	assert.Error(t, s.Remove(ctx, ""))
}

func TestRemoveAll(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Save(ctx, []store.Record{
		{ID: "a", Vector: []float32{1}},
		{ID: "b", Vector: []float32{2}},
		{ID: "c", Vector: []float32{3}},
	}))

	err := s.RemoveAll(ctx, "a", "missing", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	var re *store.RecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "missing", re.ID)
	assert.Equal(t, 1, re.Index)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "a failed removal deletes nothing")

	require.NoError(t, s.RemoveAll(ctx, "a", "c"))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoError(t, s.RemoveAll(ctx))
	assert.Error(t, s.RemoveAll(ctx, "b", ""))
}

func TestSQLSearchMatchesRanker(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	rng := rand.New(rand.NewSource(3))
	records := make([]store.Record, 64)
	for i := range records {
		v := make([]float32, 12)
		for j := range v {
			v[j] = float32(rng.NormFloat64())
		}
		records[i] = store.Record{ID: string(rune('A'+i%26)) + string(rune('a'+i/26)), Vector: v}
	}
	require.NoError(t, s.Save(ctx, records))

	mem := store.New()
	_, err := s.Load(ctx, mem)
	require.NoError(t, err)

	query := records[5].Vector
	want, err := bruteforce.New().Search(mem, query, 10)
	require.NoError(t, err)
	got, err := s.SQLSearch(ctx, query, 10)
	require.NoError(t, err)

	require.Len(t, got, 10)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID, "rank %d", i)
		assert.InDelta(t, want[i].Score, got[i].Score, 1e-9)
	}
	assert.Equal(t, records[5].ID, got[0].ID)

	empty, err := s.SQLSearch(ctx, query, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
	_, err = s.SQLSearch(ctx, query, -1)
	assert.Error(t, err)
}
