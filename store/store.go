package store

import (
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/viant/embedstore/vector"
)

// Store owns a set of records keyed by id, kept in insertion order.
//
// The dimensionality is fixed by the first successful insert and is sticky:
// removing every record does not reset it.
//
// records is only ever appended to in place past the length of every
// published snapshot; Remove and Replace install a fresh slice. A Snapshot
// therefore never changes once taken.
type Store struct {
	mu      sync.RWMutex
	dim     int
	records []*Record
	byID    map[string]int

	logger *slog.Logger
	newID  func() string
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		byID:   make(map[string]int),
		logger: discardLogger(),
		newID:  newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert stores a record. An empty id is replaced by a generated one.
//
// It fails with a *RecordError wrapping a *vector.DimensionError when the
// store already has a dimensionality and len(vec) differs, a
// *vector.InvalidVectorError when vec is empty or not finite, or
// ErrDuplicateID when id is already present. The vector is copied.
func (s *Store) Insert(id string, vec []float32, payload any) error {
	_, err := s.Add(id, vec, payload)
	return err
}

// Add is Insert that also returns the id the record was stored under.
func (s *Store) Add(id string, vec []float32, payload any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = s.newID()
	}
	rec, err := s.prepare("insert", id, -1, vec, payload, s.dim, nil)
	if err != nil {
		return "", err
	}
	s.commit([]*Record{rec})
	return id, nil
}

// BulkInsert stores records in the given order, all or nothing. Every entry
// is validated against the store and against the earlier entries of the
// batch before anything is committed; on the first failure the store is left
// unchanged and the returned *RecordError names the offending id and its
// position in the batch. Entries with an empty id get a generated one.
func (s *Store) BulkInsert(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dim
	seen := make(map[string]struct{}, len(records))
	batch := make([]*Record, 0, len(records))
	for i, r := range records {
		id := r.ID
		if id == "" {
			id = s.newID()
		}
		rec, err := s.prepare("bulk insert", id, i, r.Vector, r.Payload, dim, seen)
		if err != nil {
			s.logger.Debug("bulk insert rolled back", "size", len(records), "index", i, "id", id, "error", err)
			return err
		}
		if dim == 0 {
			dim = len(rec.Vector)
		}
		seen[id] = struct{}{}
		batch = append(batch, rec)
	}
	s.commit(batch)
	s.logger.Debug("bulk insert committed", "size", len(batch), "total", len(s.records), "dim", s.dim)
	return nil
}

// prepare validates one record against dim and the existing ids (plus the
// ids in pending, when not nil) and builds the record to store.
func (s *Store) prepare(op, id string, index int, vec []float32, payload any, dim int, pending map[string]struct{}) (*Record, error) {
	if err := vector.Validate(vec); err != nil {
		return nil, recordError(op, id, index, err)
	}
	if dim != 0 {
		if err := vector.CheckDimension(dim, len(vec)); err != nil {
			return nil, recordError(op, id, index, err)
		}
	}
	if _, ok := s.byID[id]; ok {
		return nil, recordError(op, id, index, ErrDuplicateID)
	}
	if _, ok := pending[id]; ok {
		return nil, recordError(op, id, index, ErrDuplicateID)
	}
	v := slices.Clone(vec)
	return &Record{ID: id, Vector: v, Payload: payload, norm: vector.Norm(v)}, nil
}

// commit appends validated records. Callers hold the write lock.
func (s *Store) commit(batch []*Record) {
	if s.dim == 0 && len(batch) > 0 {
		s.dim = len(batch[0].Vector)
	}
	for _, rec := range batch {
		s.byID[rec.ID] = len(s.records)
		s.records = append(s.records, rec)
	}
}

// Get returns a copy of the record stored under id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return s.records[i].Clone(), true
}

// Remove deletes the record stored under id. It fails with ErrNotFound when
// the id is absent. The dimensionality is kept even when the store becomes
// empty.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return recordError("remove", id, -1, ErrNotFound)
	}
	next := make([]*Record, 0, len(s.records)-1)
	next = append(next, s.records[:i]...)
	next = append(next, s.records[i+1:]...)
	s.records = next
	delete(s.byID, id)
	for j := i; j < len(next); j++ {
		s.byID[next[j].ID] = j
	}
	return nil
}

// Replace swaps the vector and payload of an existing record, keeping its
// scan position. It fails with ErrNotFound when id is absent and with the
// same validation errors as Insert.
func (s *Store) Replace(id string, vec []float32, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return recordError("replace", id, -1, ErrNotFound)
	}
	if err := vector.Validate(vec); err != nil {
		return recordError("replace", id, -1, err)
	}
	if err := vector.CheckDimension(s.dim, len(vec)); err != nil {
		return recordError("replace", id, -1, err)
	}
	v := slices.Clone(vec)
	next := slices.Clone(s.records)
	next[i] = &Record{ID: id, Vector: v, Payload: payload, norm: vector.Norm(v)}
	s.records = next
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Dimension returns the fixed dimensionality, or 0 before the first insert.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Snapshot returns an immutable view of the store as of now. A nil Store
// yields an empty snapshot.
func (s *Store) Snapshot() *Snapshot {
	if s == nil {
		return &Snapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.records)
	return &Snapshot{dim: s.dim, records: s.records[:n:n]}
}

// Scan iterates the records in insertion order over a snapshot taken when
// Scan is called. Yielded vectors are shared with the store and must not be
// modified.
func (s *Store) Scan() iter.Seq[Record] { return s.Snapshot().Scan() }
