package store

import "iter"

// Snapshot is a consistent, read-only view of a Store. It is safe for
// concurrent use and is unaffected by writes that commit after it was taken.
type Snapshot struct {
	dim     int
	records []*Record
}

// Dimension returns the store dimensionality at snapshot time.
func (s *Snapshot) Dimension() int { return s.dim }

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int { return len(s.records) }

// Get returns a copy of the record with the given id. Snapshots carry no id
// index, so the lookup is a linear scan.
func (s *Snapshot) Get(id string) (Record, bool) {
	for _, rec := range s.records {
		if rec.ID == id {
			return rec.Clone(), true
		}
	}
	return Record{}, false
}

// Snapshot returns s, so a Snapshot can be searched wherever a Store can.
func (s *Snapshot) Snapshot() *Snapshot { return s }

// Scan iterates the records in insertion order. Every call starts a new
// traversal from the beginning.
func (s *Snapshot) Scan() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, rec := range s.records {
			if !yield(*rec) {
				return
			}
		}
	}
}
