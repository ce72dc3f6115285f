// Package store implements an in-memory embedding store: a set of records
// (id, vector, opaque payload) with a fixed dimensionality that is set by the
// first insert and never changes afterwards.
//
// Writers are serialized by a mutex. Readers take an immutable Snapshot and
// iterate it without holding any lock, so a scan observes the store exactly
// as it was when the scan started.
package store
