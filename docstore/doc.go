// Package docstore persists records in a SQLite table and bulk-loads them
// into an in-memory store.Store for ranking. It is the storage collaborator
// of the engine: it supplies and stores records but takes no part in
// ranking, apart from an SQL cross-check that orders rows with vec_cosine.
package docstore
