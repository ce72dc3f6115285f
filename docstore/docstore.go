package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/store"
	"github.com/viant/embedstore/vector"
)

// Store keeps records in a SQLite table with the columns id, payload (JSON
// text) and embedding (BLOB, see vector.EncodeEmbedding). Rows are read back
// in rowid order, which is the order they were first saved in.
type Store struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithTable sets the table name. It must be a plain SQL identifier.
func WithTable(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.table = name
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store over db and ensures the table exists. Open db with
// engine.Open so vec_cosine is available to SQLSearch.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("docstore: db is nil")
	}
	s := &Store{
		db:     db,
		table:  DefaultTable,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := validateTable(s.table); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("docstore: ensure schema: %w", err)
	}
	return s, nil
}

// Save upserts records in a single transaction. Every record needs an id and
// a finite vector, and all vectors of the call must share one length;
// otherwise nothing is written. Payloads are stored as JSON; a
// json.RawMessage payload is written verbatim.
func (s *Store) Save(ctx context.Context, records []store.Record) error {
	if len(records) == 0 {
		return nil
	}
	dim := len(records[0].Vector)
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("docstore: record %d has no id", i)
		}
		if err := vector.Validate(r.Vector); err != nil {
			return &store.RecordError{Op: "save", ID: r.ID, Index: i, Err: err}
		}
		if err := vector.CheckDimension(dim, len(r.Vector)); err != nil {
			return &store.RecordError{Op: "save", ID: r.ID, Index: i, Err: err}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
INSERT INTO %s(id, payload, embedding) VALUES(?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  payload = excluded.payload,
  embedding = excluded.embedding`, s.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		payload, err := encodePayload(r.Payload)
		if err != nil {
			return fmt.Errorf("docstore: payload of %q: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, payload, vector.EncodeEmbedding(r.Vector)); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("saved records", "table", s.table, "count", len(records))
	return nil
}

// Load reads every row in rowid order and bulk-inserts them into dst, all or
// nothing. Payloads come back as json.RawMessage (nil for NULL). It returns
// the number of records loaded.
func (s *Store) Load(ctx context.Context, dst *store.Store) (int, error) {
	if dst == nil {
		return 0, fmt.Errorf("docstore: destination store is nil")
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, payload, embedding FROM %s ORDER BY rowid`, s.table))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		var (
			id      string
			payload sql.NullString
			blob    []byte
		)
		if err := rows.Scan(&id, &payload, &blob); err != nil {
			return 0, err
		}
		vec, err := vector.DecodeEmbedding(blob)
		if err != nil {
			return 0, fmt.Errorf("docstore: embedding of %q: %w", id, err)
		}
		records = append(records, store.Record{ID: id, Vector: vec, Payload: decodePayload(payload)})
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if err := dst.BulkInsert(records); err != nil {
		return 0, err
	}
	s.logger.Debug("loaded records", "table", s.table, "count", len(records), "dim", dst.Dimension())
	return len(records), nil
}

// Remove deletes the row with the given id. It fails with store.ErrNotFound
// when no such row exists.
func (s *Store) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("docstore: Remove called with empty id")
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &store.RecordError{Op: "remove", ID: id, Index: -1, Err: store.ErrNotFound}
	}
	return nil
}

// RemoveAll deletes the rows with the given ids in one transaction. When any
// id is absent nothing is deleted and the *store.RecordError names the first
// missing id and its position in ids.
func (s *Store) RemoveAll(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("docstore: RemoveAll called with empty id at %d", i)
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, id := range ids {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			s.logger.Debug("remove rolled back", "table", s.table, "size", len(ids), "index", i, "id", id)
			return &store.RecordError{Op: "remove", ID: id, Index: i, Err: store.ErrNotFound}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("removed records", "table", s.table, "count", len(ids))
	return nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n)
	return n, err
}

// SQLSearch ranks rows inside SQLite with vec_cosine, ties broken by rowid,
// and returns the top k. It sorts every row, so it serves as a reference
// for the in-memory ranker rather than as the query path.
func (s *Store) SQLSearch(ctx context.Context, query []float32, k int) ([]index.Result, error) {
	if k < 0 {
		return nil, index.ErrInvalidK
	}
	if err := vector.Validate(query); err != nil {
		return nil, err
	}
	if k == 0 {
		return []index.Result{}, nil
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, payload, vec_cosine(embedding, ?) AS score
FROM %s
ORDER BY score DESC, rowid ASC
LIMIT ?`, s.table), vector.EncodeEmbedding(query), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]index.Result, 0, k)
	for rows.Next() {
		var (
			r       index.Result
			payload sql.NullString
		)
		if err := rows.Scan(&r.ID, &payload, &r.Score); err != nil {
			return nil, err
		}
		r.Payload = decodePayload(payload)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func encodePayload(p any) (any, error) {
	switch v := p.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return string(v), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func decodePayload(p sql.NullString) any {
	if !p.Valid {
		return nil
	}
	return json.RawMessage(p.String)
}
