package docstore

import (
	"context"
	"fmt"
	"regexp"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "docs"

const tableSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id TEXT PRIMARY KEY,
    payload TEXT,
    embedding BLOB NOT NULL
);
`

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateTable rejects table names that are not plain SQL identifiers, since
// the name is interpolated into statements.
func validateTable(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("docstore: invalid table name %q", name)
	}
	return nil
}

// EnsureSchema creates the records table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(tableSchema, s.table))
	return err
}
