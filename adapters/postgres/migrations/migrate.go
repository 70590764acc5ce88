// Package migrations creates the audit schema. The immutability trigger
// enforces append-only at the database boundary, not just by convention.
package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id                          TEXT PRIMARY KEY,
	seq                         BIGINT NOT NULL UNIQUE,
	calculation_id              TEXT NOT NULL,
	performed_at                TIMESTAMPTZ NOT NULL,
	performer                   TEXT NOT NULL,
	inputs                      JSONB NOT NULL,
	outputs                     JSONB NOT NULL,
	input_hash                  TEXT NOT NULL,
	output_hash                 TEXT NOT NULL,
	content_hash                TEXT NOT NULL,
	chain_hash                  TEXT NOT NULL UNIQUE,
	prev_chain_hash             TEXT NOT NULL UNIQUE,
	software_version            TEXT NOT NULL,
	calculation_method_version  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_entries_calculation_id_idx
	ON audit_entries (calculation_id);

CREATE OR REPLACE FUNCTION audit_entries_refuse_mutation() RETURNS trigger AS $$
BEGIN
	RAISE EXCEPTION 'AuditImmutableViolation: audit entries are write-once';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS audit_entries_immutable ON audit_entries;
CREATE TRIGGER audit_entries_immutable
	BEFORE UPDATE OR DELETE ON audit_entries
	FOR EACH ROW EXECUTE FUNCTION audit_entries_refuse_mutation();
`

// Run applies the schema.
func Run(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply audit schema: %w", err)
	}
	return nil
}
