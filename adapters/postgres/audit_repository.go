// Package postgres persists the audit chain. Appends run in a transaction
// that locks the chain head row, so concurrent workers serialize and no
// two entries share a prev_chain_hash.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mechintegrity/domain/audit"
	"mechintegrity/domain/core"
)

// AuditRepository implements ports.AuditLog on PostgreSQL.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a repository over an open connection pool.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

type entryRow struct {
	ID                       string `db:"id"`
	Seq                      int64  `db:"seq"`
	CalculationID            string `db:"calculation_id"`
	PerformedAt              sql.NullTime `db:"performed_at"`
	Performer                string `db:"performer"`
	Inputs                   []byte `db:"inputs"`
	Outputs                  []byte `db:"outputs"`
	InputHash                string `db:"input_hash"`
	OutputHash               string `db:"output_hash"`
	ContentHash              string `db:"content_hash"`
	ChainHash                string `db:"chain_hash"`
	PrevChainHash            string `db:"prev_chain_hash"`
	SoftwareVersion          string `db:"software_version"`
	CalculationMethodVersion string `db:"calculation_method_version"`
}

// Append implements ports.AuditLog.
func (r *AuditRepository) Append(ctx context.Context, d audit.Draft) (audit.Entry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("begin audit append: %w", err)
	}
	defer tx.Rollback()

	// Lock the current head so concurrent appends serialize.
	var head struct {
		Seq       int64  `db:"seq"`
		ChainHash string `db:"chain_hash"`
	}
	seq := int64(1)
	var prev core.ChainHash
	err = tx.GetContext(ctx, &head,
		`SELECT seq, chain_hash FROM audit_entries ORDER BY seq DESC LIMIT 1 FOR UPDATE`)
	switch {
	case err == nil:
		seq = head.Seq + 1
		prev = core.ChainHash(head.ChainHash)
	case errors.Is(err, sql.ErrNoRows):
		// First entry of the stream.
	default:
		return audit.Entry{}, fmt.Errorf("read chain head: %w", err)
	}

	e := audit.Seal(d, seq, prev)
	inputsJSON, err := json.Marshal(e.Inputs)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("marshal inputs: %w", err)
	}
	outputsJSON, err := json.Marshal(e.Outputs)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("marshal outputs: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_entries (
			id, seq, calculation_id, performed_at, performer,
			inputs, outputs, input_hash, output_hash,
			content_hash, chain_hash, prev_chain_hash,
			software_version, calculation_method_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID.String(), e.Seq, e.CalculationID.String(), e.PerformedAt, e.Performer,
		inputsJSON, outputsJSON, e.InputHash.String(), e.OutputHash.String(),
		e.ContentHash.String(), e.ChainHash.String(), e.PrevChainHash.String(),
		e.SoftwareVersion, e.CalculationMethodVersion,
	)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("insert audit entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return audit.Entry{}, fmt.Errorf("commit audit append: %w", err)
	}
	return e, nil
}

// GetByCalculation implements ports.AuditLog.
func (r *AuditRepository) GetByCalculation(ctx context.Context, id core.CalculationID) (audit.Entry, error) {
	var row entryRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, seq, calculation_id, performed_at, performer,
		       inputs, outputs, input_hash, output_hash,
		       content_hash, chain_hash, prev_chain_hash,
		       software_version, calculation_method_version
		FROM audit_entries
		WHERE calculation_id = $1
		ORDER BY seq DESC LIMIT 1`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Entry{}, core.NewErrorf(core.KindNotFound, "no audit entry for calculation %s", id)
	}
	if err != nil {
		return audit.Entry{}, fmt.Errorf("get audit entry: %w", err)
	}
	return row.toEntry()
}

// Range implements ports.AuditLog.
func (r *AuditRepository) Range(ctx context.Context, fromSeq, toSeq int64) ([]audit.Entry, error) {
	if fromSeq < 1 {
		fromSeq = 1
	}
	query := `
		SELECT id, seq, calculation_id, performed_at, performer,
		       inputs, outputs, input_hash, output_hash,
		       content_hash, chain_hash, prev_chain_hash,
		       software_version, calculation_method_version
		FROM audit_entries
		WHERE seq >= $1 AND ($2 < 0 OR seq <= $2)
		ORDER BY seq ASC`
	var rows []entryRow
	if err := r.db.SelectContext(ctx, &rows, query, fromSeq, toSeq); err != nil {
		return nil, fmt.Errorf("range audit entries: %w", err)
	}
	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Head implements ports.AuditLog.
func (r *AuditRepository) Head(ctx context.Context) (core.ChainHash, int64, error) {
	var head struct {
		Seq       int64  `db:"seq"`
		ChainHash string `db:"chain_hash"`
	}
	err := r.db.GetContext(ctx, &head,
		`SELECT seq, chain_hash FROM audit_entries ORDER BY seq DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("read chain head: %w", err)
	}
	return core.ChainHash(head.ChainHash), head.Seq, nil
}

func (row entryRow) toEntry() (audit.Entry, error) {
	var inputs, outputs audit.Payload
	if err := json.Unmarshal(row.Inputs, &inputs); err != nil {
		return audit.Entry{}, fmt.Errorf("unmarshal inputs for %s: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.Outputs, &outputs); err != nil {
		return audit.Entry{}, fmt.Errorf("unmarshal outputs for %s: %w", row.ID, err)
	}
	return audit.Entry{
		ID:                       core.AuditEntryID(row.ID),
		Seq:                      row.Seq,
		CalculationID:            core.CalculationID(row.CalculationID),
		PerformedAt:              row.PerformedAt.Time,
		Performer:                row.Performer,
		Inputs:                   inputs,
		Outputs:                  outputs,
		InputHash:                core.InputHash(row.InputHash),
		OutputHash:               core.OutputHash(row.OutputHash),
		ContentHash:              core.ContentHash(row.ContentHash),
		ChainHash:                core.ChainHash(row.ChainHash),
		PrevChainHash:            core.ChainHash(row.PrevChainHash),
		SoftwareVersion:          row.SoftwareVersion,
		CalculationMethodVersion: row.CalculationMethodVersion,
	}, nil
}
