package ports

import (
	"context"

	"mechintegrity/domain/audit"
	"mechintegrity/domain/core"
)

// AuditLog is the append-only, hash-chained store capability. Append is the
// only mutator; implementations must serialize appends per stream so no two
// entries share a prev_chain_hash, and must refuse mutation or deletion
// with AuditImmutableViolation at the store boundary.
type AuditLog interface {
	// Append seals the draft onto the current chain head and persists it,
	// returning the stored entry with its assigned chain hash.
	Append(ctx context.Context, d audit.Draft) (audit.Entry, error)

	// GetByCalculation returns the entry for a calculation, or NotFound.
	GetByCalculation(ctx context.Context, id core.CalculationID) (audit.Entry, error)

	// Range returns entries with fromSeq ≤ seq ≤ toSeq in sequence order.
	// toSeq < 0 means "through the current head".
	Range(ctx context.Context, fromSeq, toSeq int64) ([]audit.Entry, error)

	// Head returns the current chain head, or an empty hash for an empty
	// stream.
	Head(ctx context.Context) (core.ChainHash, int64, error)
}
