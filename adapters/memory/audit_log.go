// Package memory is the in-process audit store, used by tests and by the
// CLI when no database is configured. Same contract as the Postgres
// adapter: append-only, serialized appends, refusal of mutation.
package memory

import (
	"context"
	"sync"

	"mechintegrity/domain/audit"
	"mechintegrity/domain/core"
)

// AuditLog is a mutex-serialized, append-only chain in process memory.
type AuditLog struct {
	mu      sync.Mutex
	entries []audit.Entry
	byCalc  map[core.CalculationID]int
}

// NewAuditLog creates an empty log stream.
func NewAuditLog() *AuditLog {
	return &AuditLog{byCalc: map[core.CalculationID]int{}}
}

// Append implements ports.AuditLog. The chain head is read and extended
// under one lock, so no two entries can share a prev_chain_hash.
func (l *AuditLog) Append(_ context.Context, d audit.Draft) (audit.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var prev core.ChainHash
	seq := int64(1)
	if n := len(l.entries); n > 0 {
		prev = l.entries[n-1].ChainHash
		seq = l.entries[n-1].Seq + 1
	}
	if idx, ok := l.byCalc[d.CalculationID]; ok {
		// Re-running a calculation appends a second entry; re-issuing the
		// same calculationId with altered inputs is an orchestrator bug
		// the store cannot distinguish, so only a performedAt that does not
		// strictly increase is refused here.
		if !d.PerformedAt.After(l.entries[idx].PerformedAt) {
			return audit.Entry{}, core.NewErrorf(core.KindAuditImmutableViolation,
				"performedAt must strictly increase for calculation %s", d.CalculationID)
		}
	}

	e := audit.Seal(d, seq, prev)
	l.entries = append(l.entries, e)
	l.byCalc[d.CalculationID] = len(l.entries) - 1
	return e, nil
}

// GetByCalculation implements ports.AuditLog.
func (l *AuditLog) GetByCalculation(_ context.Context, id core.CalculationID) (audit.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.byCalc[id]
	if !ok {
		return audit.Entry{}, core.NewErrorf(core.KindNotFound, "no audit entry for calculation %s", id)
	}
	return l.entries[idx], nil
}

// Range implements ports.AuditLog.
func (l *AuditLog) Range(_ context.Context, fromSeq, toSeq int64) ([]audit.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if toSeq < 0 || toSeq > int64(len(l.entries)) {
		toSeq = int64(len(l.entries))
	}
	if fromSeq < 1 {
		fromSeq = 1
	}
	var out []audit.Entry
	for _, e := range l.entries {
		if e.Seq >= fromSeq && e.Seq <= toSeq {
			out = append(out, e)
		}
	}
	return out, nil
}

// Head implements ports.AuditLog.
func (l *AuditLog) Head(_ context.Context) (core.ChainHash, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return "", 0, nil
	}
	last := l.entries[len(l.entries)-1]
	return last.ChainHash, last.Seq, nil
}

// Tamper overwrites a stored entry's outputs in place, bypassing the store
// contract. Test hook for chain verification; apart from Append it is the
// only exported method of this type that changes stored entries.
func (l *AuditLog) Tamper(seq int64, outputs audit.Payload) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].Seq == seq {
			l.entries[i].Outputs = outputs
			return
		}
	}
}

// Delete is refused: the store is append-only.
func (l *AuditLog) Delete(core.AuditEntryID) error {
	return core.NewError(core.KindAuditImmutableViolation, "audit entries cannot be deleted")
}
