// Package audit defines the immutable, hash-chained calculation record and
// its canonical encoding. Stores append and read; nothing here mutates.
package audit

import (
	"time"

	"mechintegrity/domain/core"
)

// Payload is a flattened, key-normalized view of an input or output set.
// Decimal values are their exact canonical strings; timestamps are RFC3339;
// nested structures arrive pre-flattened with dotted keys.
type Payload map[string]string

// Draft is an entry before chaining. The store assigns the sequence number
// and previous chain head atomically at append time.
type Draft struct {
	CalculationID            core.CalculationID
	PerformedAt              time.Time
	Performer                string
	Inputs                   Payload
	Outputs                  Payload
	SoftwareVersion          string
	CalculationMethodVersion string
}

// Entry is one sealed audit record. Write-once: every field is fixed at
// append time and verification recomputes the hashes from the stored
// payloads.
type Entry struct {
	ID                       core.AuditEntryID  `json:"id" db:"id"`
	Seq                      int64              `json:"seq" db:"seq"`
	CalculationID            core.CalculationID `json:"calculation_id" db:"calculation_id"`
	PerformedAt              time.Time          `json:"performed_at" db:"performed_at"`
	Performer                string             `json:"performer" db:"performer"`
	Inputs                   Payload            `json:"inputs" db:"-"`
	Outputs                  Payload            `json:"outputs" db:"-"`
	InputHash                core.InputHash     `json:"input_hash" db:"input_hash"`
	OutputHash               core.OutputHash    `json:"output_hash" db:"output_hash"`
	ContentHash              core.ContentHash   `json:"content_hash" db:"content_hash"`
	ChainHash                core.ChainHash     `json:"chain_hash" db:"chain_hash"`
	PrevChainHash            core.ChainHash     `json:"prev_chain_hash" db:"prev_chain_hash"`
	SoftwareVersion          string             `json:"software_version" db:"software_version"`
	CalculationMethodVersion string             `json:"calculation_method_version" db:"calculation_method_version"`
}

// Seal chains a draft onto the given head, computing every hash. The chain
// hash of an entry is its content hash; the content hash covers inputs,
// outputs, metadata and the previous chain head.
func Seal(d Draft, seq int64, prev core.ChainHash) Entry {
	inputHash := core.NewInputHash(Canonicalize(d.Inputs))
	outputHash := core.NewOutputHash(Canonicalize(d.Outputs))
	content := core.NewContentHash(contentBytes(d, inputHash, outputHash, prev))
	return Entry{
		ID:                       core.NewAuditEntryID(),
		Seq:                      seq,
		CalculationID:            d.CalculationID,
		PerformedAt:              d.PerformedAt,
		Performer:                d.Performer,
		Inputs:                   d.Inputs,
		Outputs:                  d.Outputs,
		InputHash:                inputHash,
		OutputHash:               outputHash,
		ContentHash:              content,
		ChainHash:                core.ChainHash(content),
		PrevChainHash:            prev,
		SoftwareVersion:          d.SoftwareVersion,
		CalculationMethodVersion: d.CalculationMethodVersion,
	}
}

// Recompute re-derives the content hash from the stored payloads and
// metadata, for verification.
func (e Entry) Recompute() core.ContentHash {
	d := Draft{
		CalculationID:            e.CalculationID,
		PerformedAt:              e.PerformedAt,
		Performer:                e.Performer,
		Inputs:                   e.Inputs,
		Outputs:                  e.Outputs,
		SoftwareVersion:          e.SoftwareVersion,
		CalculationMethodVersion: e.CalculationMethodVersion,
	}
	inputHash := core.NewInputHash(Canonicalize(e.Inputs))
	outputHash := core.NewOutputHash(Canonicalize(e.Outputs))
	return core.NewContentHash(contentBytes(d, inputHash, outputHash, e.PrevChainHash))
}
