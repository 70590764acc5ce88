package audit

import (
	"sort"
	"strings"
	"time"

	"mechintegrity/domain/core"
)

// Canonicalize produces the deterministic byte encoding of a payload:
// keys sorted, one key=value line each, values verbatim. Decimal values
// must already be canonical strings, so the encoding is stable across
// processes and releases.
func Canonicalize(p Payload) []byte {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p[k])
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// contentBytes builds the canonical content encoding hashed into the chain:
// input and output digests, the entry metadata, and the previous chain
// head. performedAt is the only timestamp in the encoding.
func contentBytes(d Draft, in core.InputHash, out core.OutputHash, prev core.ChainHash) []byte {
	var b strings.Builder
	b.WriteString("calculation_id=")
	b.WriteString(d.CalculationID.String())
	b.WriteByte('\n')
	b.WriteString("calculation_method_version=")
	b.WriteString(d.CalculationMethodVersion)
	b.WriteByte('\n')
	b.WriteString("input_hash=")
	b.WriteString(in.String())
	b.WriteByte('\n')
	b.WriteString("output_hash=")
	b.WriteString(out.String())
	b.WriteByte('\n')
	b.WriteString("performed_at=")
	b.WriteString(d.PerformedAt.UTC().Format(time.RFC3339Nano))
	b.WriteByte('\n')
	b.WriteString("performer=")
	b.WriteString(d.Performer)
	b.WriteByte('\n')
	b.WriteString("prev_chain_hash=")
	b.WriteString(prev.String())
	b.WriteByte('\n')
	b.WriteString("software_version=")
	b.WriteString(d.SoftwareVersion)
	b.WriteByte('\n')
	return []byte(b.String())
}
