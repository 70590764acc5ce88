package audit

import (
	"mechintegrity/domain/core"
)

// VerifyResult reports a chain verification pass. When OK is false,
// FirstBadSeq and FirstBadHash name the first entry whose recomputed
// content hash or chain linkage does not match what was stored; every
// entry from there on is untrusted.
type VerifyResult struct {
	OK           bool           `json:"ok"`
	Checked      int            `json:"checked"`
	FirstBadSeq  int64          `json:"first_bad_seq,omitempty"`
	FirstBadHash core.ChainHash `json:"first_bad_hash,omitempty"`
	Reason       string         `json:"reason,omitempty"`
}

// VerifyChain recomputes each entry's content hash and checks the chain
// linkage over a contiguous, sequence-ordered slice. prevHead is the chain
// hash preceding the first entry (empty for a verification from genesis).
func VerifyChain(entries []Entry, prevHead core.ChainHash) VerifyResult {
	prev := prevHead
	for i, e := range entries {
		if e.PrevChainHash != prev {
			return VerifyResult{
				Checked:      i,
				FirstBadSeq:  e.Seq,
				FirstBadHash: e.ChainHash,
				Reason:       "prev_chain_hash does not match preceding chain head",
			}
		}
		recomputed := e.Recompute()
		if core.ChainHash(recomputed) != e.ChainHash || recomputed != e.ContentHash {
			return VerifyResult{
				Checked:      i,
				FirstBadSeq:  e.Seq,
				FirstBadHash: e.ChainHash,
				Reason:       "stored content does not reproduce the recorded hash",
			}
		}
		prev = e.ChainHash
	}
	return VerifyResult{OK: true, Checked: len(entries)}
}
