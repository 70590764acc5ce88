package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"mechintegrity/domain/audit"
	"mechintegrity/domain/core"
)

func testDraft(calcID string, at time.Time) audit.Draft {
	return audit.Draft{
		CalculationID:            core.CalculationID(calcID),
		PerformedAt:              at,
		Performer:                "INSPECTOR-007",
		Inputs:                   audit.Payload{"k": "v"},
		Outputs:                  audit.Payload{"r": "1"},
		SoftwareVersion:          "1.2.0",
		CalculationMethodVersion: "API579-L1/2021-r3",
	}
}

func TestAppendAssignsChain(t *testing.T) {
	log := NewAuditLog()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	e1, err := log.Append(ctx, testDraft("c1", at))
	if err != nil {
		t.Fatal(err)
	}
	e2, err := log.Append(ctx, testDraft("c2", at.Add(time.Second)))
	if err != nil {
		t.Fatal(err)
	}
	if e1.Seq != 1 || e2.Seq != 2 {
		t.Fatalf("sequences = %d, %d", e1.Seq, e2.Seq)
	}
	if e2.PrevChainHash != e1.ChainHash {
		t.Fatal("appends must chain")
	}

	head, seq, err := log.Head(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if head != e2.ChainHash || seq != 2 {
		t.Fatalf("head = %s seq %d", head, seq)
	}
}

func TestConcurrentAppendsNeverShareAHead(t *testing.T) {
	log := NewAuditLog()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := log.Append(ctx, testDraft("c"+string(rune('a'+i%26))+string(rune('0'+i/26)), base.Add(time.Duration(i)*time.Millisecond)))
			if err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := log.Range(ctx, 1, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != n {
		t.Fatalf("stored %d entries, want %d", len(entries), n)
	}
	seen := map[core.ChainHash]bool{}
	for i, e := range entries {
		if seen[e.PrevChainHash] {
			t.Fatalf("two appends share prev_chain_hash at seq %d", e.Seq)
		}
		seen[e.PrevChainHash] = true
		if i > 0 && e.PrevChainHash != entries[i-1].ChainHash {
			t.Fatalf("chain broken at seq %d", e.Seq)
		}
	}
	if res := audit.VerifyChain(entries, ""); !res.OK {
		t.Fatalf("chain must verify after concurrent appends: %+v", res)
	}
}

func TestGetByCalculation(t *testing.T) {
	log := NewAuditLog()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stored, err := log.Append(ctx, testDraft("c1", at))
	if err != nil {
		t.Fatal(err)
	}
	got, err := log.GetByCalculation(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != stored.ID {
		t.Fatal("lookup returned a different entry")
	}

	_, err = log.GetByCalculation(ctx, "missing")
	if !core.IsKind(err, core.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestTamperBreaksVerificationFromN(t *testing.T) {
	log := NewAuditLog()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := log.Append(ctx, testDraft("c"+string(rune('1'+i)), at.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}

	log.Tamper(3, audit.Payload{"r": "forged"})

	entries, err := log.Range(ctx, 1, -1)
	if err != nil {
		t.Fatal(err)
	}
	// Reading later entries still succeeds.
	if len(entries) != 5 {
		t.Fatalf("read %d entries, want 5", len(entries))
	}
	res := audit.VerifyChain(entries, "")
	if res.OK || res.FirstBadSeq != 3 {
		t.Fatalf("verification must report first bad at 3, got %+v", res)
	}
}

func TestDeleteRefused(t *testing.T) {
	log := NewAuditLog()
	err := log.Delete(core.AuditEntryID("any"))
	if !core.IsKind(err, core.KindAuditImmutableViolation) {
		t.Fatalf("expected AuditImmutableViolation, got %v", err)
	}
}

func TestPerformedAtMustIncreasePerCalculation(t *testing.T) {
	log := NewAuditLog()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := log.Append(ctx, testDraft("c1", at)); err != nil {
		t.Fatal(err)
	}
	_, err := log.Append(ctx, testDraft("c1", at))
	if !core.IsKind(err, core.KindAuditImmutableViolation) {
		t.Fatalf("expected AuditImmutableViolation for non-increasing performedAt, got %v", err)
	}
	if _, err := log.Append(ctx, testDraft("c1", at.Add(time.Second))); err != nil {
		t.Fatalf("later re-run must append a second entry: %v", err)
	}
}
