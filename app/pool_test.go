package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechintegrity/adapters/asme"
	"mechintegrity/adapters/memory"
	"mechintegrity/domain/audit"
	"mechintegrity/internal/policy"
)

func TestPoolConcurrentJobsKeepChainIntact(t *testing.T) {
	auditLog := memory.NewAuditLog()
	resolver := NewPropertyResolver(asme.NewBuiltin())
	svc := NewAssessmentService(resolver, auditLog, NewMonotonicClock(), policy.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	pool := NewPool(svc, 4, 32, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer pool.Close()

	const jobs = 16
	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := pool.Submit(context.Background(), healthyVesselJob())
			if err != nil {
				t.Error(err)
				return
			}
			if res == nil {
				t.Error("nil result")
			}
		}()
	}
	wg.Wait()

	entries, err := auditLog.Range(context.Background(), 1, -1)
	require.NoError(t, err)
	require.Len(t, entries, jobs)

	// The audit log is the only shared mutable state; under contention the
	// chain must still verify end to end.
	verify := audit.VerifyChain(entries, "")
	assert.True(t, verify.OK, "chain broken: %+v", verify)

	// Chain order is authoritative across calculations; wall clock is
	// advisory but the monotonic source never repeats an instant.
	seen := map[int64]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.PerformedAt.UnixNano()], "performedAt instant repeated")
		seen[e.PerformedAt.UnixNano()] = true
	}
}

func TestPoolCancelledWhileQueued(t *testing.T) {
	auditLog := memory.NewAuditLog()
	resolver := NewPropertyResolver(asme.NewBuiltin())
	svc := NewAssessmentService(resolver, auditLog, NewMonotonicClock(), policy.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	// One slot, no queue headroom beyond the channel buffer.
	pool := NewPool(svc, 1, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.Submit(ctx, healthyVesselJob())
	require.Error(t, err)
}
