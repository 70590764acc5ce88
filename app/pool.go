package app

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"mechintegrity/domain/assessment"
	"mechintegrity/domain/core"
)

// Pool bounds in-flight assessments. Each job is owned end-to-end by one
// worker goroutine; excess submissions wait in a FIFO queue. No retry lives
// here: a failed job is reported once and the caller decides.
type Pool struct {
	svc      *AssessmentService
	inFlight *semaphore.Weighted
	queue    chan submission
	log      *slog.Logger
}

type submission struct {
	ctx  context.Context
	job  assessment.Job
	done chan outcome
}

type outcome struct {
	result *assessment.CalculationResult
	err    error
}

// NewPool starts the dispatcher. size bounds concurrently executing jobs;
// queueDepth bounds parked submissions beyond that.
func NewPool(svc *AssessmentService, size int64, queueDepth int, log *slog.Logger) *Pool {
	p := &Pool{
		svc:      svc,
		inFlight: semaphore.NewWeighted(size),
		queue:    make(chan submission, queueDepth),
		log:      log,
	}
	go p.dispatch()
	return p
}

// Submit parks the job in the FIFO queue and blocks until it completes or
// ctx is cancelled while still queued. Cancellation stops mattering once
// the job reaches its audit append.
func (p *Pool) Submit(ctx context.Context, job assessment.Job) (*assessment.CalculationResult, error) {
	done := make(chan outcome, 1)
	select {
	case p.queue <- submission{ctx: ctx, job: job, done: done}:
	case <-ctx.Done():
		return nil, core.Wrap(core.KindInternal, ctx.Err(), "job abandoned before queueing")
	}
	out := <-done
	return out.result, out.err
}

// dispatch pops submissions in order, holding a semaphore slot per running
// job. FIFO ordering is the queue channel's own.
func (p *Pool) dispatch() {
	for sub := range p.queue {
		if err := p.inFlight.Acquire(sub.ctx, 1); err != nil {
			sub.done <- outcome{err: core.Wrap(core.KindInternal, err, "job abandoned while queued")}
			continue
		}
		go func(sub submission) {
			defer p.inFlight.Release(1)
			res, err := p.svc.Assess(sub.ctx, sub.job)
			sub.done <- outcome{result: res, err: err}
		}(sub)
	}
}

// Close stops accepting submissions. Running jobs complete.
func (p *Pool) Close() {
	close(p.queue)
}
