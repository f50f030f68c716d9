package auditor

import (
	"context"
	"log/slog"
	"time"

	"github.com/a11yscan/a11yscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// Batch runs multiple audit requests concurrently: several URLs, or
// the desktop and mobile profiles of one URL, or both.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because the requests are fully independent. Each invocation owns its
// process handle and temporary artifact, so no shared resource needs
// locking; outcomes are only combined for display, never merged.
type Batch struct {
	// runner executes individual requests. Usually an *Invoker, but
	// the interface keeps Batch testable without spawning processes.
	runner Runner

	// concurrency is the maximum number of simultaneous invocations.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency sets the maximum number of concurrent invocations.
// Default is 2, which covers the common desktop+mobile pair.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch runs.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// NewBatch creates a Batch around the given runner.
func NewBatch(runner Runner, opts ...BatchOption) *Batch {
	b := &Batch{
		runner:      runner,
		concurrency: 2,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Run executes all requests and returns one outcome per request, in
// request order. Failed invocations are represented by their failure
// outcome, not by an error: the only error Run returns is context
// cancellation of the batch itself.
func (b *Batch) Run(ctx context.Context, reqs []model.AuditRequest) ([]model.AuditOutcome, error) {
	b.logger.Info("starting audit batch",
		"requests", len(reqs),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	outcomes := make([]model.AuditOutcome, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			outcomes[i] = b.runner.Run(ctx, req)
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("audit batch complete",
		"requests", len(reqs),
		"elapsed", time.Since(start),
	)

	return outcomes, err
}

// RunProfiles audits one URL under each given device profile,
// concurrently. The request's own profile field is overridden per run.
func (b *Batch) RunProfiles(ctx context.Context, req model.AuditRequest, profiles []model.DeviceProfile) ([]model.AuditOutcome, error) {
	reqs := make([]model.AuditRequest, len(profiles))
	for i, profile := range profiles {
		r := req
		r.Profile = profile
		reqs[i] = r
	}
	return b.Run(ctx, reqs)
}
