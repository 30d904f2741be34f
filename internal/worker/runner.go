// Package worker contains the background pipeline that scores submitted
// assessments, persists the result, and sends doctor notifications. It is
// deliberately decoupled from the HTTP layer: the api package holds a
// worker.Enqueuer interface and calls Enqueue — it never imports the concrete
// Runner or Job types.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ivancohen/eyesentrymain-sub002/internal/db"
	"github.com/ivancohen/eyesentrymain-sub002/internal/store"
)

// ─── ENQUEUER INTERFACE ───────────────────────────────────────────────────────

// Enqueuer is the narrow interface the api package uses to hand off work
// after an assessment is submitted. Keeping it here (not in api/) means api/
// does not need to import worker/.
//
// The concrete implementation is *Runner. In tests, any struct with an
// Enqueue method satisfies the interface.
type Enqueuer interface {
	Enqueue(ctx context.Context, assessmentID uuid.UUID) error
}

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. Zero values fall back
// to DefaultRunnerConfig().
type RunnerConfig struct {
	// Workers is the number of concurrent job goroutines. Default: 3.
	Workers int

	// PollInterval is how often the fallback poller checks
	// ListPendingAssessments for work missed by the in-process channel
	// (e.g. after a crash or restart). Default: 30s.
	PollInterval time.Duration

	// JobTimeout is the per-job context deadline. Default: 1 minute —
	// scoring is pure computation plus a handful of queries.
	JobTimeout time.Duration

	// MaxRetries is the number of attempts before the assessment is marked
	// permanently failed. Default: 3.
	MaxRetries int
}

// DefaultRunnerConfig returns safe production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:      3,
		PollInterval: 30 * time.Second,
		JobTimeout:   time.Minute,
		MaxRetries:   3,
	}
}

// Runner manages a pool of worker goroutines. It accepts jobs via an
// in-process channel (fast path, used on submit) and also polls the database
// periodically to pick up assessments that were in-flight when the process
// last restarted (recovery path).
type Runner struct {
	job    *Job
	store  *store.Store
	q      db.Querier
	cfg    RunnerConfig
	logger *slog.Logger

	queue chan uuid.UUID
	wg    sync.WaitGroup

	// inflight tracks assessments that are queued or being scored, so the
	// submit path and the poller cannot enqueue the same assessment twice.
	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

// NewRunner constructs a Runner. Call Start() to begin processing.
func NewRunner(
	job *Job,
	st *store.Store,
	q db.Querier,
	cfg RunnerConfig,
	logger *slog.Logger,
) *Runner {
	def := DefaultRunnerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}

	return &Runner{
		job:    job,
		store:  st,
		q:      q,
		cfg:    cfg,
		logger: logger,
		// Buffer = Workers*2 so Enqueue never blocks under normal load.
		queue:    make(chan uuid.UUID, cfg.Workers*2),
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Enqueue pushes an assessmentID onto the in-process channel. It satisfies
// the Enqueuer interface. An assessment already queued or being scored is a
// no-op, so a poll cycle overlapping a fresh submit cannot double-score. If
// the channel is full it returns an error rather than blocking the HTTP
// response — the poller will pick the work up.
func (r *Runner) Enqueue(_ context.Context, assessmentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.inflight[assessmentID]; ok {
		r.logger.Debug("worker: assessment already in flight", "assessment_id", assessmentID)
		return nil
	}

	select {
	case r.queue <- assessmentID:
		r.inflight[assessmentID] = struct{}{}
		r.logger.Info("worker: enqueued assessment", "assessment_id", assessmentID)
		return nil
	default:
		return errors.New("worker: queue is full, assessment will be picked up by poller")
	}
}

// release clears the in-flight mark once a job has finished (or permanently
// failed), letting a later re-score enqueue the same assessment again.
func (r *Runner) release(assessmentID uuid.UUID) {
	r.mu.Lock()
	delete(r.inflight, assessmentID)
	r.mu.Unlock()
}

// Start launches the worker pool and the fallback poller. It blocks until
// ctx is cancelled. Call it in a goroutine from main:
//
//	go runner.Start(ctx)
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting", "workers", r.cfg.Workers, "poll_interval", r.cfg.PollInterval)

	for i := range r.cfg.Workers {
		r.wg.Add(1)
		go r.work(ctx, i)
	}

	r.wg.Add(1)
	go r.poll(ctx)

	r.wg.Wait()
	r.logger.Info("worker: stopped")
}

// work is the inner loop for each worker goroutine.
func (r *Runner) work(ctx context.Context, id int) {
	defer r.wg.Done()
	log := r.logger.With("worker_id", id)
	log.Info("worker: goroutine started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker: goroutine stopping")
			return
		case assessmentID := <-r.queue:
			r.runWithRetry(ctx, assessmentID, log)
			r.release(assessmentID)
		}
	}
}

// poll re-checks the database on PollInterval for pending assessments that
// were not delivered via the channel (e.g. submitted before a restart).
func (r *Runner) poll(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	// Run once immediately on startup to pick up anything from before restart.
	r.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pollOnce(ctx)
		}
	}
}

func (r *Runner) pollOnce(ctx context.Context) {
	pending, err := r.q.ListPendingAssessments(ctx)
	if err != nil {
		r.logger.Error("worker: poll failed", "error", err)
		return
	}
	for _, a := range pending {
		if err := r.Enqueue(ctx, a.ID); err != nil {
			// Queue full — the rest waits for the next poll cycle.
			return
		}
	}
}

// runWithRetry executes the job up to MaxRetries times. After exhausting
// retries it calls store.MarkAssessmentFailed so the assessment is not
// picked up again.
func (r *Runner) runWithRetry(ctx context.Context, assessmentID uuid.UUID, log *slog.Logger) {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
		lastErr = r.job.Run(jobCtx, assessmentID)
		cancel()

		if lastErr == nil {
			log.Info("worker: job completed", "assessment_id", assessmentID, "attempt", attempt)
			return
		}

		log.Warn("worker: job attempt failed",
			"assessment_id", assessmentID,
			"attempt", attempt,
			"max", r.cfg.MaxRetries,
			"error", lastErr,
		)

		if attempt < r.cfg.MaxRetries {
			// Exponential back-off (2s, 4s, 8s …) plus up to 1s of jitter so
			// workers retrying against the same contended rows spread out.
			backoff := time.Duration(1<<attempt)*time.Second + rand.N(time.Second)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}

	// All retries exhausted — mark the assessment permanently failed.
	log.Error("worker: job permanently failed", "assessment_id", assessmentID, "error", lastErr)
	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := r.store.MarkAssessmentFailed(failCtx, assessmentID); err != nil {
		log.Error("worker: failed to mark assessment as failed", "assessment_id", assessmentID, "error", err)
	}
}
