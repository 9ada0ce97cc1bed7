// Package orchestrator runs the validation worker pool. Workers wake on job
// ids delivered over the queue, win the job via a conditional claim on the
// job table, resolve the governing standard, evaluate the content snapshot,
// and persist an immutable report. A sweeper goroutine requeues due retries
// and reclaims claims left behind by crashed workers, so delivery losses on
// the queue never strand a job.
package orchestrator

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"standardsapi/internal/audit"
	"standardsapi/internal/config"
	"standardsapi/internal/evaluator"
	"standardsapi/internal/model"
	"standardsapi/internal/queue"
	"standardsapi/internal/repository"
	"standardsapi/internal/resolver"
	"standardsapi/internal/service"
	"standardsapi/internal/storage"
)

const sweepBatchSize = 100

// Orchestrator coordinates the worker pool and the sweeper.
type Orchestrator struct {
	cfg      config.WorkerConfig
	q        queue.Queue
	jobs     repository.JobRepository
	docs     repository.DocumentRepository
	reports  repository.ReportRepository
	res      *resolver.Resolver
	store    storage.Storage
	recorder *audit.Recorder
	enqueuer *service.Enqueuer

	workerID string
	logMu    sync.Mutex
	logEnc   *json.Encoder

	// now is swappable in tests.
	now func() time.Time
}

func New(
	cfg config.WorkerConfig,
	q queue.Queue,
	jobs repository.JobRepository,
	docs repository.DocumentRepository,
	reports repository.ReportRepository,
	res *resolver.Resolver,
	store storage.Storage,
	recorder *audit.Recorder,
	enqueuer *service.Enqueuer,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		q:        q,
		jobs:     jobs,
		docs:     docs,
		reports:  reports,
		res:      res,
		store:    store,
		recorder: recorder,
		enqueuer: enqueuer,
		workerID: "worker-" + uuid.New().String()[:8],
		logEnc:   json.NewEncoder(os.Stdout),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run blocks until ctx is cancelled, keeping cfg.Concurrency workers and one
// sweeper going.
func (o *Orchestrator) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < o.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			o.workerLoop(ctx, fmt.Sprintf("%s-%d", o.workerID, n))
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		o.sweepLoop(ctx)
	}()

	wg.Wait()
}

func (o *Orchestrator) workerLoop(ctx context.Context, workerID string) {
	for {
		if ctx.Err() != nil {
			return
		}
		jobID, err := o.q.Dequeue(ctx, o.cfg.FetchTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			o.log("dequeue_error", map[string]any{"worker": workerID, "error": err.Error()})
			// Back off briefly so a dead Redis does not spin the loop.
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		if jobID == "" {
			continue
		}
		if err := o.Process(ctx, workerID, jobID); err != nil {
			o.log("job_error", map[string]any{"worker": workerID, "job_id": jobID, "error": err.Error()})
		}
	}
}

// Process claims and runs a single job. A lost claim race is a normal outcome
// and returns nil.
func (o *Orchestrator) Process(ctx context.Context, workerID, jobID string) error {
	job, err := o.jobs.Claim(ctx, jobID, workerID, o.cfg.ClaimTTL)
	if err != nil {
		if errors.Is(err, repository.ErrClaimConflict) {
			// Another worker won, or the job is not due yet.
			return nil
		}
		return fmt.Errorf("claim job %s: %w", jobID, err)
	}

	o.log("job_claimed", map[string]any{
		"worker": workerID, "job_id": job.ID, "document_id": job.DocumentID, "attempt": job.Attempts,
	})
	if _, err := o.recorder.Record(ctx, model.EventValidateStart, workerID, "document", job.DocumentID, map[string]string{
		"job_id":  job.ID,
		"attempt": fmt.Sprintf("%d", job.Attempts),
	}); err != nil {
		return o.fail(ctx, workerID, job, err)
	}

	// Resolution happens at claim time, against the tree as it is now, not as
	// it was at enqueue time.
	std, err := o.res.Resolve(ctx, job.DocumentID)
	if err != nil {
		if errors.Is(err, resolver.ErrNoStandard) {
			return o.skip(ctx, workerID, job)
		}
		return o.fail(ctx, workerID, job, err)
	}
	if err := o.jobs.SetResolvedStandard(ctx, job.ID, std.ID); err != nil {
		return o.fail(ctx, workerID, job, err)
	}
	job.ResolvedStandardID = &std.ID

	content, err := o.fetchBlob(ctx, job.ContentKey)
	if err != nil {
		return o.fail(ctx, workerID, job, fmt.Errorf("fetch content %s: %w", job.ContentKey, err))
	}

	// Evaluation is pure and deterministic; a malformed document yields a
	// non-compliant report, not a job failure.
	report := evaluator.Evaluate(content, std)
	report.ID = uuid.New().String()
	report.JobID = job.ID
	report.DocumentID = job.DocumentID
	report.GeneratedAt = o.now()

	if _, err := o.reports.Create(ctx, report); err != nil {
		return o.fail(ctx, workerID, job, fmt.Errorf("persist report: %w", err))
	}
	if err := o.jobs.Finish(ctx, job.ID, model.JobSucceeded, nil); err != nil {
		return fmt.Errorf("finish job %s: %w", job.ID, err)
	}
	if _, err := o.recorder.Record(ctx, model.EventValidateComplete, workerID, "document", job.DocumentID, map[string]string{
		"job_id":      job.ID,
		"outcome":     string(model.JobSucceeded),
		"verdict":     string(report.Verdict),
		"standard_id": std.ID,
	}); err != nil {
		return err
	}
	o.log("job_succeeded", map[string]any{
		"worker": workerID, "job_id": job.ID, "document_id": job.DocumentID, "verdict": string(report.Verdict),
	})

	return o.supersedeCheck(ctx, job, std.ID)
}

// supersedeCheck re-resolves after the job reaches a terminal state. Enqueue
// requests arriving mid-flight were absorbed into this job, so any drift
// between what it accounted for and the tree as it stands now, including a
// standard appearing where there was none or vice versa, gets a fresh job.
// accountedStandardID is empty for jobs that completed without a standard.
func (o *Orchestrator) supersedeCheck(ctx context.Context, job *model.ValidationJob, accountedStandardID string) error {
	doc, err := o.docs.FindByID(ctx, job.DocumentID)
	if err != nil {
		// The document may have been removed while the job ran; nothing left
		// to converge on.
		return nil
	}
	currentID := ""
	current, err := o.res.ResolveDocument(ctx, doc)
	switch {
	case err == nil:
		currentID = current.ID
	case errors.Is(err, resolver.ErrNoStandard):
		// Exempt now; currentID stays empty.
	default:
		return nil
	}
	if currentID == accountedStandardID && doc.ContentKey == job.ContentKey {
		return nil
	}
	o.log("job_superseded", map[string]any{"job_id": job.ID, "document_id": job.DocumentID})
	_, err = o.enqueuer.EnqueueDocument(ctx, doc)
	return err
}

func (o *Orchestrator) skip(ctx context.Context, workerID string, job *model.ValidationJob) error {
	if err := o.jobs.Finish(ctx, job.ID, model.JobSkipped, nil); err != nil {
		return fmt.Errorf("finish job %s: %w", job.ID, err)
	}
	if _, err := o.recorder.Record(ctx, model.EventValidateComplete, workerID, "document", job.DocumentID, map[string]string{
		"job_id":  job.ID,
		"outcome": string(model.JobSkipped),
		"reason":  "no applicable standard",
	}); err != nil {
		return err
	}
	o.log("job_skipped", map[string]any{"worker": workerID, "job_id": job.ID, "document_id": job.DocumentID})

	// An assignment landing while this job ran was absorbed into it; if the
	// document resolves to a standard now, it still needs validating.
	return o.supersedeCheck(ctx, job, "")
}

// fail either requeues the job for a later attempt or, with the retry budget
// spent or the cause deterministic, finishes it as failed.
func (o *Orchestrator) fail(ctx context.Context, workerID string, job *model.ValidationJob, cause error) error {
	msg := cause.Error()
	if retryable(cause) && job.Attempts < o.cfg.MaxAttempts {
		next := o.now().Add(o.retryDelay(job.Attempts))
		if err := o.jobs.Retry(ctx, job.ID, msg, next); err != nil {
			return fmt.Errorf("requeue job %s: %w", job.ID, err)
		}
		o.log("job_retry_scheduled", map[string]any{
			"worker": workerID, "job_id": job.ID, "attempt": job.Attempts, "next_attempt_at": next,
		})
		return nil
	}

	if err := o.jobs.Finish(ctx, job.ID, model.JobFailed, &msg); err != nil {
		return fmt.Errorf("finish job %s: %w", job.ID, err)
	}
	if _, err := o.recorder.Record(ctx, model.EventValidateComplete, workerID, "document", job.DocumentID, map[string]string{
		"job_id":  job.ID,
		"outcome": string(model.JobFailed),
		"error":   msg,
	}); err != nil {
		return err
	}
	o.log("job_failed", map[string]any{"worker": workerID, "job_id": job.ID, "error": msg})

	accounted := ""
	if job.ResolvedStandardID != nil {
		accounted = *job.ResolvedStandardID
	}
	return o.supersedeCheck(ctx, job, accounted)
}

// retryable reports whether a later attempt can change the outcome. A missing
// row means the document, folder or standard was deleted, not that the store
// was briefly unavailable, so retrying cannot help.
func retryable(err error) bool {
	return !errors.Is(err, sql.ErrNoRows)
}

// retryDelay doubles per attempt from the base delay, capped at the max.
func (o *Orchestrator) retryDelay(attempts int) time.Duration {
	delay := o.cfg.RetryBaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= o.cfg.RetryMaxDelay {
			return o.cfg.RetryMaxDelay
		}
	}
	if delay > o.cfg.RetryMaxDelay {
		return o.cfg.RetryMaxDelay
	}
	return delay
}

// fetchBlob reads the content snapshot, retrying transient storage errors
// within the fetch timeout.
func (o *Orchestrator) fetchBlob(ctx context.Context, key string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = o.cfg.FetchTimeout

	var content []byte
	op := func() error {
		rc, _, err := o.store.Get(fetchCtx, key)
		if err != nil {
			return err
		}
		defer rc.Close()
		content, err = io.ReadAll(rc)
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, fetchCtx)); err != nil {
		return nil, err
	}
	return content, nil
}

func (o *Orchestrator) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Sweep(ctx)
		}
	}
}

// Sweep pushes due queued jobs back onto the queue and reclaims expired
// claims. Both are idempotent: duplicate deliveries lose the claim race.
func (o *Orchestrator) Sweep(ctx context.Context) {
	now := o.now()

	due, err := o.jobs.DueQueued(ctx, now, sweepBatchSize)
	if err != nil {
		o.log("sweep_error", map[string]any{"phase": "due", "error": err.Error()})
	}
	for _, id := range due {
		_ = o.q.Enqueue(ctx, id)
	}

	reclaimed, err := o.jobs.ReclaimExpired(ctx, now)
	if err != nil {
		o.log("sweep_error", map[string]any{"phase": "reclaim", "error": err.Error()})
	}
	for _, id := range reclaimed {
		_ = o.q.Enqueue(ctx, id)
	}

	if len(due) > 0 || len(reclaimed) > 0 {
		o.log("sweep", map[string]any{"due": len(due), "reclaimed": len(reclaimed)})
	}
}

// log writes one JSON object per line, matching the request logger's format.
func (o *Orchestrator) log(event string, fields map[string]any) {
	fields["event"] = event
	fields["ts"] = o.now().Format(time.RFC3339Nano)
	o.logMu.Lock()
	defer o.logMu.Unlock()
	_ = o.logEnc.Encode(fields)
}
