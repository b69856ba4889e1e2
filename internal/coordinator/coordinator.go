// Package coordinator executes batches of per-source ingestion tasks with
// bounded concurrency, aggregates their outcomes, and supports retrying
// only the sources that failed.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/biodata-harvester/internal/domain"
)

// Worker performs one source ingestion and returns a structured result.
// Errors crossing this boundary are converted into synthetic FAILED
// results; a worker error never aborts its peers.
type Worker interface {
	Source() domain.SourceName
	Ingest(ctx context.Context, params map[string]string) (*domain.IngestionResult, error)
}

// WorkerFactory scopes worker acquisition. Release is invoked on every
// exit path, including worker errors.
type WorkerFactory interface {
	Acquire(ctx context.Context) (Worker, error)
	Release(w Worker)
}

// StaticFactory hands out one shared worker. Suitable for workers that
// are safe for concurrent use; Release is a no-op.
type StaticFactory struct {
	worker Worker
}

func NewStaticFactory(w Worker) *StaticFactory {
	return &StaticFactory{worker: w}
}

func (f *StaticFactory) Acquire(ctx context.Context) (Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.worker, nil
}

func (f *StaticFactory) Release(Worker) {}

// IngestionTask names one source ingestion to run. Lower priority values
// run earlier within a concurrency window.
type IngestionTask struct {
	Source     domain.SourceName
	Factory    WorkerFactory
	Parameters map[string]string
	Priority   int
}

// ProgressFunc receives the completion ratio as a percentage after each
// task finishes.
type ProgressFunc func(source domain.SourceName, percentComplete float64)

// Coordinator runs ingestion batches. Construct with NewCoordinator; the
// zero value is not usable.
type Coordinator struct {
	log        *logrus.Logger
	maxWorkers int64
	parallel   bool
	progress   ProgressFunc
}

// Option adjusts coordinator construction.
type Option func(*Coordinator)

// WithSequential switches to strict priority-order execution.
func WithSequential() Option {
	return func(c *Coordinator) { c.parallel = false }
}

// WithMaxWorkers bounds parallel execution. Values below 1 are treated
// as 1.
func WithMaxWorkers(n int) Option {
	return func(c *Coordinator) {
		if n < 1 {
			n = 1
		}
		c.maxWorkers = int64(n)
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Coordinator) { c.progress = fn }
}

// DefaultMaxWorkers bounds parallel ingestion when no explicit limit is
// configured.
const DefaultMaxWorkers = 4

// NewCoordinator builds a parallel coordinator with the default worker
// bound.
func NewCoordinator(log *logrus.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		log:        log,
		maxWorkers: DefaultMaxWorkers,
		parallel:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Coordinate executes a batch of tasks and aggregates their outcomes. An
// empty batch completes immediately. Coordinate returns an error only when
// execution could not start at all; per-task failures are folded into the
// result.
func (c *Coordinator) Coordinate(ctx context.Context, tasks []IngestionTask, globalParams map[string]string) (*domain.CoordinatorResult, error) {
	start := time.Now().UTC()
	result := &domain.CoordinatorResult{
		TotalSources:  len(tasks),
		StartTime:     start,
		SourceResults: map[string]domain.IngestionResult{},
		Phase:         domain.PhaseInitializing,
	}

	if len(tasks) == 0 {
		c.finish(result, start)
		return result, nil
	}

	ordered := make([]IngestionTask, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	result.Phase = domain.PhaseIngesting
	var err error
	if c.parallel {
		err = c.runParallel(ctx, ordered, globalParams, result)
	} else {
		err = c.runSequential(ctx, ordered, globalParams, result)
	}
	if err != nil {
		result.Phase = domain.PhaseFailed
		result.TotalErrors++
		result.EndTime = time.Now().UTC()
		result.DurationSeconds = result.EndTime.Sub(start).Seconds()
		return result, err
	}

	c.finish(result, start)
	return result, nil
}

// IngestAll runs the canonical task set: one task per built-in source, all
// sharing the same factory and gene symbol parameter.
func (c *Coordinator) IngestAll(ctx context.Context, factory WorkerFactory, geneSymbol string, globalParams map[string]string) (*domain.CoordinatorResult, error) {
	sources := domain.BuiltinSources()
	tasks := make([]IngestionTask, 0, len(sources))
	for i, source := range sources {
		tasks = append(tasks, IngestionTask{
			Source:     source,
			Factory:    factory,
			Parameters: map[string]string{"gene_symbol": geneSymbol},
			Priority:   i,
		})
	}
	return c.Coordinate(ctx, tasks, globalParams)
}

// RetryFailed re-runs only the sources whose previous outcome is FAILED.
// When nothing failed, the previous result is returned unchanged.
func (c *Coordinator) RetryFailed(ctx context.Context, previous *domain.CoordinatorResult, factory WorkerFactory, retryParams map[string]string) (*domain.CoordinatorResult, error) {
	var tasks []IngestionTask
	priority := 0
	for _, source := range sortedSources(previous.SourceResults) {
		if previous.SourceResults[source].Status != domain.JobFailed {
			continue
		}
		tasks = append(tasks, IngestionTask{
			Source:   domain.SourceName(source),
			Factory:  factory,
			Priority: priority,
		})
		priority++
	}
	if len(tasks) == 0 {
		return previous, nil
	}

	c.log.WithField("sources", len(tasks)).Info("Retrying failed sources")
	return c.Coordinate(ctx, tasks, retryParams)
}

// Summarize condenses a coordinator result for reporting.
func (c *Coordinator) Summarize(result *domain.CoordinatorResult) domain.CoordinatorSummary {
	summary := domain.CoordinatorSummary{
		TotalSources:     result.TotalSources,
		CompletedSources: result.CompletedSources,
		FailedSources:    result.FailedSources,
		TotalRecords:     result.TotalRecords,
		TotalErrors:      result.TotalErrors,
		DurationSeconds:  result.DurationSeconds,
	}
	if result.TotalSources > 0 {
		summary.SuccessRate = float64(result.CompletedSources) / float64(result.TotalSources) * 100
	}
	if result.DurationSeconds > 0 {
		summary.RecordsPerSecond = float64(result.TotalRecords) / result.DurationSeconds
	}
	return summary
}

func (c *Coordinator) runParallel(ctx context.Context, tasks []IngestionTask, globalParams map[string]string, result *domain.CoordinatorResult) error {
	sem := semaphore.NewWeighted(c.maxWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0
	total := len(tasks)

	for _, task := range tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return fmt.Errorf("acquiring worker slot: %w", err)
		}
		wg.Add(1)
		go func(task IngestionTask) {
			defer wg.Done()
			defer sem.Release(1)

			outcome := c.runTask(ctx, task, globalParams)

			mu.Lock()
			result.SourceResults[string(task.Source)] = outcome
			completed++
			done := completed
			mu.Unlock()

			c.reportProgress(task.Source, float64(done)/float64(total)*100)
		}(task)
	}

	wg.Wait()
	return nil
}

func (c *Coordinator) runSequential(ctx context.Context, tasks []IngestionTask, globalParams map[string]string, result *domain.CoordinatorResult) error {
	total := len(tasks)
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("coordination interrupted: %w", err)
		}
		result.SourceResults[string(task.Source)] = c.runTask(ctx, task, globalParams)
		c.reportProgress(task.Source, float64(i+1)/float64(total)*100)
	}
	return nil
}

// runTask acquires a worker, runs the ingestion, and converts any error
// into a synthetic FAILED result. The worker is released on all paths. A
// "timeout" parameter (a Go duration) bounds the whole worker call.
func (c *Coordinator) runTask(ctx context.Context, task IngestionTask, globalParams map[string]string) domain.IngestionResult {
	started := time.Now().UTC()

	worker, err := task.Factory.Acquire(ctx)
	if err != nil {
		return c.failedResult(task.Source, started, fmt.Errorf("acquiring worker: %w", err))
	}
	defer task.Factory.Release(worker)

	params := mergeParams(globalParams, task.Parameters)
	if raw := params["timeout"]; raw != "" {
		timeout, perr := time.ParseDuration(raw)
		if perr != nil {
			return c.failedResult(task.Source, started, fmt.Errorf("invalid task timeout %q: %w", raw, perr))
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	outcome, err := worker.Ingest(ctx, params)
	if err != nil {
		return c.failedResult(task.Source, started, err)
	}
	if outcome == nil {
		return c.failedResult(task.Source, started, errors.New("worker returned no result"))
	}
	return *outcome
}

// failedResult builds the synthetic outcome for a worker that raised. The
// error keeps its ingestion type so recoverable failures stay retryable.
func (c *Coordinator) failedResult(source domain.SourceName, started time.Time, err error) domain.IngestionResult {
	ingErr := classifyError(err)
	c.log.WithFields(logrus.Fields{
		"source":     source.String(),
		"error":      ingErr.Message,
		"error_type": string(ingErr.ErrorType),
	}).Error("Source ingestion failed")

	prov := domain.NewProvenance(string(source), "coordinator").
		WithStep(fmt.Sprintf("Failed ingestion: %s", ingErr.Message)).
		WithQualityScore(0.0).
		MarkFailed()

	return domain.IngestionResult{
		Source:      string(source),
		Status:      domain.JobFailed,
		Errors:      []domain.IngestionError{ingErr},
		Provenance:  prov,
		StartedAt:   started,
		CompletedAt: time.Now().UTC(),
	}
}

// classifyError maps a worker error to a typed ingestion error. Typed
// errors from the source clients pass through unchanged; deadline and
// network failures are classified so they remain recoverable; anything
// else is recorded as unknown.
func classifyError(err error) domain.IngestionError {
	var ingErr domain.IngestionError
	if errors.As(err, &ingErr) {
		return ingErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewIngestionError(domain.ErrorTimeout, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.NewIngestionError(domain.ErrorTimeout, err.Error())
		}
		return domain.NewIngestionError(domain.ErrorNetwork, err.Error())
	}
	return domain.NewIngestionError(domain.ErrorUnknown, err.Error())
}

// finish aggregates per-source outcomes into the batch totals.
func (c *Coordinator) finish(result *domain.CoordinatorResult, start time.Time) {
	result.Phase = domain.PhaseProcessing
	completed := 0
	records := 0
	errors := 0
	for _, outcome := range result.SourceResults {
		if outcome.Status == domain.JobCompleted {
			completed++
		}
		records += outcome.Metrics.RecordsProcessed
		errors += len(outcome.Errors)
	}
	result.CompletedSources = completed
	result.FailedSources = result.TotalSources - completed
	result.TotalRecords = records
	result.TotalErrors = errors
	result.EndTime = time.Now().UTC()
	result.DurationSeconds = result.EndTime.Sub(start).Seconds()
	result.Phase = domain.PhaseCompleted
}

func (c *Coordinator) reportProgress(source domain.SourceName, pct float64) {
	if c.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.WithFields(logrus.Fields{
				"source": source.String(),
				"panic":  r,
			}).Warn("Progress callback panicked")
		}
	}()
	c.progress(source, pct)
}

func mergeParams(global, task map[string]string) map[string]string {
	merged := make(map[string]string, len(global)+len(task))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range task {
		merged[k] = v
	}
	return merged
}

func sortedSources(results map[string]domain.IngestionResult) []string {
	sources := make([]string, 0, len(results))
	for source := range results {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}
