// Package pipeline composes the five ETL stages (parse, normalize, map,
// validate, export) over typed bundles. Each stage localizes its errors
// into a StageResult; the pipeline aggregates them for reporting and never
// lets a stage failure abort the run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
	"github.com/biodata-harvester/internal/normalize"
	"github.com/biodata-harvester/internal/parser"
)

// ProgressFunc receives a human-readable message and a completion
// percentage in [0, 100]. Callbacks may panic; the pipeline logs and
// swallows such panics.
type ProgressFunc func(message string, percentComplete float64)

// Pipeline executes the staged ETL flow for one invocation. The normalizer
// caches are scoped to the pipeline instance; do not share an instance
// across concurrent runs.
type Pipeline struct {
	log        *logrus.Logger
	registry   *parser.Registry
	normalizer *normalize.Service
	mode       domain.PipelineMode
	metrics    *MetricsTracker
	progress   ProgressFunc
}

// Option adjusts pipeline construction.
type Option func(*Pipeline)

// WithMode selects the execution mode. PARALLEL and INCREMENTAL are
// accepted but currently execute sequentially.
func WithMode(mode domain.PipelineMode) Option {
	return func(p *Pipeline) { p.mode = mode }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New builds a pipeline around a parser registry.
func New(log *logrus.Logger, registry *parser.Registry, opts ...Option) (*Pipeline, error) {
	normalizer, err := normalize.NewService(log)
	if err != nil {
		return nil, fmt.Errorf("creating normalizer: %w", err)
	}
	p := &Pipeline{
		log:        log,
		registry:   registry,
		normalizer: normalizer,
		mode:       domain.ModeSequential,
		metrics:    NewMetricsTracker(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Metrics exposes the tracker, primarily for observability wiring.
func (p *Pipeline) Metrics() *MetricsTracker {
	return p.metrics
}

// Run executes all five stages in order and returns the aggregated result.
// Run itself fails only on context cancellation; stage-level problems are
// reported through the stage results.
func (p *Pipeline) Run(ctx context.Context, input Input) (*Result, error) {
	mode := p.mode
	if mode != domain.ModeSequential {
		p.log.WithFields(logrus.Fields{
			"requested": mode.String(),
			"effective": domain.ModeSequential.String(),
		}).Warn("Pipeline mode not yet implemented, falling back to sequential")
	}

	result := &Result{}
	stages := []struct {
		name string
		pct  float64
		run  func(context.Context, Input, *Result) domain.StageResult
	}{
		{"Parsing source payloads", 20, p.runParse},
		{"Normalizing entities", 40, p.runNormalize},
		{"Mapping relationships", 60, p.runMap},
		{"Validating mappings", 80, p.runValidate},
		{"Exporting artifacts", 100, p.runExport},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("pipeline interrupted: %w", err)
		}
		stageResult := stage.run(ctx, input, result)
		p.metrics.RecordStage(stageResult)
		result.Stages = append(result.Stages, stageResult)
		result.Errors = append(result.Errors, stageResult.Errors...)
		p.reportProgress(stage.name, stage.pct)
	}

	result.Metrics = p.metrics.Snapshot()
	return result, nil
}

// reportProgress invokes the callback, recovering from panics so a broken
// observer cannot take down the run.
func (p *Pipeline) reportProgress(message string, pct float64) {
	if p.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.WithFields(logrus.Fields{
				"message": message,
				"panic":   r,
			}).Warn("Progress callback panicked")
		}
	}()
	p.progress(message, pct)
}

// newStageResult finalizes a stage's bookkeeping.
func newStageResult(stage domain.PipelineStage, status domain.StageStatus, processed, failed int, snapshot map[string]int, errs []string, started time.Time) domain.StageResult {
	if errs == nil {
		errs = []string{}
	}
	return domain.StageResult{
		Stage:            stage,
		Status:           status,
		RecordsProcessed: processed,
		RecordsFailed:    failed,
		DataSnapshot:     snapshot,
		Errors:           errs,
		DurationSeconds:  time.Since(started).Seconds(),
		Timestamp:        time.Now().UTC(),
	}
}
