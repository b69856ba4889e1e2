package pipeline

import (
	"sync"

	"github.com/biodata-harvester/internal/domain"
)

// MetricsSnapshot is a point-in-time copy of the tracker's counters.
type MetricsSnapshot struct {
	TotalInputRecords     int                                         `json:"total_input_records"`
	ParsedRecords         int                                         `json:"parsed_records"`
	NormalizedRecords     int                                         `json:"normalized_records"`
	MappedRelationships   int                                         `json:"mapped_relationships"`
	ValidationErrors      int                                         `json:"validation_errors"`
	ProcessingTimeSeconds float64                                     `json:"processing_time_seconds"`
	Stages                map[domain.PipelineStage]domain.StageResult `json:"stages"`
}

// MetricsTracker accumulates pipeline counters. Safe for concurrent use.
type MetricsTracker struct {
	mu sync.Mutex

	totalInputRecords     int
	parsedRecords         int
	normalizedRecords     int
	mappedRelationships   int
	validationErrors      int
	processingTimeSeconds float64
	stages                map[domain.PipelineStage]domain.StageResult
}

// NewMetricsTracker returns an empty tracker.
func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{stages: map[domain.PipelineStage]domain.StageResult{}}
}

// AddInputRecords counts records handed to the pipeline.
func (t *MetricsTracker) AddInputRecords(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalInputRecords += n
}

// AddParsed counts records that survived the parse stage.
func (t *MetricsTracker) AddParsed(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.parsedRecords += n
}

// AddNormalized counts canonical entities produced by normalization.
func (t *MetricsTracker) AddNormalized(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.normalizedRecords += n
}

// AddMapped counts relationship links produced by mapping.
func (t *MetricsTracker) AddMapped(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mappedRelationships += n
}

// AddValidationErrors counts links that failed validation.
func (t *MetricsTracker) AddValidationErrors(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.validationErrors += n
}

// AddProcessingTime accumulates stage wall time.
func (t *MetricsTracker) AddProcessingTime(seconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processingTimeSeconds += seconds
}

// RecordStage stores the result of a completed stage.
func (t *MetricsTracker) RecordStage(result domain.StageResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages[result.Stage] = result
	t.processingTimeSeconds += result.DurationSeconds
}

// Snapshot copies the current counters.
func (t *MetricsTracker) Snapshot() MetricsSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	stages := make(map[domain.PipelineStage]domain.StageResult, len(t.stages))
	for stage, result := range t.stages {
		stages[stage] = result
	}
	return MetricsSnapshot{
		TotalInputRecords:     t.totalInputRecords,
		ParsedRecords:         t.parsedRecords,
		NormalizedRecords:     t.normalizedRecords,
		MappedRelationships:   t.mappedRelationships,
		ValidationErrors:      t.validationErrors,
		ProcessingTimeSeconds: t.processingTimeSeconds,
		Stages:                stages,
	}
}
