package domain

import "time"

// IngestionResult is the structured outcome of one source worker run.
// Workers return results; they never throw across the coordinator boundary.
type IngestionResult struct {
	Source      string           `json:"source"`
	JobID       string           `json:"job_id,omitempty"`
	Status      JobStatus        `json:"status"`
	Metrics     JobMetrics       `json:"metrics"`
	Errors      []IngestionError `json:"errors"`
	Provenance  Provenance       `json:"provenance"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
}

// CoordinatorResult aggregates the outcomes of one coordinated batch.
type CoordinatorResult struct {
	TotalSources     int                        `json:"total_sources"`
	CompletedSources int                        `json:"completed_sources"`
	FailedSources    int                        `json:"failed_sources"`
	TotalRecords     int                        `json:"total_records"`
	TotalErrors      int                        `json:"total_errors"`
	StartTime        time.Time                  `json:"start_time"`
	EndTime          time.Time                  `json:"end_time"`
	DurationSeconds  float64                    `json:"duration_seconds"`
	SourceResults    map[string]IngestionResult `json:"source_results"`
	Phase            CoordinatorPhase           `json:"phase"`
}

// CoordinatorSummary condenses a coordinator result for reporting.
type CoordinatorSummary struct {
	TotalSources     int     `json:"total_sources"`
	CompletedSources int     `json:"completed_sources"`
	FailedSources    int     `json:"failed_sources"`
	SuccessRate      float64 `json:"success_rate"`
	TotalRecords     int     `json:"total_records"`
	TotalErrors      int     `json:"total_errors"`
	DurationSeconds  float64 `json:"duration_seconds"`
	RecordsPerSecond float64 `json:"records_per_second"`
}

// StageResult is the outcome of one ETL pipeline stage.
type StageResult struct {
	Stage            PipelineStage  `json:"stage"`
	Status           StageStatus    `json:"status"`
	RecordsProcessed int            `json:"records_processed"`
	RecordsFailed    int            `json:"records_failed"`
	DataSnapshot     map[string]int `json:"data_snapshot,omitempty"`
	Errors           []string       `json:"errors"`
	DurationSeconds  float64        `json:"duration_seconds"`
	Timestamp        time.Time      `json:"timestamp"`
}
