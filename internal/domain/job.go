package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobMetrics accumulates throughput counters for one ingestion job.
type JobMetrics struct {
	RecordsProcessed int      `json:"records_processed"`
	RecordsFailed    int      `json:"records_failed"`
	RecordsSkipped   int      `json:"records_skipped"`
	BytesProcessed   int64    `json:"bytes_processed"`
	APICallsMade     int      `json:"api_calls_made"`
	DurationSeconds  *float64 `json:"duration_seconds,omitempty"`
	RecordsPerSecond *float64 `json:"records_per_second,omitempty"`
}

// Total returns the total number of records seen.
func (m JobMetrics) Total() int {
	return m.RecordsProcessed + m.RecordsFailed + m.RecordsSkipped
}

// SuccessRate returns the fraction of records processed successfully,
// or 0 when no records were seen.
func (m JobMetrics) SuccessRate() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return float64(m.RecordsProcessed) / float64(total)
}

// Finalize returns a copy with the duration set and the processing rate
// derived from it. The rate is only meaningful once the run has finished.
func (m JobMetrics) Finalize(duration time.Duration) JobMetrics {
	out := m
	secs := duration.Seconds()
	out.DurationSeconds = &secs
	rate := 0.0
	if secs > 0 {
		rate = float64(m.RecordsProcessed) / secs
	}
	out.RecordsPerSecond = &rate
	return out
}

// IngestionError is a structured, immutable record of a failure observed
// during ingestion. Errors are appended to jobs and never mutated.
type IngestionError struct {
	ErrorType ErrorType         `json:"error_type"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RecordID  string            `json:"record_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewIngestionError creates an error record stamped with the current time.
func NewIngestionError(errorType ErrorType, message string) IngestionError {
	return IngestionError{
		ErrorType: errorType,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Recoverable reports whether a retry of the affected source could succeed.
func (e IngestionError) Recoverable() bool {
	return e.ErrorType.IsRecoverable()
}

// Error implements the error interface for logging convenience.
func (e IngestionError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorType, e.Message)
}

// IngestionJob is the aggregate tracking one ingestion run for one source.
// It is a value type: every transition returns a new job and leaves the
// receiver untouched, so historical snapshots stay reliable for audits.
type IngestionJob struct {
	ID                   string            `json:"id"`
	SourceID             string            `json:"source_id"`
	Trigger              IngestionTrigger  `json:"trigger"`
	TriggeredBy          string            `json:"triggered_by,omitempty"`
	TriggeredAt          time.Time         `json:"triggered_at"`
	Status               JobStatus         `json:"status"`
	StartedAt            *time.Time        `json:"started_at,omitempty"`
	CompletedAt          *time.Time        `json:"completed_at,omitempty"`
	Metrics              JobMetrics        `json:"metrics"`
	Errors               []IngestionError  `json:"errors"`
	Provenance           Provenance        `json:"provenance"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	SourceConfigSnapshot map[string]string `json:"source_config_snapshot,omitempty"`
}

// NewIngestionJob creates a pending job for the given source.
func NewIngestionJob(sourceID string, trigger IngestionTrigger, triggeredBy string) IngestionJob {
	return IngestionJob{
		ID:          uuid.NewString(),
		SourceID:    sourceID,
		Trigger:     trigger,
		TriggeredBy: triggeredBy,
		TriggeredAt: time.Now().UTC(),
		Status:      JobPending,
		Errors:      []IngestionError{},
		Provenance:  NewProvenance(sourceID, triggeredBy),
	}
}

// Start transitions the job from PENDING to RUNNING and stamps StartedAt.
func (j IngestionJob) Start() (IngestionJob, error) {
	if j.Status != JobPending {
		return j, fmt.Errorf("start job %s from %s: %w", j.ID, j.Status, ErrInvalidTransition)
	}
	out := j.clone()
	now := time.Now().UTC()
	out.Status = JobRunning
	out.StartedAt = &now
	return out, nil
}

// Complete transitions the job from RUNNING to COMPLETED, replacing the
// metrics with their finalized form.
func (j IngestionJob) Complete(metrics JobMetrics) (IngestionJob, error) {
	return j.finish(JobCompleted, &metrics)
}

// Fail transitions the job from RUNNING to FAILED, appending the error.
func (j IngestionJob) Fail(e IngestionError) (IngestionJob, error) {
	out, err := j.finish(JobFailed, nil)
	if err != nil {
		return j, err
	}
	out.Errors = append(out.Errors, e)
	return out, nil
}

// MarkPartial transitions the job from RUNNING to PARTIAL. Workers report
// PARTIAL when the run finished but some records failed.
func (j IngestionJob) MarkPartial(metrics JobMetrics) (IngestionJob, error) {
	return j.finish(JobPartial, &metrics)
}

// Cancel transitions the job from RUNNING to CANCELLED.
func (j IngestionJob) Cancel() (IngestionJob, error) {
	return j.finish(JobCancelled, nil)
}

// AddError returns a copy with the error appended. The status never
// advances; errors may accumulate in any state.
func (j IngestionJob) AddError(e IngestionError) IngestionJob {
	out := j.clone()
	out.Errors = append(out.Errors, e)
	return out
}

// WithMetrics returns a copy carrying the updated metrics.
func (j IngestionJob) WithMetrics(metrics JobMetrics) IngestionJob {
	out := j.clone()
	out.Metrics = metrics
	return out
}

// WithMetadata returns a copy with the key/value pair added to metadata.
// Retry jobs use this to reference the job they supersede.
func (j IngestionJob) WithMetadata(key, value string) IngestionJob {
	out := j.clone()
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	out.Metadata[key] = value
	return out
}

// Duration returns the elapsed run time when both boundary timestamps are
// set, and false otherwise.
func (j IngestionJob) Duration() (time.Duration, bool) {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0, false
	}
	return j.CompletedAt.Sub(*j.StartedAt), true
}

// CanRetry reports whether a retry job should be created: the job must have
// ended FAILED or PARTIAL with at least one recoverable error.
func (j IngestionJob) CanRetry() bool {
	if j.Status != JobFailed && j.Status != JobPartial {
		return false
	}
	for _, e := range j.Errors {
		if e.Recoverable() {
			return true
		}
	}
	return false
}

// PrimaryError returns the most recently appended error, or a synthetic
// unknown error when none was recorded.
func (j IngestionJob) PrimaryError() IngestionError {
	if len(j.Errors) == 0 {
		return IngestionError{ErrorType: ErrorUnknown, Message: "No error recorded"}
	}
	return j.Errors[len(j.Errors)-1]
}

// finish applies a terminal transition out of RUNNING.
func (j IngestionJob) finish(status JobStatus, metrics *JobMetrics) (IngestionJob, error) {
	if j.Status.IsTerminal() {
		return j, fmt.Errorf("finish job %s as %s: %w", j.ID, status, ErrJobTerminal)
	}
	if j.Status != JobRunning {
		return j, fmt.Errorf("finish job %s from %s: %w", j.ID, j.Status, ErrInvalidTransition)
	}
	out := j.clone()
	now := time.Now().UTC()
	out.Status = status
	out.CompletedAt = &now
	m := out.Metrics
	if metrics != nil {
		m = *metrics
	}
	if out.StartedAt != nil {
		m = m.Finalize(now.Sub(*out.StartedAt))
	}
	out.Metrics = m
	return out, nil
}

// clone deep-copies the job so derived values never alias the original.
func (j IngestionJob) clone() IngestionJob {
	out := j
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	out.Errors = make([]IngestionError, len(j.Errors))
	copy(out.Errors, j.Errors)
	out.Provenance = j.Provenance.clone()
	if j.Metadata != nil {
		out.Metadata = make(map[string]string, len(j.Metadata))
		for k, v := range j.Metadata {
			out.Metadata[k] = v
		}
	}
	if j.SourceConfigSnapshot != nil {
		out.SourceConfigSnapshot = make(map[string]string, len(j.SourceConfigSnapshot))
		for k, v := range j.SourceConfigSnapshot {
			out.SourceConfigSnapshot[k] = v
		}
	}
	return out
}
