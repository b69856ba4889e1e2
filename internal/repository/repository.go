// Package repository persists ingestion jobs. Two backends share one
// database/sql codepath: SQLite for single-node deployments and PostgreSQL
// for shared ones. Jobs are stored as a JSON payload plus a few queryable
// columns; every write replaces the full record under the store's write
// lock.
package repository

import (
	"context"
	"time"

	"github.com/biodata-harvester/internal/domain"
)

// JobStore is the persistence port for ingestion jobs.
type JobStore interface {
	Save(ctx context.Context, job domain.IngestionJob) error
	FindByID(ctx context.Context, id string) (*domain.IngestionJob, error)
	FindBySource(ctx context.Context, sourceID string, skip, limit int) ([]domain.IngestionJob, error)
	FindByStatus(ctx context.Context, status domain.JobStatus) ([]domain.IngestionJob, error)
	FindByTrigger(ctx context.Context, trigger domain.IngestionTrigger) ([]domain.IngestionJob, error)
	FindRecentJobs(ctx context.Context, hoursBack int) ([]domain.IngestionJob, error)
	FindFailedJobs(ctx context.Context, since *time.Time) ([]domain.IngestionJob, error)

	UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error
	UpdateMetrics(ctx context.Context, id string, metrics domain.JobMetrics) error
	AddError(ctx context.Context, id string, e domain.IngestionError) error
	StartJob(ctx context.Context, id string) error
	CompleteJob(ctx context.Context, id string, metrics domain.JobMetrics) error
	FailJob(ctx context.Context, id string, e domain.IngestionError) error
	CancelJob(ctx context.Context, id string) error

	DeleteOldJobs(ctx context.Context, days int) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error)
	CountBySource(ctx context.Context) (map[string]int, error)
	CountByTrigger(ctx context.Context) (map[domain.IngestionTrigger]int, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetJobStatistics(ctx context.Context, sourceID string) (*JobStatistics, error)
	GetRecentFailures(ctx context.Context, limit int) ([]RecentFailure, error)

	Close() error
}

// JobStatistics aggregates job outcomes, optionally restricted to one
// source.
type JobStatistics struct {
	SourceID               string                   `json:"source_id,omitempty"`
	TotalJobs              int                      `json:"total_jobs"`
	ByStatus               map[domain.JobStatus]int `json:"by_status"`
	TotalRecordsProcessed  int                      `json:"total_records_processed"`
	AverageDurationSeconds float64                  `json:"average_duration_seconds"`
	SuccessRate            float64                  `json:"success_rate"`
}

// RecentFailure pairs a failed job with its primary error for triage
// listings.
type RecentFailure struct {
	Job          domain.IngestionJob   `json:"job"`
	PrimaryError domain.IngestionError `json:"primary_error"`
}
