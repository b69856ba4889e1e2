package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/biodata-harvester/internal/domain"
)

// dialect adapts shared SQL to a backend's placeholder style.
type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// rebind rewrites ? placeholders to $1..$n for PostgreSQL.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const jobsSchema = `
CREATE TABLE IF NOT EXISTS ingestion_jobs (
	id TEXT PRIMARY KEY,
	source_id TEXT NOT NULL,
	trigger_kind TEXT NOT NULL,
	triggered_at TIMESTAMP NOT NULL,
	status TEXT NOT NULL,
	records_processed INTEGER NOT NULL DEFAULT 0,
	duration_seconds REAL,
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_source ON ingestion_jobs(source_id);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON ingestion_jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_triggered_at ON ingestion_jobs(triggered_at);
`

const jobColumns = "payload"

// timestampLayout is fixed-width so lexicographic ordering matches
// chronological ordering on both backends.
const timestampLayout = "2006-01-02 15:04:05.000000000"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// sqlStore is the shared implementation behind both backends. Mutating
// operations are read-modify-write under the write lock; the full job
// record is replaced on every save.
type sqlStore struct {
	db *sql.DB
	d  dialect
	mu sync.Mutex
}

func createJobsSchema(db *sql.DB) error {
	_, err := db.Exec(jobsSchema)
	return err
}

func scanJob(s interface{ Scan(...interface{}) error }) (*domain.IngestionJob, error) {
	var payload []byte
	if err := s.Scan(&payload); err != nil {
		return nil, err
	}
	var job domain.IngestionJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("decoding job payload: %w", err)
	}
	return &job, nil
}

// Save inserts the job or replaces the stored record entirely.
func (s *sqlStore) Save(ctx context.Context, job domain.IngestionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, job)
}

func (s *sqlStore) save(ctx context.Context, job domain.IngestionJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.ID, err)
	}

	var duration sql.NullFloat64
	if job.Metrics.DurationSeconds != nil {
		duration = sql.NullFloat64{Float64: *job.Metrics.DurationSeconds, Valid: true}
	}

	query := s.d.rebind(`
		INSERT INTO ingestion_jobs (
			id, source_id, trigger_kind, triggered_at, status,
			records_processed, duration_seconds, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			source_id = EXCLUDED.source_id,
			trigger_kind = EXCLUDED.trigger_kind,
			triggered_at = EXCLUDED.triggered_at,
			status = EXCLUDED.status,
			records_processed = EXCLUDED.records_processed,
			duration_seconds = EXCLUDED.duration_seconds,
			payload = EXCLUDED.payload`)

	_, err = s.db.ExecContext(ctx, query,
		job.ID,
		job.SourceID,
		string(job.Trigger),
		encodeTime(job.TriggeredAt),
		string(job.Status),
		job.Metrics.RecordsProcessed,
		duration,
		payload,
	)
	if err != nil {
		return fmt.Errorf("saving job %s: %w", job.ID, err)
	}
	return nil
}

// FindByID returns the job or domain.ErrNotFound.
func (s *sqlStore) FindByID(ctx context.Context, id string) (*domain.IngestionJob, error) {
	query := s.d.rebind("SELECT " + jobColumns + " FROM ingestion_jobs WHERE id = ?")
	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding job %s: %w", id, err)
	}
	return job, nil
}

func (s *sqlStore) queryJobs(ctx context.Context, query string, args ...interface{}) ([]domain.IngestionJob, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.IngestionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// FindBySource lists a source's jobs, newest first, with offset pagination.
func (s *sqlStore) FindBySource(ctx context.Context, sourceID string, skip, limit int) ([]domain.IngestionJob, error) {
	query := s.d.rebind("SELECT " + jobColumns + ` FROM ingestion_jobs
		WHERE source_id = ?
		ORDER BY triggered_at DESC
		LIMIT ? OFFSET ?`)
	return s.queryJobs(ctx, query, sourceID, limit, skip)
}

// FindByStatus lists jobs in a status, newest first.
func (s *sqlStore) FindByStatus(ctx context.Context, status domain.JobStatus) ([]domain.IngestionJob, error) {
	query := s.d.rebind("SELECT " + jobColumns + ` FROM ingestion_jobs
		WHERE status = ?
		ORDER BY triggered_at DESC`)
	return s.queryJobs(ctx, query, string(status))
}

// FindByTrigger lists jobs by trigger kind, newest first.
func (s *sqlStore) FindByTrigger(ctx context.Context, trigger domain.IngestionTrigger) ([]domain.IngestionJob, error) {
	query := s.d.rebind("SELECT " + jobColumns + ` FROM ingestion_jobs
		WHERE trigger_kind = ?
		ORDER BY triggered_at DESC`)
	return s.queryJobs(ctx, query, string(trigger))
}

// FindRecentJobs lists jobs triggered within the last hoursBack hours.
func (s *sqlStore) FindRecentJobs(ctx context.Context, hoursBack int) ([]domain.IngestionJob, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hoursBack) * time.Hour)
	query := s.d.rebind("SELECT " + jobColumns + ` FROM ingestion_jobs
		WHERE triggered_at >= ?
		ORDER BY triggered_at DESC`)
	return s.queryJobs(ctx, query, encodeTime(cutoff))
}

// FindFailedJobs lists FAILED jobs, optionally only those triggered at or
// after since.
func (s *sqlStore) FindFailedJobs(ctx context.Context, since *time.Time) ([]domain.IngestionJob, error) {
	if since == nil {
		query := s.d.rebind("SELECT " + jobColumns + ` FROM ingestion_jobs
			WHERE status = ?
			ORDER BY triggered_at DESC`)
		return s.queryJobs(ctx, query, string(domain.JobFailed))
	}
	query := s.d.rebind("SELECT " + jobColumns + ` FROM ingestion_jobs
		WHERE status = ? AND triggered_at >= ?
		ORDER BY triggered_at DESC`)
	return s.queryJobs(ctx, query, string(domain.JobFailed), encodeTime(*since))
}

// mutate loads the job, applies fn, and saves the result, all under the
// write lock.
func (s *sqlStore) mutate(ctx context.Context, id string, fn func(domain.IngestionJob) (domain.IngestionJob, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	updated, err := fn(*job)
	if err != nil {
		return err
	}
	return s.save(ctx, updated)
}

// UpdateStatus overwrites the job's status without a lifecycle check.
// Lifecycle-aware callers should prefer the transition methods.
func (s *sqlStore) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error {
	return s.mutate(ctx, id, func(job domain.IngestionJob) (domain.IngestionJob, error) {
		job.Status = status
		return job, nil
	})
}

// UpdateMetrics replaces the job's metrics.
func (s *sqlStore) UpdateMetrics(ctx context.Context, id string, metrics domain.JobMetrics) error {
	return s.mutate(ctx, id, func(job domain.IngestionJob) (domain.IngestionJob, error) {
		return job.WithMetrics(metrics), nil
	})
}

// AddError appends an error to the job without advancing its state.
func (s *sqlStore) AddError(ctx context.Context, id string, e domain.IngestionError) error {
	return s.mutate(ctx, id, func(job domain.IngestionJob) (domain.IngestionJob, error) {
		return job.AddError(e), nil
	})
}

// StartJob transitions the job to RUNNING.
func (s *sqlStore) StartJob(ctx context.Context, id string) error {
	return s.mutate(ctx, id, domain.IngestionJob.Start)
}

// CompleteJob transitions the job to COMPLETED with finalized metrics.
func (s *sqlStore) CompleteJob(ctx context.Context, id string, metrics domain.JobMetrics) error {
	return s.mutate(ctx, id, func(job domain.IngestionJob) (domain.IngestionJob, error) {
		return job.Complete(metrics)
	})
}

// FailJob transitions the job to FAILED with the error appended.
func (s *sqlStore) FailJob(ctx context.Context, id string, e domain.IngestionError) error {
	return s.mutate(ctx, id, func(job domain.IngestionJob) (domain.IngestionJob, error) {
		return job.Fail(e)
	})
}

// CancelJob transitions the job to CANCELLED.
func (s *sqlStore) CancelJob(ctx context.Context, id string) error {
	return s.mutate(ctx, id, domain.IngestionJob.Cancel)
}

// DeleteOldJobs removes jobs triggered before now minus the given number
// of days and returns how many were removed.
func (s *sqlStore) DeleteOldJobs(ctx context.Context, days int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	query := s.d.rebind("DELETE FROM ingestion_jobs WHERE triggered_at < ?")
	result, err := s.db.ExecContext(ctx, query, encodeTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("deleting old jobs: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted jobs: %w", err)
	}
	return deleted, nil
}

func (s *sqlStore) countBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+column+", COUNT(*) FROM ingestion_jobs GROUP BY "+column)
	if err != nil {
		return nil, fmt.Errorf("counting jobs by %s: %w", column, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scanning %s count: %w", column, err)
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

// CountByStatus aggregates job counts per status.
func (s *sqlStore) CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error) {
	raw, err := s.countBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.JobStatus]int, len(raw))
	for k, v := range raw {
		counts[domain.JobStatus(k)] = v
	}
	return counts, nil
}

// CountBySource aggregates job counts per source.
func (s *sqlStore) CountBySource(ctx context.Context) (map[string]int, error) {
	return s.countBy(ctx, "source_id")
}

// CountByTrigger aggregates job counts per trigger kind.
func (s *sqlStore) CountByTrigger(ctx context.Context) (map[domain.IngestionTrigger]int, error) {
	raw, err := s.countBy(ctx, "trigger_kind")
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.IngestionTrigger]int, len(raw))
	for k, v := range raw {
		counts[domain.IngestionTrigger(k)] = v
	}
	return counts, nil
}

// Exists reports whether a job with the id is stored.
func (s *sqlStore) Exists(ctx context.Context, id string) (bool, error) {
	query := s.d.rebind("SELECT COUNT(*) FROM ingestion_jobs WHERE id = ?")
	var count int
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("checking job %s: %w", id, err)
	}
	return count > 0, nil
}

// GetJobStatistics aggregates outcomes, restricted to one source when
// sourceID is non-empty.
func (s *sqlStore) GetJobStatistics(ctx context.Context, sourceID string) (*JobStatistics, error) {
	stats := &JobStatistics{
		SourceID: sourceID,
		ByStatus: map[domain.JobStatus]int{},
	}

	query := `SELECT status, COUNT(*), COALESCE(SUM(records_processed), 0), COALESCE(AVG(duration_seconds), 0)
		FROM ingestion_jobs`
	args := []interface{}{}
	if sourceID != "" {
		query += " WHERE source_id = ?"
		args = append(args, sourceID)
	}
	query += " GROUP BY status"

	rows, err := s.db.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("aggregating job statistics: %w", err)
	}
	defer rows.Close()

	var durationSum float64
	var durationGroups int
	for rows.Next() {
		var status string
		var count, records int
		var avgDuration float64
		if err := rows.Scan(&status, &count, &records, &avgDuration); err != nil {
			return nil, fmt.Errorf("scanning statistics row: %w", err)
		}
		stats.ByStatus[domain.JobStatus(status)] = count
		stats.TotalJobs += count
		stats.TotalRecordsProcessed += records
		if avgDuration > 0 {
			durationSum += avgDuration * float64(count)
			durationGroups += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if durationGroups > 0 {
		stats.AverageDurationSeconds = durationSum / float64(durationGroups)
	}
	if stats.TotalJobs > 0 {
		stats.SuccessRate = float64(stats.ByStatus[domain.JobCompleted]) / float64(stats.TotalJobs)
	}
	return stats, nil
}

// GetRecentFailures lists the most recent FAILED jobs with their primary
// errors.
func (s *sqlStore) GetRecentFailures(ctx context.Context, limit int) ([]RecentFailure, error) {
	query := s.d.rebind("SELECT " + jobColumns + ` FROM ingestion_jobs
		WHERE status = ?
		ORDER BY triggered_at DESC
		LIMIT ?`)
	jobs, err := s.queryJobs(ctx, query, string(domain.JobFailed), limit)
	if err != nil {
		return nil, err
	}

	failures := make([]RecentFailure, 0, len(jobs))
	for _, job := range jobs {
		failures = append(failures, RecentFailure{Job: job, PrimaryError: job.PrimaryError()})
	}
	return failures, nil
}

// Close releases the underlying connection pool.
func (s *sqlStore) Close() error {
	return s.db.Close()
}
