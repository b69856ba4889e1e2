package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLifecycleTransitions(t *testing.T) {
	job := NewIngestionJob("clinvar", TriggerManual, "tester")
	assert.Equal(t, JobPending, job.Status)
	assert.NotEmpty(t, job.ID)
	assert.False(t, job.TriggeredAt.IsZero())

	running, err := job.Start()
	require.NoError(t, err)
	assert.Equal(t, JobRunning, running.Status)
	require.NotNil(t, running.StartedAt)

	// The original job is untouched by the transition.
	assert.Equal(t, JobPending, job.Status)
	assert.Nil(t, job.StartedAt)

	metrics := JobMetrics{RecordsProcessed: 90, RecordsFailed: 5, RecordsSkipped: 5}
	done, err := running.Complete(metrics)
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, done.Metrics.DurationSeconds)
	require.NotNil(t, done.Metrics.RecordsPerSecond)
	assert.False(t, done.CompletedAt.Before(*done.StartedAt))
}

func TestJobTerminalStatesAreAbsorbing(t *testing.T) {
	job := NewIngestionJob("pubmed", TriggerScheduled, "scheduler")
	running, err := job.Start()
	require.NoError(t, err)

	done, err := running.Complete(JobMetrics{RecordsProcessed: 1})
	require.NoError(t, err)

	_, err = done.Fail(NewIngestionError(ErrorTimeout, "too late"))
	assert.ErrorIs(t, err, ErrJobTerminal)

	_, err = done.Cancel()
	assert.ErrorIs(t, err, ErrJobTerminal)

	_, err = done.Start()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestJobInvalidTransitions(t *testing.T) {
	job := NewIngestionJob("hpo", TriggerManual, "tester")

	// Completing a job that never started is rejected.
	_, err := job.Complete(JobMetrics{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = job.Cancel()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestJobFailRecordsError(t *testing.T) {
	job := NewIngestionJob("uniprot", TriggerAPI, "api")
	running, err := job.Start()
	require.NoError(t, err)

	failed, err := running.Fail(NewIngestionError(ErrorNetwork, "connection reset"))
	require.NoError(t, err)
	assert.Equal(t, JobFailed, failed.Status)
	require.Len(t, failed.Errors, 1)
	assert.Equal(t, ErrorNetwork, failed.Errors[0].ErrorType)
	assert.True(t, failed.CanRetry())
}

func TestJobCanRetry(t *testing.T) {
	tests := []struct {
		name      string
		errType   ErrorType
		canRetry  bool
	}{
		{"timeout is recoverable", ErrorTimeout, true},
		{"rate limit is recoverable", ErrorRateLimit, true},
		{"temporary failure is recoverable", ErrorTemporaryFailure, true},
		{"network error is recoverable", ErrorNetwork, true},
		{"service unavailable is recoverable", ErrorServiceUnavailable, true},
		{"parse error is not recoverable", ErrorParse, false},
		{"validation error is not recoverable", ErrorValidation, false},
		{"unknown error is not recoverable", ErrorUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewIngestionJob("clinvar", TriggerManual, "tester")
			running, err := job.Start()
			require.NoError(t, err)
			failed, err := running.Fail(NewIngestionError(tt.errType, "boom"))
			require.NoError(t, err)
			assert.Equal(t, tt.canRetry, failed.CanRetry())
		})
	}
}

func TestJobCanRetryRequiresTerminalFailure(t *testing.T) {
	job := NewIngestionJob("clinvar", TriggerManual, "tester")
	withErr := job.AddError(NewIngestionError(ErrorTimeout, "slow"))
	// Still PENDING, so not retryable even with a recoverable error.
	assert.False(t, withErr.CanRetry())
	assert.Equal(t, JobPending, withErr.Status)
}

func TestAddErrorDoesNotAdvanceState(t *testing.T) {
	job := NewIngestionJob("hpo", TriggerManual, "tester")
	running, err := job.Start()
	require.NoError(t, err)

	annotated := running.AddError(NewIngestionError(ErrorParse, "bad line"))
	assert.Equal(t, JobRunning, annotated.Status)
	assert.Len(t, annotated.Errors, 1)
	assert.Empty(t, running.Errors)
}

func TestJobDuration(t *testing.T) {
	job := NewIngestionJob("clinvar", TriggerManual, "tester")
	_, ok := job.Duration()
	assert.False(t, ok)

	start := time.Now().UTC().Add(-2 * time.Second)
	end := start.Add(2 * time.Second)
	job.StartedAt = &start
	job.CompletedAt = &end
	d, ok := job.Duration()
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, d)
}

func TestJobPrimaryError(t *testing.T) {
	job := NewIngestionJob("pubmed", TriggerManual, "tester")
	primary := job.PrimaryError()
	assert.Equal(t, ErrorUnknown, primary.ErrorType)
	assert.Equal(t, "No error recorded", primary.Message)

	job = job.AddError(NewIngestionError(ErrorTimeout, "first"))
	job = job.AddError(NewIngestionError(ErrorParse, "second"))
	primary = job.PrimaryError()
	assert.Equal(t, "second", primary.Message)
}

func TestJobMetricsConsistency(t *testing.T) {
	m := JobMetrics{RecordsProcessed: 7, RecordsFailed: 2, RecordsSkipped: 1}
	assert.Equal(t, 10, m.Total())
	assert.InDelta(t, 0.7, m.SuccessRate(), 1e-9)

	empty := JobMetrics{}
	assert.Equal(t, 0, empty.Total())
	assert.Zero(t, empty.SuccessRate())
}

func TestJobMetricsFinalize(t *testing.T) {
	m := JobMetrics{RecordsProcessed: 100}
	final := m.Finalize(4 * time.Second)
	require.NotNil(t, final.DurationSeconds)
	require.NotNil(t, final.RecordsPerSecond)
	assert.InDelta(t, 4.0, *final.DurationSeconds, 1e-9)
	assert.InDelta(t, 25.0, *final.RecordsPerSecond, 1e-9)

	// Zero duration yields a zero rate, not a division by zero.
	final = m.Finalize(0)
	assert.Zero(t, *final.RecordsPerSecond)

	// The source metrics are untouched.
	assert.Nil(t, m.DurationSeconds)
}

func TestJobMetadataRetryReference(t *testing.T) {
	previous := NewIngestionJob("clinvar", TriggerManual, "tester")
	retry := NewIngestionJob("clinvar", TriggerRetry, "tester").
		WithMetadata("retry_of", previous.ID)
	assert.Equal(t, previous.ID, retry.Metadata["retry_of"])
	assert.Nil(t, previous.Metadata)
}
