package sources

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodata-harvester/internal/domain"
)

type stubFetcher struct {
	source  domain.SourceName
	payload *Payload
	err     error
	calls   int
}

func (s *stubFetcher) Source() domain.SourceName { return s.source }

func (s *stubFetcher) Fetch(ctx context.Context, params map[string]string) (*Payload, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestResilientClientPassesThrough(t *testing.T) {
	fetcher := &stubFetcher{
		source:  domain.SourceHPO,
		payload: &Payload{Source: domain.SourceHPO, Data: []byte("ok"), RetrievedAt: time.Now()},
	}
	client := NewResilientClient(newTestLogger(), fetcher, nil)

	payload, err := client.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), payload.Data)
	assert.Equal(t, domain.SourceHPO, client.Source())
	assert.Equal(t, gobreaker.StateClosed, client.BreakerState())
}

func TestResilientClientOpensBreakerAfterFailures(t *testing.T) {
	fetcher := &stubFetcher{source: domain.SourceClinVar, err: errors.New("connection reset")}
	client := NewResilientClient(newTestLogger(), fetcher, nil)

	for i := 0; i < 3; i++ {
		_, err := client.Fetch(context.Background(), nil)
		assert.ErrorContains(t, err, "connection reset")
	}
	require.Equal(t, gobreaker.StateOpen, client.BreakerState())

	// The open breaker short-circuits without touching the upstream and
	// surfaces as a recoverable service_unavailable error.
	callsBefore := fetcher.calls
	_, err := client.Fetch(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, callsBefore, fetcher.calls)

	var ingestionErr domain.IngestionError
	require.ErrorAs(t, err, &ingestionErr)
	assert.Equal(t, domain.ErrorServiceUnavailable, ingestionErr.ErrorType)
	assert.True(t, ingestionErr.Recoverable())
}

func TestCacheKeyIdentity(t *testing.T) {
	a := cacheKey(domain.SourceClinVar, map[string]string{"gene_symbol": "BRCA1", "retmax": "100"})
	b := cacheKey(domain.SourceClinVar, map[string]string{"retmax": "100", "gene_symbol": "BRCA1"})
	assert.Equal(t, a, b)
	assert.Contains(t, a, "bioharvest:source:")

	other := cacheKey(domain.SourceClinVar, map[string]string{"gene_symbol": "TP53", "retmax": "100"})
	assert.NotEqual(t, a, other)

	crossSource := cacheKey(domain.SourcePubMed, map[string]string{"gene_symbol": "BRCA1", "retmax": "100"})
	assert.NotEqual(t, a, crossSource)
}
