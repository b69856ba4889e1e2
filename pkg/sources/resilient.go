package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/biodata-harvester/internal/domain"
)

// ResilientClient wraps a Fetcher with a circuit breaker and an optional
// response cache. An open breaker surfaces as a recoverable
// service_unavailable ingestion error.
type ResilientClient struct {
	log     *logrus.Logger
	inner   Fetcher
	breaker *gobreaker.CircuitBreaker
	cache   *Cache
}

// NewResilientClient wraps the fetcher. cache may be nil.
func NewResilientClient(log *logrus.Logger, inner Fetcher, cache *Cache) *ResilientClient {
	name := string(inner.Source())
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
	return &ResilientClient{log: log, inner: inner, breaker: breaker, cache: cache}
}

func (r *ResilientClient) Source() domain.SourceName {
	return r.inner.Source()
}

// Fetch serves from the cache when possible, otherwise fetches through the
// breaker and caches the fresh payload. When the breaker is open a stale
// cache hit still serves; without one the caller gets a recoverable error.
func (r *ResilientClient) Fetch(ctx context.Context, params map[string]string) (*Payload, error) {
	if r.cache != nil {
		if payload, found, err := r.cache.Get(ctx, r.Source(), params); err == nil && found {
			return payload, nil
		}
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.Fetch(ctx, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, domain.NewIngestionError(domain.ErrorServiceUnavailable,
				fmt.Sprintf("%s service unavailable (circuit breaker open)", r.Source()))
		}
		return nil, fmt.Errorf("%s fetch failed: %w", r.Source(), err)
	}

	payload := result.(*Payload)
	if r.cache != nil {
		if cacheErr := r.cache.Set(ctx, r.Source(), params, payload, 0); cacheErr != nil {
			r.log.WithError(cacheErr).WithField("source", r.Source()).
				Warn("Failed to cache source payload")
		}
	}
	return payload, nil
}

// BreakerState exposes the breaker state for health reporting.
func (r *ResilientClient) BreakerState() gobreaker.State {
	return r.breaker.State()
}

// BreakerCounts exposes the breaker counters for health reporting.
func (r *ResilientClient) BreakerCounts() gobreaker.Counts {
	return r.breaker.Counts()
}
