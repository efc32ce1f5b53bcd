// Package retrieval orchestrates a single lookup: resolve the storage key for
// an identifier, ask the configured backend for the bytes, and classify the
// outcome. It performs no retry, no caching, and no transformation of payload
// bytes, so identical inputs always produce the same outcome for a given
// backend state.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/astronomy-commons/alertdb/pkg/observability"
	"github.com/astronomy-commons/alertdb/pkg/storage"
)

// Metric label values for retrieval outcomes.
const (
	outcomeFound       = "found"
	outcomeNotFound    = "not_found"
	outcomeInvalidID   = "invalid_id"
	outcomeUnavailable = "unavailable"
)

// Service serves alert and schema payloads from a single storage backend.
type Service struct {
	backend storage.Backend
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates a retrieval service over the given backend.
func NewService(backend storage.Backend, logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		backend: backend,
		logger:  logger,
		metrics: metrics,
	}
}

// Retrieve returns the payload stored for (kind, id). An invalid identifier
// short-circuits before any backend call. Backend outcomes pass through
// unchanged: storage.ErrNotFound when no object exists at the resolved key,
// storage.ErrUnavailable when the backend failed. Anything a backend failed
// to classify is coerced to ErrUnavailable here so a service problem never
// masquerades as missing data.
func (s *Service) Retrieve(ctx context.Context, kind storage.Kind, id string) ([]byte, error) {
	start := time.Now()

	key, err := storage.ResolveKey(kind, id)
	if err != nil {
		s.metrics.RetrievalsTotal.WithLabelValues(string(kind), outcomeInvalidID).Inc()
		return nil, err
	}

	logger := observability.FromContext(ctx).WithFields(map[string]interface{}{
		"kind": string(kind),
		"id":   id,
	})
	logger.Debugf("retrieving %s id=%s", kind, id)

	data, err := s.backend.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.RetrievalsTotal.WithLabelValues(string(kind), outcomeFound).Inc()
		s.metrics.RetrievalDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
		s.metrics.PayloadSize.WithLabelValues(string(kind)).Observe(float64(len(data)))
		return data, nil
	case errors.Is(err, storage.ErrNotFound):
		s.metrics.RetrievalsTotal.WithLabelValues(string(kind), outcomeNotFound).Inc()
		return nil, err
	case errors.Is(err, storage.ErrUnavailable):
		s.metrics.RetrievalsTotal.WithLabelValues(string(kind), outcomeUnavailable).Inc()
		s.metrics.BackendErrorsTotal.WithLabelValues(string(kind), outcomeUnavailable).Inc()
		logger.WithError(err).Warn("backend unavailable")
		return nil, err
	default:
		s.metrics.RetrievalsTotal.WithLabelValues(string(kind), outcomeUnavailable).Inc()
		s.metrics.BackendErrorsTotal.WithLabelValues(string(kind), outcomeUnavailable).Inc()
		logger.WithError(err).Warn("unclassified backend error")
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
}

// Exists reports whether a payload is present for (kind, id) without reading
// it. Presence can change between this check and a Retrieve, so callers must
// still handle ErrNotFound.
func (s *Service) Exists(ctx context.Context, kind storage.Kind, id string) (bool, error) {
	key, err := storage.ResolveKey(kind, id)
	if err != nil {
		return false, err
	}
	ok, err := s.backend.Exists(ctx, key)
	if err != nil && !errors.Is(err, storage.ErrUnavailable) {
		return false, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return ok, err
}

// HealthCheck probes the underlying backend.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.backend.HealthCheck(ctx)
}
