package retrieval

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astronomy-commons/alertdb/pkg/observability"
	"github.com/astronomy-commons/alertdb/pkg/storage"
)

func newTestService(t *testing.T) (*Service, *storage.MemoryBackend) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewService(backend, logger, metrics), backend
}

func putPayload(t *testing.T, backend *storage.MemoryBackend, kind storage.Kind, id string, data []byte) {
	t.Helper()
	key, err := storage.ResolveKey(kind, id)
	require.NoError(t, err)
	backend.Put(key, data)
}

func TestRetrieveFound(t *testing.T) {
	svc, backend := newTestService(t)
	payload := []byte{0x00, 0x00, 0x00, 0x02, 0xbe}
	putPayload(t, backend, storage.KindAlert, "A1", payload)

	got, err := svc.Retrieve(context.Background(), storage.KindAlert, "A1")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRetrieveNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Retrieve(context.Background(), storage.KindAlert, "missing-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRetrieveInvalidIDSkipsBackend(t *testing.T) {
	svc, backend := newTestService(t)

	for _, id := range []string{"", "../../etc/passwd", "a/../b", "with space"} {
		_, err := svc.Retrieve(context.Background(), storage.KindAlert, id)
		assert.ErrorIs(t, err, storage.ErrInvalidID, "id %q", id)
	}

	// The backend must never have been touched.
	assert.Zero(t, backend.Calls())
}

func TestRetrievePassesThroughUnavailable(t *testing.T) {
	svc, backend := newTestService(t)
	backend.FailWith(storage.ErrUnavailable)

	_, err := svc.Retrieve(context.Background(), storage.KindSchema, "v1")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestRetrieveCoercesUnclassifiedErrors(t *testing.T) {
	svc, backend := newTestService(t)
	backend.FailWith(errors.New("connection reset by peer"))

	_, err := svc.Retrieve(context.Background(), storage.KindAlert, "A1")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestRetrieveIdempotent(t *testing.T) {
	svc, backend := newTestService(t)
	payload := []byte(`{"type":"record"}`)
	putPayload(t, backend, storage.KindSchema, "702", payload)

	for i := 0; i < 10; i++ {
		got, err := svc.Retrieve(context.Background(), storage.KindSchema, "702")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

func TestRetrieveConcurrentSameID(t *testing.T) {
	svc, backend := newTestService(t)
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	putPayload(t, backend, storage.KindAlert, "hot-alert", payload)

	const callers = 32
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Retrieve(context.Background(), storage.KindAlert, "hot-alert")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, payload, results[i], "caller %d saw a different payload", i)
	}
}

func TestExists(t *testing.T) {
	svc, backend := newTestService(t)
	putPayload(t, backend, storage.KindSchema, "v1", []byte("{}"))

	ok, err := svc.Exists(context.Background(), storage.KindSchema, "v1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(context.Background(), storage.KindSchema, "v2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Exists(context.Background(), storage.KindSchema, "../v1")
	assert.ErrorIs(t, err, storage.ErrInvalidID)
}
