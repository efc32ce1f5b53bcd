package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend is a map-backed Backend used in tests and as a stand-in for
// the object-store backends. It records how many calls it has received so
// tests can verify that invalid identifiers never reach the backend.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	failErr error
	calls   int
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string][]byte)}
}

// Put stores a payload at key. Test setup only; the serving path never writes.
func (b *MemoryBackend) Put(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = append([]byte(nil), data...)
}

// Delete removes the object at key.
func (b *MemoryBackend) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
}

// FailWith makes every subsequent call return err. Passing nil restores
// normal behavior.
func (b *MemoryBackend) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failErr = err
}

// Calls returns how many Get/Exists/HealthCheck calls the backend has served.
func (b *MemoryBackend) Calls() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.calls
}

// Get returns a copy of the stored payload so callers can never mutate the
// backend's view of an object.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failErr != nil {
		return nil, b.failErr
	}
	data, ok := b.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

// Exists reports object presence.
func (b *MemoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failErr != nil {
		return false, b.failErr
	}
	_, ok := b.objects[key]
	return ok, nil
}

// HealthCheck reports the injected failure, if any.
func (b *MemoryBackend) HealthCheck(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.failErr
}
