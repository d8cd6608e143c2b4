// Package storage provides the key-value backing stores used to persist
// application state between sessions.
package storage

import (
	"context"
	"sync"
	"time"
)

// KeyValue is the persistent key-value storage consumed by the partner store
// and the appearance controller. A missing key is reported as ok == false
// with a nil error.
type KeyValue interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
}

type getResult struct {
	value string
	ok    bool
	err   error
}

// Read performs GetItem with an upper bound on how long the caller waits.
// Expiry is returned as the context error.
func Read(ctx context.Context, kv KeyValue, key string, timeout time.Duration) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := make(chan getResult, 1)
	go func() {
		v, ok, err := kv.GetItem(ctx, key)
		res <- getResult{value: v, ok: ok, err: err}
	}()

	select {
	case r := <-res:
		return r.value, r.ok, r.err
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// Memory is an in-process KeyValue, used for tests and headless sessions.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}
