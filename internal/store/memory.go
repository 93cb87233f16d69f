package store

import (
	"context"
	"sync"
)

type Memory[V any] struct {
	mutex   sync.RWMutex
	records map[string]V
}

func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{
		records: make(map[string]V),
	}
}

func (m *Memory[V]) Put(_ context.Context, key string, value V) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.records[key] = value
	return nil
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.records[key]
	return value, ok, nil
}

func (m *Memory[V]) Take(_ context.Context, key string) (V, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	value, ok := m.records[key]
	if ok {
		delete(m.records, key)
	}
	return value, ok, nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.records, key)
	return nil
}

// Len returns the number of records currently held.
func (m *Memory[V]) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.records)
}
