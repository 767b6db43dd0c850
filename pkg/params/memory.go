package params

import (
	"sort"
	"sync"
)

// MemoryBackend is an in-memory Backend intended for tests and examples.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend returns a backend seeded with initial.
func NewMemoryBackend(initial map[string]string) *MemoryBackend {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryBackend{values: values}
}

func (b *MemoryBackend) Get(key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	b.mu.RLock()
	value, ok := b.values[key]
	b.mu.RUnlock()
	return value, ok, nil
}

func (b *MemoryBackend) Put(key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	if b.values == nil {
		b.values = map[string]string{}
	}
	b.values[key] = value
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.values, key)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Keys() ([]string, error) {
	b.mu.RLock()
	keys := make([]string, 0, len(b.values))
	for key := range b.values {
		keys = append(keys, key)
	}
	b.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}
