package cart

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStorage keeps serialized cart state in process memory. Used when
// no redis is configured and as the storage double in tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{states: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (*State, error) {
	m.mu.RLock()
	data, ok := m.states[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrStateNotFound
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.states[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.states, key)
	m.mu.Unlock()
	return nil
}
