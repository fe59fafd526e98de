package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Manager hands out one Store per buyer session, loading persisted state
// on first access.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	storage Storage
	logger  *zap.Logger
}

func NewManager(storage Storage, logger *zap.Logger) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		storage: storage,
		logger:  logger,
	}
}

// Get returns the session's cart store, creating and loading it if needed
func (m *Manager) Get(ctx context.Context, session string) *Store {
	m.mu.Lock()
	store, ok := m.stores[session]
	if !ok {
		store = NewStore(session, m.storage, m.logger)
		m.stores[session] = store
	}
	m.mu.Unlock()

	if !ok {
		store.Load(ctx)
	}
	return store
}

// Drop forgets the session's in-memory store. The persisted state is left
// alone; a later Get reloads it.
func (m *Manager) Drop(session string) {
	m.mu.Lock()
	delete(m.stores, session)
	m.mu.Unlock()
}
