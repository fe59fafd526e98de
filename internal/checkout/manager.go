package checkout

import (
	"sync"

	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/cart"
)

// Manager hands out one orchestrator per buyer session. A completed
// orchestrator is replaced on next access so the buyer can start a new
// purchase.
type Manager struct {
	mu      sync.Mutex
	active  map[string]*Orchestrator
	gateway PaymentGateway
	orders  OrderWriter
	logger  *zap.Logger
}

func NewManager(gateway PaymentGateway, orders OrderWriter, logger *zap.Logger) *Manager {
	return &Manager{
		active:  make(map[string]*Orchestrator),
		gateway: gateway,
		orders:  orders,
		logger:  logger,
	}
}

// Get returns the session's checkout attempt, starting a fresh one if
// none is in flight.
func (m *Manager) Get(session string, cartStore *cart.Store) *Orchestrator {
	m.mu.Lock()
	defer m.mu.Unlock()

	orch, ok := m.active[session]
	if !ok || orch.State() == StateCompleted {
		orch = NewOrchestrator(cartStore, m.gateway, m.orders, m.logger)
		m.active[session] = orch
	}
	return orch
}

// Current returns the in-flight attempt without starting a new one
func (m *Manager) Current(session string) (*Orchestrator, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orch, ok := m.active[session]
	return orch, ok
}

// Drop abandons the session's checkout attempt
func (m *Manager) Drop(session string) {
	m.mu.Lock()
	delete(m.active, session)
	m.mu.Unlock()
}
