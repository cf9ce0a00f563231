package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/ludo/game/service"
)

var (
	ErrSimulationNotFound = fmt.Errorf("simulation %w", service.ErrNotFound)
	ErrNilSimulation      = errors.New("simulation is nil")
)

// Manager is an in-memory service.SimulationStore
type Manager struct {
	simulations map[string]*service.Simulation
	ttl         time.Duration
	now         func() time.Time
	persistence Persistence
	mu          sync.RWMutex
}

// NewManager creates a store whose entries expire after ttl without access.
// A zero ttl keeps entries until they are deleted.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		simulations: make(map[string]*service.Simulation),
		ttl:         ttl,
		now:         time.Now,
	}
}

// NewManagerWithPersistence creates a store that mirrors every change to p
func NewManagerWithPersistence(ttl time.Duration, p Persistence) *Manager {
	m := NewManager(ttl)
	m.persistence = p
	return m
}

// Create assigns a new ID to sim and stores a copy of it
func (m *Manager) Create(sim *service.Simulation) (*service.Simulation, error) {
	if sim == nil {
		return nil, ErrNilSimulation
	}

	stored := *sim
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now()
	}
	if stored.LastAccessedAt.IsZero() {
		stored.LastAccessedAt = stored.CreatedAt
	}

	m.mu.Lock()
	m.simulations[stored.ID] = &stored
	m.mu.Unlock()

	m.persist(&stored)

	out := stored
	return &out, nil
}

// Get retrieves a copy of a simulation by ID (case-insensitive). Simulations
// missing from memory are loaded from persistence when it is configured.
func (m *Manager) Get(id string) (*service.Simulation, error) {
	key := strings.ToLower(id)

	m.mu.RLock()
	sim, exists := m.simulations[key]
	var out service.Simulation
	if exists {
		out = *sim
	}
	m.mu.RUnlock()

	if exists {
		return &out, nil
	}
	if m.persistence == nil || !m.persistence.Exists(key) {
		return nil, ErrSimulationNotFound
	}

	loaded, err := m.persistence.Load(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted simulation: %w", err)
	}

	m.mu.Lock()
	if current, ok := m.simulations[key]; ok {
		loaded = current
	} else {
		m.simulations[key] = loaded
	}
	out = *loaded
	m.mu.Unlock()

	return &out, nil
}

// List returns copies of all stored simulations
func (m *Manager) List() []*service.Simulation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Simulation, 0, len(m.simulations))
	for _, sim := range m.simulations {
		out := *sim
		result = append(result, &out)
	}
	return result
}

// Delete removes a simulation from memory and persistence
func (m *Manager) Delete(id string) error {
	key := strings.ToLower(id)

	m.mu.Lock()
	_, inMemory := m.simulations[key]
	delete(m.simulations, key)
	m.mu.Unlock()

	if m.persistence != nil && m.persistence.Exists(key) {
		if err := m.persistence.Delete(key); err != nil {
			return fmt.Errorf("failed to delete persisted simulation: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSimulationNotFound
	}
	return nil
}

// UpdateLastAccessed updates the last accessed time for a simulation
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	sim, exists := m.simulations[strings.ToLower(id)]
	if !exists {
		m.mu.Unlock()
		return ErrSimulationNotFound
	}
	sim.LastAccessedAt = m.now()
	snapshot := *sim
	m.mu.Unlock()

	m.persist(&snapshot)
	return nil
}

// CleanupExpired removes simulations that haven't been accessed in maxAge
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for id, sim := range m.simulations {
		if sim.LastAccessedAt.Before(cutoff) {
			delete(m.simulations, id)
			removed++
			if m.persistence != nil {
				if err := m.persistence.Delete(id); err != nil && !errors.Is(err, ErrSimulationNotFound) {
					log.Printf("Warning: Failed to delete expired simulation %s: %v", id, err)
				}
			}
		}
	}
	return removed
}

// LoadPersisted reads every persisted simulation into memory and returns how
// many were loaded. Unreadable files are skipped.
func (m *Manager) LoadPersisted() (int, error) {
	if m.persistence == nil {
		return 0, nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list persisted simulations: %w", err)
	}

	loaded := 0
	for _, id := range ids {
		sim, err := m.persistence.Load(id)
		if err != nil {
			log.Printf("Warning: Failed to load persisted simulation %s: %v", id, err)
			continue
		}

		m.mu.Lock()
		if _, exists := m.simulations[id]; !exists {
			m.simulations[id] = sim
			loaded++
		}
		m.mu.Unlock()
	}
	return loaded, nil
}

func (m *Manager) persist(sim *service.Simulation) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(sim); err != nil {
		log.Printf("Warning: Failed to persist simulation %s: %v", sim.ID, err)
	}
}

// RunCleanup expires old simulations every interval until ctx is done.
// It returns immediately when the store has no TTL.
func (m *Manager) RunCleanup(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.CleanupExpired(m.ttl); removed > 0 {
				log.Printf("Expired %d simulations", removed)
			}
		}
	}
}

// Count returns the number of stored simulations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.simulations)
}
