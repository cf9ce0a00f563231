package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/ludo/game/engine"
	"github.com/wricardo/mcp-training/ludo/game/service"
)

var (
	ErrScenarioNotFound = fmt.Errorf("scenario %w", service.ErrNotFound)
	ErrInvalidScenario  = errors.New("invalid scenario")
	ErrInvalidName      = fmt.Errorf("%w: invalid scenario name", service.ErrInvalidRequest)
)

const extension = ".json"

// Manager handles scenario loading and caching
type Manager struct {
	dir       string
	scenarios map[string]*engine.Scenario
	mu        sync.RWMutex
}

// NewManager creates a scenario manager backed by dir
func NewManager(dir string) (*Manager, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario directory does not exist: %s", dir)
		}
		return nil, fmt.Errorf("failed to open scenario directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario path is not a directory: %s", dir)
	}

	return &Manager{
		dir:       dir,
		scenarios: make(map[string]*engine.Scenario),
	}, nil
}

// Dir returns the directory scenarios are read from
func (m *Manager) Dir() string {
	return m.dir
}

// LoadScenario loads a scenario by ID, with or without the .json extension
func (m *Manager) LoadScenario(name string) (*engine.Scenario, error) {
	id, err := scenarioID(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if s, exists := m.scenarios[id]; exists {
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, exists := m.scenarios[id]; exists {
		return s, nil
	}

	data, err := os.ReadFile(filepath.Join(m.dir, id+extension))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s engine.Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidScenario, id, err)
	}
	if err := engine.ValidateScenario(&s); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScenario, id, err)
	}

	m.scenarios[id] = &s
	return &s, nil
}

// ListScenarios returns information about every valid scenario in the directory
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	scenarios := make([]*service.ScenarioInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), extension) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), extension)
		s, err := m.LoadScenario(id)
		if err != nil {
			log.Printf("Skipping scenario %s: %v", entry.Name(), err)
			continue
		}

		scenarios = append(scenarios, &service.ScenarioInfo{
			Filename:    entry.Name(),
			ScenarioID:  id,
			Name:        s.Name,
			Description: s.Description,
			Players:     s.Players,
			TurnCount:   len(s.Turns),
			HasExpect:   len(s.Expect) > 0,
		})
	}

	return scenarios, nil
}

// SaveScenario validates a scenario and writes it to disk
func (m *Manager) SaveScenario(name string, s *engine.Scenario) error {
	id, err := scenarioID(name)
	if err != nil {
		return err
	}
	if err := engine.ValidateScenario(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.dir, id+extension), data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[id] = s
	m.mu.Unlock()

	return nil
}

// RefreshCache drops every cached scenario so the next load reads from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios = make(map[string]*engine.Scenario)
}

// scenarioID strips the extension and rejects names that would leave the directory
func scenarioID(name string) (string, error) {
	id := strings.TrimSuffix(strings.TrimSpace(name), extension)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return id, nil
}
