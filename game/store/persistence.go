package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/ludo/game/service"
)

// Persistence mirrors stored simulations outside of memory
type Persistence interface {
	Save(sim *service.Simulation) error
	Load(id string) (*service.Simulation, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// FilePersistence keeps one JSON result file per simulation in a directory
type FilePersistence struct {
	dir string
}

// NewFilePersistence creates dir if needed
func NewFilePersistence(dir string) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &FilePersistence{dir: dir}, nil
}

// Save writes sim to <id>.json. The turn trace is not written; a reloaded
// simulation carries its final positions and stats only.
func (fp *FilePersistence) Save(sim *service.Simulation) error {
	if sim == nil {
		return ErrNilSimulation
	}
	path, err := fp.path(sim.ID)
	if err != nil {
		return err
	}

	record := *sim
	record.History = nil

	data, err := json.MarshalIndent(&record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal simulation: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write simulation file: %w", err)
	}
	return nil
}

// Load reads a simulation back from disk
func (fp *FilePersistence) Load(id string) (*service.Simulation, error) {
	path, err := fp.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSimulationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation file: %w", err)
	}

	var sim service.Simulation
	if err := json.Unmarshal(data, &sim); err != nil {
		return nil, fmt.Errorf("failed to unmarshal simulation %s: %w", id, err)
	}
	return &sim, nil
}

// Delete removes the simulation file
func (fp *FilePersistence) Delete(id string) error {
	path, err := fp.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrSimulationNotFound
		}
		return fmt.Errorf("failed to remove simulation file: %w", err)
	}
	return nil
}

// ListAll returns the IDs of every persisted simulation
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Exists reports whether a file exists for id
func (fp *FilePersistence) Exists(id string) bool {
	path, err := fp.path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// path maps an ID to its file. Only UUIDs are accepted so an ID can never
// point outside the directory.
func (fp *FilePersistence) path(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrSimulationNotFound
	}
	return filepath.Join(fp.dir, parsed.String()+".json"), nil
}
