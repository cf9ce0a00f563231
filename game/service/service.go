package service

import (
	"context"
	"errors"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

var (
	// ErrNotFound is wrapped by every lookup failure so transports can map it
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest wraps rule violations found in caller input
	ErrInvalidRequest = errors.New("invalid request")
	// ErrScenariosDisabled is returned when no scenario manager is configured
	ErrScenariosDisabled = errors.New("scenarios are not configured")
)

// SimulationService defines all simulation operations
type SimulationService interface {
	// Simulations
	Simulate(ctx context.Context, req SimulationRequest) (*Simulation, error)
	GetSimulation(ctx context.Context, id string) (*Simulation, error)
	ListSimulations(ctx context.Context) ([]*SimulationSummary, error)
	DeleteSimulation(ctx context.Context, id string) error

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, name string) (*engine.Scenario, error)
	SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error
	RunScenario(ctx context.Context, name string) (*Simulation, error)

	// Rules
	Rules(ctx context.Context) engine.RulesInfo
}

// SimulationStore defines simulation storage operations
type SimulationStore interface {
	// Create assigns an ID and stores the simulation
	Create(sim *Simulation) (*Simulation, error)
	Get(id string) (*Simulation, error)
	List() []*Simulation
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ScenarioManager handles scenario file loading and saving
type ScenarioManager interface {
	LoadScenario(name string) (*engine.Scenario, error)
	ListScenarios() ([]*ScenarioInfo, error)
	SaveScenario(name string, scenario *engine.Scenario) error
}
