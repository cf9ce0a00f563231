package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

// simulationServiceImpl implements the SimulationService interface
type simulationServiceImpl struct {
	store     SimulationStore
	scenarios ScenarioManager
	now       func() time.Time
}

// NewSimulationService creates a new simulation service instance.
// scenarios may be nil, in which case the scenario operations fail with
// ErrScenariosDisabled.
func NewSimulationService(store SimulationStore, scenarios ScenarioManager) SimulationService {
	return &simulationServiceImpl{
		store:     store,
		scenarios: scenarios,
		now:       time.Now,
	}
}

// Simulate plays the requested turns on a fresh game and stores the result
func (s *simulationServiceImpl) Simulate(ctx context.Context, req SimulationRequest) (*Simulation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quadrants, err := engine.ParseQuadrants(req.Players)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return s.run(quadrants, req.Turns, nil)
}

// run plays turns for quadrants and stores the finished simulation
func (s *simulationServiceImpl) run(quadrants []engine.Quadrant, turns []engine.Turn, decorate func(*Simulation)) (*Simulation, error) {
	g, err := engine.NewGame(quadrants)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := g.Play(turns); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	history := g.History()
	now := s.now()
	sim := &Simulation{
		Players:        quadrants,
		Turns:          turns,
		Positions:      g.Positions(),
		Completed:      g.Completed(),
		History:        history,
		Stats:          engine.Summarize(quadrants, history),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if sim.Turns == nil {
		sim.Turns = []engine.Turn{}
	}
	if sim.Completed == nil {
		sim.Completed = []engine.Quadrant{}
	}
	if decorate != nil {
		decorate(sim)
	}

	stored, err := s.store.Create(sim)
	if err != nil {
		return nil, fmt.Errorf("failed to store simulation: %w", err)
	}
	return stored, nil
}

// GetSimulation returns a stored simulation
func (s *simulationServiceImpl) GetSimulation(ctx context.Context, id string) (*Simulation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sim, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateLastAccessed(id); err != nil {
		return nil, err
	}
	return sim, nil
}

// ListSimulations returns summaries of all stored simulations, oldest first
func (s *simulationServiceImpl) ListSimulations(ctx context.Context) ([]*SimulationSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sims := s.store.List()
	slices.SortStableFunc(sims, func(a, b *Simulation) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	result := make([]*SimulationSummary, 0, len(sims))
	for _, sim := range sims {
		result = append(result, sim.Summary())
	}
	return result, nil
}

// DeleteSimulation removes a stored simulation
func (s *simulationServiceImpl) DeleteSimulation(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Delete(id)
}

// ListScenarios returns all available scenarios
func (s *simulationServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.scenarios == nil {
		return nil, ErrScenariosDisabled
	}
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a specific scenario
func (s *simulationServiceImpl) LoadScenario(ctx context.Context, name string) (*engine.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.scenarios == nil {
		return nil, ErrScenariosDisabled
	}
	return s.scenarios.LoadScenario(name)
}

// SaveScenario validates and saves a scenario
func (s *simulationServiceImpl) SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.scenarios == nil {
		return ErrScenariosDisabled
	}
	if name == "" {
		return fmt.Errorf("%w: scenario name is required", ErrInvalidRequest)
	}
	if err := engine.ValidateScenario(scenario); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return s.scenarios.SaveScenario(name, scenario)
}

// RunScenario plays a named scenario and reports whether it met its expectation
func (s *simulationServiceImpl) RunScenario(ctx context.Context, name string) (*Simulation, error) {
	scenario, err := s.LoadScenario(ctx, name)
	if err != nil {
		return nil, err
	}

	return s.run(scenario.Players, scenario.Turns, func(sim *Simulation) {
		sim.Scenario = name
		if len(scenario.Expect) > 0 {
			matches := scenario.Matches(sim.Positions)
			sim.Expected = scenario.Expect
			sim.Matches = &matches
		}
	})
}

// Rules describes the board rules
func (s *simulationServiceImpl) Rules(ctx context.Context) engine.RulesInfo {
	return engine.Rules()
}
