package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// Scenario is a named, replayable game: the players, the rolls, and
// optionally the final board the rolls are expected to produce
type Scenario struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Players     []Quadrant `json:"players"`
	Turns       []Turn     `json:"turns"`
	Expect      []string   `json:"expect,omitempty"`
}

// ValidateScenario checks a scenario for correctness before it is played or saved
func ValidateScenario(s *Scenario) error {
	if s == nil {
		return fmt.Errorf("scenario validation: scenario is nil")
	}
	if s.Name == "" {
		return fmt.Errorf("scenario validation: name is required")
	}

	// NewGame applies the player count, quadrant and duplicate rules.
	g, err := NewGame(s.Players)
	if err != nil {
		return fmt.Errorf("scenario validation: players: %w", err)
	}

	for i, t := range s.Turns {
		if err := g.ValidateTurn(t); err != nil {
			return fmt.Errorf("scenario validation: turn %d (%s): %w", i+1, t, err)
		}
	}

	if len(s.Expect) > 0 && len(s.Expect) != len(s.Players)*TokensPerPlayer {
		return fmt.Errorf("scenario validation: expect must list %d positions, got %d",
			len(s.Players)*TokensPerPlayer, len(s.Expect))
	}

	return nil
}

// Play runs the scenario on a fresh game
func (s *Scenario) Play() (*Game, error) {
	if err := ValidateScenario(s); err != nil {
		return nil, err
	}
	g, err := NewGame(s.Players)
	if err != nil {
		return nil, err
	}
	if err := g.Play(s.Turns); err != nil {
		return nil, err
	}
	return g, nil
}

// Matches reports whether positions equal the expected board. A scenario
// without expectations matches anything.
func (s *Scenario) Matches(positions []string) bool {
	if len(s.Expect) == 0 {
		return true
	}
	return slices.Equal(s.Expect, positions)
}

// LoadScenarioFile reads and validates a scenario JSON file
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file '%s': %w", path, err)
	}

	var scenario Scenario
	if err := json.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file '%s': %w", path, err)
	}

	if err := ValidateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario '%s': %w", path, err)
	}

	return &scenario, nil
}
