package service

import (
	"time"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

// SimulationRequest is the input of a single simulation
type SimulationRequest struct {
	Players []string      `json:"players"`
	Turns   []engine.Turn `json:"turns"`
}

// Simulation is a finished, stored run of the engine
type Simulation struct {
	ID             string               `json:"id"`
	Scenario       string               `json:"scenario,omitempty"`
	Players        []engine.Quadrant    `json:"players"`
	Turns          []engine.Turn        `json:"turns"`
	Positions      []string             `json:"positions"`
	Completed      []engine.Quadrant    `json:"completed"`
	History        []engine.TurnRecord  `json:"history"`
	Stats          []engine.PlayerStats `json:"stats"`
	Expected       []string             `json:"expected,omitempty"`
	Matches        *bool                `json:"matches,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
}

// Summary returns the compact listing form of the simulation
func (s *Simulation) Summary() *SimulationSummary {
	return &SimulationSummary{
		ID:             s.ID,
		Scenario:       s.Scenario,
		Players:        s.Players,
		Positions:      s.Positions,
		Completed:      s.Completed,
		TurnsPlayed:    len(s.Turns),
		Matches:        s.Matches,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
	}
}

// SimulationSummary is a simulation without its trace
type SimulationSummary struct {
	ID             string            `json:"id"`
	Scenario       string            `json:"scenario,omitempty"`
	Players        []engine.Quadrant `json:"players"`
	Positions      []string          `json:"positions"`
	Completed      []engine.Quadrant `json:"completed"`
	TurnsPlayed    int               `json:"turns_played"`
	Matches        *bool             `json:"matches,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
}

// ScenarioInfo provides information about a scenario file
type ScenarioInfo struct {
	Filename    string            `json:"filename"`
	ScenarioID  string            `json:"scenario_id"` // filename without extension, used in URLs
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Players     []engine.Quadrant `json:"players"`
	TurnCount   int               `json:"turn_count"`
	HasExpect   bool              `json:"has_expect"`
}
