package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuadrant = errors.New("invalid quadrant")
	ErrDuplicatePlayer = errors.New("duplicate player")
	ErrNoPlayers       = errors.New("at least one player is required")
	ErrTooManyPlayers  = errors.New("too many players")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidRoll     = errors.New("invalid roll")
	ErrInvalidTurn     = errors.New("invalid turn")
)

// Game owns the players of a single simulation and processes turns in order
type Game struct {
	players    []*Player
	byQuadrant map[Quadrant]*Player
	history    []TurnRecord
}

// NewGame creates one player per quadrant, in the given order
func NewGame(quadrants []Quadrant) (*Game, error) {
	if len(quadrants) == 0 {
		return nil, ErrNoPlayers
	}
	if len(quadrants) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyPlayers, len(quadrants), MaxPlayers)
	}

	g := &Game{
		players:    make([]*Player, 0, len(quadrants)),
		byQuadrant: make(map[Quadrant]*Player, len(quadrants)),
	}
	for _, q := range quadrants {
		if _, exists := g.byQuadrant[q]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, q)
		}
		p, err := NewPlayer(q)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, q)
		}
		g.players = append(g.players, p)
		g.byQuadrant[q] = p
	}
	return g, nil
}

// Player looks up a player by quadrant. The bool is false when the quadrant
// is not part of this game.
func (g *Game) Player(q Quadrant) (*Player, bool) {
	p, ok := g.byQuadrant[q]
	return p, ok
}

// Players returns the players in creation order
func (g *Game) Players() []*Player {
	return g.players
}

// History returns the records of every turn processed so far
func (g *Game) History() []TurnRecord {
	return g.history
}

// Positions returns the encoded token positions, two per player in creation order
func (g *Game) Positions() []string {
	out := make([]string, 0, len(g.players)*TokensPerPlayer)
	for _, p := range g.players {
		labels := p.Labels()
		out = append(out, labels[First], labels[Second])
	}
	return out
}

// Completed returns the quadrants whose tokens have all finished, in creation order
func (g *Game) Completed() []Quadrant {
	var out []Quadrant
	for _, p := range g.players {
		if p.Completed {
			out = append(out, p.Quadrant)
		}
	}
	return out
}

// ValidateTurn checks that the turn names a player in this game and a legal roll
func (g *Game) ValidateTurn(t Turn) error {
	if _, ok := g.byQuadrant[t.Player]; !ok {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, t.Player)
	}
	if t.Roll < MinRoll || t.Roll > MaxRoll {
		return fmt.Errorf("%w: %d", ErrInvalidRoll, t.Roll)
	}
	return nil
}

// PlayTurn resolves and applies a single turn
func (g *Game) PlayTurn(t Turn) (TurnRecord, error) {
	if err := g.ValidateTurn(t); err != nil {
		return TurnRecord{}, err
	}
	p := g.byQuadrant[t.Player]

	rec := TurnRecord{
		Index: len(g.history) + 1,
		Turn:  t,
	}

	if p.Completed {
		rec.Skipped = true
		rec.Board = g.Positions()
		g.history = append(g.history, rec)
		return rec, nil
	}

	rec.Choice = Decide(*p, t.Roll, g.snapshots(p))
	if rec.Choice.Moves() {
		outcome, err := g.MoveToken(p, rec.Choice.Token, t.Roll)
		if err != nil {
			return TurnRecord{}, err
		}
		rec.Move = &outcome
		rec.From = p.Label(outcome.From)
		rec.To = p.Label(outcome.To)
	}

	// A stacked pair travels together.
	if p.Stacked {
		p.Tokens[Second] = p.Tokens[First]
	}

	if p.allFinished() {
		p.Completed = true
		rec.Completed = true
	}

	rec.Board = g.Positions()
	g.history = append(g.history, rec)
	return rec, nil
}

// Play validates every turn up front and then applies them in order
func (g *Game) Play(turns []Turn) error {
	for i, t := range turns {
		if err := g.ValidateTurn(t); err != nil {
			return fmt.Errorf("turn %d: %w", i+1, err)
		}
	}
	for i, t := range turns {
		if _, err := g.PlayTurn(t); err != nil {
			return fmt.Errorf("turn %d: %w", i+1, err)
		}
	}
	return nil
}

// snapshots copies every opponent of p for the resolver
func (g *Game) snapshots(p *Player) []Player {
	out := make([]Player, 0, len(g.players)-1)
	for _, opp := range g.players {
		if opp != p {
			out = append(out, *opp)
		}
	}
	return out
}

// PlayGame builds a game from the player labels, plays every turn and
// returns the final encoded positions.
func PlayGame(players []string, turns []Turn) ([]string, error) {
	quadrants, err := ParseQuadrants(players)
	if err != nil {
		return nil, err
	}
	g, err := NewGame(quadrants)
	if err != nil {
		return nil, err
	}
	if err := g.Play(turns); err != nil {
		return nil, err
	}
	return g.Positions(), nil
}
