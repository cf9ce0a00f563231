package engine

// Player holds a quadrant's fixed geometry and the state of its two tokens.
// Step counts are never stored; they are derived from the token positions.
type Player struct {
	Quadrant  Quadrant
	Geometry  Geometry
	Tokens    [TokensPerPlayer]Position
	Stacked   bool
	Completed bool
}

// NewPlayer creates a player with both tokens at home
func NewPlayer(q Quadrant) (*Player, error) {
	geo, ok := q.Geometry()
	if !ok {
		return nil, ErrInvalidQuadrant
	}
	return &Player{Quadrant: q, Geometry: geo}, nil
}

// StepCount derives the total progress of a token at pos:
// -1 at home, 0 ready, 1..50 on the track, 51..56 in the stretch, 57 finished.
func (p *Player) StepCount(pos Position) int {
	switch pos.kind {
	case KindReady:
		return ReadyStep
	case KindFinished:
		return FinishStep
	case KindStretch:
		return LastTrackStep + pos.value
	case KindTrack:
		if pos.value >= p.Geometry.Start {
			return pos.value - p.Geometry.Start + 1
		}
		return TrackCells - p.Geometry.Start + pos.value + 1
	}
	return HomeStep
}

// PositionAt converts a step count back into a board position
func (p *Player) PositionAt(step int) Position {
	switch {
	case step <= HomeStep:
		return AtHome()
	case step == ReadyStep:
		return Ready()
	case step >= FinishStep:
		return Finished()
	case step > LastTrackStep:
		return InStretch(step - LastTrackStep)
	}
	cell := p.Geometry.Start - 1 + step
	if cell > TrackCells {
		cell -= TrackCells
	}
	return OnTrack(cell)
}

// TokenSteps returns the step count of one of the player's tokens
func (p *Player) TokenSteps(t TokenID) int {
	if !t.Valid() {
		return HomeStep
	}
	return p.StepCount(p.Tokens[t])
}

// Active reports whether the token is in play and not yet finished
func (p *Player) Active(t TokenID) bool {
	s := p.TokenSteps(t)
	return s > HomeStep && s < FinishStep
}

// Label encodes pos for this player
func (p *Player) Label(pos Position) string {
	return pos.Label(p.Quadrant)
}

// Labels returns the encoded positions of both tokens, first then second
func (p *Player) Labels() [TokensPerPlayer]string {
	return [TokensPerPlayer]string{p.Label(p.Tokens[First]), p.Label(p.Tokens[Second])}
}

// allFinished reports whether both tokens reached the finish
func (p *Player) allFinished() bool {
	return p.TokenSteps(First) == FinishStep && p.TokenSteps(Second) == FinishStep
}
