package engine

import "fmt"

// MoveToken advances one of p's tokens by steps and resolves captures and
// stacking. p must belong to the game.
func (g *Game) MoveToken(p *Player, token TokenID, steps int) (MoveOutcome, error) {
	if p == nil || g.byQuadrant[p.Quadrant] != p {
		return MoveOutcome{}, ErrPlayerNotFound
	}
	if !token.Valid() {
		return MoveOutcome{}, fmt.Errorf("%w: %d", ErrInvalidToken, int(token))
	}
	if steps < MinRoll || steps > MaxRoll {
		return MoveOutcome{}, fmt.Errorf("%w: %d", ErrInvalidRoll, steps)
	}

	current := p.Tokens[token]
	outcome := MoveOutcome{
		Player: p.Quadrant,
		Token:  token,
		From:   current,
		To:     current,
	}

	next, ok := p.advance(current, steps)
	if !ok {
		return outcome, nil
	}
	p.Tokens[token] = next
	outcome.To = next

	outcome.Captures = g.captureAt(p, next)

	if p.Tokens[First] == p.Tokens[Second] {
		if s := p.StepCount(p.Tokens[First]); s > ReadyStep && s < FinishStep {
			p.Stacked = true
		}
	}
	outcome.Stacked = p.Stacked

	return outcome, nil
}

// advance computes the position reached from current after steps. The bool
// is false when the token cannot move.
func (p *Player) advance(current Position, steps int) (Position, bool) {
	switch current.kind {
	case KindFinished:
		return current, false

	case KindHome:
		if steps != EntryRoll {
			return current, false
		}
		return Ready(), true

	case KindReady:
		return p.PositionAt(steps), true

	case KindStretch:
		offset := current.value + steps
		switch {
		case offset == StretchLength:
			return Finished(), true
		case offset > StretchLength:
			return InStretch(StretchLength - (offset - StretchLength)), true
		}
		return InStretch(offset), true
	}

	// On the shared track
	if total := p.StepCount(current) + steps; total > LastTrackStep {
		return p.PositionAt(total), true
	}
	cell := current.value
	if cell+steps > TrackCells {
		// Wraps past the last cell; stored as the raw overflow.
		return OnTrack(steps - (TrackCells - cell)), true
	}
	return OnTrack(cell + steps), true
}

// captureAt sends home every opposing token sitting on pos. The ready cell
// is a safe haven and each stretch belongs to one quadrant, so only track
// cells and the finish capture. A captured player's completed flag is left
// as it was.
func (g *Game) captureAt(mover *Player, pos Position) []Capture {
	switch pos.kind {
	case KindHome, KindReady, KindStretch:
		return nil
	}
	cell, _ := pos.Cell()

	var captures []Capture
	for _, opp := range g.players {
		if opp == mover {
			continue
		}
		for _, t := range []TokenID{First, Second} {
			if opp.Tokens[t] != pos {
				continue
			}
			opp.Tokens[t] = AtHome()
			opp.Stacked = false
			captures = append(captures, Capture{Player: opp.Quadrant, Token: t, Cell: cell})
		}
	}
	return captures
}
