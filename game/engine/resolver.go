package engine

import (
	"fmt"
	"strings"
)

// Reason names the priority rule that selected a token
type Reason int

const (
	ReasonNone Reason = iota
	ReasonEnterFromHome
	ReasonExactFinish
	ReasonCapture
	ReasonTrailing
	ReasonOnlyMover
)

var reasonNames = map[Reason]string{
	ReasonNone:          "none",
	ReasonEnterFromHome: "enter_from_home",
	ReasonExactFinish:   "exact_finish",
	ReasonCapture:       "capture",
	ReasonTrailing:      "trailing",
	ReasonOnlyMover:     "only_mover",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// MarshalText encodes the reason by name
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a reason name
func (r *Reason) UnmarshalText(text []byte) error {
	for reason, name := range reasonNames {
		if strings.EqualFold(name, string(text)) {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", text)
}

// Choice is the resolver's decision for a turn
type Choice struct {
	Token  TokenID `json:"token"`
	Reason Reason  `json:"reason"`
}

// Moves reports whether the choice moves a token at all
func (c Choice) Moves() bool {
	return c.Reason != ReasonNone
}

// Decide selects which of self's tokens moves for roll. It works on
// snapshots and never mutates anything.
func Decide(self Player, roll int, opponents []Player) Choice {
	firstSteps := self.TokenSteps(First)
	secondSteps := self.TokenSteps(Second)

	// Six brings a token out of home; the first token wins when both are home.
	if roll == EntryRoll {
		switch {
		case firstSteps == HomeStep:
			return Choice{Token: First, Reason: ReasonEnterFromHome}
		case secondSteps == HomeStep:
			return Choice{Token: Second, Reason: ReasonEnterFromHome}
		}
	}

	switch {
	case firstSteps > LastTrackStep && firstSteps+roll == FinishStep:
		return Choice{Token: First, Reason: ReasonExactFinish}
	case secondSteps > LastTrackStep && secondSteps+roll == FinishStep:
		return Choice{Token: Second, Reason: ReasonExactFinish}
	}

	firstActive, secondActive := self.Active(First), self.Active(Second)

	if firstActive && secondActive {
		firstCaptures := canCapture(self, firstSteps, roll, opponents)
		secondCaptures := canCapture(self, secondSteps, roll, opponents)
		switch {
		case firstCaptures && secondCaptures:
			// Equal step counts send the second token.
			if firstSteps < secondSteps {
				return Choice{Token: First, Reason: ReasonCapture}
			}
			return Choice{Token: Second, Reason: ReasonCapture}
		case firstCaptures:
			return Choice{Token: First, Reason: ReasonCapture}
		case secondCaptures:
			return Choice{Token: Second, Reason: ReasonCapture}
		}
		return Choice{Token: trailing(firstSteps, secondSteps), Reason: ReasonTrailing}
	}

	switch {
	case firstActive:
		return Choice{Token: First, Reason: ReasonOnlyMover}
	case secondActive:
		return Choice{Token: Second, Reason: ReasonOnlyMover}
	}
	return Choice{Reason: ReasonNone}
}

// trailing picks the token with fewer steps, the first one on a tie
func trailing(firstSteps, secondSteps int) TokenID {
	if secondSteps < firstSteps {
		return Second
	}
	return First
}

// canCapture reports whether a token with the given steps would land on an
// opposing token while staying on the shared track
func canCapture(self Player, steps, roll int, opponents []Player) bool {
	target := steps + roll
	if target > LastTrackStep {
		return false
	}
	pos := self.PositionAt(target)
	if pos.kind != KindTrack {
		return false
	}
	for _, opp := range opponents {
		if opp.Quadrant == self.Quadrant {
			continue
		}
		if opp.Tokens[First] == pos || opp.Tokens[Second] == pos {
			return true
		}
	}
	return false
}
