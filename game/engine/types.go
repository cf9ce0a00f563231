package engine

import (
	"fmt"
	"strings"
)

// Quadrant identifies a player's home corner on the board
type Quadrant string

const (
	QuadrantA Quadrant = "A"
	QuadrantB Quadrant = "B"
	QuadrantC Quadrant = "C"
	QuadrantD Quadrant = "D"
)

// Board constants
const (
	TrackCells      = 56 // shared track cells are numbered 1..TrackCells
	StretchLength   = 7  // offset StretchLength inside the home stretch is the finish
	LastTrackStep   = 50
	FinishStep      = 57
	ReadyStep       = 0
	HomeStep        = -1
	EntryRoll       = 6
	MinRoll         = 1
	MaxRoll         = 6
	MaxPlayers      = 4
	TokensPerPlayer = 2
)

// Geometry fixes where a quadrant's tokens enter the shared track and where
// they leave it for the home stretch
type Geometry struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var geometries = map[Quadrant]Geometry{
	QuadrantA: {Start: 1, End: 50},
	QuadrantB: {Start: 15, End: 8},
	QuadrantC: {Start: 29, End: 22},
	QuadrantD: {Start: 43, End: 36},
}

// Quadrants lists every quadrant in board order
func Quadrants() []Quadrant {
	return []Quadrant{QuadrantA, QuadrantB, QuadrantC, QuadrantD}
}

// Geometry returns the fixed start/end cells of the quadrant
func (q Quadrant) Geometry() (Geometry, bool) {
	g, ok := geometries[q]
	return g, ok
}

// Valid reports whether q is one of the four board quadrants
func (q Quadrant) Valid() bool {
	_, ok := geometries[q]
	return ok
}

// ParseQuadrant converts a user supplied label into a Quadrant
func ParseQuadrant(s string) (Quadrant, error) {
	q := Quadrant(strings.ToUpper(strings.TrimSpace(s)))
	if !q.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidQuadrant, s)
	}
	return q, nil
}

// ParseQuadrants parses a list of labels. Each entry may itself be a comma
// separated list, so both ["A","B"] and ["A,B"] are accepted.
func ParseQuadrants(labels []string) ([]Quadrant, error) {
	var out []Quadrant
	for _, label := range labels {
		for _, part := range strings.Split(label, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			q, err := ParseQuadrant(part)
			if err != nil {
				return nil, err
			}
			out = append(out, q)
		}
	}
	return out, nil
}

// TokenID addresses one of a player's two tokens
type TokenID int

const (
	First TokenID = iota
	Second
)

// Valid reports whether t addresses an existing token
func (t TokenID) Valid() bool {
	return t == First || t == Second
}

// Other returns the sibling token
func (t TokenID) Other() TokenID {
	if t == First {
		return Second
	}
	return First
}

func (t TokenID) String() string {
	switch t {
	case First:
		return "first"
	case Second:
		return "second"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// MarshalText encodes the token as "first" or "second"
func (t TokenID) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidToken, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts "first"/"second" and the short forms "p"/"q"
func (t *TokenID) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "first", "p", "0":
		*t = First
	case "second", "q", "1":
		*t = Second
	default:
		return fmt.Errorf("%w: %q", ErrInvalidToken, text)
	}
	return nil
}

// Capture records an opposing token sent home by a move
type Capture struct {
	Player Quadrant `json:"player"`
	Token  TokenID  `json:"token"`
	Cell   int      `json:"cell"`
}

// MoveOutcome describes the effect of a single token move
type MoveOutcome struct {
	Player   Quadrant  `json:"player"`
	Token    TokenID   `json:"token"`
	From     Position  `json:"-"`
	To       Position  `json:"-"`
	Captures []Capture `json:"captures,omitempty"`
	Stacked  bool      `json:"stacked,omitempty"`
}

// Moved reports whether the token changed position
func (m MoveOutcome) Moved() bool {
	return m.From != m.To
}

// TurnRecord is the trace of a single processed turn
type TurnRecord struct {
	Index     int          `json:"index"`
	Turn      Turn         `json:"turn"`
	Skipped   bool         `json:"skipped,omitempty"`
	Choice    Choice       `json:"choice"`
	Move      *MoveOutcome `json:"move,omitempty"`
	From      string       `json:"from,omitempty"`
	To        string       `json:"to,omitempty"`
	Completed bool         `json:"completed,omitempty"`
	Board     []string     `json:"board"`
}

// String renders the record as a single trace line
func (r TurnRecord) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3d. %-4s ", r.Index, r.Turn)

	switch {
	case r.Skipped:
		b.WriteString("skipped, player already completed")
	case !r.Choice.Moves():
		b.WriteString("no move")
	default:
		fmt.Fprintf(&b, "%s token %s -> %s (%s)", r.Choice.Token, r.From, r.To, r.Choice.Reason)
		if r.Move != nil {
			for _, c := range r.Move.Captures {
				fmt.Fprintf(&b, ", captures %s %s on %d", c.Player, c.Token, c.Cell)
			}
			if r.Move.Stacked {
				b.WriteString(", stacked")
			}
		}
	}

	if r.Completed {
		b.WriteString(", completed")
	}
	return b.String()
}

// FormatBoard groups encoded positions by player, e.g. "A: 5 H | B: R H"
func FormatBoard(players []Quadrant, positions []string) string {
	parts := make([]string, 0, len(players))
	for i, q := range players {
		lo, hi := i*TokensPerPlayer, (i+1)*TokensPerPlayer
		if hi > len(positions) {
			break
		}
		parts = append(parts, fmt.Sprintf("%s: %s", q, strings.Join(positions[lo:hi], " ")))
	}
	return strings.Join(parts, " | ")
}

// RulesInfo summarizes the fixed board rules
type RulesInfo struct {
	TrackCells    int                   `json:"track_cells"`
	StretchLength int                   `json:"stretch_length"`
	LastTrackStep int                   `json:"last_track_step"`
	FinishStep    int                   `json:"finish_step"`
	EntryRoll     int                   `json:"entry_roll"`
	MinRoll       int                   `json:"min_roll"`
	MaxRoll       int                   `json:"max_roll"`
	MaxPlayers    int                   `json:"max_players"`
	Geometry      map[Quadrant]Geometry `json:"geometry"`
	Priorities    []string              `json:"priorities"`
	Encodings     map[string]string     `json:"encodings"`
}

// Rules returns a description of the board rules
func Rules() RulesInfo {
	geo := make(map[Quadrant]Geometry, len(geometries))
	for q, g := range geometries {
		geo[q] = g
	}
	return RulesInfo{
		TrackCells:    TrackCells,
		StretchLength: StretchLength,
		LastTrackStep: LastTrackStep,
		FinishStep:    FinishStep,
		EntryRoll:     EntryRoll,
		MinRoll:       MinRoll,
		MaxRoll:       MaxRoll,
		MaxPlayers:    MaxPlayers,
		Geometry:      geo,
		Priorities: []string{
			ReasonEnterFromHome.String(),
			ReasonExactFinish.String(),
			ReasonCapture.String(),
			ReasonTrailing.String(),
			ReasonOnlyMover.String(),
		},
		Encodings: map[string]string{
			"H":  "at home",
			"R":  "ready on the entry cell",
			"N":  "shared track cell N (1-56)",
			"XN": "home stretch offset N for quadrant X",
			"E":  "finished",
		},
	}
}
