package engine

import "strconv"

// PositionKind is the variant tag of a Position
type PositionKind uint8

const (
	KindHome PositionKind = iota
	KindReady
	KindTrack
	KindStretch
	KindFinished
)

func (k PositionKind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindReady:
		return "ready"
	case KindTrack:
		return "track"
	case KindStretch:
		return "stretch"
	case KindFinished:
		return "finished"
	}
	return "unknown"
}

// Position is where a token sits. Only track and stretch positions carry a
// value: the shared cell number or the offset inside the home stretch.
// The zero value is AtHome.
type Position struct {
	kind  PositionKind
	value int
}

// AtHome is a token that has not entered play
func AtHome() Position { return Position{kind: KindHome} }

// Ready is a token on its quadrant's entry cell
func Ready() Position { return Position{kind: KindReady} }

// OnTrack is a token on shared track cell 1..TrackCells
func OnTrack(cell int) Position { return Position{kind: KindTrack, value: cell} }

// InStretch is a token inside its quadrant's home stretch, offset 1..StretchLength-1
func InStretch(offset int) Position { return Position{kind: KindStretch, value: offset} }

// Finished is a token that reached the end of the home stretch
func Finished() Position { return Position{kind: KindFinished} }

// Kind returns the variant tag
func (p Position) Kind() PositionKind { return p.kind }

// Cell returns the shared track cell when the token is on the track
func (p Position) Cell() (int, bool) {
	if p.kind != KindTrack {
		return 0, false
	}
	return p.value, true
}

// Offset returns the home stretch offset when the token is in the stretch
func (p Position) Offset() (int, bool) {
	if p.kind != KindStretch {
		return 0, false
	}
	return p.value, true
}

// Label encodes the position the way final boards are reported. Stretch
// offsets are prefixed with the owning quadrant, e.g. "B3".
func (p Position) Label(q Quadrant) string {
	switch p.kind {
	case KindReady:
		return "R"
	case KindTrack:
		return strconv.Itoa(p.value)
	case KindStretch:
		return string(q) + strconv.Itoa(p.value)
	case KindFinished:
		return "E"
	}
	return "H"
}

func (p Position) String() string {
	switch p.kind {
	case KindTrack, KindStretch:
		return p.kind.String() + "(" + strconv.Itoa(p.value) + ")"
	}
	return p.kind.String()
}
