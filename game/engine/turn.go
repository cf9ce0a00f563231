package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Turn is one die roll for one player
type Turn struct {
	Player Quadrant `json:"player"`
	Roll   int      `json:"roll"`
}

func (t Turn) String() string {
	return fmt.Sprintf("%s:%d", t.Player, t.Roll)
}

// ParseTurn parses the compact "A:6" form. "A=6" and "A6" are accepted too.
func ParseTurn(s string) (Turn, error) {
	s = strings.TrimSpace(s)
	var label, roll string
	if i := strings.IndexAny(s, ":="); i >= 0 {
		label, roll = s[:i], s[i+1:]
	} else if len(s) >= 2 {
		label, roll = s[:1], s[1:]
	} else {
		return Turn{}, fmt.Errorf("%w: %q", ErrInvalidTurn, s)
	}

	q, err := ParseQuadrant(label)
	if err != nil {
		return Turn{}, fmt.Errorf("%w: %q: %v", ErrInvalidTurn, s, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(roll))
	if err != nil {
		return Turn{}, fmt.Errorf("%w: %q: roll is not a number", ErrInvalidTurn, s)
	}
	if n < MinRoll || n > MaxRoll {
		return Turn{}, fmt.Errorf("%w: %q: %w", ErrInvalidTurn, s, ErrInvalidRoll)
	}
	return Turn{Player: q, Roll: n}, nil
}

// ParseTurns parses every entry with ParseTurn. Entries may hold several
// turns separated by commas or spaces.
func ParseTurns(entries []string) ([]Turn, error) {
	var out []Turn
	for _, entry := range entries {
		for _, field := range strings.FieldsFunc(entry, func(r rune) bool { return r == ',' || r == ' ' }) {
			t, err := ParseTurn(field)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// UnmarshalJSON accepts either {"player":"A","roll":6} or "A:6"
func (t *Turn) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseTurn(s)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	type rawTurn Turn
	var raw rawTurn
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q, err := ParseQuadrant(string(raw.Player))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTurn, err)
	}
	*t = Turn{Player: q, Roll: raw.Roll}
	return nil
}
