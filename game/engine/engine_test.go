package engine

import (
	"errors"
	"slices"
	"testing"
)

func turns(entries ...string) []Turn {
	out, err := ParseTurns(entries)
	if err != nil {
		panic(err)
	}
	return out
}

func TestPlayGame_OpeningSequence(t *testing.T) {
	board, err := PlayGame([]string{"A", "B"}, turns("A:6", "A:5", "B:6"))
	if err != nil {
		t.Fatalf("PlayGame failed: %v", err)
	}

	want := []string{"5", "H", "R", "H"}
	if !slices.Equal(board, want) {
		t.Errorf("Expected %v, got %v", want, board)
	}
}

func repeat(entry string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = entry
	}
	return out
}

func TestPlayGame_FinishSendsFinishedOpponentHome(t *testing.T) {
	var entries []string
	entries = append(entries, "B:6")
	entries = append(entries, repeat("B:5", 11)...)
	entries = append(entries, "B:2", "A:6")
	entries = append(entries, repeat("A:5", 11)...)
	entries = append(entries, "A:2")

	board, err := PlayGame([]string{"A", "B"}, turns(entries...))
	if err != nil {
		t.Fatalf("PlayGame failed: %v", err)
	}

	want := []string{"E", "H", "H", "H"}
	if !slices.Equal(board, want) {
		t.Errorf("Expected %v, got %v", want, board)
	}
}

func TestPlayGame_CaptureTieMovesSecondToken(t *testing.T) {
	var entries []string
	entries = append(entries, "A:6", "A:6", "B:6")
	entries = append(entries, repeat("B:5", 8)...)
	entries = append(entries, "B:4", "A:2")

	board, err := PlayGame([]string{"A", "B"}, turns(entries...))
	if err != nil {
		t.Fatalf("PlayGame failed: %v", err)
	}

	want := []string{"R", "2", "H", "H"}
	if !slices.Equal(board, want) {
		t.Errorf("Expected %v, got %v", want, board)
	}
}

func TestGame_StackedPairCaptureTieStaysPut(t *testing.T) {
	g := newTestGame(t, QuadrantA, QuadrantB)
	a := mustPlayer(t, g, QuadrantA)
	b := mustPlayer(t, g, QuadrantB)

	a.Tokens = [2]Position{OnTrack(20), OnTrack(20)}
	a.Stacked = true
	b.Tokens[First] = OnTrack(24)

	rec, err := g.PlayTurn(Turn{Player: QuadrantA, Roll: 4})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Choice.Token != Second || rec.Choice.Reason != ReasonCapture {
		t.Errorf("Expected second token capture, got %s/%s", rec.Choice.Token, rec.Choice.Reason)
	}
	if !slices.Equal(rec.Board, []string{"20", "20", "H", "H"}) {
		t.Errorf("Unexpected board %v", rec.Board)
	}
}

func TestGame_OpeningSequenceTrace(t *testing.T) {
	g := newTestGame(t, QuadrantA, QuadrantB)
	if err := g.Play(turns("A:6", "A:5", "B:6")); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	history := g.History()
	if len(history) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(history))
	}

	expected := []struct {
		reason Reason
		from   string
		to     string
		board  []string
	}{
		{ReasonEnterFromHome, "H", "R", []string{"R", "H", "H", "H"}},
		{ReasonOnlyMover, "R", "5", []string{"5", "H", "H", "H"}},
		{ReasonEnterFromHome, "H", "R", []string{"5", "H", "R", "H"}},
	}

	for i, want := range expected {
		rec := history[i]
		if rec.Index != i+1 {
			t.Errorf("Turn %d: expected index %d, got %d", i+1, i+1, rec.Index)
		}
		if rec.Choice.Reason != want.reason {
			t.Errorf("Turn %d: expected reason %s, got %s", i+1, want.reason, rec.Choice.Reason)
		}
		if rec.From != want.from || rec.To != want.to {
			t.Errorf("Turn %d: expected %s->%s, got %s->%s", i+1, want.from, want.to, rec.From, rec.To)
		}
		if !slices.Equal(rec.Board, want.board) {
			t.Errorf("Turn %d: expected board %v, got %v", i+1, want.board, rec.Board)
		}
	}
}

func TestGame_SoloRunToCompletion(t *testing.T) {
	g := newTestGame(t, QuadrantA)
	sequence := turns(
		"A:6", "A:6", // both tokens enter
		"A:5", "A:5", // second catches up and the pair stacks on 5
		"A:6", "A:6", "A:6", "A:6", "A:6", "A:6", "A:6", // stacked pair reaches 47
		"A:6", // into the stretch, A3
		"A:4", // exact finish
		"A:6", // completed players are skipped
	)
	if err := g.Play(sequence); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	a := mustPlayer(t, g, QuadrantA)
	if !slices.Equal(g.Positions(), []string{"E", "E"}) {
		t.Errorf("Expected both tokens finished, got %v", g.Positions())
	}
	if !a.Completed {
		t.Error("Expected A to be completed")
	}
	if !slices.Equal(g.Completed(), []Quadrant{QuadrantA}) {
		t.Errorf("Expected completed [A], got %v", g.Completed())
	}

	history := g.History()
	if !slices.Equal(history[3].Board, []string{"5", "5"}) || !history[3].Move.Stacked {
		t.Errorf("Expected stacked pair on 5, got %v", history[3].Board)
	}
	if !slices.Equal(history[11].Board, []string{"A3", "A3"}) {
		t.Errorf("Expected pair in stretch at A3, got %v", history[11].Board)
	}
	finish := history[12]
	if finish.Choice.Reason != ReasonExactFinish || !finish.Completed {
		t.Errorf("Expected exact finish completing the player, got %+v", finish)
	}
	last := history[13]
	if !last.Skipped || last.Move != nil {
		t.Errorf("Expected final turn to be skipped, got %+v", last)
	}
}

func TestGame_CompletedPlayerSkipped(t *testing.T) {
	g := newTestGame(t, QuadrantA, QuadrantB)
	a := mustPlayer(t, g, QuadrantA)
	a.Tokens = [2]Position{Finished(), Finished()}
	a.Completed = true

	for roll := MinRoll; roll <= MaxRoll; roll++ {
		rec, err := g.PlayTurn(Turn{Player: QuadrantA, Roll: roll})
		if err != nil {
			t.Fatalf("roll %d: unexpected error: %v", roll, err)
		}
		if !rec.Skipped {
			t.Errorf("roll %d: expected turn to be skipped", roll)
		}
	}
	if !slices.Equal(g.Positions(), []string{"E", "E", "H", "H"}) {
		t.Errorf("Unexpected board %v", g.Positions())
	}
}

func TestGame_StretchRebound(t *testing.T) {
	g := newTestGame(t, QuadrantA)
	a := mustPlayer(t, g, QuadrantA)
	a.Tokens = [2]Position{InStretch(6), Finished()}

	rec, err := g.PlayTurn(Turn{Player: QuadrantA, Roll: 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.To != "A5" {
		t.Errorf("Expected rebound to A5, got %s", rec.To)
	}
	if a.Completed {
		t.Error("Player must not complete on a rebound")
	}
}

func TestGame_StackedPairMirrorsUntilCaptured(t *testing.T) {
	g := newTestGame(t, QuadrantA, QuadrantC)
	a := mustPlayer(t, g, QuadrantA)
	c := mustPlayer(t, g, QuadrantC)

	a.Tokens = [2]Position{OnTrack(10), OnTrack(7)}
	c.Tokens[First] = OnTrack(11)

	steps := []struct {
		turn  Turn
		board []string
	}{
		{Turn{QuadrantA, 3}, []string{"10", "10", "11", "H"}},
		{Turn{QuadrantA, 4}, []string{"14", "14", "11", "H"}},
		{Turn{QuadrantC, 3}, []string{"H", "H", "14", "H"}},
	}

	for i, step := range steps {
		rec, err := g.PlayTurn(step.turn)
		if err != nil {
			t.Fatalf("Turn %d: unexpected error: %v", i+1, err)
		}
		if !slices.Equal(rec.Board, step.board) {
			t.Errorf("Turn %d: expected %v, got %v", i+1, step.board, rec.Board)
		}
	}

	if a.Stacked {
		t.Error("Capture should break the stacked pair")
	}
}

func TestNewGame_Errors(t *testing.T) {
	tests := []struct {
		name      string
		quadrants []Quadrant
		want      error
	}{
		{"no players", nil, ErrNoPlayers},
		{"duplicate", []Quadrant{QuadrantA, QuadrantA}, ErrDuplicatePlayer},
		{"too many", []Quadrant{QuadrantA, QuadrantB, QuadrantC, QuadrantD, QuadrantA}, ErrTooManyPlayers},
		{"unknown quadrant", []Quadrant{"Z"}, ErrInvalidQuadrant},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewGame(test.quadrants); !errors.Is(err, test.want) {
				t.Errorf("Expected %v, got %v", test.want, err)
			}
		})
	}
}

func TestGame_PlayerLookup(t *testing.T) {
	g := newTestGame(t, QuadrantB, QuadrantD)

	if p, ok := g.Player(QuadrantD); !ok || p.Quadrant != QuadrantD {
		t.Errorf("Expected to find D, got %v %v", p, ok)
	}
	if p, ok := g.Player(QuadrantA); ok || p != nil {
		t.Errorf("Expected A to be missing, got %v", p)
	}
	if len(g.Players()) != 2 || g.Players()[0].Quadrant != QuadrantB {
		t.Error("Players should keep creation order")
	}
}

func TestGame_PlayValidatesBeforeApplying(t *testing.T) {
	g := newTestGame(t, QuadrantA, QuadrantB)

	err := g.Play([]Turn{{QuadrantA, 6}, {QuadrantC, 6}})
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("Expected ErrPlayerNotFound, got %v", err)
	}
	if len(g.History()) != 0 {
		t.Errorf("Expected no turns applied, got %d", len(g.History()))
	}

	if err := g.Play([]Turn{{QuadrantA, 7}}); !errors.Is(err, ErrInvalidRoll) {
		t.Errorf("Expected ErrInvalidRoll, got %v", err)
	}
	if _, err := g.PlayTurn(Turn{QuadrantB, 0}); !errors.Is(err, ErrInvalidRoll) {
		t.Errorf("Expected ErrInvalidRoll, got %v", err)
	}
}

func TestPlayGame_Errors(t *testing.T) {
	if _, err := PlayGame([]string{"A", "Q"}, nil); !errors.Is(err, ErrInvalidQuadrant) {
		t.Errorf("Expected ErrInvalidQuadrant, got %v", err)
	}
	if _, err := PlayGame([]string{"A"}, []Turn{{QuadrantB, 6}}); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Expected ErrPlayerNotFound, got %v", err)
	}
}

func TestPlayGame_NoTurns(t *testing.T) {
	board, err := PlayGame([]string{"C", "A", "D"}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !slices.Equal(board, []string{"H", "H", "H", "H", "H", "H"}) {
		t.Errorf("Unexpected board %v", board)
	}
}
