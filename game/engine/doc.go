// Package engine provides the Ludo rules engine.
//
// The engine package implements:
//   - Player state: two tokens per quadrant, each a Position variant
//     (AtHome, Ready, OnTrack, InStretch, Finished)
//   - Step counting derived purely from a position and the quadrant geometry
//   - Token movement, captures and stacking
//   - The turn priority resolver (Decide)
//   - Turn-by-turn orchestration and the PlayGame entry point
//   - Scenario loading and validation
//
// Core Types:
//
// Game owns the players and processes Turns in order. Decide is a pure
// function from (player snapshot, roll, opponent snapshots) to a Choice, and
// Game.MoveToken applies a move and its side effects. Every processed turn
// leaves a TurnRecord in the game's history.
//
// Usage:
//
//	board, err := engine.PlayGame(
//		[]string{"A", "B"},
//		[]engine.Turn{{Player: "A", Roll: 6}, {Player: "A", Roll: 5}, {Player: "B", Roll: 6}},
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	// board == []string{"5", "H", "R", "H"}
//
// Board:
//
// The shared track has 56 cells. Each quadrant enters the track at its start
// cell and leaves it after 50 steps for a private home stretch; offset 7 of
// the stretch is the finish. Positions are reported as "H" (home), "R"
// (ready), the track cell number, the quadrant letter plus stretch offset
// (e.g. "B3"), or "E" (finished).
package engine
