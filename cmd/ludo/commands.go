package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

// playResult is the --json shape of a play
type playResult struct {
	Players   []engine.Quadrant    `json:"players"`
	Positions []string             `json:"positions"`
	Completed []engine.Quadrant    `json:"completed"`
	History   []engine.TurnRecord  `json:"history,omitempty"`
	Stats     []engine.PlayerStats `json:"stats"`
}

// turnEntries joins the --turns values and positional turns into a fresh slice
func turnEntries(flagged, positional []string) []string {
	return slices.Concat(flagged, positional)
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	players, err := engine.ParseQuadrants(cmd.StringSlice("players"))
	if err != nil {
		return err
	}
	turns, err := engine.ParseTurns(turnEntries(cmd.StringSlice("turns"), cmd.Args().Slice()))
	if err != nil {
		return err
	}

	g, err := engine.NewGame(players)
	if err != nil {
		return err
	}
	if err := g.Play(turns); err != nil {
		return err
	}

	if cmd.Bool("json") {
		result := playResult{
			Players:   players,
			Positions: g.Positions(),
			Completed: g.Completed(),
			Stats:     engine.Summarize(players, g.History()),
		}
		if cmd.Bool("trace") {
			result.History = g.History()
		}
		return writeJSON(w, result)
	}

	if cmd.Bool("trace") {
		printTrace(w, g.History())
	}
	fmt.Fprintln(w, strings.Join(g.Positions(), " "))
	return nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	files, err := scenarioFiles(cmd.Args().Slice(), false)
	if err != nil {
		return err
	}

	failed := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := filepath.Base(file)
		scenario, err := engine.LoadScenarioFile(file)
		if err != nil {
			fmt.Fprintf(w, "❌ %s: %v\n", name, err)
			failed++
			continue
		}
		g, err := scenario.Play()
		if err != nil {
			fmt.Fprintf(w, "❌ %s: %v\n", name, err)
			failed++
			continue
		}

		if cmd.Bool("trace") {
			fmt.Fprintf(w, "%s %s\n", strings.Repeat("=", 20), name)
			printTrace(w, g.History())
		}

		positions := g.Positions()
		switch {
		case len(scenario.Expect) == 0:
			fmt.Fprintf(w, "✅ %s: %s\n", name, engine.FormatBoard(scenario.Players, positions))
		case scenario.Matches(positions):
			fmt.Fprintf(w, "✅ %s: matches %s\n", name, engine.FormatBoard(scenario.Players, positions))
		default:
			fmt.Fprintf(w, "❌ %s: expected %s, got %s\n", name,
				engine.FormatBoard(scenario.Players, scenario.Expect),
				engine.FormatBoard(scenario.Players, positions))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(files))
	}
	return nil
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	files, err := scenarioFiles(cmd.Args().Slice(), true)
	if err != nil {
		return err
	}

	invalid := 0
	for _, file := range files {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), filepath.Base(file))

		scenario, err := engine.LoadScenarioFile(file)
		if err != nil {
			fmt.Fprintln(w, "❌ INVALID")
			fmt.Fprintln(w, "  ❌ "+err.Error())
			invalid++
			continue
		}

		fmt.Fprintln(w, "✅ VALID")
		fmt.Fprintf(w, "  Name: %s\n", scenario.Name)
		fmt.Fprintf(w, "  Players: %d, turns: %d\n", len(scenario.Players), len(scenario.Turns))
		if len(scenario.Expect) > 0 {
			fmt.Fprintf(w, "  Expects: %s\n", engine.FormatBoard(scenario.Players, scenario.Expect))
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if invalid > 0 {
		fmt.Fprintln(w, "❌ Some scenarios have errors")
		return fmt.Errorf("%d invalid scenarios", invalid)
	}
	fmt.Fprintln(w, "✅ All scenarios are valid!")
	return nil
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	files, err := scenarioFiles(cmd.Args().Slice(), false)
	if err != nil {
		return err
	}

	for _, file := range files {
		scenario, err := engine.LoadScenarioFile(file)
		if err != nil {
			return err
		}
		g, err := scenario.Play()
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(file))
		fmt.Fprintf(w, "Scenario: %s\n", scenario.Name)
		if scenario.Description != "" {
			fmt.Fprintf(w, "Description: %s\n", scenario.Description)
		}
		fmt.Fprintf(w, "Final board: %s\n\n", engine.FormatBoard(scenario.Players, g.Positions()))
		printStats(w, engine.Summarize(scenario.Players, g.History()))
	}
	return nil
}

func printTrace(w io.Writer, history []engine.TurnRecord) {
	for _, record := range history {
		fmt.Fprintln(w, record.String())
	}
}

func printStats(w io.Writer, stats []engine.PlayerStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tTURNS\tMOVES\tIDLE\tSKIPPED\tENTRIES\tCAPTURES\tLOST\tFINISHES\tCOMPLETED")
	for _, s := range stats {
		completed := "-"
		if s.Completed {
			completed = fmt.Sprintf("turn %d", s.CompletedAt)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			s.Player, s.Turns, s.Moves, s.Idle, s.Skipped,
			s.Entries, s.Captures, s.Lost, s.Finishes, completed)
	}
	tw.Flush()
}

// scenarioFiles expands directories into their *.json files. With no
// arguments it falls back to the scenarios directory when allowDefault is set.
func scenarioFiles(args []string, allowDefault bool) ([]string, error) {
	if len(args) == 0 {
		if !allowDefault {
			return nil, errors.New("at least one scenario file or directory is required")
		}
		args = []string{"scenarios"}
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access '%s': %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(arg, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, errors.New("no scenario files found")
	}
	return files, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
