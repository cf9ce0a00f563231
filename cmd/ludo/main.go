// Command ludo plays Ludo turn sequences from the command line.
//
// Subcommands:
//   - play: run a sequence of turns given as flags or arguments
//   - run: play scenario files and check their expected boards
//   - validate: check scenario files without playing them
//   - analyze: per-player statistics for a scenario
//   - rules: print the board rules
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

const Version = "1.0.0"

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. All output goes to w.
func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "ludo",
		Usage:   "deterministic two-token Ludo simulator",
		Version: Version,
		Writer:  w,
		Commands: []*cli.Command{
			{
				Name:      "play",
				Usage:     "play a sequence of turns",
				ArgsUsage: "[PLAYER:ROLL...]",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "players",
						Aliases:  []string{"p"},
						Usage:    "participating quadrants in turn order, e.g. A,C",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "turns",
						Aliases: []string{"t"},
						Usage:   "turns as PLAYER:ROLL, e.g. A:6,C:3",
					},
					&cli.BoolFlag{Name: "trace", Usage: "print every turn"},
					&cli.BoolFlag{Name: "json", Usage: "print the result as JSON"},
				},
				Action: playAction,
			},
			{
				Name:      "run",
				Usage:     "play scenario files and compare against their expected boards",
				ArgsUsage: "FILE|DIR...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "trace", Usage: "print every turn"},
				},
				Action: runAction,
			},
			{
				Name:      "validate",
				Usage:     "validate scenario files",
				ArgsUsage: "[FILE|DIR...]",
				Action:    validateAction,
			},
			{
				Name:      "analyze",
				Usage:     "print per-player statistics for scenario files",
				ArgsUsage: "FILE|DIR...",
				Action:    analyzeAction,
			},
			{
				Name:  "rules",
				Usage: "print the board rules as JSON",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return writeJSON(cmd.Root().Writer, engine.Rules())
				},
			},
		},
	}
}
