package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-battleship/internal/config"
	"github.com/vovakirdan/tui-battleship/internal/core"
	"github.com/vovakirdan/tui-battleship/internal/platform/tui"
)

var (
	flagPace string
	flagName string
)

var playCmd = &cobra.Command{
	Use:   "play [variant]",
	Short: "Play against the computer",
	Long: `Start a game against the computer with the given rule variant
(default: the variant from the config).

Deploy controls:
  Arrows/WASD  - Move cursor
  R            - Rotate ship
  Enter/Space  - Place ship
  Tab          - Next ship
  X            - Withdraw ship
  F            - Auto-deploy fleet
  G            - Ready

Battle controls:
  Arrows/WASD  - Aim
  Enter/Space  - Fire
  N            - Rematch (after the round)
  Esc          - Back to menu
  Q/Ctrl+C     - Quit

Pace options:
  instant - The computer fires immediately
  normal  - Short think delay
  slow    - Long think delay

Examples:
  battleship play
  battleship play quick --pace instant
  battleship play classic --name Tango`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start at the main menu",
	Long: `Start battleship in interactive menu mode.

Use arrow keys or j/k to navigate, left/right to pick the rules and
Enter to select. After a game you return to the menu.

Examples:
  battleship menu
  battleship menu --db ./scores.db`,
	Args: cobra.NoArgs,
	Run:  runMenu,
}

func init() {
	for _, c := range []*cobra.Command{playCmd, menuCmd} {
		c.Flags().StringVar(&flagPace, "pace", "", "Computer pace: instant, normal, slow")
		c.Flags().StringVar(&flagName, "name", "", "Your player name (overrides config)")
	}
}

func runPlay(_ *cobra.Command, args []string) {
	runSession(defaultVariant(args), true)
}

func runMenu(_ *cobra.Command, _ []string) {
	runSession(defaultVariant(nil), false)
}

// runSession starts the local TUI, optionally straight into a game.
func runSession(variant string, startGame bool) {
	if flagPace != "" {
		pace, err := config.ParsePace(flagPace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		config.ApplyPace(&cfg, pace)
	}
	name := cfg.Player.Name
	if flagName != "" {
		name = flagName
	}

	// Get terminal size
	rc := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc = rc.Resized(w, h)
	}
	rc.Seed = flagSeed
	rc.CPUDelay = cfg.CPU.ThinkDelay

	store := openStore()

	runErr := tui.Run(tui.SessionOptions{
		Store:      store,
		Config:     rc,
		PlayerName: name,
		CPUName:    cfg.CPU.Name,
		Variant:    variant,
		StartGame:  startGame,
	})

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
