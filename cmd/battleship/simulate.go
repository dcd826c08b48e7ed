package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-battleship/internal/game"
	"github.com/vovakirdan/tui-battleship/internal/logging"
	"github.com/vovakirdan/tui-battleship/internal/multiplayer"
	"github.com/vovakirdan/tui-battleship/internal/registry"
	"github.com/vovakirdan/tui-battleship/internal/storage"
)

var (
	flagGames int
	flagSave  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [variant]",
	Short: "Play computer-vs-computer games headless",
	Long: `Run a series of rounds between two computer players using random
deployment and random targeting, then print a summary.

With --save every round is recorded in the scores database as a
simulated match.

Examples:
  battleship simulate
  battleship simulate quick --games 1000
  battleship simulate --games 10 --seed 42 --save`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagGames, "games", 10, "Number of rounds to play")
	simulateCmd.Flags().BoolVar(&flagSave, "save", false, "Record rounds in the scores database")
}

func runSimulate(_ *cobra.Command, args []string) {
	variant := defaultVariant(args)
	if flagGames <= 0 {
		fmt.Fprintf(os.Stderr, "Error: --games must be positive, got %d\n", flagGames)
		os.Exit(1)
	}

	logger, err := logging.New("battleship-sim", cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rules, err := registry.Create(variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	names := [2]string{cfg.CPU.Name + " (A)", cfg.CPU.Name + " (B)"}
	match, err := game.New(game.Config{
		Rules:     rules,
		Names:     names,
		Automated: [2]bool{true, true},
		Seed:      flagSeed,
		Logger:    logger.WithPrefix("match"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating match: %v\n", err)
		os.Exit(1)
	}

	var store *storage.Store
	if flagSave {
		store = openStore()
	}

	started := time.Now()
	sum, err := simulateRounds(match, store, variant, flagGames, logger)
	if store != nil {
		store.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Simulation - %s\n", registry.Title(variant))
	fmt.Println()
	fmt.Printf("  Rounds:        %d (%s)\n", flagGames, time.Since(started).Round(time.Millisecond))
	for seat := range 2 {
		p := match.Player(seat)
		fmt.Printf("  %-14s %d wins (%.1f%%)\n", p.Name()+":", p.Wins(), 100*float64(p.Wins())/float64(flagGames))
	}
	fmt.Printf("  Shots/round:   %.1f avg, %d min, %d max\n", float64(sum.totalShots)/float64(flagGames), sum.fewest, sum.most)
	if store != nil {
		fmt.Printf("  Saved as match %s\n", sum.matchID)
	}
}

// simSummary aggregates shot counts over a simulation.
type simSummary struct {
	matchID    string
	totalShots int
	fewest     int
	most       int
}

// simulateRounds plays rounds automated rounds of match, recording each in
// store when it is non-nil. The store is left open for the caller.
func simulateRounds(match *game.Match, store *storage.Store, variant string, rounds int, logger *log.Logger) (simSummary, error) {
	sum := simSummary{matchID: string(multiplayer.NewMatchID())}

	for i := range rounds {
		if i > 0 {
			if err := match.Rematch(); err != nil {
				return sum, fmt.Errorf("starting round %d: %w", i+1, err)
			}
		}
		roundStart := time.Now()
		shot, shots, err := match.PlayOut()
		if err != nil {
			return sum, fmt.Errorf("round %d: %w", i+1, err)
		}
		winner := match.Player(shot.Seat).Name()
		logger.Debug("round finished", "round", match.Round(), "winner", winner, "shots", shots)

		sum.totalShots += shots
		if i == 0 || shots < sum.fewest {
			sum.fewest = shots
		}
		sum.most = max(sum.most, shots)

		if store != nil {
			s1, s2 := match.Stats(game.SeatOne), match.Stats(game.SeatTwo)
			//nolint:errcheck // Best-effort save, the simulation continues regardless
			store.SaveMatch(storage.MatchRecord{
				MatchID:   sum.matchID,
				Variant:   variant,
				Mode:      storage.ModeSimulated,
				Round:     match.Round(),
				Player1:   match.Player(game.SeatOne).Name(),
				Player2:   match.Player(game.SeatTwo).Name(),
				Winner:    winner,
				EndReason: "completed",
				Shots1:    s1.Shots,
				Hits1:     s1.Hits,
				Shots2:    s2.Shots,
				Hits2:     s2.Hits,
				Duration:  int(time.Since(roundStart) / time.Second),
			})
		}
	}
	return sum, nil
}
