// battleship is a two-player naval battle game for the terminal.
//
// Usage:
//
//	battleship list               - List rule variants
//	battleship play [variant]     - Play against the computer
//	battleship menu               - Start at the main menu
//	battleship serve              - Start SSH server for online play
//	battleship scores [player]    - Show the leaderboard or a player's record
//	battleship simulate [variant] - Play computer-vs-computer games headless
//
// Global flags:
//
//	--config <path>    - Config file (default: search ~/.battleship, ./configs)
//	--seed <value>     - Set RNG seed for reproducible games
//	--db <path>        - Set database path (default: ~/.battleship/scores.db)
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-battleship/internal/config"
	"github.com/vovakirdan/tui-battleship/internal/registry"
	"github.com/vovakirdan/tui-battleship/internal/storage"

	// Register the built-in rule variants
	_ "github.com/vovakirdan/tui-battleship/internal/game"
)

// customVariant is the ID under which config-defined rules are registered.
const customVariant = "custom"

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string

	// cfg is loaded before every command runs.
	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "battleship",
	Short: "Battleship - sink the enemy fleet from your terminal",
	Long: `Battleship is a terminal naval battle game. Deploy your fleet, then
take turns firing at the enemy grid until one fleet is sunk.

Available commands:
  list      - Show all rule variants
  play      - Play against the computer
  menu      - Interactive main menu
  serve     - Start SSH server for online play
  scores    - View the leaderboard
  simulate  - Run computer-vs-computer games

Examples:
  battleship list
  battleship play quick
  battleship serve --ssh :2222
  battleship scores Tango
  battleship simulate --games 100`,
	PersistentPreRun: loadConfig,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(simulateCmd)
}

// loadConfig reads the config, applies global flag overrides and registers
// config-defined rules.
func loadConfig(_ *cobra.Command, _ []string) {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		loaded.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		loaded.Log.Level = flagLogLevel
	}
	if err := loaded.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	if loaded.Rules.Custom() {
		if !registry.Exists(customVariant) {
			rules := loaded.Rules
			registry.Register(customVariant, "Custom (from config)", rules.ToRules)
		}
		loaded.Rules.Variant = customVariant
	}
	cfg = loaded
}

// defaultVariant returns args[0] when given, else the configured variant.
// It exits when the variant is unknown.
func defaultVariant(args []string) string {
	variant := cfg.Rules.Variant
	if len(args) > 0 {
		variant = args[0]
	}
	if !registry.Exists(variant) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", variant)
		fmt.Fprintln(os.Stderr, "Run 'battleship list' to see available variants.")
		os.Exit(1)
	}
	return variant
}

// openStore opens the scores database, or returns nil with a warning.
func openStore() *storage.Store {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - the game still works
		return nil
	}
	return store
}
