package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-battleship/internal/storage"
)

var (
	flagLimit  int
	flagRecent bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [player]",
	Short: "Show the leaderboard or a player's record",
	Long: `Display the top players, or the record and recent rounds of one player.

Examples:
  battleship scores
  battleship scores --recent
  battleship scores Tango --limit 20`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of rows to show")
	scoresCmd.Flags().BoolVar(&flagRecent, "recent", false, "Show recent rounds instead of the leaderboard")
}

func runScores(_ *cobra.Command, args []string) {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case len(args) == 1:
		err = printPlayer(store, args[0])
	case flagRecent:
		err = printRecent(store)
	default:
		err = printLeaderboard(store)
	}
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}
}

func printLeaderboard(store *storage.Store) error {
	players, err := store.Leaderboard(flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("Leaderboard")
	fmt.Println()

	if len(players) == 0 {
		fmt.Println("No rounds recorded yet.")
		fmt.Println()
		fmt.Println("Play 'battleship play' to get on the board!")
		return nil
	}

	fmt.Printf("  %-4s  %-16s  %-5s  %-6s  %-5s  %s\n", "Rank", "Player", "Wins", "Losses", "Games", "Accuracy")
	fmt.Printf("  %-4s  %-16s  %-5s  %-6s  %-5s  %s\n", "----", "------", "----", "------", "-----", "--------")
	for i, p := range players {
		fmt.Printf("  %-4d  %-16s  %-5d  %-6d  %-5d  %.0f%%\n",
			i+1, p.Name, p.Wins, p.Losses, p.Games, p.Accuracy()*100)
	}
	return nil
}

func printPlayer(store *storage.Store, name string) error {
	rec, err := store.PlayerRecord(name)
	if err != nil {
		return err
	}

	fmt.Printf("Player - %s\n", rec.Name)
	fmt.Println()

	if rec.Games == 0 {
		fmt.Println("No rounds recorded yet.")
		return nil
	}

	fmt.Printf("  Games:     %d\n", rec.Games)
	fmt.Printf("  Wins:      %d\n", rec.Wins)
	fmt.Printf("  Losses:    %d\n", rec.Losses)
	fmt.Printf("  Accuracy:  %.1f%% (%d/%d)\n", rec.Accuracy()*100, rec.Hits, rec.Shots)
	fmt.Printf("  Last game: %s\n", rec.LastPlayed.Format("2006-01-02 15:04"))
	fmt.Println()

	matches, err := store.PlayerMatches(name, flagLimit)
	if err != nil {
		return err
	}
	printMatches(matches)
	return nil
}

func printRecent(store *storage.Store) error {
	matches, err := store.RecentMatches(flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("Recent rounds")
	fmt.Println()

	if len(matches) == 0 {
		fmt.Println("No rounds recorded yet.")
		return nil
	}
	printMatches(matches)
	return nil
}

func printMatches(matches []storage.MatchRecord) {
	fmt.Printf("  %-16s  %-8s  %-9s  %-28s  %s\n", "Date", "Rules", "Mode", "Players", "Result")
	fmt.Printf("  %-16s  %-8s  %-9s  %-28s  %s\n", "----", "-----", "----", "-------", "------")
	for _, m := range matches {
		result := m.Winner + " won"
		if m.Winner == "" {
			result = "no winner (" + m.EndReason + ")"
		}
		fmt.Printf("  %-16s  %-8s  %-9s  %-28s  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.Variant,
			m.Mode,
			m.Player1+" v "+m.Player2,
			result,
		)
	}
}
