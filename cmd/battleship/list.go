package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-battleship/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all rule variants",
	Long:  `Shows every registered rule variant with its board size and fleet.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	variants := registry.List()

	if len(variants) == 0 {
		fmt.Println("No variants available.")
		return
	}

	fmt.Println("Available variants:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, v := range variants {
		maxIDLen = max(maxIDLen, len(v.ID))
	}

	// Print header
	fmt.Printf("  %-*s  %-5s  %-5s  %s\n", maxIDLen, "ID", "Board", "Ships", "Title")
	fmt.Printf("  %-*s  %-5s  %-5s  %s\n", maxIDLen, "--", "-----", "-----", "-----")

	for _, v := range variants {
		marker := " "
		if v.ID == cfg.Rules.Variant {
			marker = "*"
		}
		board := fmt.Sprintf("%dx%d", v.Rules.BoardSize, v.Rules.BoardSize)
		fmt.Printf("%s %-*s  %-5s  %-5d  %s\n", marker, maxIDLen, v.ID, board, len(v.Rules.Fleet), v.Title)
	}

	fmt.Println()
	fmt.Println("* default from config")
	fmt.Println("Run 'battleship play <id>' to play a variant.")
}
