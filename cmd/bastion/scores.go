package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/bastion/internal/platform/tui"
	"github.com/vovakirdan/bastion/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresPlain bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the best scores across all profiles.

In a terminal this opens the interactive scoreboard; with --plain or when
output is redirected the top scores are printed as text.

Examples:
  bastion scores
  bastion scores --plain --limit 20
  bastion scores --clear`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to print")
	scoresCmd.Flags().BoolVar(&flagScoresPlain, "plain", false, "Print scores as text")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all recorded scores")
}

func runScores(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening database: %v", err)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearScores(); err != nil {
			fail("%v", err)
		}
		fmt.Println("Scores cleared.")
		return
	}

	fd := int(os.Stdout.Fd())
	if !flagScoresPlain && term.IsTerminal(fd) {
		width, height, err := term.GetSize(fd)
		if err != nil {
			width, height = 80, 24
		}
		if err := tui.RunScoreboard(store, "", width, height); err != nil {
			fail("%v", err)
		}
		return
	}

	scores, err := store.TopScores(flagScoresLimit)
	if err != nil {
		fail("retrieving scores: %v", err)
	}

	fmt.Println("High Scores")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'bastion play' to set the first high score!")
		return
	}

	fmt.Printf("  %-4s  %-16s  %-8s  %-4s  %s\n", "Rank", "Profile", "Score", "Wave", "Date")
	fmt.Printf("  %-4s  %-16s  %-8s  %-4s  %s\n", "----", "-------", "-----", "----", "----")
	for i, entry := range scores {
		dateStr := entry.CreatedAt.Local().Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-16s  %-8d  %-4d  %s\n", i+1, entry.Profile, entry.Score, entry.Wave, dateStr)
	}
}
