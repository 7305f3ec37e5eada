package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bastion/internal/game"
	"github.com/vovakirdan/bastion/internal/storage"
)

var flagProfileName string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show character records",
	Long: `List every character, or show one character's record, recent
matches and saved match with --name.

Examples:
  bastion profile
  bastion profile --name Legolas`,
	Args: cobra.NoArgs,
	Run:  runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&flagProfileName, "name", "", "Character profile name")
}

func runProfile(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening database: %v", err)
	}
	defer store.Close()

	if flagProfileName == "" {
		listProfiles(store)
		return
	}
	showProfile(store, flagProfileName)
}

func listProfiles(store *storage.Store) {
	profiles, err := store.Progressions()
	if err != nil {
		fail("%v", err)
	}
	if len(profiles) == 0 {
		fmt.Println("No characters yet. Play 'bastion play --name <name>' to create one.")
		return
	}
	fmt.Printf("  %-16s  %-5s  %-8s  %-7s  %s\n", "Name", "Level", "Exp", "Matches", "Last played")
	fmt.Printf("  %-16s  %-5s  %-8s  %-7s  %s\n", "----", "-----", "---", "-------", "-----------")
	for _, p := range profiles {
		fmt.Printf("  %-16s  %-5d  %-8d  %-7d  %s\n", p.Name, p.Level, p.TotalExp, p.GamesPlayed,
			p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func showProfile(store *storage.Store, name string) {
	p, err := store.LoadProgression(name)
	if err != nil {
		fail("%v", err)
	}
	stats, err := store.Stats(name)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("%s, level %d\n\n", p.Name, p.Level)
	fmt.Printf("  Experience       %d (total %d)\n", p.Exp, p.TotalExp)
	fmt.Printf("  Matches played   %d\n", p.GamesPlayed)
	fmt.Printf("  Enemies slain    %d\n", p.EnemiesKilled)
	fmt.Printf("  Waves cleared    %d\n", p.WavesCompleted)
	fmt.Printf("  Towers built     %d\n", p.TowersBuilt)
	fmt.Printf("  Best score       %d (wave %d)\n", stats.HighScore, stats.BestWave)
	if stats.Sessions > 0 {
		fmt.Printf("  Average score    %.0f over %d matches\n", stats.AvgScore, stats.Sessions)
	}

	info, err := store.SaveInfo(name)
	switch {
	case err == nil:
		fmt.Printf("\nSaved match: wave %d, score %d, essence %d, castle %d (saved %s)\n",
			info.Wave, info.Score, info.Essence, info.CastleHealth, info.SavedAt.Local().Format("2006-01-02 15:04"))
	case errors.Is(err, game.ErrNoSnapshot):
		fmt.Println("\nNo saved match.")
	default:
		fail("%v", err)
	}

	sessions, err := store.Sessions(name, 5)
	if err != nil {
		fail("%v", err)
	}
	if len(sessions) > 0 {
		fmt.Println("\nRecent matches:")
		for _, s := range sessions {
			fmt.Printf("  %s  %-9s  score %-6d  wave %-3d  kills %d\n",
				s.EndedAt.Local().Format("2006-01-02 15:04"), s.Outcome, s.Score, s.WaveReached, s.Kills)
		}
	}
}
