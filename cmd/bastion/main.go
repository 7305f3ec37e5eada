// bastion is a terminal tower defense game.
//
// Usage:
//
//	bastion play              - Defend the castle in this terminal
//	bastion serve             - Start SSH server for remote play
//	bastion scores            - Show high scores
//	bastion profile           - Show character records
//	bastion defaults          - Print the built-in balance file
//
// Global flags:
//
//	--fps <rate>       - Set tick rate (default: 60)
//	--db <path>        - Set database path (default: ~/.bastion/bastion.db)
//	--config <path>    - Balance file (default: search ~/.bastion/configs, ./configs)
//	--difficulty <p>   - Difficulty preset: easy, normal, hard, fixed
//	--sprites <path>   - Glyph sheet overriding the built-in sprites
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/bastion/internal/assets"
	"github.com/vovakirdan/bastion/internal/config"
)

var (
	// Global flags
	flagFPS        int
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagSprites    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bastion",
	Short: "Bastion - hold the castle in your terminal",
	Long: `Bastion is a real-time tower defense game for the terminal.
Your character defends a castle against endless waves of orcs and
Uruk-hai, fighting in melee, summoning elven allies and raising arrow
towers paid for with essence.

Available commands:
  play      - Play in this terminal
  serve     - Start SSH server for remote play
  scores    - View high scores
  profile   - View character records
  defaults  - Print the built-in balance file

Examples:
  bastion play --name Legolas
  bastion play --difficulty hard
  bastion serve --ssh :2222
  bastion scores`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.bastion/bastion.db", "Path to bastion database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom balance YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagSprites, "sprites", "", "Path to custom glyph sheet YAML")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(defaultsCmd)
}

// loadBalance loads the balance file and applies the difficulty preset.
func loadBalance() (config.Balance, error) {
	bal, err := config.Load(flagConfig)
	if err != nil {
		return config.Balance{}, err
	}
	if flagDifficulty != "" {
		preset, err := config.ParsePreset(flagDifficulty)
		if err != nil {
			return config.Balance{}, err
		}
		config.ApplyPreset(&bal, preset)
	}
	return bal, nil
}

// loadSprites builds the sprite resolver from the built-in and custom sheets.
func loadSprites(logger *log.Logger) (*assets.Resolver, error) {
	return assets.Load(flagSprites, assets.WithLogger(logger))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
