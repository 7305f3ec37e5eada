package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/bastion/internal/core"
	"github.com/vovakirdan/bastion/internal/game"
	"github.com/vovakirdan/bastion/internal/platform/tui"
	"github.com/vovakirdan/bastion/internal/storage"
)

var (
	flagName     string
	flagLogPath  string
	flagLogLevel string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Defend the castle in this terminal",
	Long: `Start the game for a character profile. Level and experience carry
over between matches; one match per profile can be saved and continued.

Controls:
  WASD/Arrows  - Move
  Space        - Attack
  E            - Build an arrow tower where you stand
  F            - Summon an elf warrior
  Tab          - Select the next tower
  U / R        - Upgrade / repair the selected tower
  P/Esc        - Pause (resume, save & quit, quit without saving)
  ?            - Toggle help
  Ctrl+C       - Quit

Difficulty options:
  easy   - Smaller, weaker waves
  normal - The default curve
  hard   - Larger, stronger waves from the start
  fixed  - Waves do not scale

Logs are written to ~/.bastion/bastion.log since the game owns the terminal.

Examples:
  bastion play
  bastion play --name Legolas
  bastion play --difficulty hard
  bastion play --config ./my-balance.yaml --sprites ./my-sprites.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagName, "name", game.DefaultCharacterName, "Character profile name")
	playCmd.Flags().StringVar(&flagLogPath, "log", "~/.bastion/bastion.log", "Log file path")
	playCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// openLogFile creates a file logger; the terminal belongs to the game.
func openLogFile(path, level string) (*log.Logger, *os.File, error) {
	if path != "" && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(home, path[1:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "bastion",
		Level:           lvl,
	})
	return logger, f, nil
}

func runPlay(_ *cobra.Command, _ []string) {
	logger, logFile, err := openLogFile(flagLogPath, flagLogLevel)
	if err != nil {
		fail("cannot open log file: %v", err)
	}
	defer logFile.Close()

	bal, err := loadBalance()
	if err != nil {
		fail("%v", err)
	}
	sprites, err := loadSprites(logger)
	if err != nil {
		fail("%v", err)
	}

	// Get terminal size for the first frame
	rt := core.DefaultConfig()
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		rt.ScreenW = w
		rt.ScreenH = h
	}
	if flagFPS > 0 {
		rt.TickRate = flagFPS
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("could not open database: %v", err)
	}

	logger.Info("starting", "profile", flagName, "db", flagDBPath, "difficulty", flagDifficulty)
	runErr := tui.Run(tui.Options{
		Balance: bal,
		Sprites: sprites,
		Store:   store,
		Profile: flagName,
		Runtime: rt,
		Logger:  logger,
	})

	// Close store before potential exit
	store.Close()

	if runErr != nil {
		logger.Error("game crashed", "error", runErr)
		fail("running game: %v", runErr)
	}
}
