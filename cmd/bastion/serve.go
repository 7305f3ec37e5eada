package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/bastion/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bastion SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection plays its own match. The SSH user name is the
character profile, so "ssh legolas@host" continues Legolas's save. A
profile can only be played from one connection at a time. Scores are
stored per-server (all users share the same leaderboard).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.bastion/host_key

Examples:
  bastion serve                           # Listen on :23234 with auto-generated key
  bastion serve --ssh :2222               # Listen on port 2222
  bastion serve --host-key ./my_host_key  # Use specific host key
  bastion serve --db ./bastion.db         # Use specific database

Users can connect with:
  ssh legolas@localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(cmd *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "bastion-ssh",
	})

	bal, err := loadBalance()
	if err != nil {
		fail("%v", err)
	}
	sprites, err := loadSprites(logger)
	if err != nil {
		fail("%v", err)
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Balance = bal
	cfg.Sprites = sprites
	// Remote sessions default to a lower frame rate than local play.
	if cmd.Flags().Changed("fps") {
		cfg.TickRate = flagFPS
	}

	server, err := tui.NewSSHServer(cfg, logger)
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting bastion SSH server on %s\n", server.Addr())
	fmt.Println("Connect with: ssh <name>@<host> -p <port>")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fail("server: %v", err)
	}
}
