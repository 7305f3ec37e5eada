package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
	"github.com/vovakirdan/bastion/internal/game"
	"github.com/vovakirdan/bastion/internal/storage"
)

// guestProfile is used when the SSH user name has nothing usable in it.
const guestProfile = "guest"

// SSHServerConfig configures the SSH host.
type SSHServerConfig struct {
	Address     string        // host:port, ":23234" by default
	HostKeyPath string        // generated on first start; empty means ~/.bastion/host_key
	DBPath      string        // shared by every session
	IdleTimeout time.Duration // idle connections are dropped after this
	TickRate    int           // frames per second of each session

	Balance config.Balance
	Sprites game.SpriteResolver
}

// DefaultSSHServerConfig returns the configuration `bastion serve` starts from.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.bastion/bastion.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    30,
		Balance:     config.DefaultBalance(),
	}
}

// SSHServer hosts Bastion over SSH. Each session runs an independent match
// against the shared store, and the SSH user name picks the profile. A
// profile can be played from one session at a time since it owns a single
// save slot.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger

	mu     sync.Mutex
	active map[string]string // profile -> remote address
}

// NewSSHServer opens the store and prepares the SSH server.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "bastion-ssh",
		})
	}

	hostKeyPath, err := resolveHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
		active: make(map[string]string),
	}

	// Middlewares run last to first: log, claim the profile, then play.
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.profileGuard,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// resolveHostKey returns the host key path and makes sure its directory exists.
func resolveHostKey(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, ".bastion", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("cannot create host key directory: %w", err)
	}
	return path, nil
}

// ProfileFor maps an SSH user name to a profile name: letters, digits, '-'
// and '_' are kept, at most 32 of them.
func ProfileFor(user string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(user) {
		if b.Len() >= 32 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return guestProfile
	}
	return b.String()
}

// claim reserves profile for remote. It fails when another session holds it.
func (s *SSHServer) claim(profile, remote string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if holder, busy := s.active[profile]; busy {
		return holder, false
	}
	s.active[profile] = remote
	return "", true
}

func (s *SSHServer) release(profile string) {
	s.mu.Lock()
	delete(s.active, profile)
	s.mu.Unlock()
}

// profileGuard keeps a profile to one session at a time.
func (s *SSHServer) profileGuard(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		profile := ProfileFor(sess.User())
		remote := sess.RemoteAddr().String()
		if holder, ok := s.claim(profile, remote); !ok {
			s.logger.Warn("profile already in play", "profile", profile, "remote", remote, "holder", holder)
			wish.Fatalln(sess, fmt.Sprintf("%s is already defending the castle from another session.", profile))
			return
		}
		defer s.release(profile)
		next(sess)
	}
}

// teaHandler builds the model for one SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		wish.Fatalln(sess, "Bastion needs an interactive terminal; connect with ssh -t.")
		return nil, nil
	}

	rt := core.DefaultConfig()
	rt.ScreenW = pty.Window.Width
	rt.ScreenH = pty.Window.Height
	if s.config.TickRate > 0 {
		rt.TickRate = s.config.TickRate
	}

	profile := ProfileFor(sess.User())
	model := NewModel(Options{
		Balance: s.config.Balance,
		Sprites: s.config.Sprites,
		Store:   s.store,
		Profile: profile,
		Runtime: rt,
		Logger:  s.logger.With("profile", profile),
	})
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		remote := sess.RemoteAddr().String()
		s.logger.Info("session started", "user", sess.User(), "remote", remote)
		next(sess)
		s.logger.Info("session ended", "user", sess.User(), "remote", remote,
			"duration", time.Since(start).Round(time.Second))
	}
}

// ListenAndServe serves until SIGINT/SIGTERM or a listener error.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-stop:
		s.logger.Info("shutting down", "signal", sig.String())
		return s.Shutdown()
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return errors.Join(err, s.Shutdown())
	}
}

// Shutdown stops accepting sessions, waits up to ten seconds for running
// ones, then closes the store.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	return errors.Join(err, s.store.Close())
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
