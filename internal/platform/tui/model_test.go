package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
	"github.com/vovakirdan/bastion/internal/game"
	"github.com/vovakirdan/bastion/internal/storage"
)

func newTestModel(t *testing.T) (Model, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "bastion.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	rt := core.DefaultConfig()
	rt.ScreenW, rt.ScreenH = 120, 40
	m := NewModel(Options{
		Balance: config.DefaultBalance(),
		Store:   store,
		Profile: "legolas",
		Runtime: rt,
	})
	return m, store
}

// update applies msg and runs the resulting command chain the way the
// Bubble Tea runtime would, skipping tick commands.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if _, ok := msg.(TickMsg); ok || cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case menuDataMsg, matchReadyMsg, matchSavedMsg, matchFinishedMsg, progressSavedMsg:
		return update(t, m, out)
	}
	return m
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, m.loadMenuCmd()())
}

// play advances the match by n ticks of one nominal frame.
func play(t *testing.T, m Model, n int) Model {
	t.Helper()
	now := time.Unix(1_700_000_000, 0)
	for i := range n {
		m = update(t, m, TickMsg(now.Add(time.Duration(i)*time.Second/60)))
	}
	return m
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestMenuLoadsProfile(t *testing.T) {
	m, _ := newTestModel(t)
	m = loaded(t, m)

	if m.data == nil {
		t.Fatal("menu data not loaded")
	}
	if m.data.prog.Name != "legolas" || m.data.prog.Level != 1 {
		t.Errorf("profile = %+v", m.data.prog)
	}
	if m.data.save != nil {
		t.Error("fresh profile should have no save")
	}
	if choice, _ := m.menu.selected(); choice != choiceNewGame {
		t.Errorf("cursor on %v, want new game", choice)
	}
	for _, item := range m.menu.items {
		if item.Choice == choiceContinue {
			t.Error("Continue offered without a save")
		}
	}
}

func TestNewGameAndPlay(t *testing.T) {
	m, _ := newTestModel(t)
	m = loaded(t, m)

	m = update(t, m, enterKey)
	if m.state != statePlaying {
		t.Fatalf("state = %v, want playing", m.state)
	}

	start := m.game.Player().Pos
	m = update(t, m, runeKey('d'))
	m = play(t, m, 6)
	if got := m.game.Player().Pos; got.X <= start.X {
		t.Errorf("player did not move right: %v -> %v", start, got)
	}
	if m.game.Elapsed() <= 0 {
		t.Error("match did not advance")
	}
	if m.View() == "" {
		t.Error("empty match view")
	}
}

func TestPauseStopsTheMatch(t *testing.T) {
	m, _ := newTestModel(t)
	m = loaded(t, m)
	m = update(t, m, enterKey)
	m = play(t, m, 3)

	m = update(t, m, runeKey('p'))
	if m.state != statePaused {
		t.Fatalf("state = %v, want paused", m.state)
	}
	elapsed := m.game.Elapsed()
	m = play(t, m, 30)
	if m.game.Elapsed() != elapsed {
		t.Error("match advanced while paused")
	}

	m = update(t, m, enterKey) // Resume
	if m.state != statePlaying {
		t.Errorf("state = %v, want playing after resume", m.state)
	}
}

func TestSaveAndContinue(t *testing.T) {
	m, store := newTestModel(t)
	m = loaded(t, m)
	m = update(t, m, enterKey)
	m = play(t, m, 30)
	matchID := m.game.MatchID()
	tick := m.game.Snapshot().Tick

	m = update(t, m, runeKey('p'))
	m = update(t, m, downKey)
	m = update(t, m, enterKey) // Save & quit
	if m.state != stateMenu {
		t.Fatalf("state = %v, want menu after save", m.state)
	}
	if _, err := store.LoadSnapshot("legolas"); err != nil {
		t.Fatalf("no save written: %v", err)
	}
	if m.data == nil || m.data.save == nil {
		t.Fatal("menu does not show the save")
	}
	if choice, _ := m.menu.selected(); choice != choiceContinue {
		t.Errorf("cursor on %v, want continue", choice)
	}

	m = update(t, m, enterKey) // Continue
	if m.state != statePlaying {
		t.Fatalf("state = %v, want playing; error %q", m.state, m.errMsg)
	}
	if m.game.MatchID() != matchID || m.game.Snapshot().Tick != tick {
		t.Errorf("continued %s at tick %d, want %s at %d", m.game.MatchID(), m.game.Snapshot().Tick, matchID, tick)
	}
}

func TestQuitWithoutSaving(t *testing.T) {
	m, store := newTestModel(t)
	m = loaded(t, m)
	m = update(t, m, enterKey)
	m = play(t, m, 10)

	m = update(t, m, runeKey('p'))
	m = update(t, m, downKey)
	m = update(t, m, downKey)
	m = update(t, m, enterKey) // Quit without saving
	if m.state != stateMenu {
		t.Fatalf("state = %v, want menu", m.state)
	}
	if m.data == nil || m.data.prog.GamesPlayed != 1 {
		t.Errorf("menu profile = %+v, want one match played", m.data)
	}
	sessions, err := store.Sessions("legolas", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Outcome != game.OutcomeAbandoned {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestTowerSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m = loaded(t, m)
	m = update(t, m, enterKey)

	m = update(t, m, runeKey('u'))
	if m.status == "" {
		t.Error("upgrade without a selection should explain itself")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.selected != 0 {
		t.Errorf("selected %d with no towers", m.selected)
	}
}

func TestScoreboardFromMenu(t *testing.T) {
	m, store := newTestModel(t)
	if err := store.RecordSession(game.SessionRecord{MatchID: "x", Profile: "gimli", Character: "Gimli", Score: 700, WaveReached: 5, Outcome: game.OutcomeDefeat}); err != nil {
		t.Fatal(err)
	}
	m = loaded(t, m)
	m = update(t, m, downKey) // High scores
	m = update(t, m, enterKey)
	if m.state != stateScores {
		t.Fatalf("state = %v, want scores", m.state)
	}
	if len(m.scores.rows) != 1 {
		t.Errorf("scoreboard rows = %d, want 1", len(m.scores.rows))
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateMenu {
		t.Errorf("state = %v, want menu after back", m.state)
	}
}
