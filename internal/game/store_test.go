package game

import (
	"errors"
	"testing"
)

type memStore struct {
	saves    map[string]SaveSnapshot
	profiles map[string]Progression
	sessions []SessionRecord
}

func newMemStore() *memStore {
	return &memStore{
		saves:    make(map[string]SaveSnapshot),
		profiles: make(map[string]Progression),
	}
}

func (m *memStore) SaveSnapshot(profile string, s SaveSnapshot) error {
	m.saves[profile] = s
	return nil
}

func (m *memStore) LoadSnapshot(profile string) (SaveSnapshot, error) {
	s, ok := m.saves[profile]
	if !ok {
		return SaveSnapshot{}, ErrNoSnapshot
	}
	return s, nil
}

func (m *memStore) DeleteSnapshot(profile string) error {
	delete(m.saves, profile)
	return nil
}

func (m *memStore) LoadProgression(name string) (Progression, error) {
	if p, ok := m.profiles[name]; ok {
		return p, nil
	}
	return NewProgression(name), nil
}

func (m *memStore) SaveProgression(p Progression) error {
	m.profiles[p.Name] = p
	return nil
}

func (m *memStore) RecordSession(r SessionRecord) error {
	m.sessions = append(m.sessions, r)
	return nil
}

func persistence(m *memStore) Persistence {
	return Persistence{Saves: m, Progress: m, Sessions: m}
}

func TestSaveAndContinue(t *testing.T) {
	m := newMemStore()
	p := persistence(m)
	g := busyGame(t)
	want := g.Snapshot()

	if err := p.SaveAndQuit(g, DefaultCharacterName); err != nil {
		t.Fatalf("SaveAndQuit: %v", err)
	}
	saved := m.saves[DefaultCharacterName]
	if saved.SavedAt.IsZero() {
		t.Error("SavedAt not stamped")
	}
	if m.profiles[DefaultCharacterName].GamesPlayed != 0 {
		t.Error("saving should not count as a game played")
	}
	if !p.HasSave(DefaultCharacterName) {
		t.Error("HasSave = false after save")
	}

	g2 := newTestGame(t, earlyWaves)
	if err := p.Continue(g2, DefaultCharacterName); err != nil {
		t.Fatalf("Continue: %v", err)
	}
	got := g2.Snapshot()
	if got.MatchID != want.MatchID || got.Score != want.Score || got.Tick != want.Tick ||
		len(got.Towers) != len(want.Towers) || len(got.Enemies) != len(want.Enemies) {
		t.Errorf("continued match differs from saved one")
	}
}

func TestContinueWithoutSave(t *testing.T) {
	p := persistence(newMemStore())
	g := newTestGame(t)
	if err := p.Continue(g, "nobody"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Continue error = %v, want ErrNoSnapshot", err)
	}
}

func TestDefeatClearsSlot(t *testing.T) {
	m := newMemStore()
	p := persistence(m)
	g := busyGame(t)
	if err := p.SaveAndQuit(g, DefaultCharacterName); err != nil {
		t.Fatal(err)
	}

	g.castle.Health = 0
	if err := p.Defeat(g, DefaultCharacterName); err != nil {
		t.Fatalf("Defeat: %v", err)
	}
	if p.HasSave(DefaultCharacterName) {
		t.Error("save slot survived defeat")
	}
	if len(m.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(m.sessions))
	}
	rec := m.sessions[0]
	if rec.Outcome != OutcomeDefeat || rec.MatchID != g.MatchID() || rec.Score != g.Score() {
		t.Errorf("session = %+v", rec)
	}
	if m.profiles[DefaultCharacterName].GamesPlayed != 1 {
		t.Errorf("GamesPlayed = %d, want 1", m.profiles[DefaultCharacterName].GamesPlayed)
	}
}

func TestStartNewClearsSlot(t *testing.T) {
	m := newMemStore()
	p := persistence(m)
	prog := NewProgression("Tauriel")
	prog.Level = 4
	m.profiles["Tauriel"] = prog
	m.saves["Tauriel"] = SaveSnapshot{Version: SnapshotVersion}

	g := newTestGame(t)
	if err := p.StartNew(g, "Tauriel"); err != nil {
		t.Fatalf("StartNew: %v", err)
	}
	if p.HasSave("Tauriel") {
		t.Error("StartNew kept the old save")
	}
	if g.Progression().Level != 4 || g.Player().Name != "Tauriel" {
		t.Errorf("new match for %q level %d", g.Player().Name, g.Progression().Level)
	}
}

func TestAbandonRecordsSession(t *testing.T) {
	m := newMemStore()
	p := persistence(m)
	g := newTestGame(t)
	run(g, 1)

	if err := p.Abandon(g, DefaultCharacterName); err != nil {
		t.Fatal(err)
	}
	if len(m.sessions) != 1 || m.sessions[0].Outcome != OutcomeAbandoned {
		t.Errorf("sessions = %+v", m.sessions)
	}
}
