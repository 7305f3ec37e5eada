package game

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoSnapshot is returned by a SaveStore when the profile has no save.
var ErrNoSnapshot = errors.New("game: no saved match")

// SaveStore holds at most one saved match per profile.
type SaveStore interface {
	SaveSnapshot(profile string, s SaveSnapshot) error
	LoadSnapshot(profile string) (SaveSnapshot, error)
	DeleteSnapshot(profile string) error
}

// ProgressStore holds character records. LoadProgression returns a fresh
// level 1 record for an unknown name.
type ProgressStore interface {
	LoadProgression(name string) (Progression, error)
	SaveProgression(p Progression) error
}

// SessionRecord summarizes a finished or abandoned match.
type SessionRecord struct {
	MatchID        string
	Profile        string
	Character      string
	Score          int
	WaveReached    int
	Kills          int
	TowersBuilt    int
	AlliesSummoned int
	Elapsed        float64
	ExpGained      int
	StartLevel     int
	EndLevel       int
	Outcome        string
	EndedAt        time.Time
}

// Session outcomes.
const (
	OutcomeDefeat    = "defeat"
	OutcomeAbandoned = "abandoned"
)

// SessionRecorder stores match summaries.
type SessionRecorder interface {
	RecordSession(r SessionRecord) error
}

// Persistence groups the stores a front end needs for match transitions.
// Sessions may be nil.
type Persistence struct {
	Saves    SaveStore
	Progress ProgressStore
	Sessions SessionRecorder
}

// Profile loads the character record for name.
func (p Persistence) Profile(name string) (Progression, error) {
	prog, err := p.Progress.LoadProgression(name)
	if err != nil {
		return Progression{}, fmt.Errorf("game: load progression %q: %w", name, err)
	}
	return prog, nil
}

// HasSave reports whether profile has a saved match.
func (p Persistence) HasSave(profile string) bool {
	_, err := p.Saves.LoadSnapshot(profile)
	return err == nil
}

// StartNew deletes any save for profile and starts a fresh match.
func (p Persistence) StartNew(g *Game, profile string) error {
	if err := p.Saves.DeleteSnapshot(profile); err != nil {
		return fmt.Errorf("game: clear save slot: %w", err)
	}
	prog, err := p.Profile(profile)
	if err != nil {
		return err
	}
	g.NewMatch(prog)
	return nil
}

// Continue restores the saved match for profile. The character record is
// loaded first so its lifetime counters survive the restore.
func (p Persistence) Continue(g *Game, profile string) error {
	s, err := p.Saves.LoadSnapshot(profile)
	if err != nil {
		return err
	}
	prog, err := p.Profile(profile)
	if err != nil {
		return err
	}
	g.NewMatch(prog)
	return g.Restore(s)
}

// SaveAndQuit writes the match to the slot and the character record.
func (p Persistence) SaveAndQuit(g *Game, profile string) error {
	s := g.Snapshot()
	s.SavedAt = time.Now().UTC()
	if err := p.Saves.SaveSnapshot(profile, s); err != nil {
		return fmt.Errorf("game: save match: %w", err)
	}
	if err := p.Progress.SaveProgression(g.Progression()); err != nil {
		return fmt.Errorf("game: save progression: %w", err)
	}
	return nil
}

// Defeat records a lost match and clears the save slot.
func (p Persistence) Defeat(g *Game, profile string) error {
	return p.finish(g, profile, OutcomeDefeat)
}

// Abandon records a match quit without saving and clears the save slot.
func (p Persistence) Abandon(g *Game, profile string) error {
	return p.finish(g, profile, OutcomeAbandoned)
}

func (p Persistence) finish(g *Game, profile, outcome string) error {
	prog := g.Progression()
	prog.GamesPlayed++
	var errs []error
	if err := p.Progress.SaveProgression(prog); err != nil {
		errs = append(errs, fmt.Errorf("game: save progression: %w", err))
	}
	if p.Sessions != nil {
		if err := p.Sessions.RecordSession(g.SessionRecord(profile, outcome)); err != nil {
			errs = append(errs, fmt.Errorf("game: record session: %w", err))
		}
	}
	if err := p.Saves.DeleteSnapshot(profile); err != nil {
		errs = append(errs, fmt.Errorf("game: clear save slot: %w", err))
	}
	return errors.Join(errs...)
}

// SessionRecord summarizes the current match.
func (g *Game) SessionRecord(profile, outcome string) SessionRecord {
	return SessionRecord{
		MatchID:        g.matchID,
		Profile:        profile,
		Character:      g.prog.Name,
		Score:          g.score,
		WaveReached:    g.wave.Number,
		Kills:          g.stats.Kills,
		TowersBuilt:    g.stats.TowersBuilt,
		AlliesSummoned: g.stats.AlliesSummoned,
		Elapsed:        g.elapsed,
		ExpGained:      g.stats.ExpGained,
		StartLevel:     g.stats.StartLevel,
		EndLevel:       g.prog.Level,
		Outcome:        outcome,
		EndedAt:        time.Now().UTC(),
	}
}
