package game

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
)

func earlyWaves(b *config.Balance) { b.Waves.FirstDelay = 3 }

// busyGame returns a match with every kind of entity on the field.
func busyGame(t *testing.T) *Game {
	t.Helper()
	g := newTestGame(t, earlyWaves)
	g.wallet.Earn(500)
	g.Advance(frame, []core.Intent{core.BuildTower(buildSpot), core.BuildTower(buildSpot2)})
	g.Advance(frame, []core.Intent{core.UpgradeTower(uint64(g.towers[0].ID)), core.SummonAlly(core.V(260, 300))})
	run(g, 5, core.Move(core.V(-1, 0)))
	addEnemy(g, buildSpot2.Add(core.V(100, 0)), 500)
	// The tower's first arrow is still in flight.
	run(g, 0.2)
	if len(g.enemies) == 0 || len(g.projectiles) == 0 || len(g.allies) == 0 {
		t.Fatalf("setup: enemies %d projectiles %d allies %d", len(g.enemies), len(g.projectiles), len(g.allies))
	}
	return g
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := busyGame(t)
	s := g.Snapshot()

	g2 := newTestGame(t, earlyWaves)
	if err := g2.Restore(s); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := g2.Snapshot(); !reflect.DeepEqual(got, s) {
		t.Fatalf("round trip mismatch\n got %+v\nwant %+v", got, s)
	}

	// Both continue identically.
	for i := 0; i < 180; i++ {
		in := []core.Intent{core.Move(core.V(0, 1))}
		if i%30 == 0 {
			in = append(in, core.Attack())
		}
		g.Advance(frame, in)
		g2.Advance(frame, in)
	}
	if a, b := g.Snapshot(), g2.Snapshot(); !reflect.DeepEqual(a, b) {
		t.Errorf("restored match diverged\n got %+v\nwant %+v", b, a)
	}
}

func TestSnapshotIsPure(t *testing.T) {
	g := busyGame(t)
	a := g.Snapshot()
	b := g.Snapshot()
	if !reflect.DeepEqual(a, b) {
		t.Error("two snapshots of the same state differ")
	}
}

func TestRestoreKeepsLifetimeCounters(t *testing.T) {
	g := busyGame(t)
	s := g.Snapshot()

	g2 := newTestGame(t, earlyWaves)
	prog := NewProgression(DefaultCharacterName)
	prog.GamesPlayed = 7
	prog.EnemiesKilled = 120
	g2.NewMatch(prog)
	if err := g2.Restore(s); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got := g2.Progression()
	if got.GamesPlayed != 7 || got.EnemiesKilled != 120 {
		t.Errorf("lifetime counters lost: %+v", got)
	}
	if got.Level != s.Player.Level || got.Exp != s.Player.Exp {
		t.Errorf("level %d exp %d, want %d and %d", got.Level, got.Exp, s.Player.Level, s.Player.Exp)
	}
}

func TestRestoreRejectsCorruptSnapshot(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(s *SaveSnapshot)
	}{
		{"version", "version", func(s *SaveSnapshot) { s.Version = 99 }},
		{"match id", "match_id", func(s *SaveSnapshot) { s.MatchID = "" }},
		{"name", "player.name", func(s *SaveSnapshot) { s.Player.Name = "" }},
		{"negative health", "player.health", func(s *SaveSnapshot) { s.Player.Health = -1 }},
		{"over max health", "player.health", func(s *SaveSnapshot) { s.Player.Health = s.Player.MaxHealth + 1 }},
		{"zero castle max", "castle.health", func(s *SaveSnapshot) { s.Castle.MaxHealth = 0 }},
		{"tower level high", "towers[0].level", func(s *SaveSnapshot) { s.Towers[0].Level = 6 }},
		{"tower level zero", "towers[0].level", func(s *SaveSnapshot) { s.Towers[0].Level = 0 }},
		{"negative essence", "essence", func(s *SaveSnapshot) { s.Essence = -1 }},
		{"negative score", "score", func(s *SaveSnapshot) { s.Score = -5 }},
		{"negative elapsed", "elapsed", func(s *SaveSnapshot) { s.Elapsed = -1 }},
		{"negative wave", "wave", func(s *SaveSnapshot) { s.Wave.Number = -1 }},
		{"unknown phase", "wave.phase", func(s *SaveSnapshot) { s.Wave.Phase = 7 }},
		{"negative next path", "wave.next_path", func(s *SaveSnapshot) { s.Wave.NextPath = -1 }},
		{"next path past the last", "wave.next_path", func(s *SaveSnapshot) { s.Wave.NextPath = 99 }},
		{"unknown state", "enemies[0].state", func(s *SaveSnapshot) { s.Enemies[0].State = "dancing" }},
		{"unknown kind", "enemies[0].kind", func(s *SaveSnapshot) { s.Enemies[0].Kind = "troll" }},
		{"unknown path", "enemies[0].path", func(s *SaveSnapshot) { s.Enemies[0].Path = 9 }},
		{"nan position", "player", func(s *SaveSnapshot) { s.Player.X = math.NaN() }},
		{"inf enemy", "enemies[0]", func(s *SaveSnapshot) { s.Enemies[0].Y = math.Inf(1) }},
		{"duplicate id", "towers[0]", func(s *SaveSnapshot) { s.Towers[0].ID = s.Player.ID }},
		{"unallocated id", "enemies[0]", func(s *SaveSnapshot) { s.Enemies[0].ID = s.NextID }},
		{"unknown side", "projectiles[0].owner", func(s *SaveSnapshot) { s.Projectiles[0].Owner = 5 }},
	}

	src := busyGame(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := src.Snapshot()
			tt.mutate(&s)

			g := newTestGame(t, earlyWaves)
			run(g, 0.5)
			before := g.Snapshot()

			err := g.Restore(s)
			var corrupt *CorruptSnapshotError
			if !errors.As(err, &corrupt) {
				t.Fatalf("Restore error = %v, want CorruptSnapshotError", err)
			}
			if corrupt.Field != tt.field {
				t.Errorf("Field = %q, want %q", corrupt.Field, tt.field)
			}
			if after := g.Snapshot(); !reflect.DeepEqual(after, before) {
				t.Error("rejected restore modified the game")
			}
		})
	}
}
