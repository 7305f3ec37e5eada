package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
	"github.com/vovakirdan/bastion/internal/game"
)

func TestDrawView(t *testing.T) {
	g := game.New(config.DefaultBalance())
	v := g.View()

	// One cell per 20 battlefield units.
	s := core.NewScreen(int(v.Width/20), int(v.Height/20))
	DrawView(s, v)

	pos := g.Player().Pos
	if got := s.Get(int(pos.X/20), int(pos.Y/20)); got != '@' {
		t.Errorf("player cell = %q, want '@'", got)
	}
	c := v.Castle.Center()
	if got := s.Get(int(c.X/20), int(c.Y/20)); got != '#' {
		t.Errorf("castle cell = %q, want '#'", got)
	}
	if !strings.Contains(s.String(), ".") {
		t.Error("no path drawn")
	}
}

func TestDrawViewEmptyScreen(t *testing.T) {
	s := core.NewScreen(0, 0)
	// Must not panic.
	DrawView(s, game.New(config.DefaultBalance()).View())
}

func TestBar(t *testing.T) {
	tests := []struct {
		cur, max, width int
		filled          int
	}{
		{10, 10, 10, 10},
		{5, 10, 10, 5},
		{0, 10, 10, 0},
		{1, 1000, 10, 1}, // Never empty while alive
		{20, 10, 10, 10},
	}
	for _, tt := range tests {
		got := strings.Count(bar(tt.cur, tt.max, tt.width), "█")
		if got != tt.filled {
			t.Errorf("bar(%d, %d, %d) has %d filled cells, want %d", tt.cur, tt.max, tt.width, got, tt.filled)
		}
	}
	if bar(1, 0, 10) != "" {
		t.Error("bar with zero max should be empty")
	}
}

func TestRenderHUD(t *testing.T) {
	h := game.HUD{
		Character: "Legolas", Level: 3, Essence: 250, Score: 1200,
		Wave: 4, WavePhase: game.PhaseActive, EnemiesLeft: 6,
		CastleHealth: 400, CastleMax: 1000, PlayerHealth: 80, PlayerMax: 100,
	}
	out := RenderHUD(h, 200)
	for _, want := range []string{"Legolas", "250", "1200", "Wave 4: 6 left", "No tower selected"} {
		if !strings.Contains(out, want) {
			t.Errorf("HUD missing %q:\n%s", want, out)
		}
	}

	h.Selected, h.SelectedLevel, h.SelectedHealth, h.SelectedMax = 7, 5, 50, 300
	h.RepairCost = 30
	out = RenderHUD(h, 200)
	for _, want := range []string{"#7 L5", "max level", "repair 30"} {
		if !strings.Contains(out, want) {
			t.Errorf("HUD missing %q:\n%s", want, out)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(125.7); got != "02:05" {
		t.Errorf("formatElapsed = %q, want 02:05", got)
	}
}

func TestDrawViewMarksSelectedTower(t *testing.T) {
	g := game.New(config.DefaultBalance(), game.WithMatchIDs(func() string { return "m" }))
	g.NewMatch(game.NewProgression("Legolas"))
	g.Advance(1.0/60, []core.Intent{core.BuildTower(core.V(500, 450))})
	ids := g.TowerIDs()
	if len(ids) != 1 {
		t.Fatalf("towers = %d, want 1", len(ids))
	}
	v := g.ViewWith(ids[0])

	s := core.NewScreen(int(v.Width/20), int(v.Height/20))
	DrawView(s, v)
	pos := g.Towers()[0].Pos
	x, y := int(pos.X/20), int(pos.Y/20)
	if s.Get(x-1, y) != '[' || s.Get(x+1, y) != ']' {
		t.Errorf("selected tower not bracketed: %q", string([]rune{s.Get(x-1, y), s.Get(x, y), s.Get(x+1, y)}))
	}
}
