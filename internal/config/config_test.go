package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedMatchesDefaults(t *testing.T) {
	parsed, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(embedded) failed: %v", err)
	}
	def := DefaultBalance()

	if len(parsed.Towers.Tiers) != len(def.Towers.Tiers) {
		t.Fatalf("tier count = %d, expected %d", len(parsed.Towers.Tiers), len(def.Towers.Tiers))
	}
	for i := range def.Towers.Tiers {
		if parsed.Towers.Tiers[i] != def.Towers.Tiers[i] {
			t.Errorf("tier %d = %+v, expected %+v", i+1, parsed.Towers.Tiers[i], def.Towers.Tiers[i])
		}
	}
	if len(parsed.Battlefield.Paths) != len(def.Battlefield.Paths) {
		t.Fatalf("path count = %d, expected %d", len(parsed.Battlefield.Paths), len(def.Battlefield.Paths))
	}
	for i, p := range def.Battlefield.Paths {
		got := parsed.Battlefield.Paths[i]
		if got.Name != p.Name || len(got.Points) != len(p.Points) {
			t.Errorf("path %d = %+v, expected %+v", i, got, p)
		}
	}
	if parsed.Player != def.Player {
		t.Errorf("player = %+v, expected %+v", parsed.Player, def.Player)
	}
	if parsed.Enemies != def.Enemies {
		t.Errorf("enemies = %+v, expected %+v", parsed.Enemies, def.Enemies)
	}
	if parsed.Rewards != def.Rewards || parsed.Economy != def.Economy {
		t.Error("rewards or economy differ between embedded YAML and DefaultBalance")
	}
	if err := parsed.Validate(); err != nil {
		t.Errorf("embedded balance should validate: %v", err)
	}
}

func TestTowerTable(t *testing.T) {
	towers := DefaultBalance().Towers
	tests := []struct {
		level    int
		health   int
		damage   int
		fireRate float64
		cost     int
	}{
		{1, 100, 25, 1.0, 0},
		{2, 125, 33, 1.2, 75},
		{3, 150, 41, 1.2, 100},
		{4, 175, 49, 1.4, 150},
		{5, 200, 57, 1.4, 200},
	}
	for _, tc := range tests {
		tier, ok := towers.Tier(tc.level)
		if !ok {
			t.Fatalf("Tier(%d) missing", tc.level)
		}
		if tier.Health != tc.health || tier.Damage != tc.damage || tier.FireRate != tc.fireRate || tier.UpgradeCost != tc.cost {
			t.Errorf("Tier(%d) = %+v", tc.level, tier)
		}
	}
	if _, ok := towers.Tier(6); ok {
		t.Error("Tier(6) should not exist")
	}
	if towers.MaxLevel() != 5 {
		t.Errorf("MaxLevel() = %d, expected 5", towers.MaxLevel())
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Balance)
		want   string
	}{
		{"four tiers", func(b *Balance) { b.Towers.Tiers = b.Towers.Tiers[:4] }, "exactly 5 tiers"},
		{"flat health", func(b *Balance) { b.Towers.Tiers[2].Health = b.Towers.Tiers[1].Health }, "health must exceed"},
		{"no paths", func(b *Balance) { b.Battlefield.Paths = nil }, "at least one enemy path"},
		{"short path", func(b *Balance) { b.Battlefield.Paths[0].Points = b.Battlefield.Paths[0].Points[:1] }, "at least two points"},
		{"detection below attack", func(b *Balance) { b.Enemies.DetectionRange = 100 }, "detection_range"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := DefaultBalance()
			tc.mutate(&b)
			err := b.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate() = %v, expected mention of %q", err, tc.want)
			}
		})
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	data := []byte("castle:\n  health: 900\nwaves:\n  base_count: 2\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Castle.Health != 900 {
		t.Errorf("castle health = %d, expected 900", cfg.Castle.Health)
	}
	if cfg.Waves.BaseCount != 2 {
		t.Errorf("base_count = %d, expected 2", cfg.Waves.BaseCount)
	}
	if cfg.Player.BaseAttack != 35 {
		t.Errorf("unset fields should keep defaults, base_attack = %d", cfg.Player.BaseAttack)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("towers:\n  tiers: [1, 2]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() of a malformed file should fail")
	}
}

func TestDifficultyMultipliers(t *testing.T) {
	cfg := DefaultBalance().Difficulty
	dm := NewDifficultyManager(cfg)

	if got := dm.HealthMultiplier(1); got != 1.0 {
		t.Errorf("normal wave 1 health multiplier = %v, expected 1.0", got)
	}
	prev := 0.0
	for wave := 1; wave <= 40; wave++ {
		m := dm.HealthMultiplier(wave)
		if m < prev {
			t.Fatalf("multiplier decreased at wave %d: %v < %v", wave, m, prev)
		}
		prev = m
	}
	if got := dm.HealthMultiplier(100); got != 1.25 {
		t.Errorf("max health multiplier = %v, expected 1.25", got)
	}

	easy := DefaultBalance()
	ApplyPreset(&easy, DifficultyEasy)
	if got := NewDifficultyManager(easy.Difficulty).DamageMultiplier(1); got != 0.75 {
		t.Errorf("easy damage multiplier = %v, expected 0.75", got)
	}

	fixed := DefaultBalance()
	ApplyPreset(&fixed, DifficultyFixed)
	fdm := NewDifficultyManager(fixed.Difficulty)
	if fdm.IsEnabled() {
		t.Error("fixed preset should disable progression")
	}
	if got := fdm.CountMultiplier(25); got != 1.0 {
		t.Errorf("fixed count multiplier = %v, expected 1.0", got)
	}
}

func TestParsePreset(t *testing.T) {
	for _, s := range []string{"", "easy", "normal", "hard", "fixed"} {
		if _, err := ParsePreset(s); err != nil {
			t.Errorf("ParsePreset(%q) failed: %v", s, err)
		}
	}
	if _, err := ParsePreset("nightmare"); err == nil {
		t.Error("ParsePreset(nightmare) should fail")
	}
}
