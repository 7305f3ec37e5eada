// Package config provides YAML-based balance configuration loading and
// difficulty management for the tower-defense simulation.
package config

import (
	"errors"
	"fmt"
)

// Balance contains every tunable number of a match.
type Balance struct {
	Battlefield BattlefieldConfig `yaml:"battlefield"`
	Player      PlayerConfig      `yaml:"player"`
	Enemies     EnemiesConfig     `yaml:"enemies"`
	Towers      TowerConfig       `yaml:"towers"`
	Ally        AllyConfig        `yaml:"ally"`
	Castle      CastleConfig      `yaml:"castle"`
	Projectiles ProjectileConfig  `yaml:"projectiles"`
	Waves       WaveConfig        `yaml:"waves"`
	Economy     EconomyConfig     `yaml:"economy"`
	Rewards     RewardConfig      `yaml:"rewards"`
	Progression ProgressionConfig `yaml:"progression"`
	Difficulty  DifficultyConfig  `yaml:"difficulty"`
}

// Point is a battlefield coordinate as written in YAML.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PathConfig is one named enemy route, castle-ward.
type PathConfig struct {
	Name   string  `yaml:"name"`
	Points []Point `yaml:"points"`
}

// BattlefieldConfig describes the playable area and enemy routes.
type BattlefieldConfig struct {
	Width          float64      `yaml:"width"`
	Height         float64      `yaml:"height"`
	GridSize       float64      `yaml:"grid_size"`       // Tower placement snaps to this grid
	PathWidth      float64      `yaml:"path_width"`      // Visual and no-build width of a path
	BuildClearance float64      `yaml:"build_clearance"` // Extra margin kept free around paths
	Paths          []PathConfig `yaml:"paths"`
}

// PlayerConfig defines the controllable character.
type PlayerConfig struct {
	StartX         float64 `yaml:"start_x"`
	StartY         float64 `yaml:"start_y"`
	BaseHealth     int     `yaml:"base_health"`
	HealthPerLevel int     `yaml:"health_per_level"`
	BaseAttack     int     `yaml:"base_attack"`
	AttackPerLevel int     `yaml:"attack_per_level"`
	Speed          float64 `yaml:"speed"`
	AttackRange    float64 `yaml:"attack_range"`
	AttackRate     float64 `yaml:"attack_rate"`   // Attacks per second
	AttackAnim     float64 `yaml:"attack_anim"`   // Seconds the player is rooted after swinging
	Knockback      float64 `yaml:"knockback"`     // Units an enemy is pushed per hit
	RespawnDelay   float64 `yaml:"respawn_delay"` // Seconds downed at zero health
	Radius         float64 `yaml:"radius"`
}

// EnemyKindConfig holds the base stats of one enemy kind.
type EnemyKindConfig struct {
	Name   string  `yaml:"name"`
	Health int     `yaml:"health"`
	Speed  float64 `yaml:"speed"`
	Damage int     `yaml:"damage"`
}

// EnemiesConfig defines enemy kinds and shared AI parameters.
type EnemiesConfig struct {
	Orc            EnemyKindConfig `yaml:"orc"`
	Uruk           EnemyKindConfig `yaml:"uruk"`
	UrukStartWave  int             `yaml:"uruk_start_wave"`
	UrukRatio      float64         `yaml:"uruk_ratio"`
	HealthPerWave  int             `yaml:"health_per_wave"`
	DamagePerWave  int             `yaml:"damage_per_wave"`
	DetectionRange float64         `yaml:"detection_range"`
	AttackRange    float64         `yaml:"attack_range"`
	SiegeDistance  float64         `yaml:"siege_distance"`
	AttackRate     float64         `yaml:"attack_rate"`
	ArrowDamage    int             `yaml:"arrow_damage"`
	ContactRange   float64         `yaml:"contact_range"`
	WaypointRadius float64         `yaml:"waypoint_radius"`
	Radius         float64         `yaml:"radius"`
}

// TowerTier is one row of the tower upgrade table.
type TowerTier struct {
	Level       int     `yaml:"level"`
	Health      int     `yaml:"health"`
	Damage      int     `yaml:"damage"`
	FireRate    float64 `yaml:"fire_rate"`
	UpgradeCost int     `yaml:"upgrade_cost"` // Cost to reach this level; 0 for level 1
}

// TowerConfig defines arrow towers.
type TowerConfig struct {
	Cost           int         `yaml:"cost"`
	Range          float64     `yaml:"range"`
	Radius         float64     `yaml:"radius"`
	RepairBase     int         `yaml:"repair_base"`
	RepairPerLevel int         `yaml:"repair_per_level"`
	RepairFraction float64     `yaml:"repair_fraction"`
	Tiers          []TowerTier `yaml:"tiers"`
}

// MaxLevel returns the highest tower level in the table.
func (t TowerConfig) MaxLevel() int {
	return len(t.Tiers)
}

// Tier returns the table row for level, or false when out of range.
func (t TowerConfig) Tier(level int) (TowerTier, bool) {
	if level < 1 || level > len(t.Tiers) {
		return TowerTier{}, false
	}
	return t.Tiers[level-1], true
}

// AllyConfig defines summoned allies.
type AllyConfig struct {
	Cost           int     `yaml:"cost"`
	Health         int     `yaml:"health"`
	Damage         int     `yaml:"damage"`
	Range          float64 `yaml:"range"`
	AttackRate     float64 `yaml:"attack_rate"`
	Speed          float64 `yaml:"speed"`
	Sight          float64 `yaml:"sight"`
	FollowDistance float64 `yaml:"follow_distance"`
	Radius         float64 `yaml:"radius"`
}

// CastleConfig defines the defended structure.
type CastleConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Health int     `yaml:"health"`
}

// ProjectileConfig defines arrow flight.
type ProjectileConfig struct {
	ArrowSpeed      float64 `yaml:"arrow_speed"`
	EnemyArrowSpeed float64 `yaml:"enemy_arrow_speed"`
	Lifetime        float64 `yaml:"lifetime"`
	HitRadius       float64 `yaml:"hit_radius"`
}

// WaveConfig defines wave pacing and size.
type WaveConfig struct {
	FirstDelay    float64 `yaml:"first_delay"`
	Delay         float64 `yaml:"delay"`
	SpawnInterval float64 `yaml:"spawn_interval"`
	BaseCount     int     `yaml:"base_count"`
	CountGrowth   float64 `yaml:"count_growth"`
}

// EconomyConfig defines essence income.
type EconomyConfig struct {
	StartingEssence int `yaml:"starting_essence"`
	KillEssence     int `yaml:"kill_essence"`
	WaveEssence     int `yaml:"wave_essence"`
}

// RewardConfig defines experience and score awards.
type RewardConfig struct {
	KillExp          int `yaml:"kill_exp"`
	WaveExp          int `yaml:"wave_exp"`
	TowerBuiltExp    int `yaml:"tower_built_exp"`
	TowerUpgradedExp int `yaml:"tower_upgraded_exp"`
	KillScore        int `yaml:"kill_score"`
	WaveScore        int `yaml:"wave_score"`
	TowerBuiltScore  int `yaml:"tower_built_score"`
	UpgradeScore     int `yaml:"upgrade_score"`
	AllyScore        int `yaml:"ally_score"`
}

// ProgressionConfig defines the character leveling curve.
type ProgressionConfig struct {
	BaseExp int     `yaml:"base_exp"` // Experience from level 1 to 2
	Growth  float64 `yaml:"growth"`   // Multiplier per level
}

// DifficultyConfig defines how enemy strength scales beyond the per-wave growth.
type DifficultyConfig struct {
	Enabled      bool          `yaml:"enabled"`
	InitialLevel float64       `yaml:"initial_level"` // 0.0 = easy, 0.5 = baseline, 1.0 = hard
	MaxAtWave    int           `yaml:"max_at_wave"`   // Wave at which level reaches 1.0
	Scaling      ScalingConfig `yaml:"scaling"`
}

// ScalingConfig is the spread of each multiplier around 1.0.
// At level 0.5 every multiplier is 1.0; at 0 and 1 it is 1 -/+ spread.
type ScalingConfig struct {
	Health float64 `yaml:"health"`
	Damage float64 `yaml:"damage"`
	Count  float64 `yaml:"count"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyHard:
		return 0.8
	default:
		return 0.5
	}
}

// ParsePreset validates a preset name. The empty string means "use the config as is".
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *Balance, preset DifficultyPreset) {
	switch preset {
	case "":
		return
	case DifficultyFixed:
		cfg.Difficulty.Enabled = false
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(DifficultyNormal)
	default:
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}
}

// Validate reports the first inconsistency that would make a match unplayable.
func (b Balance) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(b.Battlefield.Width > 0 && b.Battlefield.Height > 0, "battlefield size must be positive")
	check(len(b.Battlefield.Paths) > 0, "at least one enemy path is required")
	for i, p := range b.Battlefield.Paths {
		check(len(p.Points) >= 2, "path %d (%s) needs at least two points", i, p.Name)
	}
	check(b.Player.BaseHealth > 0, "player base_health must be positive")
	check(b.Player.AttackRate > 0, "player attack_rate must be positive")
	check(b.Enemies.Orc.Health > 0 && b.Enemies.Uruk.Health > 0, "enemy health must be positive")
	check(b.Enemies.AttackRate > 0, "enemy attack_rate must be positive")
	check(b.Enemies.DetectionRange >= b.Enemies.AttackRange, "enemy detection_range must not be below attack_range")
	check(b.Enemies.UrukRatio >= 0 && b.Enemies.UrukRatio <= 1, "uruk_ratio must be within [0, 1]")
	check(b.Castle.Health > 0, "castle health must be positive")
	check(b.Ally.AttackRate > 0, "ally attack_rate must be positive")
	check(b.Waves.BaseCount > 0, "waves base_count must be positive")
	check(b.Waves.CountGrowth >= 1, "waves count_growth must be at least 1")
	check(b.Waves.SpawnInterval > 0, "waves spawn_interval must be positive")
	check(b.Progression.BaseExp > 0 && b.Progression.Growth >= 1, "progression curve must be increasing")
	check(b.Economy.StartingEssence >= 0, "starting_essence must not be negative")

	check(len(b.Towers.Tiers) == 5, "tower table must have exactly 5 tiers, has %d", len(b.Towers.Tiers))
	for i, tier := range b.Towers.Tiers {
		check(tier.Level == i+1, "tower tier %d has level %d", i+1, tier.Level)
		check(tier.FireRate > 0, "tower tier %d fire_rate must be positive", i+1)
		if i == 0 {
			continue
		}
		prev := b.Towers.Tiers[i-1]
		check(tier.Health > prev.Health, "tower tier %d health must exceed tier %d", i+1, i)
		check(tier.Damage > prev.Damage, "tower tier %d damage must exceed tier %d", i+1, i)
		check(tier.FireRate >= prev.FireRate, "tower tier %d fire_rate must not decrease", i+1)
		check(tier.UpgradeCost > 0, "tower tier %d upgrade_cost must be positive", i+1)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid balance: %w", errors.Join(errs...))
	}
	return nil
}
