package config

import "math"

// DifficultyManager derives enemy multipliers from the wave number.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: clampF(cfg.InitialLevel, 0.0, 1.0),
	}
}

// SetInitialLevel overrides the initial difficulty level (0.0 to 1.0).
func (d *DifficultyManager) SetInitialLevel(level float64) {
	d.initialLevel = clampF(level, 0.0, 1.0)
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.MaxAtWave > 0
}

// Level returns the difficulty level (0.0 to 1.0) for a wave.
// It starts at the initial level on wave 1 and never decreases.
func (d *DifficultyManager) Level(wave int) float64 {
	if !d.IsEnabled() || wave <= 1 {
		return d.initialLevel
	}
	progress := clampF(float64(wave-1)/float64(d.cfg.MaxAtWave), 0.0, 1.0)
	return d.initialLevel + progress*(1.0-d.initialLevel)
}

// HealthMultiplier returns the enemy health multiplier for a wave.
func (d *DifficultyManager) HealthMultiplier(wave int) float64 {
	return d.multiplier(wave, d.cfg.Scaling.Health)
}

// DamageMultiplier returns the enemy damage multiplier for a wave.
func (d *DifficultyManager) DamageMultiplier(wave int) float64 {
	return d.multiplier(wave, d.cfg.Scaling.Damage)
}

// CountMultiplier returns the wave size multiplier for a wave.
func (d *DifficultyManager) CountMultiplier(wave int) float64 {
	return d.multiplier(wave, d.cfg.Scaling.Count)
}

func (d *DifficultyManager) multiplier(wave int, spread float64) float64 {
	return math.Max(0.1, 1.0+(d.Level(wave)-0.5)*2*spread)
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
