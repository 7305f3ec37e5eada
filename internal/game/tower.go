package game

import (
	"math"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
)

// Tower is a stationary arrow tower. Stats come from the tier table.
type Tower struct {
	ID        EntityID
	Pos       core.Vec2
	Level     int
	Health    int
	MaxHealth int
	Damage    int
	FireRate  float64
	Range     float64
	Cooldown  float64
	Paid      int // Essence invested, for display
}

func newTower(id EntityID, pos core.Vec2, cfg config.TowerConfig) *Tower {
	tier, _ := cfg.Tier(1)
	t := &Tower{
		ID:    id,
		Pos:   pos,
		Level: 1,
		Range: cfg.Range,
		Paid:  cfg.Cost,
	}
	t.applyTier(tier)
	t.Health = t.MaxHealth
	return t
}

// applyTier sets tier stats and heals by the max-health increase.
func (t *Tower) applyTier(tier config.TowerTier) {
	gain := tier.Health - t.MaxHealth
	t.Level = tier.Level
	t.MaxHealth = tier.Health
	t.Damage = tier.Damage
	t.FireRate = tier.FireRate
	if gain > 0 {
		heal(&t.Health, t.MaxHealth, gain)
	}
}

// upgradeCost returns the price of the next level, or false at max level.
func (t *Tower) upgradeCost(cfg config.TowerConfig) (int, bool) {
	next, ok := cfg.Tier(t.Level + 1)
	if !ok {
		return 0, false
	}
	return next.UpgradeCost, true
}

// repairCost returns the price of a repair at the current level.
func (t *Tower) repairCost(cfg config.TowerConfig) int {
	return cfg.RepairBase + cfg.RepairPerLevel*t.Level
}

// repairAmount returns the health a repair restores, before capping.
func (t *Tower) repairAmount(cfg config.TowerConfig) int {
	return int(math.Ceil(float64(t.MaxHealth) * cfg.RepairFraction))
}

func (t *Tower) EntityID() EntityID { return t.ID }
func (t *Tower) Position() core.Vec2 { return t.Pos }
func (t *Tower) Alive() bool { return t.Health > 0 }
func (t *Tower) TakeDamage(n int) int { return applyDamage(&t.Health, n) }
