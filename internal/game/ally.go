package game

import (
	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
)

// Ally is a summoned elf warrior that hunts the nearest enemy.
type Ally struct {
	ID        EntityID
	Pos       core.Vec2
	Health    int
	MaxHealth int
	Cooldown  float64
	Facing    Facing
}

func newAlly(id EntityID, pos core.Vec2, cfg config.AllyConfig) *Ally {
	return &Ally{
		ID:        id,
		Pos:       pos,
		Health:    cfg.Health,
		MaxHealth: cfg.Health,
		Facing:    FacingDown,
	}
}

func (a *Ally) EntityID() EntityID { return a.ID }
func (a *Ally) Position() core.Vec2 { return a.Pos }
func (a *Ally) Alive() bool { return a.Health > 0 }
func (a *Ally) TakeDamage(n int) int { return applyDamage(&a.Health, n) }

func (a *Ally) stepToward(target core.Vec2, dt, speed float64, bounds core.RectF) {
	dir := target.Sub(a.Pos)
	a.Facing = facingFor(dir, a.Facing)
	next, _ := a.Pos.MoveToward(target, speed*dt)
	a.Pos = bounds.Clamp(next)
}
