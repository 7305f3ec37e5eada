package game

import (
	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
)

// Player is the controllable character.
type Player struct {
	ID        EntityID
	Name      string
	Pos       core.Vec2
	Health    int
	MaxHealth int
	Attack    int
	Facing    Facing
	Cooldown  float64 // Seconds until the next swing is allowed
	Anim      float64 // Seconds remaining in the swing animation
	Downed    float64 // Seconds until respawn; zero while standing
}

func newPlayer(id EntityID, name string, level int, cfg config.PlayerConfig) Player {
	p := Player{
		ID:     id,
		Name:   name,
		Pos:    core.V(cfg.StartX, cfg.StartY),
		Facing: FacingDown,
	}
	p.applyLevel(level, cfg)
	p.Health = p.MaxHealth
	return p
}

// applyLevel recomputes level-derived stats without healing.
func (p *Player) applyLevel(level int, cfg config.PlayerConfig) {
	p.MaxHealth = cfg.BaseHealth + cfg.HealthPerLevel*(level-1)
	p.Attack = cfg.BaseAttack + cfg.AttackPerLevel*(level-1)
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
}

func (p *Player) EntityID() EntityID { return p.ID }
func (p *Player) Position() core.Vec2 { return p.Pos }
func (p *Player) Alive() bool { return p.Downed == 0 && p.Health > 0 }
func (p *Player) TakeDamage(n int) int { return applyDamage(&p.Health, n) }
func (p *Player) canAct() bool { return p.Alive() }
func (p *Player) rooted() bool { return p.Anim > 0 }
func (p *Player) ready() bool { return p.Cooldown <= 0 }

func (p *Player) swing(cfg config.PlayerConfig) {
	p.Cooldown = cooldownFor(cfg.AttackRate)
	p.Anim = cfg.AttackAnim
}

// move displaces the player along dir for dt seconds, clamped to bounds.
func (p *Player) move(dir core.Vec2, dt, speed float64, bounds core.RectF) {
	if dir.IsZero() {
		return
	}
	p.Facing = facingFor(dir, p.Facing)
	p.Pos = bounds.Clamp(p.Pos.Add(dir.Normalize().Scale(speed * dt)))
}
