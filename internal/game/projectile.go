package game

import "github.com/vovakirdan/bastion/internal/core"

// Side tells which faction fired a projectile.
type Side int

const (
	SideTower Side = iota // Arrows that hit enemies
	SideEnemy             // Arrows that hit towers
)

// String returns the side name.
func (s Side) String() string {
	if s == SideEnemy {
		return "enemy"
	}
	return "tower"
}

// Projectile is an arrow in flight. It travels in a straight line toward the
// point its target occupied at launch.
type Projectile struct {
	ID     EntityID
	Owner  Side
	Pos    core.Vec2
	Dir    core.Vec2 // Unit vector
	Speed  float64
	Damage int
	Life   float64 // Seconds before expiry
	Target EntityID
	spent  bool
}

func newProjectile(id EntityID, owner Side, from, to core.Vec2, speed float64, damage int, life float64, target EntityID) *Projectile {
	return &Projectile{
		ID:     id,
		Owner:  owner,
		Pos:    from,
		Dir:    to.Sub(from).Normalize(),
		Speed:  speed,
		Damage: damage,
		Life:   life,
		Target: target,
	}
}

// step advances the projectile and reports whether it is still in flight.
func (p *Projectile) step(dt float64, bounds core.RectF) bool {
	if p.spent {
		return false
	}
	p.Pos = p.Pos.Add(p.Dir.Scale(p.Speed * dt))
	p.Life -= dt
	if p.Life <= 0 || !bounds.Contains(p.Pos) || p.Dir.IsZero() {
		p.spent = true
	}
	return !p.spent
}
