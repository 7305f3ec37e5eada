package game

import "github.com/vovakirdan/bastion/internal/core"

// nearestEnemy returns the closest live enemy within r of p, lowest id on ties.
func (g *Game) nearestEnemy(p core.Vec2, r float64) *Enemy {
	var best *Enemy
	bestD := 0.0
	for _, e := range g.enemies {
		if !e.Alive() {
			continue
		}
		d := p.Dist(e.Pos)
		if d > r {
			continue
		}
		if best == nil || d < bestD || (d == bestD && e.ID < best.ID) {
			best, bestD = e, d
		}
	}
	return best
}

// fire launches an arrow from one point toward another.
func (g *Game) fire(owner Side, from, to core.Vec2, speed float64, damage int, target EntityID) *Projectile {
	p := newProjectile(g.allocID(), owner, from, to, speed, damage, g.bal.Projectiles.Lifetime, target)
	g.projectiles = append(g.projectiles, p)
	return p
}

// updateTower fires at the nearest enemy in range when the cooldown allows.
func (g *Game) updateTower(t *Tower, dt float64) {
	if !t.Alive() {
		return
	}
	tickDown(&t.Cooldown, dt)
	if t.Cooldown > 0 {
		return
	}
	target := g.nearestEnemy(t.Pos, t.Range)
	if target == nil {
		return
	}
	t.Cooldown = cooldownFor(t.FireRate)
	g.fire(SideTower, t.Pos, target.Pos, g.bal.Projectiles.ArrowSpeed, t.Damage, target.ID)
}

// updateAlly chases the nearest enemy in sight and strikes it in range.
// With nothing in sight the ally falls back toward the player.
func (g *Game) updateAlly(a *Ally, dt float64) {
	if !a.Alive() {
		return
	}
	cfg := g.bal.Ally
	tickDown(&a.Cooldown, dt)

	if e := g.nearestEnemy(a.Pos, cfg.Sight); e != nil {
		if a.Pos.Within(e.Pos, cfg.Range) {
			a.Facing = facingFor(e.Pos.Sub(a.Pos), a.Facing)
			if a.Cooldown <= 0 {
				a.Cooldown = cooldownFor(cfg.AttackRate)
				e.TakeDamage(cfg.Damage)
			}
		}
		if !a.Pos.Within(e.Pos, cfg.Range*0.8) {
			a.stepToward(e.Pos, dt, cfg.Speed, g.field.Bounds)
		}
		return
	}
	if p := g.player.Pos; !a.Pos.Within(p, cfg.FollowDistance) {
		a.stepToward(p, dt, cfg.Speed, g.field.Bounds)
	}
}

// updateProjectiles moves arrows and applies the first hit on the opposing side.
func (g *Game) updateProjectiles(dt float64) {
	hit := g.bal.Projectiles.HitRadius
	for _, p := range g.projectiles {
		if !p.step(dt, g.field.Bounds) {
			continue
		}
		switch p.Owner {
		case SideTower:
			reach := hit + g.bal.Enemies.Radius
			for _, e := range g.enemies {
				if e.Alive() && p.Pos.Within(e.Pos, reach) {
					e.TakeDamage(p.Damage)
					p.spent = true
					break
				}
			}
		case SideEnemy:
			reach := hit + g.bal.Towers.Radius
			for _, t := range g.towers {
				if t.Alive() && p.Pos.Within(t.Pos, reach) {
					t.TakeDamage(p.Damage)
					p.spent = true
					break
				}
			}
		}
	}
}
