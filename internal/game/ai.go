package game

import "github.com/vovakirdan/bastion/internal/core"

// updateEnemy runs one frame of the enemy state machine.
//
//	MOVING, ATTACKING_TOWER -> ATTACKING_CASTLE  within siege distance (checked first)
//	MOVING                  -> ATTACKING_TOWER   a live tower within detection range
//	ATTACKING_TOWER         -> MOVING            target gone or out of detection range
//	ATTACKING_CASTLE is terminal
func (g *Game) updateEnemy(e *Enemy, dt float64) {
	if !e.Alive() {
		return
	}
	tickDown(&e.Cooldown, dt)
	ecfg := g.bal.Enemies

	if e.State != StateAttackingCastle && e.Pos.Within(g.castle.Center(), ecfg.SiegeDistance) {
		e.State = StateAttackingCastle
		e.Target = 0
		e.Cooldown = cooldownFor(ecfg.AttackRate)
		g.logger.Debug("enemy sieging castle", "id", e.ID)
	}
	if e.State == StateAttackingTower {
		t := g.towerByID(e.Target)
		if t == nil || !e.Pos.Within(t.Pos, ecfg.DetectionRange) {
			e.State = StateMoving
			e.Target = 0
		}
	}
	if e.State == StateMoving {
		if t := g.nearestTower(e.Pos, ecfg.DetectionRange); t != nil {
			e.State = StateAttackingTower
			e.Target = t.ID
			e.Cooldown = cooldownFor(ecfg.AttackRate)
			g.logger.Debug("enemy engaging tower", "id", e.ID, "tower", t.ID)
		}
	}

	switch e.State {
	case StateMoving:
		g.advanceOnPath(e, dt)
		g.contactStrike(e)
	case StateAttackingTower:
		t := g.towerByID(e.Target)
		if !e.Pos.Within(t.Pos, ecfg.AttackRange) {
			g.advanceOnPath(e, dt)
			return
		}
		if e.Cooldown > 0 {
			return
		}
		e.Cooldown = cooldownFor(ecfg.AttackRate)
		g.fire(SideEnemy, e.Pos, t.Pos, g.bal.Projectiles.EnemyArrowSpeed, e.ArrowDamage, t.ID)
	case StateAttackingCastle:
		if e.Cooldown > 0 {
			return
		}
		e.Cooldown = cooldownFor(ecfg.AttackRate)
		dealt := g.castle.TakeDamage(e.Damage)
		if dealt > 0 {
			g.emit(CastleDamaged{Amount: dealt, Health: g.castle.Health})
		}
	}
}

// advanceOnPath moves e toward its next waypoint. Past the last waypoint it
// heads straight for the castle.
func (g *Game) advanceOnPath(e *Enemy, dt float64) {
	path := g.field.Paths[e.Path]
	target := g.castle.Center()
	if e.Waypoint < len(path) {
		target = path[e.Waypoint]
	}
	next, reached := e.Pos.MoveToward(target, e.Speed*dt)
	e.Pos = next
	if e.Waypoint < len(path) && (reached || e.Pos.Within(target, g.bal.Enemies.WaypointRadius)) {
		e.Waypoint++
	}
}

// contactStrike lets a marching enemy hit an adjacent ally or the player
// without leaving its path.
func (g *Game) contactStrike(e *Enemy) {
	if e.Cooldown > 0 {
		return
	}
	reach := g.bal.Enemies.ContactRange
	var victim Combatant
	best := reach + 1
	for _, a := range g.allies {
		if !a.Alive() {
			continue
		}
		if d := e.Pos.Dist(a.Pos); d <= reach && d < best {
			victim, best = a, d
		}
	}
	if p := &g.player; p.Alive() {
		if d := e.Pos.Dist(p.Pos); d <= reach && d < best {
			victim = p
		}
	}
	if victim == nil {
		return
	}
	e.Cooldown = cooldownFor(g.bal.Enemies.AttackRate)
	victim.TakeDamage(e.Damage)
}

// nearestTower returns the closest live tower within r of p, lowest id on ties.
func (g *Game) nearestTower(p core.Vec2, r float64) *Tower {
	var best *Tower
	bestD := 0.0
	for _, t := range g.towers {
		if !t.Alive() {
			continue
		}
		d := p.Dist(t.Pos)
		if d > r {
			continue
		}
		if best == nil || d < bestD || (d == bestD && t.ID < best.ID) {
			best, bestD = t, d
		}
	}
	return best
}
