package game

import "github.com/vovakirdan/bastion/internal/core"

// applyIntents executes the frame's commands. Invalid commands are no-ops
// that emit IntentRejected; they never fail the frame.
func (g *Game) applyIntents(dt float64, intents []core.Intent) {
	var move core.Vec2
	for _, in := range intents {
		switch in.Kind {
		case core.IntentMove:
			move = in.Dir
		case core.IntentAttack:
			g.playerAttack()
		case core.IntentBuildTower:
			g.buildTower(in.Pos)
		case core.IntentUpgradeTower:
			g.upgradeTower(EntityID(in.Target))
		case core.IntentRepairTower:
			g.repairTower(EntityID(in.Target))
		case core.IntentSummonAlly:
			g.summonAlly(in.Pos)
		}
	}
	p := &g.player
	if p.canAct() && !p.rooted() {
		p.move(move, dt, g.bal.Player.Speed, g.field.Bounds)
	}
}

func (g *Game) reject(kind core.IntentKind, reason RejectReason) {
	g.emit(IntentRejected{Intent: kind, Reason: reason})
	g.logger.Debug("intent rejected", "intent", kind, "reason", reason)
}

// playerAttack swings at every enemy in reach and knocks them back.
// A swing during cooldown is ignored silently.
func (g *Game) playerAttack() {
	p := &g.player
	if !p.canAct() {
		g.reject(core.IntentAttack, RejectDowned)
		return
	}
	if !p.ready() {
		return
	}
	p.swing(g.bal.Player)
	for _, e := range g.enemies {
		if !e.Alive() || !p.Pos.Within(e.Pos, g.bal.Player.AttackRange) {
			continue
		}
		e.TakeDamage(p.Attack)
		push := e.Pos.Sub(p.Pos).Normalize()
		if push.IsZero() {
			push = core.V(1, 0)
		}
		e.Pos = g.field.Bounds.Clamp(e.Pos.Add(push.Scale(g.bal.Player.Knockback)))
	}
}

// canPlaceTower reports whether a tower fits at an already snapped position.
func (g *Game) canPlaceTower(pos core.Vec2) bool {
	r := g.bal.Towers.Radius
	if !g.field.inside(pos, r) {
		return false
	}
	if g.field.overlapsArea(pos, r, g.castle.Area) {
		return false
	}
	if g.field.blocksPath(pos, r) {
		return false
	}
	for _, t := range g.towers {
		if t.Pos.Dist(pos) < 2*r {
			return false
		}
	}
	return true
}

func (g *Game) buildTower(at core.Vec2) {
	if !at.Finite() {
		g.reject(core.IntentBuildTower, RejectInvalidPosition)
		return
	}
	pos := g.field.Snap(at)
	if !g.canPlaceTower(pos) {
		g.reject(core.IntentBuildTower, RejectInvalidPosition)
		return
	}
	cost := g.bal.Towers.Cost
	if !g.wallet.Spend(cost) {
		g.reject(core.IntentBuildTower, RejectInsufficientEssence)
		return
	}
	t := newTower(g.allocID(), pos, g.bal.Towers)
	g.towers = append(g.towers, t)
	g.score += g.bal.Rewards.TowerBuiltScore
	g.stats.TowersBuilt++
	g.prog.TowersBuilt++
	g.emit(TowerBuilt{ID: t.ID, Pos: pos, Cost: cost})
	g.logger.Debug("tower built", "id", t.ID, "x", pos.X, "y", pos.Y)
	g.gainExp(g.bal.Rewards.TowerBuiltExp)
}

func (g *Game) towerByID(id EntityID) *Tower {
	for _, t := range g.towers {
		if t.ID == id && t.Alive() {
			return t
		}
	}
	return nil
}

func (g *Game) upgradeTower(id EntityID) {
	t := g.towerByID(id)
	if t == nil {
		g.reject(core.IntentUpgradeTower, RejectUnknownTower)
		return
	}
	cost, ok := t.upgradeCost(g.bal.Towers)
	if !ok {
		g.reject(core.IntentUpgradeTower, RejectMaxLevel)
		return
	}
	if !g.wallet.Spend(cost) {
		g.reject(core.IntentUpgradeTower, RejectInsufficientEssence)
		return
	}
	tier, _ := g.bal.Towers.Tier(t.Level + 1)
	t.applyTier(tier)
	t.Paid += cost
	g.score += g.bal.Rewards.UpgradeScore
	g.emit(TowerUpgraded{ID: t.ID, Level: t.Level, Cost: cost})
	g.logger.Debug("tower upgraded", "id", t.ID, "level", t.Level)
	g.gainExp(g.bal.Rewards.TowerUpgradedExp)
}

func (g *Game) repairTower(id EntityID) {
	t := g.towerByID(id)
	if t == nil {
		g.reject(core.IntentRepairTower, RejectUnknownTower)
		return
	}
	if t.Health >= t.MaxHealth {
		g.reject(core.IntentRepairTower, RejectFullHealth)
		return
	}
	cost := t.repairCost(g.bal.Towers)
	if !g.wallet.Spend(cost) {
		g.reject(core.IntentRepairTower, RejectInsufficientEssence)
		return
	}
	restored := heal(&t.Health, t.MaxHealth, t.repairAmount(g.bal.Towers))
	g.emit(TowerRepaired{ID: t.ID, Restored: restored, Cost: cost})
}

func (g *Game) summonAlly(at core.Vec2) {
	if !at.Finite() || !g.field.Bounds.Contains(at) {
		g.reject(core.IntentSummonAlly, RejectInvalidPosition)
		return
	}
	cost := g.bal.Ally.Cost
	if !g.wallet.Spend(cost) {
		g.reject(core.IntentSummonAlly, RejectInsufficientEssence)
		return
	}
	a := newAlly(g.allocID(), at, g.bal.Ally)
	g.allies = append(g.allies, a)
	g.score += g.bal.Rewards.AllyScore
	g.stats.AlliesSummoned++
	g.emit(AllySummoned{ID: a.ID, Pos: at, Cost: cost})
}
