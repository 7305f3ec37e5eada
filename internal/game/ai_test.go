package game

import (
	"testing"

	"github.com/vovakirdan/bastion/internal/core"
)

func buildAt(t *testing.T, g *Game, at core.Vec2) *Tower {
	t.Helper()
	g.wallet.Earn(g.bal.Towers.Cost)
	g.Advance(frame, []core.Intent{core.BuildTower(at)})
	for _, tw := range g.towers {
		if tw.Pos == g.field.Snap(at) {
			return tw
		}
	}
	t.Fatalf("tower at %v was not built", at)
	return nil
}

func TestEnemyEngagesTower(t *testing.T) {
	g := newTestGame(t)
	tw := buildAt(t, g, buildSpot2)
	e := addEnemy(g, tw.Pos.Add(core.V(100, 0)), 1_000_000)

	g.Advance(frame, nil)
	if e.State != StateAttackingTower || e.Target != tw.ID {
		t.Fatalf("state %v target %d, want attacking tower %d", e.State, e.Target, tw.ID)
	}
	start := e.Pos
	run(g, 1)
	if e.Pos != start {
		t.Errorf("enemy within attack range moved from %v to %v", start, e.Pos)
	}
}

func TestEnemyClosesToAttackRange(t *testing.T) {
	g := newTestGame(t)
	tw := buildAt(t, g, buildSpot2)
	// Inside detection range (180) but beyond attack range (130).
	e := addEnemy(g, tw.Pos.Add(core.V(170, 0)), 1_000_000)
	start := e.Pos

	g.Advance(frame, nil)
	if e.State != StateAttackingTower {
		t.Fatalf("state = %v, want attacking tower", e.State)
	}
	if e.Pos == start {
		t.Error("enemy beyond attack range should keep walking its path")
	}
}

func TestTowerDestroyedAfterTwentyHits(t *testing.T) {
	g := newTestGame(t)
	tw := buildAt(t, g, buildSpot2)
	e := addEnemy(g, tw.Pos.Add(core.V(100, 0)), 1_000_000)
	start := g.Elapsed()

	var destroyedAt float64
	var events []Event
	for i := 0; i < 60*30 && destroyedAt == 0; i++ {
		res := g.Advance(frame, nil)
		events = append(events, res.Events...)
		if countEvents[TowerDestroyed](res.Events) > 0 {
			destroyedAt = g.Elapsed() - start
		}
	}

	if destroyedAt == 0 {
		t.Fatal("tower was never destroyed")
	}
	// 100 health / 5 damage = 20 arrows at 1.5 per second.
	if destroyedAt < 13.3 || destroyedAt > 16 {
		t.Errorf("tower fell after %.2fs, want between 13.3s and 16s", destroyedAt)
	}
	if len(g.Towers()) != 0 {
		t.Error("destroyed tower still listed")
	}

	g.Advance(frame, nil)
	if e.State != StateMoving || e.Target != 0 {
		t.Errorf("state %v target %d after tower fell, want moving", e.State, e.Target)
	}
}

func TestEnemyReturnsToPathWhenTowerDies(t *testing.T) {
	g := newTestGame(t)
	tw := buildAt(t, g, buildSpot2)
	e := addEnemy(g, tw.Pos.Add(core.V(100, 0)), 1_000_000)
	g.Advance(frame, nil)

	tw.TakeDamage(1000)
	res := g.Advance(frame, nil)
	if e.State != StateMoving {
		t.Errorf("state = %v, want moving", e.State)
	}
	if countEvents[TowerDestroyed](res.Events) != 1 {
		t.Error("expected TowerDestroyed")
	}
}

func TestSiegeBeforeTowers(t *testing.T) {
	g := newTestGame(t)
	tw := buildAt(t, g, buildSpot)
	// 140 from the castle centre and 134 from the tower.
	e := addEnemy(g, core.V(500, 330), 100)
	if !e.Pos.Within(tw.Pos, g.bal.Enemies.DetectionRange) {
		t.Fatal("setup: enemy should see the tower")
	}

	g.Advance(frame, nil)
	if e.State != StateAttackingCastle {
		t.Fatalf("state = %v, want attacking castle", e.State)
	}

	// Terminal: it never leaves the castle.
	run(g, 2)
	if e.State != StateAttackingCastle {
		t.Errorf("state = %v, want attacking castle", e.State)
	}
}

func TestTowerEngagementGivesWayToSiege(t *testing.T) {
	g := newTestGame(t)
	tw := buildAt(t, g, buildSpot)
	// Engaged with a tower it cannot reach yet, 140 from the castle centre.
	e := addEnemy(g, core.V(500, 330), 100)
	e.State, e.Target = StateAttackingTower, tw.ID
	if e.Pos.Within(tw.Pos, g.bal.Enemies.AttackRange) || !e.Pos.Within(tw.Pos, g.bal.Enemies.DetectionRange) {
		t.Fatal("setup: tower should be detected but out of attack range")
	}

	g.Advance(frame, nil)
	if e.State != StateAttackingCastle || e.Target != 0 {
		t.Fatalf("state %v target %d, want attacking castle", e.State, e.Target)
	}
	start := e.Pos
	events := run(g, 2)
	if e.Pos != start {
		t.Errorf("sieging enemy moved from %v to %v", start, e.Pos)
	}
	if countEvents[CastleDamaged](events) == 0 {
		t.Error("castle took no damage")
	}
}

func TestSiegeDamagesCastle(t *testing.T) {
	g := newTestGame(t)
	e := addEnemy(g, core.V(640, 100), 100)

	events := run(g, 2)
	if e.State != StateAttackingCastle {
		t.Fatalf("state = %v, want attacking castle", e.State)
	}
	hits := countEvents[CastleDamaged](events)
	if hits < 2 || hits > 3 {
		t.Errorf("castle hits in 2s = %d, want 2 or 3", hits)
	}
	if got := g.Castle().Health; got != 500-10*hits {
		t.Errorf("castle health = %d, want %d", got, 500-10*hits)
	}
}

func TestEnemyFollowsPath(t *testing.T) {
	g := newTestGame(t)
	path := g.field.Paths[0]
	e := addEnemy(g, path[0], 100)

	// First leg is 320 long at 50 per second.
	run(g, 7)
	if e.Waypoint != 2 {
		t.Errorf("waypoint = %d, want 2", e.Waypoint)
	}
	if e.State != StateMoving {
		t.Errorf("state = %v, want moving", e.State)
	}
}

func TestContactStrike(t *testing.T) {
	g := newTestGame(t)
	// Far from the castle, on the west path, next to a summoned ally.
	at := core.V(100, 160)
	g.wallet.Earn(100)
	g.Advance(frame, []core.Intent{core.SummonAlly(at.Add(core.V(10, 0)))})
	e := addEnemy(g, at, 1_000_000)
	e.Speed = 0

	g.Advance(frame, nil)
	a := g.allies[0]
	if a.Health != 50 {
		t.Errorf("ally health = %d, want 50 after a 10 damage strike", a.Health)
	}
	if e.Health >= 1_000_000 {
		t.Error("ally should strike back")
	}
}

func TestTowerShootsEnemy(t *testing.T) {
	g := newTestGame(t)
	tw := buildAt(t, g, buildSpot2)
	e := addEnemy(g, tw.Pos.Add(core.V(100, 0)), 30)

	run(g, 0.5)
	if e.Health != 5 {
		t.Errorf("enemy health = %d, want 5 after one arrow", e.Health)
	}
	events := run(g, 1)
	if countEvents[EnemyKilled](events) != 1 {
		t.Error("second arrow should kill the enemy")
	}
}

func TestAllyFollowsPlayer(t *testing.T) {
	g := newTestGame(t)
	g.wallet.Earn(100)
	g.Advance(frame, []core.Intent{core.SummonAlly(core.V(100, 600))})

	run(g, 5)
	a := g.Allies()[0]
	if !a.Pos.Within(g.Player().Pos, g.bal.Ally.FollowDistance+1) {
		t.Errorf("ally at %v did not follow player at %v", a.Pos, g.Player().Pos)
	}
}
