package game

import (
	"testing"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
)

func TestWallet(t *testing.T) {
	w := NewWallet(100)

	if !w.Spend(50) || w.Balance() != 50 {
		t.Fatalf("Spend(50): balance %d, want 50", w.Balance())
	}
	if w.Spend(60) {
		t.Error("Spend(60) with 50 should fail")
	}
	if w.Balance() != 50 {
		t.Errorf("failed spend changed balance to %d", w.Balance())
	}
	if w.Spend(-1) {
		t.Error("negative spend should fail")
	}
	w.Earn(-5)
	w.Earn(15)
	if w.Balance() != 65 {
		t.Errorf("Balance = %d, want 65", w.Balance())
	}
	if !w.CanAfford(65) || w.CanAfford(66) {
		t.Error("CanAfford boundary wrong")
	}
	if NewWallet(-10).Balance() != 0 {
		t.Error("negative starting balance should be zero")
	}
}

func TestExpToNext(t *testing.T) {
	cfg := config.DefaultBalance().Progression
	tests := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
		{0, 100},
	}
	for _, tt := range tests {
		if got := ExpToNext(cfg, tt.level); got != tt.want {
			t.Errorf("ExpToNext(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestAddExp(t *testing.T) {
	cfg := config.DefaultBalance().Progression

	t.Run("threshold", func(t *testing.T) {
		p := NewProgression("")
		if p.AddExp(cfg, 99) != 0 || p.Level != 1 {
			t.Fatalf("99 exp should not level, got level %d", p.Level)
		}
		if p.AddExp(cfg, 1) != 1 || p.Level != 2 || p.Exp != 0 {
			t.Errorf("level %d exp %d, want 2 and 0", p.Level, p.Exp)
		}
	})

	t.Run("multi level", func(t *testing.T) {
		p := NewProgression("")
		if got := p.AddExp(cfg, 260); got != 2 {
			t.Errorf("levels gained = %d, want 2", got)
		}
		if p.Level != 3 || p.Exp != 10 || p.TotalExp != 260 {
			t.Errorf("got %+v, want level 3 exp 10", p)
		}
	})

	t.Run("ignores non-positive", func(t *testing.T) {
		p := NewProgression("")
		p.AddExp(cfg, -50)
		if p.Exp != 0 || p.TotalExp != 0 {
			t.Errorf("negative exp credited: %+v", p)
		}
	})
}

func TestBuildTower(t *testing.T) {
	g := newTestGame(t)

	res := g.Advance(frame, []core.Intent{core.BuildTower(buildSpot)})
	towers := g.Towers()
	if len(towers) != 1 {
		t.Fatalf("towers = %d, want 1 (events %v)", len(towers), res.Events)
	}
	tw := towers[0]
	if tw.Pos != core.V(496, 464) {
		t.Errorf("tower at %v, want snapped (496, 464)", tw.Pos)
	}
	if tw.Level != 1 || tw.Health != 100 || tw.Damage != 25 || tw.FireRate != 1.0 {
		t.Errorf("tower = %+v, want tier 1 stats", tw)
	}
	if g.Essence() != 50 {
		t.Errorf("Essence = %d, want 50", g.Essence())
	}
	if g.Score() != 20 || g.Progression().Exp != 10 {
		t.Errorf("score %d exp %d, want 20 and 10", g.Score(), g.Progression().Exp)
	}
	if countEvents[TowerBuilt](res.Events) != 1 {
		t.Error("expected TowerBuilt event")
	}
}

func TestBuildTowerRejected(t *testing.T) {
	tests := []struct {
		name   string
		pos    core.Vec2
		reason RejectReason
		setup  func(g *Game)
	}{
		{"on path", core.V(320, 240), RejectInvalidPosition, nil},
		{"on castle", core.V(640, 320), RejectInvalidPosition, nil},
		{"outside", core.V(-100, 50), RejectInvalidPosition, nil},
		{"far outside", core.V(2000, 100), RejectInvalidPosition, nil},
		{"overlapping", buildSpot, RejectInvalidPosition, func(g *Game) {
			g.Advance(frame, []core.Intent{core.BuildTower(buildSpot)})
		}},
		{"poor", buildSpot, RejectInsufficientEssence, func(g *Game) {
			g.wallet = NewWallet(49)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t)
			if tt.setup != nil {
				tt.setup(g)
			}
			essence, towers := g.Essence(), len(g.Towers())

			res := g.Advance(frame, []core.Intent{core.BuildTower(tt.pos)})

			if g.Essence() != essence || len(g.Towers()) != towers {
				t.Errorf("rejected build changed state: essence %d towers %d", g.Essence(), len(g.Towers()))
			}
			found := false
			for _, ev := range res.Events {
				if r, ok := ev.(IntentRejected); ok && r.Intent == core.IntentBuildTower && r.Reason == tt.reason {
					found = true
				}
			}
			if !found {
				t.Errorf("expected IntentRejected(%s), got %v", tt.reason, res.Events)
			}
		})
	}
}

func TestTowerUpgradeTable(t *testing.T) {
	g := newTestGame(t)
	g.Advance(frame, []core.Intent{core.BuildTower(buildSpot)})
	id := g.Towers()[0].ID

	res := g.Advance(frame, []core.Intent{core.UpgradeTower(uint64(id))})
	if countEvents[IntentRejected](res.Events) != 1 || g.Towers()[0].Level != 1 {
		t.Fatal("upgrade with 50 essence should be rejected")
	}

	g.wallet.Earn(1000)
	want := []struct {
		level, health, damage int
		rate                  float64
		cost                  int
	}{
		{2, 125, 33, 1.2, 75},
		{3, 150, 41, 1.2, 100},
		{4, 175, 49, 1.4, 150},
		{5, 200, 57, 1.4, 200},
	}
	for _, w := range want {
		before := g.Essence()
		g.Advance(frame, []core.Intent{core.UpgradeTower(uint64(id))})
		tw := g.Towers()[0]
		if tw.Level != w.level || tw.MaxHealth != w.health || tw.Health != w.health ||
			tw.Damage != w.damage || tw.FireRate != w.rate {
			t.Errorf("level %d: got %+v", w.level, tw)
		}
		if spent := before - g.Essence(); spent != w.cost {
			t.Errorf("level %d cost %d, want %d", w.level, spent, w.cost)
		}
	}

	before := g.Essence()
	res = g.Advance(frame, []core.Intent{core.UpgradeTower(uint64(id))})
	if g.Essence() != before || g.Towers()[0].Level != 5 {
		t.Error("upgrade past level 5 changed state")
	}
	if len(res.Events) != 1 || res.Events[0] != (IntentRejected{Intent: core.IntentUpgradeTower, Reason: RejectMaxLevel}) {
		t.Errorf("events = %v, want max level rejection", res.Events)
	}
}

func TestTowerUpgradeKeepsDamage(t *testing.T) {
	g := newTestGame(t)
	g.wallet.Earn(1000)
	g.Advance(frame, []core.Intent{core.BuildTower(buildSpot)})
	g.towers[0].TakeDamage(40)

	g.Advance(frame, []core.Intent{core.UpgradeTower(uint64(g.towers[0].ID))})
	if tw := g.Towers()[0]; tw.Health != 85 || tw.MaxHealth != 125 {
		t.Errorf("health %d/%d, want 85/125", tw.Health, tw.MaxHealth)
	}
}

func TestTowerRepair(t *testing.T) {
	g := newTestGame(t)
	g.Advance(frame, []core.Intent{core.BuildTower(buildSpot)})
	tw := g.towers[0]

	res := g.Advance(frame, []core.Intent{core.RepairTower(uint64(tw.ID))})
	if len(res.Events) != 1 || res.Events[0] != (IntentRejected{Intent: core.IntentRepairTower, Reason: RejectFullHealth}) {
		t.Errorf("repair at full health: events %v", res.Events)
	}

	tw.TakeDamage(60)
	res = g.Advance(frame, []core.Intent{core.RepairTower(uint64(tw.ID))})
	if tw.Health != 90 {
		t.Errorf("Health = %d, want 90", tw.Health)
	}
	if g.Essence() != 15 {
		t.Errorf("Essence = %d, want 15 after 35 repair", g.Essence())
	}
	if countEvents[TowerRepaired](res.Events) != 1 {
		t.Error("expected TowerRepaired")
	}

	res = g.Advance(frame, []core.Intent{core.RepairTower(999)})
	if len(res.Events) != 1 || res.Events[0] != (IntentRejected{Intent: core.IntentRepairTower, Reason: RejectUnknownTower}) {
		t.Errorf("unknown tower repair: events %v", res.Events)
	}
}

func TestSummonAlly(t *testing.T) {
	g := newTestGame(t)
	at := g.Player().Pos

	res := g.Advance(frame, []core.Intent{core.SummonAlly(at)})
	if len(g.Allies()) != 1 || g.Essence() != 25 || g.Score() != 30 {
		t.Fatalf("allies %d essence %d score %d", len(g.Allies()), g.Essence(), g.Score())
	}
	if countEvents[AllySummoned](res.Events) != 1 {
		t.Error("expected AllySummoned")
	}

	res = g.Advance(frame, []core.Intent{core.SummonAlly(at)})
	if len(g.Allies()) != 1 || countEvents[IntentRejected](res.Events) != 1 {
		t.Error("second summon with 25 essence should be rejected")
	}

	g.wallet.Earn(100)
	res = g.Advance(frame, []core.Intent{core.SummonAlly(core.V(-5, 10))})
	if len(g.Allies()) != 1 || countEvents[IntentRejected](res.Events) != 1 {
		t.Error("summon outside the battlefield should be rejected")
	}
}
