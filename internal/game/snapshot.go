package game

import (
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/bastion/internal/core"
)

// SnapshotVersion is the save format version written by Snapshot.
const SnapshotVersion = 1

// SaveSnapshot is the complete, primitive-only state of an in-progress match.
type SaveSnapshot struct {
	Version     int                  `msgpack:"version"`
	MatchID     string               `msgpack:"match_id"`
	SavedAt     time.Time            `msgpack:"saved_at"`
	Player      PlayerSnapshot       `msgpack:"player"`
	Essence     int                  `msgpack:"essence"`
	Score       int                  `msgpack:"score"`
	Elapsed     float64              `msgpack:"elapsed"`
	Tick        uint64               `msgpack:"tick"`
	NextID      uint64               `msgpack:"next_id"`
	Castle      CastleSnapshot       `msgpack:"castle"`
	Wave        WaveSnapshot         `msgpack:"wave"`
	Towers      []TowerSnapshot      `msgpack:"towers"`
	Allies      []AllySnapshot       `msgpack:"allies"`
	Enemies     []EnemySnapshot      `msgpack:"enemies"`
	Projectiles []ProjectileSnapshot `msgpack:"projectiles"`
	Stats       MatchStats           `msgpack:"stats"`
}

// PlayerSnapshot is the saved character.
type PlayerSnapshot struct {
	ID        uint64  `msgpack:"id"`
	Name      string  `msgpack:"name"`
	X         float64 `msgpack:"x"`
	Y         float64 `msgpack:"y"`
	Health    int     `msgpack:"health"`
	MaxHealth int     `msgpack:"max_health"`
	Attack    int     `msgpack:"attack"`
	Level     int     `msgpack:"level"`
	Exp       int     `msgpack:"exp"`
	Facing    int     `msgpack:"facing"`
	Cooldown  float64 `msgpack:"cooldown"`
	Anim      float64 `msgpack:"anim"`
	Downed    float64 `msgpack:"downed"`
}

// CastleSnapshot is the saved castle.
type CastleSnapshot struct {
	Health    int `msgpack:"health"`
	MaxHealth int `msgpack:"max_health"`
}

// WaveSnapshot is the saved wave director.
type WaveSnapshot struct {
	Number     int     `msgpack:"number"`
	Phase      int     `msgpack:"phase"`
	Delay      float64 `msgpack:"delay"`
	SpawnTimer float64 `msgpack:"spawn_timer"`
	Remaining  int     `msgpack:"remaining"`
	Spawned    int     `msgpack:"spawned"`
	Alive      int     `msgpack:"alive"`
	NextPath   int     `msgpack:"next_path"`
}

// TowerSnapshot is a saved tower. Derived stats come from the tier table.
type TowerSnapshot struct {
	ID       uint64  `msgpack:"id"`
	X        float64 `msgpack:"x"`
	Y        float64 `msgpack:"y"`
	Level    int     `msgpack:"level"`
	Health   int     `msgpack:"health"`
	Cooldown float64 `msgpack:"cooldown"`
	Paid     int     `msgpack:"paid"`
}

// AllySnapshot is a saved ally.
type AllySnapshot struct {
	ID       uint64  `msgpack:"id"`
	X        float64 `msgpack:"x"`
	Y        float64 `msgpack:"y"`
	Health   int     `msgpack:"health"`
	Cooldown float64 `msgpack:"cooldown"`
	Facing   int     `msgpack:"facing"`
}

// EnemySnapshot is a saved enemy.
type EnemySnapshot struct {
	ID          uint64  `msgpack:"id"`
	Kind        string  `msgpack:"kind"`
	X           float64 `msgpack:"x"`
	Y           float64 `msgpack:"y"`
	Health      int     `msgpack:"health"`
	MaxHealth   int     `msgpack:"max_health"`
	Speed       float64 `msgpack:"speed"`
	Damage      int     `msgpack:"damage"`
	ArrowDamage int     `msgpack:"arrow_damage"`
	Path        int     `msgpack:"path"`
	Waypoint    int     `msgpack:"waypoint"`
	State       string  `msgpack:"state"`
	Target      uint64  `msgpack:"target"`
	Cooldown    float64 `msgpack:"cooldown"`
	Wave        int     `msgpack:"wave"`
}

// ProjectileSnapshot is a saved arrow.
type ProjectileSnapshot struct {
	ID     uint64  `msgpack:"id"`
	Owner  int     `msgpack:"owner"`
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	DirX   float64 `msgpack:"dir_x"`
	DirY   float64 `msgpack:"dir_y"`
	Speed  float64 `msgpack:"speed"`
	Damage int     `msgpack:"damage"`
	Life   float64 `msgpack:"life"`
	Target uint64  `msgpack:"target"`
}

// CorruptSnapshotError reports a snapshot that cannot be restored.
type CorruptSnapshotError struct {
	Field  string
	Reason string
}

func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("game: corrupt snapshot: %s: %s", e.Field, e.Reason)
}

func corrupt(field, format string, args ...any) error {
	return &CorruptSnapshotError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Snapshot captures the whole match. It does not modify the game; SavedAt is
// left for the caller to stamp.
func (g *Game) Snapshot() SaveSnapshot {
	p := g.player
	s := SaveSnapshot{
		Version: SnapshotVersion,
		MatchID: g.matchID,
		Player: PlayerSnapshot{
			ID:        uint64(p.ID),
			Name:      p.Name,
			X:         p.Pos.X,
			Y:         p.Pos.Y,
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			Attack:    p.Attack,
			Level:     g.prog.Level,
			Exp:       g.prog.Exp,
			Facing:    int(p.Facing),
			Cooldown:  p.Cooldown,
			Anim:      p.Anim,
			Downed:    p.Downed,
		},
		Essence: g.wallet.Balance(),
		Score:   g.score,
		Elapsed: g.elapsed,
		Tick:    g.tick,
		NextID:  uint64(g.nextID),
		Castle:  CastleSnapshot{Health: g.castle.Health, MaxHealth: g.castle.MaxHealth},
		Wave: WaveSnapshot{
			Number:     g.wave.Number,
			Phase:      int(g.wave.Phase),
			Delay:      g.wave.Delay,
			SpawnTimer: g.wave.SpawnTimer,
			Remaining:  g.wave.Remaining,
			Spawned:    g.wave.Spawned,
			Alive:      g.wave.Alive,
			NextPath:   g.wave.NextPath,
		},
		Stats: g.stats,
	}
	for _, t := range g.towers {
		s.Towers = append(s.Towers, TowerSnapshot{
			ID: uint64(t.ID), X: t.Pos.X, Y: t.Pos.Y, Level: t.Level,
			Health: t.Health, Cooldown: t.Cooldown, Paid: t.Paid,
		})
	}
	for _, a := range g.allies {
		s.Allies = append(s.Allies, AllySnapshot{
			ID: uint64(a.ID), X: a.Pos.X, Y: a.Pos.Y, Health: a.Health,
			Cooldown: a.Cooldown, Facing: int(a.Facing),
		})
	}
	for _, e := range g.enemies {
		s.Enemies = append(s.Enemies, EnemySnapshot{
			ID: uint64(e.ID), Kind: e.Kind.String(), X: e.Pos.X, Y: e.Pos.Y,
			Health: e.Health, MaxHealth: e.MaxHealth, Speed: e.Speed,
			Damage: e.Damage, ArrowDamage: e.ArrowDamage,
			Path: e.Path, Waypoint: e.Waypoint, State: e.State.String(),
			Target: uint64(e.Target), Cooldown: e.Cooldown, Wave: e.Wave,
		})
	}
	for _, pr := range g.projectiles {
		s.Projectiles = append(s.Projectiles, ProjectileSnapshot{
			ID: uint64(pr.ID), Owner: int(pr.Owner), X: pr.Pos.X, Y: pr.Pos.Y,
			DirX: pr.Dir.X, DirY: pr.Dir.Y, Speed: pr.Speed, Damage: pr.Damage,
			Life: pr.Life, Target: uint64(pr.Target),
		})
	}
	return s
}

func parseKind(s string) (EnemyKind, bool) {
	switch s {
	case "orc":
		return KindOrc, true
	case "uruk":
		return KindUruk, true
	}
	return 0, false
}

func parseState(s string) (EnemyState, bool) {
	for st := StateMoving; st <= StateAttackingCastle; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks a snapshot against this game's balance without applying it.
func (g *Game) Validate(s SaveSnapshot) error {
	if s.Version != SnapshotVersion {
		return corrupt("version", "unsupported version %d", s.Version)
	}
	if s.MatchID == "" {
		return corrupt("match_id", "missing")
	}
	if s.NextID == 0 {
		return corrupt("next_id", "missing")
	}
	ids := make(map[uint64]bool)
	checkID := func(field string, id uint64) error {
		if id == 0 || id >= s.NextID {
			return corrupt(field, "id %d outside allocated range", id)
		}
		if ids[id] {
			return corrupt(field, "duplicate id %d", id)
		}
		ids[id] = true
		return nil
	}

	p := s.Player
	if p.Name == "" {
		return corrupt("player.name", "missing")
	}
	if err := checkID("player.id", p.ID); err != nil {
		return err
	}
	if p.Level < 1 {
		return corrupt("player.level", "must be at least 1, got %d", p.Level)
	}
	if p.Exp < 0 {
		return corrupt("player.exp", "negative")
	}
	if p.MaxHealth <= 0 || p.Health < 0 || p.Health > p.MaxHealth {
		return corrupt("player.health", "%d outside [0, %d]", p.Health, p.MaxHealth)
	}
	if p.Facing < int(FacingDown) || p.Facing > int(FacingRight) {
		return corrupt("player.facing", "unknown facing %d", p.Facing)
	}
	if !finite(p.X, p.Y, p.Cooldown, p.Anim, p.Downed) || p.Downed < 0 {
		return corrupt("player", "invalid position or timer")
	}
	if s.Essence < 0 {
		return corrupt("essence", "negative")
	}
	if s.Score < 0 {
		return corrupt("score", "negative")
	}
	if s.Elapsed < 0 || !finite(s.Elapsed) {
		return corrupt("elapsed", "invalid")
	}
	if s.Castle.MaxHealth <= 0 || s.Castle.Health < 0 || s.Castle.Health > s.Castle.MaxHealth {
		return corrupt("castle.health", "%d outside [0, %d]", s.Castle.Health, s.Castle.MaxHealth)
	}

	w := s.Wave
	if w.Number < 0 || w.Remaining < 0 || w.Spawned < 0 || w.Alive < 0 {
		return corrupt("wave", "negative counter")
	}
	if !WavePhase(w.Phase).valid() {
		return corrupt("wave.phase", "unknown phase %d", w.Phase)
	}
	if !finite(w.Delay, w.SpawnTimer) {
		return corrupt("wave", "invalid timer")
	}
	if n := len(g.field.Paths); w.NextPath < 0 || w.NextPath >= n {
		return corrupt("wave.next_path", "path %d outside [0, %d)", w.NextPath, n)
	}

	for i, t := range s.Towers {
		field := fmt.Sprintf("towers[%d]", i)
		if err := checkID(field, t.ID); err != nil {
			return err
		}
		tier, ok := g.bal.Towers.Tier(t.Level)
		if !ok {
			return corrupt(field+".level", "level %d outside [1, %d]", t.Level, g.bal.Towers.MaxLevel())
		}
		if t.Health <= 0 || t.Health > tier.Health {
			return corrupt(field+".health", "%d outside (0, %d]", t.Health, tier.Health)
		}
		if !finite(t.X, t.Y, t.Cooldown) {
			return corrupt(field, "invalid position")
		}
	}
	for i, a := range s.Allies {
		field := fmt.Sprintf("allies[%d]", i)
		if err := checkID(field, a.ID); err != nil {
			return err
		}
		if a.Health <= 0 || a.Health > g.bal.Ally.Health {
			return corrupt(field+".health", "%d outside (0, %d]", a.Health, g.bal.Ally.Health)
		}
		if !finite(a.X, a.Y, a.Cooldown) {
			return corrupt(field, "invalid position")
		}
	}
	for i, e := range s.Enemies {
		field := fmt.Sprintf("enemies[%d]", i)
		if err := checkID(field, e.ID); err != nil {
			return err
		}
		if _, ok := parseKind(e.Kind); !ok {
			return corrupt(field+".kind", "unknown kind %q", e.Kind)
		}
		if _, ok := parseState(e.State); !ok {
			return corrupt(field+".state", "unknown state %q", e.State)
		}
		if e.Path < 0 || e.Path >= len(g.field.Paths) {
			return corrupt(field+".path", "unknown path %d", e.Path)
		}
		if e.Waypoint < 0 || e.Waypoint > len(g.field.Paths[e.Path]) {
			return corrupt(field+".waypoint", "waypoint %d outside path", e.Waypoint)
		}
		if e.MaxHealth <= 0 || e.Health <= 0 || e.Health > e.MaxHealth {
			return corrupt(field+".health", "%d outside (0, %d]", e.Health, e.MaxHealth)
		}
		if !finite(e.X, e.Y, e.Speed, e.Cooldown) || e.Speed < 0 {
			return corrupt(field, "invalid position or speed")
		}
	}
	for i, pr := range s.Projectiles {
		field := fmt.Sprintf("projectiles[%d]", i)
		if err := checkID(field, pr.ID); err != nil {
			return err
		}
		if pr.Owner != int(SideTower) && pr.Owner != int(SideEnemy) {
			return corrupt(field+".owner", "unknown side %d", pr.Owner)
		}
		if !finite(pr.X, pr.Y, pr.DirX, pr.DirY, pr.Speed, pr.Life) {
			return corrupt(field, "invalid motion")
		}
	}
	return nil
}

// Restore replaces the match with the snapshot's. The snapshot is fully
// validated first; on error the game is left untouched. Lifetime counters
// of the current character record are kept when the names match.
func (g *Game) Restore(s SaveSnapshot) error {
	if err := g.Validate(s); err != nil {
		g.logger.Warn("snapshot rejected", "error", err)
		return err
	}

	prog := g.prog
	if prog.Name != s.Player.Name {
		prog = NewProgression(s.Player.Name)
	}
	prog.Level = s.Player.Level
	prog.Exp = s.Player.Exp

	sp := s.Player
	player := Player{
		ID:        EntityID(sp.ID),
		Name:      sp.Name,
		Pos:       core.V(sp.X, sp.Y),
		Health:    sp.Health,
		MaxHealth: sp.MaxHealth,
		Attack:    sp.Attack,
		Facing:    Facing(sp.Facing),
		Cooldown:  sp.Cooldown,
		Anim:      sp.Anim,
		Downed:    sp.Downed,
	}

	towers := make([]*Tower, 0, len(s.Towers))
	for _, ts := range s.Towers {
		tier, _ := g.bal.Towers.Tier(ts.Level)
		t := &Tower{
			ID:       EntityID(ts.ID),
			Pos:      core.V(ts.X, ts.Y),
			Range:    g.bal.Towers.Range,
			Cooldown: ts.Cooldown,
			Paid:     ts.Paid,
		}
		t.applyTier(tier)
		t.Health = ts.Health
		towers = append(towers, t)
	}
	allies := make([]*Ally, 0, len(s.Allies))
	for _, as := range s.Allies {
		a := newAlly(EntityID(as.ID), core.V(as.X, as.Y), g.bal.Ally)
		a.Health = as.Health
		a.Cooldown = as.Cooldown
		a.Facing = Facing(as.Facing)
		allies = append(allies, a)
	}
	enemies := make([]*Enemy, 0, len(s.Enemies))
	for _, es := range s.Enemies {
		kind, _ := parseKind(es.Kind)
		state, _ := parseState(es.State)
		enemies = append(enemies, &Enemy{
			ID:          EntityID(es.ID),
			Kind:        kind,
			Pos:         core.V(es.X, es.Y),
			Health:      es.Health,
			MaxHealth:   es.MaxHealth,
			Speed:       es.Speed,
			Damage:      es.Damage,
			ArrowDamage: es.ArrowDamage,
			Path:        es.Path,
			Waypoint:    es.Waypoint,
			State:       state,
			Target:      EntityID(es.Target),
			Cooldown:    es.Cooldown,
			Wave:        es.Wave,
		})
	}
	shots := make([]*Projectile, 0, len(s.Projectiles))
	for _, ps := range s.Projectiles {
		shots = append(shots, &Projectile{
			ID:     EntityID(ps.ID),
			Owner:  Side(ps.Owner),
			Pos:    core.V(ps.X, ps.Y),
			Dir:    core.V(ps.DirX, ps.DirY),
			Speed:  ps.Speed,
			Damage: ps.Damage,
			Life:   ps.Life,
			Target: EntityID(ps.Target),
		})
	}

	wave := newWaveDirector(g.bal, g.diff)
	wave.Number = s.Wave.Number
	wave.Phase = WavePhase(s.Wave.Phase)
	wave.Delay = s.Wave.Delay
	wave.SpawnTimer = s.Wave.SpawnTimer
	wave.Remaining = s.Wave.Remaining
	wave.Spawned = s.Wave.Spawned
	wave.Alive = s.Wave.Alive
	wave.NextPath = s.Wave.NextPath

	g.prog = prog
	g.matchID = s.MatchID
	g.tick = s.Tick
	g.elapsed = s.Elapsed
	g.nextID = EntityID(s.NextID)
	g.player = player
	g.wallet = NewWallet(s.Essence)
	g.score = s.Score
	g.castle = newCastle(g.bal.Castle)
	g.castle.Health = s.Castle.Health
	g.castle.MaxHealth = s.Castle.MaxHealth
	g.wave = wave
	g.towers = towers
	g.allies = allies
	g.enemies = enemies
	g.projectiles = shots
	g.stats = s.Stats
	g.over = g.castle.Destroyed()
	g.events = nil
	g.logger.Info("match restored", "match", g.matchID, "wave", wave.Number, "score", g.score)
	return nil
}
