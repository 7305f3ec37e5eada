package game

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
)

// Terminal signals the end of a match.
type Terminal int

const (
	TerminalNone Terminal = iota
	TerminalDefeat
)

// String returns the terminal condition name.
func (t Terminal) String() string {
	if t == TerminalDefeat {
		return "defeat"
	}
	return "none"
}

// FrameResult is returned by Advance.
type FrameResult struct {
	Tick     uint64
	Terminal Terminal
	Events   []Event
}

// MatchStats accumulates per-match totals for the session record.
type MatchStats struct {
	Kills          int
	TowersBuilt    int
	AlliesSummoned int
	WavesCompleted int
	ExpGained      int
	StartLevel     int
}

// Game owns every entity of a match and advances them frame by frame.
// It is not safe for concurrent use; one goroutine drives it.
type Game struct {
	bal      config.Balance
	field    Battlefield
	diff     *config.DifficultyManager
	logger   *log.Logger
	sprites  SpriteResolver
	maxDelta float64
	newID    func() string

	spriteCache map[SpriteKey]resolvedSprite

	matchID     string
	tick        uint64
	elapsed     float64
	nextID      EntityID
	player      Player
	prog        Progression
	wallet      Wallet
	score       int
	castle      Castle
	wave        WaveDirector
	towers      []*Tower
	allies      []*Ally
	enemies     []*Enemy
	projectiles []*Projectile
	stats       MatchStats
	over        bool

	events []Event
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithSprites sets the sprite resolver used by View.
func WithSprites(r SpriteResolver) Option {
	return func(g *Game) {
		g.sprites = r
	}
}

// WithMaxDelta overrides the per-frame delta cap (default 0.05 s).
func WithMaxDelta(d float64) Option {
	return func(g *Game) {
		if d > 0 {
			g.maxDelta = d
		}
	}
}

// WithMatchIDs overrides match id generation.
func WithMatchIDs(next func() string) Option {
	return func(g *Game) {
		if next != nil {
			g.newID = next
		}
	}
}

// New creates a game with the given balance and starts a fresh match for
// the default character. Call NewMatch to start for a specific profile.
func New(bal config.Balance, opts ...Option) *Game {
	g := &Game{
		bal:         bal,
		field:       newBattlefield(bal.Battlefield),
		diff:        config.NewDifficultyManager(bal.Difficulty),
		logger:      log.New(io.Discard),
		maxDelta:    core.DefaultConfig().MaxDelta,
		newID:       uuid.NewString,
		spriteCache: make(map[SpriteKey]resolvedSprite),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.NewMatch(NewProgression(""))
	return g
}

// NewMatch discards the current match and starts a fresh one for prog.
func (g *Game) NewMatch(prog Progression) {
	if prog.Name == "" {
		prog.Name = DefaultCharacterName
	}
	if prog.Level < 1 {
		prog.Level = 1
	}
	g.prog = prog
	g.matchID = g.newID()
	g.tick = 0
	g.elapsed = 0
	g.nextID = 1
	g.player = newPlayer(g.allocID(), prog.Name, prog.Level, g.bal.Player)
	g.wallet = NewWallet(g.bal.Economy.StartingEssence)
	g.score = 0
	g.castle = newCastle(g.bal.Castle)
	g.wave = newWaveDirector(g.bal, g.diff)
	g.towers = nil
	g.allies = nil
	g.enemies = nil
	g.projectiles = nil
	g.stats = MatchStats{StartLevel: prog.Level}
	g.over = false
	g.events = nil
	g.logger.Info("match started", "match", g.matchID, "character", prog.Name, "level", prog.Level)
}

func (g *Game) allocID() EntityID {
	id := g.nextID
	g.nextID++
	return id
}

func (g *Game) emit(e Event) {
	g.events = append(g.events, e)
}

// Advance runs one frame: intents, waves, movement and AI, combat, death
// processing and the terminal check, in that order. dt is clamped to the
// configured maximum. After defeat it does nothing.
func (g *Game) Advance(dt float64, intents []core.Intent) FrameResult {
	if g.over {
		return FrameResult{Tick: g.tick, Terminal: TerminalDefeat}
	}
	dt = core.ClampDelta(dt, g.maxDelta)
	g.events = g.events[:0]
	g.tick++
	g.elapsed += dt

	g.updatePlayerTimers(dt)
	g.applyIntents(dt, intents)
	g.updateWaves(dt)
	for _, t := range g.towers {
		g.updateTower(t, dt)
	}
	for _, a := range g.allies {
		g.updateAlly(a, dt)
	}
	for _, e := range g.enemies {
		g.updateEnemy(e, dt)
	}
	g.updateProjectiles(dt)
	g.purge()

	res := FrameResult{Tick: g.tick}
	if g.castle.Destroyed() {
		g.over = true
		res.Terminal = TerminalDefeat
		g.logger.Info("castle fallen", "match", g.matchID, "wave", g.wave.Number, "score", g.score)
	}
	if len(g.events) > 0 {
		res.Events = make([]Event, len(g.events))
		copy(res.Events, g.events)
	}
	return res
}

func (g *Game) updatePlayerTimers(dt float64) {
	p := &g.player
	tickDown(&p.Cooldown, dt)
	tickDown(&p.Anim, dt)
	if p.Downed > 0 {
		tickDown(&p.Downed, dt)
		if p.Downed == 0 {
			p.Health = p.MaxHealth
			p.Pos = core.V(g.bal.Player.StartX, g.bal.Player.StartY)
			g.emit(PlayerRespawned{})
		}
	}
}

func (g *Game) updateWaves(dt float64) {
	res := g.wave.update(dt)
	if res.completed > 0 {
		g.completeWave(res.completed)
	}
	if res.started {
		g.emit(WaveStarted{Wave: g.wave.Number, Count: g.wave.Remaining + g.wave.Spawned})
		g.logger.Info("wave started", "wave", g.wave.Number, "enemies", g.wave.Remaining+g.wave.Spawned)
	}
	for _, o := range res.spawns {
		g.spawnEnemy(o)
	}
}

func (g *Game) spawnEnemy(o spawnOrder) *Enemy {
	path := g.field.Paths[o.Path]
	e := &Enemy{
		ID:          g.allocID(),
		Kind:        o.Kind,
		Pos:         path[0],
		Health:      o.Health,
		MaxHealth:   o.Health,
		Speed:       o.Speed,
		Damage:      o.Damage,
		ArrowDamage: o.ArrowDamage,
		Path:        o.Path,
		Waypoint:    1,
		State:       StateMoving,
		Wave:        o.Wave,
	}
	g.enemies = append(g.enemies, e)
	g.emit(EnemySpawned{ID: e.ID, Kind: e.Kind, Wave: e.Wave, Path: e.Path})
	g.logger.Debug("enemy spawned", "id", e.ID, "kind", e.Kind, "wave", e.Wave, "path", g.field.PathNames[o.Path])
	return e
}

func (g *Game) completeWave(n int) {
	r := g.bal.Rewards
	essence := g.bal.Economy.WaveEssence
	g.wallet.Earn(essence)
	g.score += r.WaveScore
	g.stats.WavesCompleted++
	g.prog.WavesCompleted++
	g.emit(WaveCompleted{Wave: n, Essence: essence, Exp: r.WaveExp, Score: r.WaveScore})
	g.logger.Info("wave completed", "wave", n, "score", g.score)
	g.gainExp(r.WaveExp)
}

// gainExp credits experience and applies level-ups to the character.
func (g *Game) gainExp(n int) {
	if n <= 0 {
		return
	}
	from := g.prog.Level
	g.stats.ExpGained += n
	if gained := g.prog.AddExp(g.bal.Progression, n); gained > 0 {
		p := &g.player
		p.applyLevel(g.prog.Level, g.bal.Player)
		p.Health = p.MaxHealth
		p.Downed = 0
		g.emit(LevelUp{From: from, To: g.prog.Level})
		g.logger.Info("level up", "character", g.prog.Name, "from", from, "to", g.prog.Level)
	}
}

// purge removes dead entities and pays out kill rewards exactly once.
func (g *Game) purge() {
	r := g.bal.Rewards
	alive := g.enemies[:0]
	for _, e := range g.enemies {
		if e.Alive() {
			alive = append(alive, e)
			continue
		}
		if e.rewarded {
			continue
		}
		e.rewarded = true
		essence := g.bal.Economy.KillEssence
		g.wallet.Earn(essence)
		g.score += r.KillScore
		g.stats.Kills++
		g.prog.EnemiesKilled++
		g.wave.enemyRemoved(e.Wave)
		g.emit(EnemyKilled{ID: e.ID, Kind: e.Kind, Wave: e.Wave, Essence: essence, Exp: r.KillExp, Score: r.KillScore})
		g.gainExp(r.KillExp)
	}
	clear(g.enemies[len(alive):])
	g.enemies = alive

	towers := g.towers[:0]
	for _, t := range g.towers {
		if t.Alive() {
			towers = append(towers, t)
			continue
		}
		g.emit(TowerDestroyed{ID: t.ID})
		g.logger.Info("tower destroyed", "id", t.ID, "level", t.Level)
	}
	clear(g.towers[len(towers):])
	g.towers = towers

	allies := g.allies[:0]
	for _, a := range g.allies {
		if a.Alive() {
			allies = append(allies, a)
			continue
		}
		g.emit(AllyDied{ID: a.ID})
	}
	clear(g.allies[len(allies):])
	g.allies = allies

	shots := g.projectiles[:0]
	for _, p := range g.projectiles {
		if !p.spent {
			shots = append(shots, p)
		}
	}
	clear(g.projectiles[len(shots):])
	g.projectiles = shots

	p := &g.player
	if p.Health <= 0 && p.Downed == 0 {
		p.Downed = g.bal.Player.RespawnDelay
		if p.Downed <= 0 {
			p.Health = p.MaxHealth
		} else {
			g.emit(PlayerDowned{Respawn: p.Downed})
		}
	}
}

// MatchID returns the match identifier.
func (g *Game) MatchID() string { return g.matchID }

// Over reports whether the match has ended in defeat.
func (g *Game) Over() bool { return g.over }

// Score returns the current score.
func (g *Game) Score() int { return g.score }

// Essence returns the current essence balance.
func (g *Game) Essence() int { return g.wallet.Balance() }

// Elapsed returns match time in seconds.
func (g *Game) Elapsed() float64 { return g.elapsed }

// Wave returns the last wave started.
func (g *Game) Wave() int { return g.wave.Number }

// Progression returns a copy of the character record as of now.
func (g *Game) Progression() Progression { return g.prog }

// Stats returns the per-match totals.
func (g *Game) Stats() MatchStats { return g.stats }

// Player returns a copy of the character.
func (g *Game) Player() Player { return g.player }

// Castle returns a copy of the castle.
func (g *Game) Castle() Castle { return g.castle }

// Balance returns the balance the game was created with.
func (g *Game) Balance() config.Balance { return g.bal }

// Towers returns copies of the live towers in build order.
func (g *Game) Towers() []Tower {
	out := make([]Tower, len(g.towers))
	for i, t := range g.towers {
		out[i] = *t
	}
	return out
}

// Enemies returns copies of the live enemies in spawn order.
func (g *Game) Enemies() []Enemy {
	out := make([]Enemy, len(g.enemies))
	for i, e := range g.enemies {
		out[i] = *e
	}
	return out
}

// Allies returns copies of the live allies in summon order.
func (g *Game) Allies() []Ally {
	out := make([]Ally, len(g.allies))
	for i, a := range g.allies {
		out[i] = *a
	}
	return out
}

// Projectiles returns copies of the arrows in flight.
func (g *Game) Projectiles() []Projectile {
	out := make([]Projectile, len(g.projectiles))
	for i, p := range g.projectiles {
		out[i] = *p
	}
	return out
}
