package game

import (
	"math"

	"github.com/vovakirdan/bastion/internal/config"
)

// WavePhase is the wave director's current activity.
type WavePhase int

const (
	PhaseCountdown WavePhase = iota // Waiting for the next wave
	PhaseSpawning                   // Releasing enemies one by one
	PhaseActive                     // All spawned, waiting for them to die
)

// String returns the phase name.
func (p WavePhase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhaseSpawning:
		return "spawning"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

func (p WavePhase) valid() bool {
	return p >= PhaseCountdown && p <= PhaseActive
}

// WaveDirector paces waves and decides what each spawned enemy looks like.
type WaveDirector struct {
	Number     int // Last wave started; 0 before the first
	Phase      WavePhase
	Delay      float64 // Countdown remaining
	SpawnTimer float64 // Time until the next spawn
	Remaining  int     // Enemies of this wave not yet spawned
	Spawned    int     // Enemies of this wave spawned so far
	Alive      int     // Spawned enemies of this wave still alive
	NextPath   int     // Round-robin path cursor

	waves   config.WaveConfig
	enemies config.EnemiesConfig
	paths   int
	diff    *config.DifficultyManager
}

// spawnOrder describes one enemy for the coordinator to create.
type spawnOrder struct {
	Kind        EnemyKind
	Path        int
	Wave        int
	Health      int
	Speed       float64
	Damage      int
	ArrowDamage int
}

// waveTick collects what the director did during one update.
type waveTick struct {
	started   bool
	completed int // Wave number completed this tick, or 0
	spawns    []spawnOrder
}

func newWaveDirector(bal config.Balance, diff *config.DifficultyManager) WaveDirector {
	return WaveDirector{
		Phase:   PhaseCountdown,
		Delay:   bal.Waves.FirstDelay,
		waves:   bal.Waves,
		enemies: bal.Enemies,
		paths:   len(bal.Battlefield.Paths),
		diff:    diff,
	}
}

// Count returns the number of enemies in wave n.
func (w *WaveDirector) Count(n int) int {
	if n < 1 {
		return 0
	}
	base := float64(w.waves.BaseCount) * math.Pow(w.waves.CountGrowth, float64(n-1))
	count := int(math.Floor(base * w.diff.CountMultiplier(n)))
	if count < 1 {
		count = 1
	}
	return count
}

// kindAt picks the kind of the i-th spawn of wave n. From the uruk start
// wave on, uruk hai are spread evenly so their share matches the ratio.
func (w *WaveDirector) kindAt(n, i int) EnemyKind {
	if n < w.enemies.UrukStartWave || w.enemies.UrukRatio <= 0 {
		return KindOrc
	}
	r := w.enemies.UrukRatio
	if math.Floor(float64(i+1)*r) > math.Floor(float64(i)*r) {
		return KindUruk
	}
	return KindOrc
}

// order builds the stats for the i-th spawn of wave n.
func (w *WaveDirector) order(n, i int) spawnOrder {
	kind := w.kindAt(n, i)
	stats := w.enemies.Orc
	if kind == KindUruk {
		stats = w.enemies.Uruk
	}
	hm, dm := w.diff.HealthMultiplier(n), w.diff.DamageMultiplier(n)
	health := float64(stats.Health + w.enemies.HealthPerWave*(n-1))
	damage := float64(stats.Damage + w.enemies.DamagePerWave*(n-1))
	arrow := float64(w.enemies.ArrowDamage + w.enemies.DamagePerWave*(n-1)/2)

	path := 0
	if w.paths > 0 {
		path = w.NextPath % w.paths
		w.NextPath = (w.NextPath + 1) % w.paths
	}
	return spawnOrder{
		Kind:        kind,
		Path:        path,
		Wave:        n,
		Health:      max(1, int(math.Round(health*hm))),
		Speed:       stats.Speed,
		Damage:      max(1, int(math.Round(damage*dm))),
		ArrowDamage: max(1, int(math.Round(arrow*dm))),
	}
}

// update advances the director by dt.
func (w *WaveDirector) update(dt float64) waveTick {
	var out waveTick
	switch w.Phase {
	case PhaseCountdown:
		w.Delay -= dt
		if w.Delay > 0 {
			return out
		}
		w.Number++
		w.Delay = 0
		w.Phase = PhaseSpawning
		w.Remaining = w.Count(w.Number)
		w.Spawned = 0
		w.Alive = 0
		w.SpawnTimer = 0
		out.started = true
		fallthrough
	case PhaseSpawning:
		w.SpawnTimer -= dt
		for w.SpawnTimer <= 0 && w.Remaining > 0 {
			out.spawns = append(out.spawns, w.order(w.Number, w.Spawned))
			w.Remaining--
			w.Spawned++
			w.Alive++
			w.SpawnTimer += w.waves.SpawnInterval
		}
		if w.Remaining == 0 {
			w.Phase = PhaseActive
			w.SpawnTimer = 0
		}
	case PhaseActive:
		if w.Alive <= 0 {
			out.completed = w.Number
			w.Alive = 0
			w.Phase = PhaseCountdown
			w.Delay = w.waves.Delay
		}
	}
	return out
}

// enemyRemoved tells the director an enemy of wave n has died.
func (w *WaveDirector) enemyRemoved(n int) {
	if n == w.Number && w.Alive > 0 {
		w.Alive--
	}
}

// EnemiesLeft returns enemies of the current wave not yet killed.
func (w *WaveDirector) EnemiesLeft() int {
	return w.Remaining + w.Alive
}
