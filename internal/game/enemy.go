package game

import "github.com/vovakirdan/bastion/internal/core"

// EnemyKind distinguishes enemy stat blocks and sprites.
type EnemyKind int

const (
	KindOrc EnemyKind = iota
	KindUruk
)

// String returns the kind name used in sprite keys and snapshots.
func (k EnemyKind) String() string {
	switch k {
	case KindOrc:
		return "orc"
	case KindUruk:
		return "uruk"
	default:
		return "unknown"
	}
}

func (k EnemyKind) valid() bool {
	return k == KindOrc || k == KindUruk
}

// EnemyState is the enemy AI state.
type EnemyState int

const (
	StateMoving EnemyState = iota
	StateAttackingTower
	StateAttackingCastle
)

// String returns the state name.
func (s EnemyState) String() string {
	switch s {
	case StateMoving:
		return "moving"
	case StateAttackingTower:
		return "attacking_tower"
	case StateAttackingCastle:
		return "attacking_castle"
	default:
		return "unknown"
	}
}

func (s EnemyState) valid() bool {
	return s >= StateMoving && s <= StateAttackingCastle
}

// Enemy is a hostile unit following a path toward the castle.
type Enemy struct {
	ID          EntityID
	Kind        EnemyKind
	Pos         core.Vec2
	Health      int
	MaxHealth   int
	Speed       float64
	Damage      int // Melee damage against the castle, allies and the player
	ArrowDamage int // Damage of arrows shot at towers
	Path        int
	Waypoint    int // Index of the next waypoint on Path
	State       EnemyState
	Target      EntityID // Tower being attacked in StateAttackingTower
	Cooldown    float64
	Wave        int
	rewarded    bool
}

func (e *Enemy) EntityID() EntityID { return e.ID }
func (e *Enemy) Position() core.Vec2 { return e.Pos }
func (e *Enemy) Alive() bool { return e.Health > 0 }
func (e *Enemy) TakeDamage(n int) int { return applyDamage(&e.Health, n) }
