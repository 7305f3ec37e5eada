// Package game implements the real-time tower-defense simulation: entities,
// combat, the enemy state machine, waves, economy, progression and the
// save snapshot. It performs no I/O; rendering, input, assets and
// persistence are collaborators supplied by the platform.
package game

import (
	"math"

	"github.com/vovakirdan/bastion/internal/core"
)

// EntityID identifies an entity within a match. IDs are never reused.
type EntityID uint64

// Combatant is anything that can be targeted and damaged.
type Combatant interface {
	EntityID() EntityID
	Position() core.Vec2
	Alive() bool
	TakeDamage(n int) int
}

// Facing is one of the four sprite directions.
type Facing int

const (
	FacingDown Facing = iota
	FacingUp
	FacingLeft
	FacingRight
)

// String returns the facing name used in sprite keys.
func (f Facing) String() string {
	switch f {
	case FacingUp:
		return "up"
	case FacingLeft:
		return "left"
	case FacingRight:
		return "right"
	default:
		return "down"
	}
}

// facingFor derives a facing from a movement vector's dominant axis.
// The zero vector keeps the current facing.
func facingFor(dir core.Vec2, current Facing) Facing {
	if dir.IsZero() {
		return current
	}
	if math.Abs(dir.X) >= math.Abs(dir.Y) {
		if dir.X < 0 {
			return FacingLeft
		}
		return FacingRight
	}
	if dir.Y < 0 {
		return FacingUp
	}
	return FacingDown
}

// applyDamage clamps health at zero and returns the damage actually dealt.
func applyDamage(health *int, n int) int {
	if n <= 0 || *health <= 0 {
		return 0
	}
	if n > *health {
		n = *health
	}
	*health -= n
	return n
}

// heal raises health by n without exceeding max and returns the amount restored.
func heal(health *int, max, n int) int {
	if n <= 0 || *health >= max {
		return 0
	}
	if *health+n > max {
		n = max - *health
	}
	*health += n
	return n
}

// cooldownFor converts an attack rate into a cooldown in seconds.
func cooldownFor(rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return 1 / rate
}

// tickDown decrements a timer, clamping at zero.
func tickDown(v *float64, dt float64) {
	*v -= dt
	if *v < 0 {
		*v = 0
	}
}
