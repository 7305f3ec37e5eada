package game

import (
	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
)

// Castle is the defended structure. The match is lost when it falls.
type Castle struct {
	Area      core.RectF
	Health    int
	MaxHealth int
}

func newCastle(cfg config.CastleConfig) Castle {
	return Castle{
		Area:      core.RectF{X: cfg.X, Y: cfg.Y, W: cfg.Width, H: cfg.Height},
		Health:    cfg.Health,
		MaxHealth: cfg.Health,
	}
}

// Center returns the point enemies measure siege distance from.
func (c *Castle) Center() core.Vec2 { return c.Area.Center() }

// Destroyed reports whether the castle has fallen.
func (c *Castle) Destroyed() bool { return c.Health <= 0 }

// TakeDamage reduces castle health, clamped at zero.
func (c *Castle) TakeDamage(n int) int { return applyDamage(&c.Health, n) }
