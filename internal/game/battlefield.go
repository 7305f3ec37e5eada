package game

import (
	"math"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
)

// Battlefield is the static map: bounds and enemy routes.
type Battlefield struct {
	Bounds    core.RectF
	Paths     [][]core.Vec2
	PathNames []string

	grid      float64
	pathWidth float64
	clearance float64
}

func newBattlefield(cfg config.BattlefieldConfig) Battlefield {
	b := Battlefield{
		Bounds:    core.RectF{W: cfg.Width, H: cfg.Height},
		grid:      cfg.GridSize,
		pathWidth: cfg.PathWidth,
		clearance: cfg.BuildClearance,
	}
	for _, p := range cfg.Paths {
		pts := make([]core.Vec2, len(p.Points))
		for i, pt := range p.Points {
			pts[i] = core.V(pt.X, pt.Y)
		}
		b.Paths = append(b.Paths, pts)
		b.PathNames = append(b.PathNames, p.Name)
	}
	return b
}

// Snap moves p to the center of its grid cell.
func (b Battlefield) Snap(p core.Vec2) core.Vec2 {
	if b.grid <= 0 {
		return p
	}
	return core.V(
		math.Floor(p.X/b.grid)*b.grid+b.grid/2,
		math.Floor(p.Y/b.grid)*b.grid+b.grid/2,
	)
}

// PathDistance returns the distance from p to the nearest path segment.
func (b Battlefield) PathDistance(p core.Vec2) float64 {
	best := math.Inf(1)
	for _, path := range b.Paths {
		for i := 1; i < len(path); i++ {
			if d := core.SegmentDistance(p, path[i-1], path[i]); d < best {
				best = d
			}
		}
	}
	return best
}

// blocksPath reports whether a footprint of radius r at p would sit on a path.
func (b Battlefield) blocksPath(p core.Vec2, r float64) bool {
	return b.PathDistance(p) < b.pathWidth/2+r+b.clearance
}

// inside reports whether a footprint of radius r at p fits in the bounds.
func (b Battlefield) inside(p core.Vec2, r float64) bool {
	return p.X-r >= b.Bounds.X && p.Y-r >= b.Bounds.Y &&
		p.X+r <= b.Bounds.X+b.Bounds.W && p.Y+r <= b.Bounds.Y+b.Bounds.H
}

// overlapsArea reports whether a footprint of radius r at p touches area
// grown by the build clearance.
func (b Battlefield) overlapsArea(p core.Vec2, r float64, area core.RectF) bool {
	m := r + b.clearance
	grown := core.RectF{X: area.X - m, Y: area.Y - m, W: area.W + 2*m, H: area.H + 2*m}
	return grown.Contains(p)
}
