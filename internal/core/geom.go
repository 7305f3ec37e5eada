// Package core provides fundamental types shared by the simulation and the
// platform layer. It contains no external dependencies (especially no Bubble
// Tea) to keep game logic pure and testable.
package core

import "math"

// Vec2 is a point or direction in battlefield units.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for constructing a Vec2.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Within reports whether o lies within radius r of v (inclusive).
func (v Vec2) Within(o Vec2, r float64) bool {
	dx, dy := v.X-o.X, v.Y-o.Y
	return dx*dx+dy*dy <= r*r
}

// Normalize returns the unit vector in the direction of v.
// The zero vector normalizes to itself.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// IsZero reports whether both components are zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Finite reports whether both components are finite numbers.
func (v Vec2) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// MoveToward steps from v toward target by at most step units.
// Returns the new position and whether the target was reached.
func (v Vec2) MoveToward(target Vec2, step float64) (Vec2, bool) {
	d := target.Sub(v)
	dist := d.Len()
	if dist <= step || dist == 0 {
		return target, true
	}
	return v.Add(d.Scale(step / dist)), false
}

// SegmentDistance returns the shortest distance from p to the segment ab.
func SegmentDistance(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ClampF(((p.X-a.X)*ab.X+(p.Y-a.Y)*ab.Y)/l2, 0, 1)
	return p.Dist(a.Add(ab.Scale(t)))
}

// RectF is an axis-aligned rectangle in battlefield units.
type RectF struct {
	X, Y float64 // Top-left corner
	W, H float64
}

// Contains reports whether p lies inside the rectangle (edges inclusive).
func (r RectF) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Clamp returns p moved to the nearest point inside the rectangle.
func (r RectF) Clamp(p Vec2) Vec2 {
	return Vec2{
		X: ClampF(p.X, r.X, r.X+r.W),
		Y: ClampF(p.Y, r.Y, r.Y+r.H),
	}
}

// Center returns the center point of the rectangle.
func (r RectF) Center() Vec2 {
	return Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Rect represents an axis-aligned box in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampDelta bounds a frame delta to [0, max]. A non-positive max disables the cap.
func ClampDelta(dt, max float64) float64 {
	if dt < 0 || math.IsNaN(dt) {
		return 0
	}
	if max > 0 && dt > max {
		return max
	}
	return dt
}
