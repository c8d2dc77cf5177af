// Package geometry provides the pure predicates used to classify sampled
// segments: the radius-dependent validity region and the fixed central
// square the estimator measures hits against.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// CentralHalfWidth is the half-width of the central square [-0.5, 0.5]².
const CentralHalfWidth = 0.5

// cornerSigns enumerates the four quadrant sign combinations used to place
// the exclusion corners.
var cornerSigns = [4]r2.Vec{
	{X: -1, Y: -1},
	{X: -1, Y: 1},
	{X: 1, Y: -1},
	{X: 1, Y: 1},
}

// Region is the area in which segment endpoints are valid for a given
// radius: a square of half-width Radius+0.5 centred on the origin with
// a rounded exclusion carved out of each corner.
type Region struct {
	Radius float64
}

// HalfWidth returns the half-width of the outer bounding square.
func (g Region) HalfWidth() float64 {
	return g.Radius + CentralHalfWidth
}

// IsInvalid reports whether p falls outside the outer bound or inside an
// exclusion corner. Points exactly on either boundary are invalid.
func (g Region) IsInvalid(p r2.Vec) bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return true
	}
	h := g.HalfWidth()
	if p.X <= -h || h <= p.X || p.Y <= -h || h <= p.Y {
		return true
	}
	for _, s := range cornerSigns {
		if g.InExclusionCorner(p, s.X, s.Y) {
			return true
		}
	}
	return false
}

// InExclusionCorner reports whether p lies in the exclusion corner of the
// quadrant identified by the signs of sx and sy.
func (g Region) InExclusionCorner(p r2.Vec, sx, sy float64) bool {
	s := r2.Vec{X: math.Copysign(1, sx), Y: math.Copysign(1, sy)}
	anchor := r2.Scale(g.HalfWidth(), s)
	diagonal := r2.Scale(CentralHalfWidth, s)
	return r2.Norm(r2.Sub(p, anchor)) <= g.Radius && g.Radius <= r2.Norm(r2.Sub(p, diagonal))
}

// IsInCentralSquare reports whether both coordinates of p lie in the
// closed interval [-0.5, 0.5].
func IsInCentralSquare(p r2.Vec) bool {
	return -CentralHalfWidth <= p.X && p.X <= CentralHalfWidth &&
		-CentralHalfWidth <= p.Y && p.Y <= CentralHalfWidth
}
