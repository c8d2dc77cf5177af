package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ParallelEpsilon is the magnitude below which a component of a segment's
// unit direction is treated as zero. A segment whose x component is below
// it is vertical and never meets the x = ±0.5 edges at a single point;
// likewise for horizontal segments and the y = ±0.5 edges.
const ParallelEpsilon = 1e-12

// Segment is a finite line segment between two endpoints.
type Segment struct {
	A, B r2.Vec
}

// NewSegment returns the segment of length r centred on center with
// orientation theta: center ± (r/2)(cos θ, sin θ).
func NewSegment(center r2.Vec, theta, r float64) Segment {
	half := r2.Scale(r/2, r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)})
	return Segment{
		A: r2.Add(center, half),
		B: r2.Sub(center, half),
	}
}

// Length returns the Euclidean distance between the endpoints.
func (s Segment) Length() float64 {
	return r2.Norm(r2.Sub(s.A, s.B))
}

// BoundsContain reports whether p lies inside the segment's axis-aligned
// bounding box, boundaries included.
func (s Segment) BoundsContain(p r2.Vec) bool {
	return math.Min(s.A.X, s.B.X) <= p.X && p.X <= math.Max(s.A.X, s.B.X) &&
		math.Min(s.A.Y, s.B.Y) <= p.Y && p.Y <= math.Max(s.A.Y, s.B.Y)
}

// Crossings returns the points where the segment's carrier line meets the
// four extended edges of the central square. Edges the line is parallel to
// (within ParallelEpsilon) are skipped, so the result never contains NaN or
// infinite coordinates. A degenerate segment has no carrier line and
// yields no crossings.
func (s Segment) Crossings() []r2.Vec {
	d := r2.Sub(s.A, s.B)
	n := r2.Norm(d)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	u := r2.Scale(1/n, d)

	out := make([]r2.Vec, 0, 4)
	if math.Abs(u.X) >= ParallelEpsilon {
		for _, x := range [2]float64{-CentralHalfWidth, CentralHalfWidth} {
			t := (x - s.A.X) / u.X
			out = append(out, r2.Vec{X: x, Y: s.A.Y + t*u.Y})
		}
	}
	if math.Abs(u.Y) >= ParallelEpsilon {
		for _, y := range [2]float64{CentralHalfWidth, -CentralHalfWidth} {
			t := (y - s.A.Y) / u.Y
			out = append(out, r2.Vec{X: s.A.X + t*u.X, Y: y})
		}
	}
	return out
}

// Hits reports whether the segment lies in or crosses the central square:
// either endpoint is inside it, or one of the edge crossings of the carrier
// line is both inside the square and within the segment's bounding box.
func (s Segment) Hits() bool {
	if IsInCentralSquare(s.A) || IsInCentralSquare(s.B) {
		return true
	}
	for _, p := range s.Crossings() {
		if IsInCentralSquare(p) && s.BoundsContain(p) {
			return true
		}
	}
	return false
}

// Valid reports whether both endpoints lie inside region g.
func (s Segment) Valid(g Region) bool {
	return !g.IsInvalid(s.A) && !g.IsInvalid(s.B)
}
