// Package estimator implements the Monte Carlo estimate of the probability
// that a randomly placed segment of length r lies in, or crosses, the
// central square, conditioned on both endpoints falling inside the valid
// region for r.
package estimator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/xcthulhu/roland-mc/internal/geometry"
)

var (
	// ErrInvalidRadius is returned for negative, NaN or infinite radii.
	ErrInvalidRadius = errors.New("radius must be finite and non-negative")
	// ErrInvalidSampleCount is returned when the target sample count is not positive.
	ErrInvalidSampleCount = errors.New("target sample count must be positive")
	// ErrDrawsExhausted is returned when the draw cap is reached before
	// enough valid samples were accepted.
	ErrDrawsExhausted = errors.New("draw limit reached before target sample count")
)

// Outcome classifies a single draw.
type Outcome int

const (
	// OutcomeInvalid means an endpoint fell outside the valid region and the
	// draw is discarded.
	OutcomeInvalid Outcome = iota
	// OutcomeHit means the segment lies in or crosses the central square.
	OutcomeHit
	// OutcomeMiss means the segment is valid but misses the central square.
	OutcomeMiss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Sample is one draw as seen by a SampleHook.
type Sample struct {
	Center  r2.Vec
	Theta   float64
	Segment geometry.Segment
	Outcome Outcome
}

// SampleHook observes every draw, including discarded ones.
type SampleHook func(Sample)

// Result is the estimate produced for one radius.
type Result struct {
	Radius   float64
	Ratio    float64
	Hits     int
	Accepted int
	Draws    int
}

// StdErr returns the binomial standard error of the ratio.
func (r Result) StdErr() float64 {
	if r.Accepted == 0 {
		return 0
	}
	return math.Sqrt(r.Ratio * (1 - r.Ratio) / float64(r.Accepted))
}

// AcceptanceRate returns the fraction of draws that produced a valid sample.
func (r Result) AcceptanceRate() float64 {
	if r.Draws == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(r.Draws)
}

// Estimator draws segments from its own random source. It is not safe for
// concurrent use.
type Estimator struct {
	src      rand.Source
	maxDraws int
	hook     SampleHook
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithMaxDraws caps the number of draws a single Estimate call may make.
// Zero or a negative value leaves the loop unbounded.
func WithMaxDraws(n int) Option {
	return func(e *Estimator) {
		if n < 0 {
			n = 0
		}
		e.maxDraws = n
	}
}

// WithSampleHook registers a hook called after every draw is classified.
func WithSampleHook(h SampleHook) Option {
	return func(e *Estimator) {
		e.hook = h
	}
}

// New returns an Estimator drawing from src.
func New(src rand.Source, opts ...Option) *Estimator {
	e := &Estimator{src: src}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSeeded returns an Estimator backed by a PCG source seeded with seed.
// Two estimators with the same seed and options produce identical results.
func NewSeeded(seed uint64, opts ...Option) *Estimator {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15), opts...)
}

// MaxDraws returns the configured draw cap, zero when unbounded.
func (e *Estimator) MaxDraws() int {
	return e.maxDraws
}

// Classify decides the outcome of a single draw with the given centre and
// orientation for radius r.
func Classify(r float64, center r2.Vec, theta float64) Outcome {
	return classify(geometry.Region{Radius: r}, geometry.NewSegment(center, theta, r))
}

func classify(g geometry.Region, seg geometry.Segment) Outcome {
	if !seg.Valid(g) {
		return OutcomeInvalid
	}
	if seg.Hits() {
		return OutcomeHit
	}
	return OutcomeMiss
}

// Estimate draws segments until targetSamples valid ones have been
// accepted and returns the fraction classified as hits. Invalid draws are
// resampled and do not count towards the target.
func (e *Estimator) Estimate(r float64, targetSamples int) (Result, error) {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return Result{}, fmt.Errorf("%w: got %v", ErrInvalidRadius, r)
	}
	if targetSamples <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, targetSamples)
	}

	g := geometry.Region{Radius: r}
	h := g.HalfWidth()
	position := distuv.Uniform{Min: -h, Max: h, Src: e.src}
	angle := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: e.src}

	res := Result{Radius: r}
	for res.Accepted < targetSamples {
		if e.maxDraws > 0 && res.Draws >= e.maxDraws {
			return res, fmt.Errorf("radius %g: %w (%d draws, %d of %d accepted)",
				r, ErrDrawsExhausted, res.Draws, res.Accepted, targetSamples)
		}
		res.Draws++

		center := r2.Vec{X: position.Rand(), Y: position.Rand()}
		theta := angle.Rand()
		seg := geometry.NewSegment(center, theta, r)
		outcome := classify(g, seg)
		if e.hook != nil {
			e.hook(Sample{Center: center, Theta: theta, Segment: seg, Outcome: outcome})
		}

		switch outcome {
		case OutcomeInvalid:
			continue
		case OutcomeHit:
			res.Hits++
		}
		res.Accepted++
	}

	res.Ratio = float64(res.Hits) / float64(targetSamples)
	return res, nil
}
