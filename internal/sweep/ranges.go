// Package sweep drives an estimator across a range of radii and forwards
// each estimate to a results sink.
package sweep

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxRangeValues bounds the number of radii a single range may expand to.
const MaxRangeValues = 1_000_000

// ErrInvalidRange is returned for ranges that cannot be expanded.
var ErrInvalidRange = errors.New("invalid range")

// RangeSpec defines a half-open floating-point range [Min, Max) walked in
// increments of Step.
type RangeSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultRadiusRange is the standard sweep: 0 to 100 (exclusive) in steps
// of 0.01, 10000 radii in total.
var DefaultRadiusRange = RangeSpec{Min: 0, Max: 100, Step: 0.01}

// ParseRangeSpec parses a "min:max:step" string into a RangeSpec.
// Returns an error if the format is invalid or values cannot be parsed.
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return RangeSpec{}, fmt.Errorf("%w %q: expected min:max:step", ErrInvalidRange, s)
	}

	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid min value %q: %w", parts[0], err)
	}

	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid max value %q: %w", parts[1], err)
	}

	step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid step value %q: %w", parts[2], err)
	}

	spec := RangeSpec{Min: min, Max: max, Step: step}
	if err := spec.Validate(); err != nil {
		return RangeSpec{}, err
	}
	return spec, nil
}

// String formats the spec in the form accepted by ParseRangeSpec.
func (r RangeSpec) String() string {
	return fmt.Sprintf("%g:%g:%g", r.Min, r.Max, r.Step)
}

// Validate checks the bounds are finite and the step positive.
func (r RangeSpec) Validate() error {
	for _, v := range []float64{r.Min, r.Max, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s contains a non-finite value", ErrInvalidRange, r)
		}
	}
	if r.Step <= 0 {
		return fmt.Errorf("%w: step must be positive, got %g", ErrInvalidRange, r.Step)
	}
	if r.Len() > MaxRangeValues {
		return fmt.Errorf("%w: %s expands to %d values (max %d)", ErrInvalidRange, r, r.Len(), MaxRangeValues)
	}
	return nil
}

// Len returns the number of values in the range: ceil((Max-Min)/Step),
// or zero when Max <= Min.
func (r RangeSpec) Len() int {
	if r.Step <= 0 || r.Max <= r.Min {
		return 0
	}
	q := (r.Max - r.Min) / r.Step
	if q > float64(math.MaxInt32) {
		return math.MaxInt32
	}
	// Absorb representation error so 0:1:0.1 yields 10 values, not 11.
	return int(math.Ceil(q - 1e-9))
}

// Values expands the range to Min + i*Step for i in [0, Len()). Computing
// each value from its index avoids accumulating rounding error over long
// sweeps. Returns nil for invalid ranges.
func (r RangeSpec) Values() []float64 {
	if err := r.Validate(); err != nil {
		return nil
	}
	n := r.Len()
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Min + float64(i)*r.Step
	}
	return out
}

// ParseCSVFloat64s parses a comma-separated list of float64 values.
// Returns nil, nil for empty input strings.
func ParseCSVFloat64s(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseRadii parses either a "min:max:step" range or a comma-separated
// list of radii.
func ParseRadii(s string) ([]float64, error) {
	if strings.Contains(s, ":") {
		spec, err := ParseRangeSpec(s)
		if err != nil {
			return nil, err
		}
		return spec.Values(), nil
	}
	return ParseCSVFloat64s(s)
}
