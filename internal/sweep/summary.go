package sweep

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/xcthulhu/roland-mc/internal/estimator"
)

// Summary aggregates the estimates produced by one sweep.
type Summary struct {
	Radii         int
	MeanRatio     float64
	StdDevRatio   float64
	PeakRadius    float64
	PeakRatio     float64
	TotalDraws    int
	TotalAccepted int
	Started       time.Time
	Finished      time.Time
}

// Summarize computes the ratio statistics for results. Timestamps are left
// for the caller to fill in.
func Summarize(results []estimator.Result) Summary {
	s := Summary{Radii: len(results)}
	if len(results) == 0 {
		return s
	}

	ratios := make([]float64, len(results))
	for i, r := range results {
		ratios[i] = r.Ratio
		s.TotalDraws += r.Draws
		s.TotalAccepted += r.Accepted
	}

	if len(ratios) > 1 {
		s.MeanRatio, s.StdDevRatio = stat.MeanStdDev(ratios, nil)
	} else {
		s.MeanRatio = ratios[0]
	}

	peak := floats.MaxIdx(ratios)
	s.PeakRadius = results[peak].Radius
	s.PeakRatio = ratios[peak]
	return s
}

// Elapsed returns the wall-clock duration of the sweep.
func (s Summary) Elapsed() time.Duration {
	if s.Started.IsZero() || s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

// AcceptanceRate returns the fraction of all draws that were accepted.
func (s Summary) AcceptanceRate() float64 {
	if s.TotalDraws == 0 {
		return 0
	}
	return float64(s.TotalAccepted) / float64(s.TotalDraws)
}
