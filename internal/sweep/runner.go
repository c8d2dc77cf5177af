package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xcthulhu/roland-mc/internal/estimator"
	"github.com/xcthulhu/roland-mc/internal/monitoring"
	"github.com/xcthulhu/roland-mc/internal/results"
	"github.com/xcthulhu/roland-mc/internal/timeutil"
)

// DefaultSamples is the number of accepted samples estimated per radius.
const DefaultSamples = 1000

// DefaultProgressInterval is how often the runner logs progress.
const DefaultProgressInterval = 10 * time.Second

// Estimator produces one estimate for a radius.
type Estimator interface {
	Estimate(r float64, targetSamples int) (estimator.Result, error)
}

// Runner walks a list of radii sequentially, estimating each one and
// handing the result to Sink before moving on.
type Runner struct {
	Estimator Estimator
	Sink      results.Sink
	Samples   int

	// Clock defaults to timeutil.RealClock.
	Clock timeutil.Clock
	// ProgressInterval defaults to DefaultProgressInterval.
	ProgressInterval time.Duration
}

// Run estimates every radius in order. Cancellation is checked between
// radii; an estimate already in progress runs to completion. The returned
// summary covers the radii written before any error.
func (r *Runner) Run(ctx context.Context, radii []float64) (Summary, error) {
	if r.Estimator == nil || r.Sink == nil {
		return Summary{}, errors.New("sweep runner requires an estimator and a sink")
	}
	samples := r.Samples
	if samples == 0 {
		samples = DefaultSamples
	}
	clock := r.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	interval := r.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	started := clock.Now()
	lastLog := started
	done := make([]estimator.Result, 0, len(radii))

	finish := func(err error) (Summary, error) {
		s := Summarize(done)
		s.Started = started
		s.Finished = clock.Now()
		return s, err
	}

	monitoring.Logf("sweep: %d radii, %d samples each", len(radii), samples)
	for i, radius := range radii {
		if err := ctx.Err(); err != nil {
			monitoring.Logf("sweep: stopped after %d of %d radii: %v", i, len(radii), err)
			return finish(err)
		}

		res, err := r.Estimator.Estimate(radius, samples)
		if err != nil {
			return finish(fmt.Errorf("estimate at radius %g: %w", radius, err))
		}
		if err := r.Sink.Write(res); err != nil {
			return finish(fmt.Errorf("write result for radius %g: %w", radius, err))
		}
		done = append(done, res)

		if clock.Since(lastLog) >= interval {
			lastLog = clock.Now()
			monitoring.Logf("sweep: %d/%d radii, r=%g ratio=%f acceptance=%.3f",
				i+1, len(radii), radius, res.Ratio, res.AcceptanceRate())
		}
	}

	s, _ := finish(nil)
	monitoring.Logf("sweep: finished %d radii in %v, mean ratio %.4f±%.4f, peak %.4f at r=%g",
		s.Radii, s.Elapsed(), s.MeanRatio, s.StdDevRatio, s.PeakRatio, s.PeakRadius)
	return s, nil
}
