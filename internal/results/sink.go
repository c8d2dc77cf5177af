// Package results provides the sinks that receive one estimate per radius
// and the reader for the tab-separated result table.
package results

import (
	"errors"
	"sync"

	"github.com/xcthulhu/roland-mc/internal/estimator"
)

// Sink receives one record per radius. Implementations must not retain
// the caller's Result beyond the Write call unless documented otherwise.
type Sink interface {
	Write(estimator.Result) error
	Close() error
}

// MultiSink forwards every record to each of its sinks in order.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink returns a sink fanning out to sinks. Nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Write stops at the first sink that fails.
func (m *MultiSink) Write(res estimator.Result) error {
	for _, s := range m.sinks {
		if err := s.Write(res); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Row is one line of the result table.
type Row struct {
	Radius float64
	Ratio  float64
}

// Collector keeps every record in memory, for rendering charts once a sweep
// has finished.
type Collector struct {
	mu   sync.Mutex
	rows []Row
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Write(res estimator.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append(c.rows, Row{Radius: res.Radius, Ratio: res.Ratio})
	return nil
}

func (c *Collector) Close() error { return nil }

// Rows returns a copy of the collected rows in write order.
func (c *Collector) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}
