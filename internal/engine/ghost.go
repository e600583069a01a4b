package engine

import (
	"sort"
	"time"

	"github.com/verte-zerg/retype/internal/model"
)

// Recorder samples (elapsed, cursor) at every accepted keystroke so a
// completed run can be stored as a ghost trace.
type Recorder struct {
	samples []model.GhostSample
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one sample. Elapsed times are kept non-decreasing: a sample
// earlier than the previous one is clamped to it.
func (r *Recorder) Record(elapsed time.Duration, position int) {
	if n := len(r.samples); n > 0 && elapsed < r.samples[n-1].Elapsed {
		elapsed = r.samples[n-1].Elapsed
	}
	r.samples = append(r.samples, model.GhostSample{Elapsed: elapsed, Position: position})
}

// Samples returns a copy of the recorded trace.
func (r *Recorder) Samples() []model.GhostSample {
	out := make([]model.GhostSample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Len returns the number of recorded samples.
func (r *Recorder) Len() int { return len(r.samples) }

// Reset discards all samples.
func (r *Recorder) Reset() { r.samples = r.samples[:0] }

// Comparator answers position-at-time queries against a stored ghost trace
// so a live session can compute its lead or lag.
type Comparator struct {
	trace model.GhostTrace
}

// NewComparator wraps a loaded ghost trace.
func NewComparator(trace model.GhostTrace) *Comparator {
	return &Comparator{trace: trace}
}

// Trace returns the wrapped ghost trace.
func (c *Comparator) Trace() model.GhostTrace { return c.trace }

// PositionAt returns the ghost cursor position of the latest sample with
// elapsed time at or before the query time: a step function, not an
// interpolation. Before the first sample the position is 0.
func (c *Comparator) PositionAt(elapsed time.Duration) int {
	samples := c.trace.Samples
	// First sample strictly after the query time.
	i := sort.Search(len(samples), func(i int) bool {
		return samples[i].Elapsed > elapsed
	})
	if i == 0 {
		return 0
	}
	return samples[i-1].Position
}

// Lead returns how many positions the live cursor is ahead of the ghost at
// the given elapsed time; negative means behind.
func (c *Comparator) Lead(cursor int, elapsed time.Duration) int {
	return cursor - c.PositionAt(elapsed)
}
