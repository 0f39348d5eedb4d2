// Package profiler buffers query captures from a request/batch and groups
// them by normalized SQL so the engine can analyze each distinct query at
// most once and flag N+1 access patterns.
//
// Grounded on the teacher's internal/core query-hook capture idiom
// (DetectOperation-style inspection of executed statements) and
// internal/cache's concurrency style (mutex-guarded mutation, atomic
// counters for read-mostly stats), generalized here into a capture buffer
// with a copy-on-read snapshot instead of a prepared-statement cache.
package profiler

import (
	"sync"

	"github.com/karimalihussein/querysentinel/internal/capture"
)

// DefaultNPlusOneThreshold is the minimum number of identical normalized
// queries within one batch that flags an N+1 access pattern.
const DefaultNPlusOneThreshold = 5

// CaptureBuffer accumulates query captures from concurrent callers,
// serializing inserts under a mutex. Analysis of captured queries happens
// serially afterward in the caller's context, never inside Append.
type CaptureBuffer struct {
	mu       sync.Mutex
	captures []capture.Capture
}

// NewCaptureBuffer returns an empty buffer.
func NewCaptureBuffer() *CaptureBuffer {
	return &CaptureBuffer{}
}

// Append records one capture. Safe for concurrent callers.
func (b *CaptureBuffer) Append(c capture.Capture) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.captures = append(b.captures, c)
}

// Snapshot returns a copy of the buffer's current contents, so a
// ProfileReport built from it observes a consistent point-in-time view even
// if Append is called concurrently afterward.
func (b *CaptureBuffer) Snapshot() []capture.Capture {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]capture.Capture, len(b.captures))
	copy(out, b.captures)
	return out
}

// QueryGroup is one normalized query's captures, in capture order.
type QueryGroup struct {
	NormalizedSQL string
	SampleSQL     string
	Captures      []capture.Capture
}

// Group buckets captures by normalized SQL, preserving first-seen order
// across groups.
func Group(captures []capture.Capture) []QueryGroup {
	index := make(map[string]int)
	var groups []QueryGroup

	for _, c := range captures {
		norm := c.Normalize()
		if i, ok := index[norm]; ok {
			groups[i].Captures = append(groups[i].Captures, c)
			continue
		}
		index[norm] = len(groups)
		groups = append(groups, QueryGroup{
			NormalizedSQL: norm,
			SampleSQL:     c.SQL(),
			Captures:      []capture.Capture{c},
		})
	}

	return groups
}

// DetectNPlusOne returns the normalized SQL of every group whose capture
// count meets or exceeds threshold.
func DetectNPlusOne(groups []QueryGroup, threshold int) []string {
	var flagged []string
	for _, g := range groups {
		if len(g.Captures) >= threshold {
			flagged = append(flagged, g.NormalizedSQL)
		}
	}
	return flagged
}

// TotalElapsedMS sums the elapsed time of every capture in the group.
func (g QueryGroup) TotalElapsedMS() float64 {
	total := 0.0
	for _, c := range g.Captures {
		total += c.ElapsedMS()
	}
	return total
}

// AvgElapsedMS is TotalElapsedMS divided by capture count, or 0 for an
// empty group.
func (g QueryGroup) AvgElapsedMS() float64 {
	if len(g.Captures) == 0 {
		return 0
	}
	return g.TotalElapsedMS() / float64(len(g.Captures))
}
