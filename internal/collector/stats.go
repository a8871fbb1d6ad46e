package collector

import (
	"sync"
	"time"

	domain "github.com/collectwise/advisor/pkg/types"
)

// Stats tracks running per-source counters for observability: total
// searches, successes, failures, average response time and error rate.
type Stats struct {
	mu      sync.Mutex
	sources map[string]*sourceCounters
}

type sourceCounters struct {
	searches  int64
	successes int64
	failures  int64
	totalMS   float64
}

// NewStats creates an empty stats tracker.
func NewStats() *Stats {
	return &Stats{sources: make(map[string]*sourceCounters)}
}

// Record adds one search outcome for a source.
func (s *Stats) Record(sourceName string, elapsed time.Duration, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sources[sourceName]
	if !ok {
		c = &sourceCounters{}
		s.sources[sourceName] = c
	}

	c.searches++
	c.totalMS += float64(elapsed.Milliseconds())
	if failed {
		c.failures++
	} else {
		c.successes++
	}
}

// Snapshot returns a copy of all per-source stats.
func (s *Stats) Snapshot() map[string]domain.SourceStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.SourceStats, len(s.sources))
	for name, c := range s.sources {
		st := domain.SourceStats{
			Searches:  c.searches,
			Successes: c.successes,
			Failures:  c.failures,
		}
		if c.searches > 0 {
			st.AvgResponseMS = c.totalMS / float64(c.searches)
			st.ErrorRate = float64(c.failures) / float64(c.searches)
		}
		out[name] = st
	}
	return out
}
