package tool

import (
	"sync"
	"time"
)

// Stats is a snapshot of execution statistics, per tool or aggregated.
// Durations are reported in milliseconds, matching Result and Record.
type Stats struct {
	ToolName      string  `json:"tool_name,omitempty"`
	TotalCalls    int64   `json:"total_calls"`
	Successes     int64   `json:"successes"`
	Failures      int64   `json:"failures"`
	SuccessRate   float64 `json:"success_rate"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
	MinDurationMS int64   `json:"min_duration_ms"`
	MaxDurationMS int64   `json:"max_duration_ms"`
}

// Collector aggregates per-tool call counters and latency statistics. It
// is safe for concurrent use; Record is called exactly once per completed
// execution attempt.
type Collector struct {
	mu    sync.Mutex
	tools map[string]*series
}

type series struct {
	calls     int64
	successes int64
	failures  int64
	total     time.Duration
	min       time.Duration
	max       time.Duration
}

// NewCollector creates an empty metrics collector.
func NewCollector() *Collector {
	return &Collector{
		tools: make(map[string]*series),
	}
}

// Record registers one completed execution attempt.
func (c *Collector) Record(toolName string, success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.tools[toolName]
	if !ok {
		s = &series{}
		c.tools[toolName] = s
	}

	s.calls++
	if success {
		s.successes++
	} else {
		s.failures++
	}
	s.total += duration
	if s.calls == 1 || duration < s.min {
		s.min = duration
	}
	if duration > s.max {
		s.max = duration
	}
}

// Stats returns the statistics for one tool. The second return value is
// false if the tool has never been recorded.
func (c *Collector) Stats(toolName string) (Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.tools[toolName]
	if !ok {
		return Stats{}, false
	}
	return s.snapshot(toolName), true
}

// Aggregate returns statistics summed over all tools.
func (c *Collector) Aggregate() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	agg := series{}
	first := true
	for _, s := range c.tools {
		agg.calls += s.calls
		agg.successes += s.successes
		agg.failures += s.failures
		agg.total += s.total
		if first || s.min < agg.min {
			agg.min = s.min
		}
		if s.max > agg.max {
			agg.max = s.max
		}
		first = false
	}
	return agg.snapshot("")
}

// All returns per-tool statistics keyed by tool name.
func (c *Collector) All() map[string]Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Stats, len(c.tools))
	for name, s := range c.tools {
		out[name] = s.snapshot(name)
	}
	return out
}

// Reset clears all counters. Intended for test isolation.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tools = make(map[string]*series)
}

func (s *series) snapshot(name string) Stats {
	st := Stats{
		ToolName:      name,
		TotalCalls:    s.calls,
		Successes:     s.successes,
		Failures:      s.failures,
		MinDurationMS: s.min.Milliseconds(),
		MaxDurationMS: s.max.Milliseconds(),
	}
	if s.calls > 0 {
		st.SuccessRate = float64(s.successes) / float64(s.calls)
		st.AvgDurationMS = float64(s.total) / (float64(s.calls) * float64(time.Millisecond))
	}
	return st
}
