package metrics

import "sync"

// Counter is a monotonically increasing, label-partitioned counter. Safe for
// concurrent use.
type Counter struct {
	name string

	mu       sync.Mutex
	total    int64
	byLabel  map[string]int64
}

// NewCounter creates a zero-valued counter.
func NewCounter(name string) *Counter {
	return &Counter{name: name, byLabel: make(map[string]int64)}
}

// Inc increments the counter's total and the given label's bucket by amount.
// An empty label increments only the total.
func (c *Counter) Inc(label string, amount int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total += amount
	if label != "" {
		c.byLabel[label] += amount
	}
}

// Value returns the running total.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// ByLabel returns a defensive copy of the per-label breakdown.
func (c *Counter) ByLabel() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.byLabel))
	for k, v := range c.byLabel {
		out[k] = v
	}
	return out
}

// CounterSummary is the JSON-serializable snapshot returned by the dashboard API.
type CounterSummary struct {
	Name    string           `json:"name"`
	Total   int64            `json:"total"`
	ByLabel map[string]int64 `json:"by_label"`
}

// Summary snapshots the counter for API responses.
func (c *Counter) Summary() CounterSummary {
	return CounterSummary{Name: c.name, Total: c.Value(), ByLabel: c.ByLabel()}
}
