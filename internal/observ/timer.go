// Package observ carries the small observability helpers of the driver:
// pass timing for --timings output.
package observ

import (
	"fmt"
	"time"
)

// entry accumulates every run of one pass across the manager's sweeps.
type entry struct {
	name string
	dur  time.Duration
	runs int
}

// Timer aggregates pass execution time. The same pass name runs once per
// sweep; runs fold into a single entry, kept in first-seen order.
type Timer struct {
	active  []pending
	order   []string
	entries map[string]*entry
}

type pending struct {
	name  string
	start time.Time
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{entries: make(map[string]*entry, 8)}
}

// Begin starts timing one pass run and returns its handle.
func (t *Timer) Begin(name string) int {
	t.active = append(t.active, pending{name: name, start: time.Now()})
	return len(t.active) - 1
}

// End finishes the run behind a handle, folding it into the pass entry.
func (t *Timer) End(idx int) {
	if idx < 0 || idx >= len(t.active) {
		return
	}
	p := t.active[idx]
	e := t.entries[p.name]
	if e == nil {
		e = &entry{name: p.name}
		t.entries[p.name] = e
		t.order = append(t.order, p.name)
	}
	e.dur += time.Since(p.start)
	e.runs++
}

// Summary returns a human-readable accumulation of all timed passes.
func (t *Timer) Summary() string {
	var total time.Duration
	out := "timings:\n"
	for _, name := range t.order {
		e := t.entries[name]
		total += e.dur
		out += fmt.Sprintf("  %-20s %7.2f ms", e.name, millis(e.dur))
		if e.runs > 1 {
			out += fmt.Sprintf("  // %d runs", e.runs)
		}
		out += "\n"
	}
	out += fmt.Sprintf("  %-20s %7.2f ms\n", "total", millis(total))
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
