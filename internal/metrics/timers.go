// Package metrics keeps wall-clock timers for the phases of a report run.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Timers holds one timer per run phase. Calling Add twice on the same phase
// stops it; Set stops the previously started phase and starts a new one.
type Timers struct {
	Timers map[string]*Timer `json:"timers,omitempty"`
	last   string
	now    func() time.Time
}

func NewTimers() Timers {
	return Timers{Timers: make(map[string]*Timer), now: time.Now}
}

// set starts the timer k, or stops it when already started.
func (ts *Timers) set(k string) {
	if ts.now == nil {
		ts.now = time.Now
	}
	if _, ok := ts.Timers[k]; !ok {
		ts.Timers[k] = &Timer{start: ts.now()}
		return
	}
	ts.Timers[k].Total = ts.now().Sub(ts.Timers[k].start).Seconds()
}

// Set stops the last phase started with Set and starts k (lap).
func (ts *Timers) Set(k string) {
	if ts.last != "" {
		ts.set(ts.last)
	}
	ts.set(k)
	ts.last = k
}

// Add starts or stops the timer k.
func (ts *Timers) Add(k string) {
	ts.set(k)
}

// String renders the stopped timers sorted by phase name.
func (ts *Timers) String() string {
	keys := make([]string, 0, len(ts.Timers))
	for k := range ts.Timers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.3fs", k, ts.Timers[k].Total))
	}
	return strings.Join(parts, " ")
}

type Timer struct {
	start time.Time

	// Total time in seconds
	Total float64 `json:"seconds"`
}
