// Package metrics accumulates a human-readable summary of one server run:
// responses delivered, notifications sent, and behaviors triggered, with
// a latency distribution over response delivery time. Not part of the
// adversarial surface itself; this is the ambient "what happened" report
// printed on shutdown, the way a batch tool prints a completion summary.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Stats accumulates counters and latencies across a single server
// session. Safe for concurrent use: the server's handler goroutine and its
// phase-timer goroutine both record into the same *Stats. Side-effect
// goroutines do not record.
type Stats struct {
	mu sync.Mutex

	deliveries    []time.Duration
	responsesOK   int
	responsesErr  int
	notifications int
	behaviors     map[string]int
}

// NewStats returns an empty counter set.
func NewStats() *Stats {
	return &Stats{behaviors: make(map[string]int)}
}

// RecordResponse logs one response delivery's latency and outcome.
func (s *Stats) RecordResponse(latency time.Duration, isErr bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, latency)
	if isErr {
		s.responsesErr++
	} else {
		s.responsesOK++
	}
}

// RecordNotification logs one list_changed notification sent by a phase
// entry action. Notifications sent by a notification_flood side effect are
// not counted.
func (s *Stats) RecordNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications++
}

// RecordBehavior logs one behavior firing, keyed by its kind (e.g.
// "slow_loris", "notification_flood").
func (s *Stats) RecordBehavior(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.behaviors[kind]++
}

// Summary is a point-in-time snapshot of Stats, safe to format or compare
// without holding the Stats lock.
type Summary struct {
	ResponsesOK    int
	ResponsesErr   int
	Notifications  int
	Behaviors      map[string]int
	AvgLatency     time.Duration
	P95Latency     time.Duration
}

// Summary computes a snapshot, sorting the recorded latencies to derive
// the average and P95 (same percentile derivation the teacher used for
// export latency, applied here to response-delivery latency instead).
func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	behaviors := make(map[string]int, len(s.behaviors))
	for k, v := range s.behaviors {
		behaviors[k] = v
	}

	total := len(s.deliveries)
	if total == 0 {
		return Summary{
			ResponsesOK:   s.responsesOK,
			ResponsesErr:  s.responsesErr,
			Notifications: s.notifications,
			Behaviors:     behaviors,
		}
	}

	durations := make([]time.Duration, total)
	copy(durations, s.deliveries)
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	avg := time.Duration(int64(sum) / int64(total))
	p95Index := int(float64(total-1) * 0.95)

	return Summary{
		ResponsesOK:   s.responsesOK,
		ResponsesErr:  s.responsesErr,
		Notifications: s.notifications,
		Behaviors:     behaviors,
		AvgLatency:    avg,
		P95Latency:    durations[p95Index],
	}
}

// FormatSummary renders a summary as the multi-line report printed on
// server shutdown.
func FormatSummary(summary Summary) string {
	lines := []string{
		fmt.Sprintf("Responses delivered: %d (%d error)", summary.ResponsesOK+summary.ResponsesErr, summary.ResponsesErr),
		fmt.Sprintf("Notifications sent: %d", summary.Notifications),
		fmt.Sprintf("Avg delivery latency: %s", formatLatency(summary.AvgLatency)),
		fmt.Sprintf("P95 delivery latency: %s", formatLatency(summary.P95Latency)),
	}
	if len(summary.Behaviors) > 0 {
		kinds := make([]string, 0, len(summary.Behaviors))
		for k := range summary.Behaviors {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		parts := make([]string, 0, len(kinds))
		for _, k := range kinds {
			parts = append(parts, fmt.Sprintf("%s=%d", k, summary.Behaviors[k]))
		}
		lines = append(lines, fmt.Sprintf("Behaviors triggered: %s", strings.Join(parts, ", ")))
	} else {
		lines = append(lines, "Behaviors triggered: none")
	}
	return strings.Join(lines, "\n")
}

func formatLatency(d time.Duration) string {
	if d <= 0 {
		return "0ms"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
