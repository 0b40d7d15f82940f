package metrics

import (
	"testing"
	"time"
)

func TestSummaryEmptyHasNoLatency(t *testing.T) {
	s := NewStats()
	sum := s.Summary()
	if sum.AvgLatency != 0 || sum.P95Latency != 0 {
		t.Fatalf("expected zero latency on empty stats, got %+v", sum)
	}
}

func TestSummaryCountsResponsesAndBehaviors(t *testing.T) {
	s := NewStats()
	s.RecordResponse(10*time.Millisecond, false)
	s.RecordResponse(20*time.Millisecond, false)
	s.RecordResponse(5*time.Millisecond, true)
	s.RecordNotification()
	s.RecordNotification()
	s.RecordBehavior("slow_loris")
	s.RecordBehavior("slow_loris")

	sum := s.Summary()
	if sum.ResponsesOK != 2 || sum.ResponsesErr != 1 {
		t.Fatalf("unexpected response counts: %+v", sum)
	}
	if sum.Notifications != 2 {
		t.Fatalf("expected 2 notifications, got %d", sum.Notifications)
	}
	if sum.Behaviors["slow_loris"] != 2 {
		t.Fatalf("expected slow_loris=2, got %+v", sum.Behaviors)
	}
	if sum.AvgLatency <= 0 {
		t.Fatalf("expected positive avg latency, got %v", sum.AvgLatency)
	}
}

func TestFormatSummaryIncludesBehaviors(t *testing.T) {
	s := NewStats()
	s.RecordResponse(time.Millisecond, false)
	s.RecordBehavior("connection_drop")
	out := FormatSummary(s.Summary())
	if out == "" {
		t.Fatalf("expected non-empty summary text")
	}
}
