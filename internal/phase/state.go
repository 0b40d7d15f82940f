// Package phase implements the lock-free phase state machine: atomic
// request counters, a CAS-guarded current-phase index, and a cold-path
// transition log (spec.md §4.D PhaseState, §4.E PhaseEngine).
package phase

import (
	"sync"
	"sync/atomic"
	"time"
)

// Transition is one recorded phase advance, appended to the cold-path log
// under State.logMu.
type Transition struct {
	FromIndex  int
	ToIndex    int
	At         time.Time
	TriggeredBy string
}

// State is the hot-path counters and current-phase index every request
// touches. All fields except the log are accessed only through
// sync/atomic, mirroring teacher's atomic.Uint64 counter fields
// (scenario/generator.go's spanIDState) generalized from a single counter
// to a small fixed set plus a CAS'd index.
type State struct {
	currentPhase atomic.Int64
	enteredAt    atomic.Int64 // UnixNano

	requestCounters sync.Map // method(string) -> *atomic.Uint64
	toolCallCounts  sync.Map // toolName(string) -> *atomic.Uint64

	logMu sync.Mutex
	log   []Transition
}

// NewState returns a State parked at phase index 0, entered now.
func NewState() *State {
	s := &State{}
	s.enteredAt.Store(time.Now().UnixNano())
	return s
}

// CurrentPhase returns the current phase index.
func (s *State) CurrentPhase() int {
	return int(s.currentPhase.Load())
}

// PhaseEnteredAt returns when the current phase was entered.
func (s *State) PhaseEnteredAt() time.Time {
	return time.Unix(0, s.enteredAt.Load())
}

// RecordRequest atomically bumps the counter for method and, when toolName
// is non-empty, the per-tool call counter, returning both new values
// (spec.md §4.D: "record_event atomically increments the relevant counter
// and returns the new value").
func (s *State) RecordRequest(method, toolName string) (methodCount, toolCount uint64) {
	methodCount = s.bump(&s.requestCounters, method)
	if toolName != "" {
		toolCount = s.bump(&s.toolCallCounts, toolName)
	}
	return methodCount, toolCount
}

func (s *State) bump(m *sync.Map, key string) uint64 {
	v, _ := m.LoadOrStore(key, new(atomic.Uint64))
	counter := v.(*atomic.Uint64)
	return counter.Add(1)
}

// MethodCount returns the current value of a request counter without
// bumping it.
func (s *State) MethodCount(method string) uint64 {
	v, ok := s.requestCounters.Load(method)
	if !ok {
		return 0
	}
	return v.(*atomic.Uint64).Load()
}

// ToolCallCount returns the current value of a tool-call counter without
// bumping it.
func (s *State) ToolCallCount(tool string) uint64 {
	v, ok := s.toolCallCounts.Load(tool)
	if !ok {
		return 0
	}
	return v.(*atomic.Uint64).Load()
}

// CASResult is the outcome of TryAdvance.
type CASResult int

const (
	Lost CASResult = iota
	Won
)

// TryAdvance performs a CAS from "from" to "to" on the current phase
// index. On Won, phase_entered_at is updated and the transition is
// appended to the log under the single cold-path mutex (spec.md §4.D).
func (s *State) TryAdvance(from, to int, triggeredBy string) CASResult {
	if !s.currentPhase.CompareAndSwap(int64(from), int64(to)) {
		return Lost
	}
	now := time.Now()
	s.enteredAt.Store(now.UnixNano())

	s.logMu.Lock()
	s.log = append(s.log, Transition{FromIndex: from, ToIndex: to, At: now, TriggeredBy: triggeredBy})
	s.logMu.Unlock()
	return Won
}

// Log returns a snapshot of the transition log.
func (s *State) Log() []Transition {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	out := make([]Transition, len(s.log))
	copy(out, s.log)
	return out
}
