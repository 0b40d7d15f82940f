package phase

import (
	"time"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// EntryActionFired is emitted when a phase transition's entry actions must
// run, queued for the transport to flush after the response that triggered
// the advance finishes writing (spec.md §4.E: "response then
// notification").
type EntryActionFired struct {
	PhaseIndex int
	Actions    []scenario.EntryAction
}

// Engine drives phase transitions, linear only: phase i can only advance
// to i+1, no rollback, no branching (spec.md §4.E "Transition
// discipline").
type Engine struct {
	scenario *scenario.Scenario
	state    *State
	cache    *effectiveCache
	compiled [][]compiledTrigger // compiled[i] = phases[i].Triggers compiled
}

// NewEngine compiles every phase's triggers once at construction, the way
// teacher's chaos.NewEngine compiles policies once up front
// (chaos/engine.go's compilePolicies).
func NewEngine(s *scenario.Scenario) (*Engine, error) {
	compiled := make([][]compiledTrigger, len(s.Phases))
	for i, ph := range s.Phases {
		cts := make([]compiledTrigger, len(ph.Triggers))
		for j, t := range ph.Triggers {
			ct, err := compileTrigger(t)
			if err != nil {
				return nil, err
			}
			cts[j] = ct
		}
		compiled[i] = cts
	}
	return &Engine{
		scenario: s,
		state:    NewState(),
		cache:    newEffectiveCache(s),
		compiled: compiled,
	}, nil
}

// State exposes the underlying hot-path state for transport-level counter
// reads (e.g. server summaries).
func (e *Engine) State() *State { return e.state }

// EffectiveState returns the cached view for the current phase, rebuilding
// only on a version mismatch (spec.md §4.E "effective_state").
func (e *Engine) EffectiveState() *EffectiveState {
	return e.cache.get(e.state.CurrentPhase())
}

// OnRequest bumps counters and evaluates the current phase's triggers in
// declaration order; the first satisfied trigger wins. On success it
// attempts the CAS advance and, if won, returns the entry actions to run
// (spec.md §4.E "on_request").
func (e *Engine) OnRequest(method, toolName string) *EntryActionFired {
	methodCount, toolCount := e.state.RecordRequest(method, toolName)
	return e.evaluate(func(ct compiledTrigger) bool {
		switch ct.src.Kind {
		case scenario.TriggerAfterNRequests:
			return ct.src.Method == method && ct.afterNRequestsSatisfied(methodCount)
		case scenario.TriggerOnToolCall:
			return ct.onToolCallSatisfied(toolName, toolCount)
		default:
			return false
		}
	}, method+":after_n_requests/on_tool_call")
}

// OnTimerTick is invoked by the per-run 100ms timer task and evaluates
// after_duration triggers (spec.md §4.E "on_timer_tick").
func (e *Engine) OnTimerTick() *EntryActionFired {
	now := time.Now()
	enteredAt := e.state.PhaseEnteredAt()
	return e.evaluate(func(ct compiledTrigger) bool {
		return ct.afterDurationSatisfied(enteredAt, now)
	}, "after_duration")
}

// OnContentMatch is invoked when request/response text is available and
// evaluates on_content_match triggers (spec.md §4.E "on_content_match").
func (e *Engine) OnContentMatch(where, text string) *EntryActionFired {
	return e.evaluate(func(ct compiledTrigger) bool {
		return ct.contentMatchSatisfied(where, text)
	}, "on_content_match:"+where)
}

// evaluate walks the current phase's compiled triggers in order, advancing
// on the first satisfied one. Two concurrent callers racing on the same
// satisfied trigger both attempt the CAS; only the winner runs entry
// actions (spec.md §4.E "Transition discipline").
func (e *Engine) evaluate(satisfied func(compiledTrigger) bool, triggeredBy string) *EntryActionFired {
	current := e.state.CurrentPhase()
	if current >= len(e.scenario.Phases) {
		return nil
	}
	triggers := e.compiled[current]
	for _, ct := range triggers {
		if !satisfied(ct) {
			continue
		}
		next := current + 1
		if e.state.TryAdvance(current, next, triggeredBy) == Won {
			actions := e.scenario.Phases[current].EntryActions
			if len(actions) == 0 {
				return nil
			}
			return &EntryActionFired{PhaseIndex: next, Actions: actions}
		}
		return nil
	}
	return nil
}
