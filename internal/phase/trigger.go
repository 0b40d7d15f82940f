package phase

import (
	"regexp"
	"strings"
	"time"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// compiledTrigger is a scenario.Trigger with its regex (if any)
// pre-compiled once at phase-engine construction, the compile-once /
// evaluate-many split teacher's chaos engine uses for Match predicates
// (chaos/engine.go's compileMatch).
type compiledTrigger struct {
	src   scenario.Trigger
	regex *regexp.Regexp
}

func compileTrigger(t scenario.Trigger) (compiledTrigger, error) {
	ct := compiledTrigger{src: t}
	if t.Kind == scenario.TriggerOnContentMatch && t.Regex != "" {
		re, err := regexp.Compile(t.Regex)
		if err != nil {
			return compiledTrigger{}, err
		}
		ct.regex = re
	}
	return ct, nil
}

// afterNRequestsSatisfied reports whether an after_n_requests trigger has
// fired given the current counter value for its method.
func (ct compiledTrigger) afterNRequestsSatisfied(methodCount uint64) bool {
	return ct.src.Kind == scenario.TriggerAfterNRequests && methodCount >= ct.src.N
}

// afterDurationSatisfied reports whether an after_duration trigger has
// fired given how long the current phase has been active (spec.md §4.E:
// "now - phase_entered_at >= d").
func (ct compiledTrigger) afterDurationSatisfied(enteredAt time.Time, now time.Time) bool {
	return ct.src.Kind == scenario.TriggerAfterDuration && now.Sub(enteredAt) >= ct.src.Duration
}

// contentMatchSatisfied reports whether an on_content_match trigger fires
// against the given text, scoped to "request" or "response".
func (ct compiledTrigger) contentMatchSatisfied(where, text string) bool {
	if ct.src.Kind != scenario.TriggerOnContentMatch {
		return false
	}
	if ct.src.Where != "" && ct.src.Where != where {
		return false
	}
	if ct.regex != nil {
		return ct.regex.MatchString(text)
	}
	if ct.src.Substring != "" {
		return strings.Contains(text, ct.src.Substring)
	}
	return false
}

// onToolCallSatisfied reports whether an on_tool_call trigger has fired
// given the current call count for its tool.
func (ct compiledTrigger) onToolCallSatisfied(toolName string, toolCallCount uint64) bool {
	return ct.src.Kind == scenario.TriggerOnToolCall && ct.src.ToolName == toolName && toolCallCount >= ct.src.Count
}
