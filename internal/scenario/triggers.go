package scenario

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TriggerKind is the tag discriminating the Trigger union (spec.md §3).
type TriggerKind string

const (
	TriggerAfterNRequests TriggerKind = "after_n_requests"
	TriggerAfterDuration  TriggerKind = "after_duration"
	TriggerOnContentMatch TriggerKind = "on_content_match"
	TriggerOnToolCall     TriggerKind = "on_tool_call"
)

// Trigger is a tagged-union predicate over PhaseState. Only the fields its
// Kind uses are populated; the rest are zero. Decoded with a custom
// UnmarshalYAML the way the pack's Navarch simulator scenario decodes its
// polymorphic event params (other_examples/04c3677f_NavarchProject-navarch).
type Trigger struct {
	Kind TriggerKind

	// after_n_requests
	Method string
	N      uint64

	// after_duration
	Duration time.Duration

	// on_content_match
	Where     string // "request" | "response"
	Substring string
	Regex     string

	// on_tool_call
	ToolName string
	Count    uint64
}

type rawTrigger struct {
	Type      string `yaml:"type"`
	Method    string `yaml:"method,omitempty"`
	N         uint64 `yaml:"n,omitempty"`
	Duration  string `yaml:"duration,omitempty"`
	Where     string `yaml:"where,omitempty"`
	Substring string `yaml:"substring,omitempty"`
	Regex     string `yaml:"regex,omitempty"`
	ToolName  string `yaml:"tool_name,omitempty"`
	Count     uint64 `yaml:"count,omitempty"`
}

func (t *Trigger) UnmarshalYAML(node *yaml.Node) error {
	var raw rawTrigger
	if err := node.Decode(&raw); err != nil {
		return err
	}

	kind := TriggerKind(strings.ToLower(strings.TrimSpace(raw.Type)))
	switch kind {
	case TriggerAfterNRequests:
		if raw.Method == "" {
			return fmt.Errorf("after_n_requests trigger requires method")
		}
		*t = Trigger{Kind: kind, Method: raw.Method, N: raw.N}
	case TriggerAfterDuration:
		d, err := time.ParseDuration(raw.Duration)
		if err != nil {
			return fmt.Errorf("after_duration trigger: invalid duration %q: %w", raw.Duration, err)
		}
		*t = Trigger{Kind: kind, Duration: d}
	case TriggerOnContentMatch:
		if raw.Substring == "" && raw.Regex == "" {
			return fmt.Errorf("on_content_match trigger requires substring or regex")
		}
		*t = Trigger{Kind: kind, Where: raw.Where, Substring: raw.Substring, Regex: raw.Regex}
	case TriggerOnToolCall:
		if raw.ToolName == "" {
			return fmt.Errorf("on_tool_call trigger requires tool_name")
		}
		*t = Trigger{Kind: kind, ToolName: raw.ToolName, Count: raw.Count}
	default:
		return fmt.Errorf("unsupported trigger type %q", raw.Type)
	}
	return nil
}

func (t Trigger) MarshalYAML() (any, error) {
	raw := rawTrigger{Type: string(t.Kind)}
	switch t.Kind {
	case TriggerAfterNRequests:
		raw.Method, raw.N = t.Method, t.N
	case TriggerAfterDuration:
		raw.Duration = t.Duration.String()
	case TriggerOnContentMatch:
		raw.Where, raw.Substring, raw.Regex = t.Where, t.Substring, t.Regex
	case TriggerOnToolCall:
		raw.ToolName, raw.Count = t.ToolName, t.Count
	}
	return raw, nil
}
