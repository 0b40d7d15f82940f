package phase

import (
	"sync"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// EffectiveState is the baseline with the diffs of every phase entered so
// far applied, in order (spec.md §4.F). The engine enters phases[i] when
// the index advances from i to i+1, so at index n the diffs of
// phases[0:n] are applied and index 0 is the bare baseline.
type EffectiveState struct {
	Tools     []scenario.ToolDef
	Resources []scenario.ResourceDef
	Prompts   []scenario.PromptDef
	Behaviors scenario.Behaviors
	Version   int
}

// buildEffectiveState folds baseline + phases[0:upTo] (upTo exclusive) into
// one view. replace_* swaps the whole list; add_* appends (collisions with
// baseline names are reported as load-time warnings, not checked here —
// spec.md §4.F); remove_* filters by name.
func buildEffectiveState(s *scenario.Scenario, upTo int) *EffectiveState {
	tools := append([]scenario.ToolDef(nil), s.Baseline.Tools...)
	resources := append([]scenario.ResourceDef(nil), s.Baseline.Resources...)
	prompts := append([]scenario.PromptDef(nil), s.Baseline.Prompts...)
	behaviors := s.Behaviors

	for i := 0; i < upTo && i < len(s.Phases); i++ {
		d := s.Phases[i].Diff
		switch d.Kind {
		case scenario.DiffReplaceTools:
			tools = append([]scenario.ToolDef(nil), d.Tools...)
		case scenario.DiffAddTools:
			tools = append(tools, d.Tools...)
		case scenario.DiffRemoveTools:
			tools = removeByName(tools, d.Names, func(t scenario.ToolDef) string { return t.Name })
		case scenario.DiffReplaceResources:
			resources = append([]scenario.ResourceDef(nil), d.Resources...)
		case scenario.DiffAddResources:
			resources = append(resources, d.Resources...)
		case scenario.DiffRemoveResources:
			resources = removeByName(resources, d.Names, func(r scenario.ResourceDef) string { return r.Name })
		case scenario.DiffReplacePrompts:
			prompts = append([]scenario.PromptDef(nil), d.Prompts...)
		case scenario.DiffAddPrompts:
			prompts = append(prompts, d.Prompts...)
		case scenario.DiffRemovePrompts:
			prompts = removeByName(prompts, d.Names, func(p scenario.PromptDef) string { return p.Name })
		}
		if s.Phases[i].BehaviorsOverride != nil {
			behaviors = *s.Phases[i].BehaviorsOverride
		}
	}

	return &EffectiveState{Tools: tools, Resources: resources, Prompts: prompts, Behaviors: behaviors, Version: upTo}
}

func removeByName[T any](items []T, names []string, nameOf func(T) string) []T {
	if len(names) == 0 {
		return items
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := items[:0:0]
	for _, item := range items {
		if !drop[nameOf(item)] {
			out = append(out, item)
		}
	}
	return out
}

// effectiveCache memoizes buildEffectiveState by phase version so
// concurrent readers share one rebuild per advance (spec.md §4.F:
// "Cached by current_phase version; safe to share across readers").
type effectiveCache struct {
	mu       sync.RWMutex
	version  int
	state    *EffectiveState
	scenario *scenario.Scenario
}

func newEffectiveCache(s *scenario.Scenario) *effectiveCache {
	return &effectiveCache{version: -1, scenario: s}
}

func (c *effectiveCache) get(phaseIndex int) *EffectiveState {
	c.mu.RLock()
	if c.version == phaseIndex && c.state != nil {
		defer c.mu.RUnlock()
		return c.state
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version == phaseIndex && c.state != nil {
		return c.state
	}
	c.state = buildEffectiveState(c.scenario, phaseIndex)
	c.version = phaseIndex
	return c.state
}
