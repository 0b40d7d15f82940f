package config

import (
	"fmt"
	"regexp"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*$`)

// supportedMethods is the MCP surface this server understands; triggers
// referencing anything else are a validation error (spec.md §4.C.i).
var supportedMethods = map[string]bool{
	"initialize":      true,
	"tools/list":      true,
	"tools/call":      true,
	"resources/list":  true,
	"resources/read":  true,
	"prompts/list":    true,
	"prompts/get":     true,
}

// Validator accumulates Issues across an entire scenario document without
// ever short-circuiting (spec.md §4.C.i: "Collects all issues before
// returning"). Grounded on teacher's Config.Validate, generalized from
// "return first error" to "accumulate every error", the way
// chaos/engine_test.go expects the policy engine to report every mismatch
// rather than stopping at the first.
type Validator struct {
	issues []Issue
}

func (v *Validator) errorf(path, format string, args ...any) {
	v.issues = append(v.issues, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *Validator) warnf(path, format string, args ...any) {
	v.issues = append(v.issues, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)})
}

// Validate runs every rule in spec.md §4.C.i against s and returns every
// accumulated issue, in order, plus an error. A non-nil error means at
// least one issue had SeverityError; the returned slice then holds the
// errors as well as the warnings. With a nil error it holds only warnings.
func Validate(s *scenario.Scenario) (warnings []Issue, err error) {
	v := &Validator{}

	if len(s.Baseline.Tools) == 0 && len(s.Baseline.Resources) == 0 && len(s.Baseline.Prompts) == 0 && len(s.Phases) == 0 {
		v.errorf("$", "scenario has no baseline tools/resources/prompts and no phases")
	}

	seenTool := map[string]bool{}
	for i, t := range s.Baseline.Tools {
		path := fmt.Sprintf("baseline.tools[%d]", i)
		v.validateName(path, t.Name)
		if seenTool[t.Name] {
			v.warnf(path, "duplicate tool name %q", t.Name)
		}
		seenTool[t.Name] = true
	}

	seenResource := map[string]bool{}
	for i, r := range s.Baseline.Resources {
		path := fmt.Sprintf("baseline.resources[%d]", i)
		v.validateName(path, r.Name)
		if seenResource[r.Name] {
			v.warnf(path, "duplicate resource name %q", r.Name)
		}
		seenResource[r.Name] = true
	}

	seenPrompt := map[string]bool{}
	for i, p := range s.Baseline.Prompts {
		path := fmt.Sprintf("baseline.prompts[%d]", i)
		v.validateName(path, p.Name)
		if seenPrompt[p.Name] {
			v.warnf(path, "duplicate prompt name %q", p.Name)
		}
		seenPrompt[p.Name] = true
	}

	seenPhase := map[string]bool{}
	for i, ph := range s.Phases {
		path := fmt.Sprintf("phases[%d]", i)
		if ph.Name == "" {
			v.errorf(path, "phase name is required")
		} else if seenPhase[ph.Name] {
			v.errorf(path, "duplicate phase name %q", ph.Name)
		}
		seenPhase[ph.Name] = true

		for j, trig := range ph.Triggers {
			tpath := fmt.Sprintf("%s.triggers[%d]", path, j)
			if trig.Kind == scenario.TriggerAfterNRequests && !supportedMethods[trig.Method] {
				v.errorf(tpath, "trigger references unsupported method %q", trig.Method)
			}
			if trig.Kind == scenario.TriggerOnToolCall && trig.ToolName == "" {
				v.errorf(tpath, "on_tool_call trigger requires tool_name")
			}
		}

		v.validateDiffNames(path+".diff", ph.Diff)

		for j, t := range ph.Diff.Tools {
			if ph.Diff.Kind == scenario.DiffAddTools && seenTool[t.Name] {
				v.warnf(fmt.Sprintf("%s.diff.tools[%d]", path, j), "add_tools name %q collides with a baseline tool", t.Name)
			}
		}
		for j, r := range ph.Diff.Resources {
			if ph.Diff.Kind == scenario.DiffAddResources && seenResource[r.Name] {
				v.warnf(fmt.Sprintf("%s.diff.resources[%d]", path, j), "add_resources name %q collides with a baseline resource", r.Name)
			}
		}
		for j, p := range ph.Diff.Prompts {
			if ph.Diff.Kind == scenario.DiffAddPrompts && seenPrompt[p.Name] {
				v.warnf(fmt.Sprintf("%s.diff.prompts[%d]", path, j), "add_prompts name %q collides with a baseline prompt", p.Name)
			}
		}
	}

	v.validateGenerators(s)

	var firstErr *Issue
	for i := range v.issues {
		if v.issues[i].Severity == SeverityError {
			firstErr = &v.issues[i]
			break
		}
	}
	if firstErr != nil {
		return v.issues, newSemanticErr(v.issues)
	}
	return v.issues, nil
}

func (v *Validator) validateName(path, name string) {
	if name == "" {
		v.errorf(path, "name is required")
		return
	}
	if len(name) > 128 {
		v.errorf(path, "name %q exceeds 128 characters", name)
		return
	}
	if !nameRE.MatchString(name) {
		v.errorf(path, "name %q does not match [A-Za-z_][A-Za-z0-9_-]*", name)
	}
}

func (v *Validator) validateDiffNames(path string, d scenario.Diff) {
	for i, t := range d.Tools {
		v.validateName(fmt.Sprintf("%s.tools[%d]", path, i), t.Name)
	}
	for i, r := range d.Resources {
		v.validateName(fmt.Sprintf("%s.resources[%d]", path, i), r.Name)
	}
	for i, p := range d.Prompts {
		v.validateName(fmt.Sprintf("%s.prompts[%d]", path, i), p.Name)
	}
}

func (v *Validator) validateGenerators(s *scenario.Scenario) {
	limits := s.Limits.WithDefaults().Generator
	check := func(path string, c scenario.Content) {
		if c.Generate == nil {
			return
		}
		if err := validateGeneratorConfig(*c.Generate, limits); err != nil {
			if cfgErr, ok := err.(*Error); ok {
				for _, iss := range cfgErr.Issues {
					v.issues = append(v.issues, Issue{Severity: iss.Severity, Path: path + "." + iss.Path, Message: iss.Message})
				}
			}
		}
	}
	for i, t := range s.Baseline.Tools {
		check(fmt.Sprintf("baseline.tools[%d].response", i), t.Response)
	}
	for i, r := range s.Baseline.Resources {
		check(fmt.Sprintf("baseline.resources[%d].response", i), r.Response)
	}
	for i, p := range s.Baseline.Prompts {
		check(fmt.Sprintf("baseline.prompts[%d].response", i), p.Response)
	}
	for pi, ph := range s.Phases {
		for i, t := range ph.Diff.Tools {
			check(fmt.Sprintf("phases[%d].diff.tools[%d].response", pi, i), t.Response)
		}
		for i, r := range ph.Diff.Resources {
			check(fmt.Sprintf("phases[%d].diff.resources[%d].response", pi, i), r.Response)
		}
		for i, p := range ph.Diff.Prompts {
			check(fmt.Sprintf("phases[%d].diff.prompts[%d].response", pi, i), p.Response)
		}
	}
}
