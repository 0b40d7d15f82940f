// Package scenario holds the typed, serializable scenario model: the
// attack's metadata, server identity, baseline tools/resources/prompts,
// phases, behaviors, and resource limits (spec.md §3, component A).
//
// Types in this file are pure data, deserialized from YAML by
// internal/config's directive-resolution pipeline. The only behavior
// carried in this file is Scenario.Freeze; default limits are built in
// limits.go, and validation lives in internal/config.
package scenario

// Metadata describes the scenario for operators and report generators.
type Metadata struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	Severity   string      `yaml:"severity,omitempty"`
	Tags       []string    `yaml:"tags,omitempty"`
	Frameworks []Framework `yaml:"frameworks,omitempty"`
	References []string    `yaml:"references,omitempty"`
}

// Framework maps the scenario to an external classification such as MITRE
// ATT&CK or OWASP.
type Framework struct {
	Name string   `yaml:"name"`
	IDs  []string `yaml:"ids"`
}

// ServerInfo is what initialize() advertises as serverInfo.
type ServerInfo struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	ProtocolVersion string `yaml:"protocol_version"`
}

// Capabilities controls which MCP capabilities are advertised.
type Capabilities struct {
	ToolsListChanged     bool `yaml:"tools_list_changed"`
	ResourcesListChanged bool `yaml:"resources_list_changed"`
	PromptsListChanged   bool `yaml:"prompts_list_changed"`
}

// Content is a single unit of response content. Exactly one of Text or
// Generate is set: a literal string, or the validated generator config
// produced by the loader's $generate step.
type Content struct {
	Text     string          `yaml:"text,omitempty"`
	Generate *GeneratorConfig `yaml:"generate,omitempty"`
}

// ToolDef is one baseline (or phase-diff) tool definition.
type ToolDef struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	InputSchema map[string]any `yaml:"input_schema,omitempty"`
	Response    Content        `yaml:"response"`
}

// ResourceDef is one baseline (or phase-diff) resource definition.
type ResourceDef struct {
	URI         string  `yaml:"uri"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	MimeType    string  `yaml:"mime_type,omitempty"`
	Response    Content `yaml:"response"`
}

// PromptArgument describes one prompt input.
type PromptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
}

// PromptDef is one baseline (or phase-diff) prompt definition.
type PromptDef struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Arguments   []PromptArgument `yaml:"arguments,omitempty"`
	Response    Content          `yaml:"response"`
}

// Baseline is the initial set of tools/resources/prompts advertised before
// any phase diff applies.
type Baseline struct {
	Tools     []ToolDef     `yaml:"tools,omitempty"`
	Resources []ResourceDef `yaml:"resources,omitempty"`
	Prompts   []PromptDef   `yaml:"prompts,omitempty"`
}

// Scenario is the fully decoded, not-yet-validated document. Scenario.Freeze
// turns a validated Scenario into the immutable, shared value the rest of
// the server reads (spec.md's "Ownership" note: reference-counted,
// multi-reader — in Go this is simply a *Scenario nobody mutates after
// Freeze returns).
type Scenario struct {
	Metadata     Metadata     `yaml:"metadata"`
	ServerInfo   ServerInfo   `yaml:"server"`
	Capabilities Capabilities `yaml:"capabilities"`
	Baseline     Baseline     `yaml:"baseline"`
	Phases       []Phase      `yaml:"phases,omitempty"`
	Behaviors    Behaviors    `yaml:"behaviors"`
	Limits       Limits       `yaml:"limits"`
}

// Freeze returns a copy of the scenario whose top-level slices (metadata
// lists, baseline tools/resources/prompts, phases, side effects) are
// re-allocated. Nested slices and maps inside those elements (input
// schemas, prompt arguments, phase diffs and triggers) are not copied and
// stay shared with s. Mirrors teacher's
// scenario.Config.Build() copy-into-maps discipline
// (javiermolinar/tercios/internal/scenario/definition.go).
func (s Scenario) Freeze() *Scenario {
	frozen := s
	frozen.Metadata.Tags = append([]string(nil), s.Metadata.Tags...)
	frozen.Metadata.References = append([]string(nil), s.Metadata.References...)
	frozen.Metadata.Frameworks = append([]Framework(nil), s.Metadata.Frameworks...)
	frozen.Baseline.Tools = append([]ToolDef(nil), s.Baseline.Tools...)
	frozen.Baseline.Resources = append([]ResourceDef(nil), s.Baseline.Resources...)
	frozen.Baseline.Prompts = append([]PromptDef(nil), s.Baseline.Prompts...)
	frozen.Phases = append([]Phase(nil), s.Phases...)
	frozen.Behaviors.SideEffects = append([]SideEffectConfig(nil), s.Behaviors.SideEffects...)
	return &frozen
}
