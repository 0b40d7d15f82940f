package scenario

// DiffKind is one of the nine (three surfaces × three operations)
// state transformations a phase can apply to the baseline (spec.md
// Glossary: "Diff").
type DiffKind string

const (
	DiffReplaceTools DiffKind = "replace_tools"
	DiffAddTools     DiffKind = "add_tools"
	DiffRemoveTools  DiffKind = "remove_tools"

	DiffReplaceResources DiffKind = "replace_resources"
	DiffAddResources     DiffKind = "add_resources"
	DiffRemoveResources  DiffKind = "remove_resources"

	DiffReplacePrompts DiffKind = "replace_prompts"
	DiffAddPrompts     DiffKind = "add_prompts"
	DiffRemovePrompts  DiffKind = "remove_prompts"
)

// Diff is a single state transformation; only the fields matching Kind are
// populated.
type Diff struct {
	Kind DiffKind `yaml:"kind"`

	Tools     []ToolDef     `yaml:"tools,omitempty"`
	Resources []ResourceDef `yaml:"resources,omitempty"`
	Prompts   []PromptDef   `yaml:"prompts,omitempty"`

	// Names is used by remove_* diffs.
	Names []string `yaml:"names,omitempty"`
}

// EntryActionKind enumerates actions run exactly once on phase entry.
type EntryActionKind string

const (
	ActionNotifyListChanged EntryActionKind = "notify_list_changed"
)

// EntryAction runs once when a phase is entered (spec.md §3 Phase.entry_actions).
type EntryAction struct {
	Kind   EntryActionKind `yaml:"kind"`
	Target string          `yaml:"target,omitempty"` // "tools" | "resources" | "prompts"
}

// Phase is one named stage of the attack (spec.md §3).
type Phase struct {
	Name              string        `yaml:"name"`
	Triggers          []Trigger     `yaml:"triggers"`
	Diff              Diff          `yaml:"diff"`
	EntryActions      []EntryAction `yaml:"entry_actions,omitempty"`
	BehaviorsOverride *Behaviors    `yaml:"behaviors_override,omitempty"`
}
