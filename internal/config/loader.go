package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// LoadResult is the outcome of a successful load: the frozen scenario and
// every warning the validator collected along the way (spec.md §4.C:
// "LoadResult holds the frozen Scenario and an ordered list of non-fatal
// warnings").
type LoadResult struct {
	Scenario *scenario.Scenario
	Warnings []Issue
}

// LoadFromPath runs the full eight-step pipeline against the file at path.
func LoadFromPath(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newIOErr(path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return loadFromText(string(data), filepath.Dir(path), abs)
}

// LoadFromStr runs the pipeline against raw YAML text with no base
// directory for relative $include/$file resolution (dir defaults to the
// current working directory).
func LoadFromStr(text string) (*LoadResult, error) {
	return loadFromText(text, ".", "")
}

func loadFromText(text string, dir string, selfPath string) (*LoadResult, error) {
	// Step 1: environment expansion on raw text.
	expanded, err := expandEnv(text, osLookup)
	if err != nil {
		return nil, err
	}

	// Step 2: YAML parse to an untyped document.
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
		return nil, newParseErr(dir, err)
	}
	root := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	}

	// Step 3: $include resolution.
	var initialStack []string
	if selfPath != "" {
		initialStack = []string{selfPath}
	}
	root, err = newIncludeResolver(peekLimits(root).Loader.MaxIncludeDepth).resolve(root, dir, initialStack)
	if err != nil {
		return nil, err
	}

	// Step 4: $file resolution.
	root, err = newFileResolver(peekLimits(root).Loader.MaxFileSize).resolve(root, dir)
	if err != nil {
		return nil, err
	}

	// Limits may themselves be overridden in the document; peek at them
	// before resolving $generate so generator validation uses the
	// scenario's own limits rather than always the defaults.
	limits := peekLimits(root)

	// Step 5: $generate resolution (validates generator parameters;
	// constructs no generator and never runs generation).
	root, err = newGenerateResolver(limits.Generator).resolve(root)
	if err != nil {
		return nil, err
	}

	// Step 6: typed deserialization.
	var s scenario.Scenario
	if err := root.Decode(&s); err != nil {
		return nil, newParseErr(dir, err)
	}
	if s.Limits.Generator.MaxDepth == 0 && s.Limits.Generator.MaxWidth == 0 {
		s.Limits = s.Limits.WithDefaults()
	}

	// Step 7: validation.
	warnings, err := Validate(&s)
	if err != nil {
		return nil, err
	}

	// Step 8: freeze.
	return &LoadResult{Scenario: s.Freeze(), Warnings: warnings}, nil
}

// peekLimits best-effort decodes just the top-level `limits` key so
// $generate validation (step 5) can use a scenario's own overrides instead
// of always falling back to defaults, without requiring the full typed
// decode (step 6) to happen first.
func peekLimits(root *yaml.Node) scenario.Limits {
	limits := scenario.DefaultLimits()
	if root == nil || root.Kind != yaml.MappingNode {
		return limits
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "limits" {
			var l scenario.Limits
			if err := root.Content[i+1].Decode(&l); err == nil {
				return l.WithDefaults()
			}
		}
	}
	return limits
}
