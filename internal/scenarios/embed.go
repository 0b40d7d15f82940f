// Package scenarios holds the built-in scenario library, embedded at
// compile time (spec.md §6: "Built-in scenarios. Embedded at compile
// time, keyed by slug").
package scenarios

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed library/*.yaml
var library embed.FS

// entry is the lightweight metadata parsed out of each embedded file just
// far enough to drive `server list` without running the full config
// pipeline (internal/config does $include/$file/$generate resolution the
// library never needs, since the shipped files carry no directives).
type entry struct {
	path string
	meta struct {
		Metadata struct {
			ID       string   `yaml:"id"`
			Name     string   `yaml:"name"`
			Severity string   `yaml:"severity"`
			Tags     []string `yaml:"tags"`
		} `yaml:"metadata"`
	}
}

var registry = mustLoadRegistry()

func mustLoadRegistry() map[string]entry {
	files, err := library.ReadDir("library")
	if err != nil {
		panic(fmt.Sprintf("scenarios: embedded library unreadable: %v", err))
	}
	reg := make(map[string]entry, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}
		raw, err := library.ReadFile("library/" + f.Name())
		if err != nil {
			panic(fmt.Sprintf("scenarios: reading %s: %v", f.Name(), err))
		}
		var e entry
		e.path = "library/" + f.Name()
		if err := yaml.Unmarshal(raw, &e.meta); err != nil {
			panic(fmt.Sprintf("scenarios: parsing metadata from %s: %v", f.Name(), err))
		}
		if e.meta.Metadata.ID == "" {
			panic(fmt.Sprintf("scenarios: %s missing metadata.id", f.Name()))
		}
		reg[e.meta.Metadata.ID] = e
	}
	return reg
}

// Info describes one built-in scenario for listing purposes.
type Info struct {
	Slug     string
	Name     string
	Severity string
	Tags     []string
}

// List returns built-in scenarios sorted by slug, optionally filtered by
// tag/category (case-insensitive substring match against tags).
func List(category string) []Info {
	out := make([]Info, 0, len(registry))
	category = strings.ToLower(strings.TrimSpace(category))
	for slug, e := range registry {
		if category != "" && !hasTag(e.meta.Metadata.Tags, category) {
			continue
		}
		out = append(out, Info{
			Slug:     slug,
			Name:     e.meta.Metadata.Name,
			Severity: e.meta.Metadata.Severity,
			Tags:     e.meta.Metadata.Tags,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

func hasTag(tags []string, needle string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// Get returns the raw YAML bytes for a built-in scenario by slug, for the
// caller to feed through the same config-loading pipeline as user-supplied
// files (internal/config.LoadFromStr).
func Get(slug string) ([]byte, error) {
	e, ok := registry[slug]
	if !ok {
		return nil, fmt.Errorf("scenarios: unknown built-in scenario %q (see `server list`)", slug)
	}
	raw, err := library.ReadFile(e.path)
	if err != nil {
		return nil, fmt.Errorf("scenarios: reading %s: %w", e.path, err)
	}
	return raw, nil
}
