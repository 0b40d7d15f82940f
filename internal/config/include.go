package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const maxIncludeDepthHardCap = 8

// includeResolver walks a decoded yaml.Node tree and replaces every mapping
// of the single-key form `$include: <relative-path>` with the parsed
// content of that file, resolved relative to dir (spec.md §4.C step 3).
// Directive resolution runs on the untyped document, the pattern Navarch's
// Duration.UnmarshalYAML uses for its own node-level rewriting
// (other_examples/04c3677f_NavarchProject-navarch).
type includeResolver struct {
	maxDepth int
	readFile func(path string) ([]byte, error)
}

func newIncludeResolver(maxDepth int) *includeResolver {
	if maxDepth <= 0 || maxDepth > maxIncludeDepthHardCap {
		maxDepth = maxIncludeDepthHardCap
	}
	return &includeResolver{maxDepth: maxDepth, readFile: os.ReadFile}
}

func (r *includeResolver) resolve(node *yaml.Node, dir string, stack []string) (*yaml.Node, error) {
	return r.resolveDepth(node, dir, stack, 0)
}

// resolveDepth walks node looking for $include directives. depth counts
// only $include hops (len(stack)), never ordinary YAML nesting, so a
// document with deep but include-free structure never trips maxDepth.
func (r *includeResolver) resolveDepth(node *yaml.Node, dir string, stack []string, depth int) (*yaml.Node, error) {
	if node == nil {
		return nil, nil
	}
	if depth > r.maxDepth {
		return nil, newCycleErr(dir)
	}

	if path, ok := singleKeyDirective(node, "$include"); ok {
		abs := filepath.Join(dir, path)
		for _, seen := range stack {
			if seen == abs {
				return nil, newCycleErr(abs)
			}
		}
		data, err := r.readFile(abs)
		if err != nil {
			return nil, newIOErr(abs, err)
		}
		var included yaml.Node
		if err := yaml.Unmarshal(data, &included); err != nil {
			return nil, newParseErr(abs, err)
		}
		if included.Kind == yaml.DocumentNode && len(included.Content) > 0 {
			return r.resolveDepth(included.Content[0], filepath.Dir(abs), append(stack, abs), depth+1)
		}
		return r.resolveDepth(&included, filepath.Dir(abs), append(stack, abs), depth+1)
	}

	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for i, child := range node.Content {
			resolved, err := r.resolveDepth(child, dir, stack, depth)
			if err != nil {
				return nil, err
			}
			node.Content[i] = resolved
		}
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			resolved, err := r.resolveDepth(node.Content[i], dir, stack, depth)
			if err != nil {
				return nil, err
			}
			node.Content[i] = resolved
		}
	}
	return node, nil
}

// singleKeyDirective reports whether node is a one-key mapping keyed by
// directive, returning the string value of that key.
func singleKeyDirective(node *yaml.Node, directive string) (string, bool) {
	if node == nil || node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return "", false
	}
	key, val := node.Content[0], node.Content[1]
	if key.Value != directive {
		return "", false
	}
	return val.Value, true
}
