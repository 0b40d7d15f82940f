package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// generateResolver replaces every `$generate: {type: ..., ...}` mapping with
// a `generate:` node holding its GeneratorConfig, after validating the
// declared parameters against limits. It does not construct a generator
// and never runs generation: the scenario keeps only the config, and the
// server builds the generator with generator.New each time it renders the
// response.
type generateResolver struct {
	limits scenario.GeneratorLimits
}

func newGenerateResolver(limits scenario.GeneratorLimits) *generateResolver {
	return &generateResolver{limits: limits}
}

type rawGenerateDirective struct {
	Generate scenario.GeneratorConfig `yaml:"$generate"`
}

func (r *generateResolver) resolve(node *yaml.Node) (*yaml.Node, error) {
	if node == nil {
		return nil, nil
	}

	if node.Kind == yaml.MappingNode && isGenerateDirective(node) {
		var raw rawGenerateDirective
		if err := node.Decode(&raw); err != nil {
			return nil, newParseErr("$generate", err)
		}
		if err := validateGeneratorConfig(raw.Generate, r.limits); err != nil {
			return nil, err
		}
		clamped := raw.Generate.WithLimits(r.limits)

		wrapped := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "generate"}
		var valNode yaml.Node
		if err := valNode.Encode(clamped); err != nil {
			return nil, newParseErr("$generate", err)
		}
		wrapped.Content = append(wrapped.Content, keyNode, &valNode)
		return wrapped, nil
	}

	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for i, child := range node.Content {
			resolved, err := r.resolve(child)
			if err != nil {
				return nil, err
			}
			node.Content[i] = resolved
		}
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			resolved, err := r.resolve(node.Content[i])
			if err != nil {
				return nil, err
			}
			node.Content[i] = resolved
		}
	}
	return node, nil
}

func isGenerateDirective(node *yaml.Node) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "$generate" {
			return true
		}
	}
	return false
}

// validateGeneratorConfig checks declared parameters against limits at
// load time, without constructing the generator.
func validateGeneratorConfig(g scenario.GeneratorConfig, limits scenario.GeneratorLimits) error {
	switch g.Kind {
	case scenario.GeneratorNestedJSON:
		if g.Depth > limits.MaxDepth {
			return &Error{Kind: ErrSemantic, Issues: []Issue{{
				Severity: SeverityError, Path: "$generate.depth",
				Message: fmt.Sprintf("depth %d exceeds max_depth %d", g.Depth, limits.MaxDepth),
			}}}
		}
		if g.Width > limits.MaxWidth {
			return &Error{Kind: ErrSemantic, Issues: []Issue{{
				Severity: SeverityError, Path: "$generate.width",
				Message: fmt.Sprintf("width %d exceeds max_width %d", g.Width, limits.MaxWidth),
			}}}
		}
	case scenario.GeneratorGarbage:
		if g.SizeBytes > limits.MaxTotalBytes {
			return &Error{Kind: ErrSemantic, Issues: []Issue{{
				Severity: SeverityError, Path: "$generate.size_bytes",
				Message: fmt.Sprintf("size_bytes %d exceeds max_total_bytes %d", g.SizeBytes, limits.MaxTotalBytes),
			}}}
		}
	case scenario.GeneratorRepeatedKeys:
		if int64(g.KeyCount)*int64(g.ValueSize) > limits.MaxTotalBytes {
			return &Error{Kind: ErrSemantic, Issues: []Issue{{
				Severity: SeverityError, Path: "$generate.key_count",
				Message: "key_count*value_size exceeds max_total_bytes",
			}}}
		}
	case scenario.GeneratorBatchNotifications, scenario.GeneratorUnicodeSpam, scenario.GeneratorAnsiEscape:
		// no depth/width axis; their length/count fields are not checked
		// here, only by the generator's constructor when generator.New runs.
	default:
		return &Error{Kind: ErrSemantic, Issues: []Issue{{
			Severity: SeverityError, Path: "$generate.type",
			Message: fmt.Sprintf("unknown generator kind %q", g.Kind),
		}}}
	}
	return nil
}
