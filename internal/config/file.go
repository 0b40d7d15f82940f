package config

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileResolver replaces every `$file: <path>` mapping (optionally with
// `encoding: base64`) with a scalar string node holding the file's content,
// enforcing maxSize (spec.md §4.C step 4).
type fileResolver struct {
	maxSize  int64
	readFile func(path string) ([]byte, error)
}

func newFileResolver(maxSize int64) *fileResolver {
	if maxSize <= 0 {
		maxSize = 16 * 1024 * 1024
	}
	return &fileResolver{maxSize: maxSize, readFile: os.ReadFile}
}

type rawFileDirective struct {
	File     string `yaml:"$file"`
	Encoding string `yaml:"encoding,omitempty"`
}

func (r *fileResolver) resolve(node *yaml.Node, dir string) (*yaml.Node, error) {
	if node == nil {
		return nil, nil
	}

	if node.Kind == yaml.MappingNode && isFileDirective(node) {
		var raw rawFileDirective
		if err := node.Decode(&raw); err != nil {
			return nil, newParseErr(dir, err)
		}
		abs := filepath.Join(dir, raw.File)
		info, err := os.Stat(abs)
		if err != nil {
			return nil, newIOErr(abs, err)
		}
		if info.Size() > r.maxSize {
			return nil, newSizeLimitErr(abs, os.ErrInvalid)
		}
		data, err := r.readFile(abs)
		if err != nil {
			return nil, newIOErr(abs, err)
		}
		content := string(data)
		if raw.Encoding == "base64" {
			content = base64.StdEncoding.EncodeToString(data)
		}
		scalar := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: content}
		return scalar, nil
	}

	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for i, child := range node.Content {
			resolved, err := r.resolve(child, dir)
			if err != nil {
				return nil, err
			}
			node.Content[i] = resolved
		}
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			resolved, err := r.resolve(node.Content[i], dir)
			if err != nil {
				return nil, err
			}
			node.Content[i] = resolved
		}
	}
	return node, nil
}

func isFileDirective(node *yaml.Node) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "$file" {
			return true
		}
	}
	return false
}
