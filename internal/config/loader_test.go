package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromStrSimpleServer(t *testing.T) {
	text := `
metadata:
  id: simple-server
  name: Simple Server
server:
  name: simple-server
  version: "1.0.0"
  protocol_version: "2024-11-05"
baseline:
  tools:
    - name: echo
      response:
        text: "Echo: hello"
behaviors:
  delivery:
    kind: normal
`
	result, err := LoadFromStr(text)
	if err != nil {
		t.Fatalf("LoadFromStr() error = %v", err)
	}
	if len(result.Scenario.Baseline.Tools) != 1 {
		t.Fatalf("expected 1 baseline tool, got %d", len(result.Scenario.Baseline.Tools))
	}
	if result.Scenario.Baseline.Tools[0].Name != "echo" {
		t.Fatalf("expected tool name echo, got %q", result.Scenario.Baseline.Tools[0].Name)
	}
}

func TestLoadFromStrEmptyScenarioIsError(t *testing.T) {
	text := `
metadata:
  id: empty
  name: Empty
server:
  name: empty
  version: "1.0.0"
  protocol_version: "2024-11-05"
`
	_, err := LoadFromStr(text)
	if err == nil {
		t.Fatalf("expected error for empty scenario, got nil")
	}
	cfgErr, ok := err.(*Error)
	if !ok || cfgErr.Kind != ErrSemantic {
		t.Fatalf("expected ErrSemantic, got %#v", err)
	}
}

func TestLoadFromStrDuplicateNameWarns(t *testing.T) {
	text := `
metadata:
  id: dup
  name: Dup
server:
  name: dup
  version: "1.0.0"
  protocol_version: "2024-11-05"
baseline:
  tools:
    - name: echo
      response:
        text: "one"
    - name: echo
      response:
        text: "two"
`
	result, err := LoadFromStr(text)
	if err != nil {
		t.Fatalf("LoadFromStr() error = %v", err)
	}
	found := false
	for _, w := range result.Warnings {
		if w.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a duplicate-name warning, got %#v", result.Warnings)
	}
}

func TestLoadFromStrUnknownEnvFails(t *testing.T) {
	_, err := LoadFromStr(`metadata:
  id: ${THOUGHTJACK_UNSET_VAR_XYZ}
  name: x
server:
  name: x
  version: "1.0.0"
  protocol_version: "2024-11-05"
baseline:
  tools:
    - name: echo
      response:
        text: "x"
`)
	if err == nil {
		t.Fatalf("expected unknown env var error, got nil")
	}
	cfgErr, ok := err.(*Error)
	if !ok || cfgErr.Kind != ErrUnknownEnv {
		t.Fatalf("expected ErrUnknownEnv, got %#v", err)
	}
}

func TestLoadFromStrEnvDefault(t *testing.T) {
	result, err := LoadFromStr(`metadata:
  id: ${THOUGHTJACK_UNSET_VAR_XYZ:-fallback-id}
  name: x
server:
  name: x
  version: "1.0.0"
  protocol_version: "2024-11-05"
baseline:
  tools:
    - name: echo
      response:
        text: "x"
`)
	if err != nil {
		t.Fatalf("LoadFromStr() error = %v", err)
	}
	if result.Scenario.Metadata.ID != "fallback-id" {
		t.Fatalf("expected fallback-id, got %q", result.Scenario.Metadata.ID)
	}
}

func TestLoadFromPathInclude(t *testing.T) {
	dir := t.TempDir()
	included := `
- name: echo
  response:
    text: "from include"
`
	if err := os.WriteFile(filepath.Join(dir, "tools.yaml"), []byte(included), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	main := `
metadata:
  id: includer
  name: Includer
server:
  name: includer
  version: "1.0.0"
  protocol_version: "2024-11-05"
baseline:
  tools: {$include: tools.yaml}
`
	if err := os.WriteFile(filepath.Join(dir, "main.yaml"), []byte(main), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	result, err := LoadFromPath(filepath.Join(dir, "main.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if len(result.Scenario.Baseline.Tools) != 1 || result.Scenario.Baseline.Tools[0].Response.Text != "from include" {
		t.Fatalf("unexpected baseline after include: %#v", result.Scenario.Baseline.Tools)
	}
}

// TestLoadFromStrDeepNestingWithoutIncludeSucceeds guards against conflating
// ordinary YAML document depth with $include-chain depth: nine levels of
// plain mapping nesting, with zero $include directives anywhere, must never
// trip the include cycle/depth guard.
func TestLoadFromStrDeepNestingWithoutIncludeSucceeds(t *testing.T) {
	text := `
metadata:
  id: deep-nesting
  name: Deep Nesting
server:
  name: deep-nesting
  version: "1.0.0"
  protocol_version: "2024-11-05"
baseline:
  tools:
    - name: echo
      response:
        text: "ok"
        extra:
          a:
            b:
              c:
                d:
                  e:
                    f:
                      g:
                        h:
                          i: leaf
`
	result, err := LoadFromStr(text)
	if err != nil {
		t.Fatalf("LoadFromStr() error = %v, want nil for a deep but include-free document", err)
	}
	if len(result.Scenario.Baseline.Tools) != 1 || result.Scenario.Baseline.Tools[0].Name != "echo" {
		t.Fatalf("unexpected baseline after deep-nesting load: %#v", result.Scenario.Baseline.Tools)
	}
}

func TestLoadFromPathIncludeCycleFails(t *testing.T) {
	dir := t.TempDir()
	a := `{$include: b.yaml}`
	b := `{$include: a.yaml}`
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(a), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(b), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil {
		t.Fatalf("expected cycle error, got nil")
	}
	cfgErr, ok := err.(*Error)
	if !ok || cfgErr.Kind != ErrCycle {
		t.Fatalf("expected ErrCycle, got %#v", err)
	}
}
