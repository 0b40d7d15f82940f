package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thoughtjack/thoughtjack/internal/config"
	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

func TestValidDeliveryKind(t *testing.T) {
	if !validDeliveryKind(scenario.DeliverySlowLoris) {
		t.Fatalf("expected slow_loris to be valid")
	}
	if validDeliveryKind(scenario.DeliveryKind("bogus")) {
		t.Fatalf("expected bogus kind to be invalid")
	}
}

func TestExitForLoadErrMapsIOToExitIOError(t *testing.T) {
	_, err := config.LoadFromPath(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if got := exitForLoadErr(err); got != exitIOError {
		t.Fatalf("expected exitIOError, got %d", got)
	}
}

func TestExitForLoadErrMapsSemanticToExitUsage(t *testing.T) {
	_, err := config.LoadFromStr("metadata: {id: x, name: x}\n")
	if err == nil {
		t.Fatalf("expected an error for an empty scenario")
	}
	if got := exitForLoadErr(err); got != exitUsage {
		t.Fatalf("expected exitUsage, got %d", got)
	}
}

func TestCmdValidateSucceedsOnBuiltinShapedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	doc := `
metadata:
  id: cli-test
  name: CLI Test
server:
  name: cli-test-server
  version: "1.0.0"
  protocol_version: "2024-11-05"
baseline:
  tools:
    - name: echo
      response:
        text: "hi"
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write temp scenario: %v", err)
	}
	if got := cmdValidate([]string{path}); got != exitSuccess {
		t.Fatalf("expected exitSuccess, got %d", got)
	}
}

func TestCmdListSucceeds(t *testing.T) {
	if got := cmdList(nil); got != exitSuccess {
		t.Fatalf("expected exitSuccess, got %d", got)
	}
}

func TestRunWithNoArgsReturnsUsageExit(t *testing.T) {
	if got := run(nil); got != exitUsage {
		t.Fatalf("expected exitUsage, got %d", got)
	}
}

func TestRunAgentReturnsUsageExit(t *testing.T) {
	if got := run([]string{"agent", "start"}); got != exitUsage {
		t.Fatalf("expected exitUsage for reserved agent command, got %d", got)
	}
}
