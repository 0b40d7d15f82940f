// Command thoughtjack runs the adversarial MCP server described by a
// scenario document, or validates/lists scenarios without running one
// (spec.md §6 "CLI surface"). Flag parsing and subcommand dispatch are
// explicitly out of the core's scope; this file is the thin wrapper that
// wires flags to internal/config, internal/phase and internal/server,
// grounded on teacher's plain-`flag` CLI (cmd/tercios/main.go) rather than
// pulling in a framework.
package main

import (
	"fmt"
	"os"

	"github.com/thoughtjack/thoughtjack/internal/config"
	"github.com/thoughtjack/thoughtjack/internal/observability"
	"github.com/thoughtjack/thoughtjack/internal/scenarios"
)

// Exit codes (spec.md §6).
const (
	exitSuccess    = 0
	exitUsage      = 2
	exitPhaseError = 3
	exitIOError    = 4
	exitSIGINT     = 130
	exitSIGTERM    = 143
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitUsage
	}

	switch args[0] {
	case "server":
		if len(args) < 2 {
			usage()
			return exitUsage
		}
		return runServerCommand(args[1], args[2:])
	case "agent":
		fmt.Fprintln(os.Stderr, "thoughtjack: agent mode is reserved, not implemented")
		return exitUsage
	case "-h", "--help", "help":
		usage()
		return exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "thoughtjack: unknown command %q\n", args[0])
		usage()
		return exitUsage
	}
}

func runServerCommand(sub string, args []string) int {
	switch sub {
	case "run":
		return cmdRun(args)
	case "validate":
		return cmdValidate(args)
	case "list":
		return cmdList(args)
	default:
		fmt.Fprintf(os.Stderr, "thoughtjack: unknown server subcommand %q\n", sub)
		usage()
		return exitUsage
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  thoughtjack server run [--config PATH] [--tool PATH] [--scenario NAME] [--delivery KIND] [--verbose] [--quiet]
  thoughtjack server validate FILE...
  thoughtjack server list [--category CAT]
  thoughtjack agent ...   (reserved)`)
}

func level(verbose, quiet bool) observability.Level {
	switch {
	case quiet:
		return observability.LevelQuiet
	case verbose:
		return observability.LevelVerbose
	default:
		return observability.LevelNormal
	}
}

// loadScenario resolves a scenario from (in priority order) --config,
// --tool, or --scenario NAME, the three "at least one source required"
// inputs spec.md §6 names.
func loadScenario(configPath, toolPath, scenarioName string) (*config.LoadResult, error) {
	switch {
	case configPath != "":
		return config.LoadFromPath(configPath)
	case toolPath != "":
		return config.LoadFromPath(toolPath)
	case scenarioName != "":
		raw, err := scenarios.Get(scenarioName)
		if err != nil {
			return nil, err
		}
		return config.LoadFromStr(string(raw))
	default:
		return nil, fmt.Errorf("at least one of --config, --tool, or --scenario is required")
	}
}
