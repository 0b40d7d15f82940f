package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thoughtjack/thoughtjack/internal/config"
	"github.com/thoughtjack/thoughtjack/internal/metrics"
	"github.com/thoughtjack/thoughtjack/internal/observability"
	"github.com/thoughtjack/thoughtjack/internal/scenario"
	"github.com/thoughtjack/thoughtjack/internal/scenarios"
	"github.com/thoughtjack/thoughtjack/internal/server"
)

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("server run", flag.ContinueOnError)
	var (
		configPath   string
		toolPath     string
		scenarioName string
		deliveryFlag string
		verbose      bool
		quiet        bool
	)
	fs.StringVar(&configPath, "config", "", "path to a scenario YAML file")
	fs.StringVar(&toolPath, "tool", "", "path to a scenario YAML file (alias for --config)")
	fs.StringVar(&scenarioName, "scenario", "", "built-in scenario slug (see `server list`)")
	fs.StringVar(&deliveryFlag, "delivery", "", "override delivery kind for every response: normal|slow_loris|chunked|truncated|malformed|no_response")
	fs.BoolVar(&verbose, "verbose", false, "emit debug-level event log to stderr")
	fs.BoolVar(&quiet, "quiet", false, "emit only error-level event log to stderr")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	result, err := loadScenario(configPath, toolPath, scenarioName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "thoughtjack: %v\n", err)
		return exitForLoadErr(err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "thoughtjack: warning: %s\n", w.String())
	}

	opts := server.DefaultOptions()
	if deliveryFlag != "" {
		kind := scenario.DeliveryKind(deliveryFlag)
		if !validDeliveryKind(kind) {
			fmt.Fprintf(os.Stderr, "thoughtjack: invalid --delivery %q\n", deliveryFlag)
			return exitUsage
		}
		opts.DeliveryOverride = &scenario.DeliveryConfig{Kind: kind}
	}

	log, err := observability.NewLogger(level(verbose, quiet))
	if err != nil {
		fmt.Fprintf(os.Stderr, "thoughtjack: failed to start logger: %v\n", err)
		return exitIOError
	}
	defer func() { _ = log.Sync() }()

	srv, err := server.New(result.Scenario, opts, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "thoughtjack: failed to build server: %v\n", err)
		return exitPhaseError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx, os.Stdin, os.Stdout)
	fmt.Fprintln(os.Stderr, metrics.FormatSummary(srv.Stats().Summary()))

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "thoughtjack: server exited with error: %v\n", runErr)
		return exitPhaseError
	}
	switch ctx.Err() {
	case context.Canceled:
		if isSIGTERM(ctx) {
			return exitSIGTERM
		}
		return exitSIGINT
	default:
		return exitSuccess
	}
}

func cmdValidate(args []string) int {
	fs := flag.NewFlagSet("server validate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "thoughtjack: server validate requires at least one file")
		return exitUsage
	}

	status := exitSuccess
	for _, path := range files {
		result, err := config.LoadFromPath(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			status = exitForLoadErr(err)
			continue
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "%s: warning: %s\n", path, w.String())
		}
		fmt.Printf("%s: ok\n", path)
	}
	return status
}

func cmdList(args []string) int {
	fs := flag.NewFlagSet("server list", flag.ContinueOnError)
	var category string
	fs.StringVar(&category, "category", "", "filter by tag substring")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	for _, s := range scenarios.List(category) {
		fmt.Printf("%-16s %-28s %-8s %v\n", s.Slug, s.Name, s.Severity, s.Tags)
	}
	return exitSuccess
}

func validDeliveryKind(k scenario.DeliveryKind) bool {
	switch k {
	case scenario.DeliveryNormal, scenario.DeliverySlowLoris, scenario.DeliveryChunked,
		scenario.DeliveryTruncated, scenario.DeliveryMalformed, scenario.DeliveryNoResponse:
		return true
	default:
		return false
	}
}

// exitForLoadErr maps a config.Error's kind to the documented exit codes:
// I/O failures exit 4, every other config failure (parse, cycle, unknown
// env, size limit, semantic validation) is a usage/config error, exit 2.
func exitForLoadErr(err error) int {
	var cerr *config.Error
	if errors.As(err, &cerr) && cerr.Kind == config.ErrIO {
		return exitIOError
	}
	return exitUsage
}

// isSIGTERM always returns false: the context built by signal.NotifyContext
// does not expose which signal fired, so SIGINT and SIGTERM both exit 130.
// Nothing else (the event log included) records which signal it was.
func isSIGTERM(ctx context.Context) bool {
	return false
}
