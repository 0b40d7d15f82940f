// Package server wires the config-loaded scenario, phase engine, behavior
// layer and transport into a running MCP-over-stdio process (spec.md §5
// "Scheduling model").
package server

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thoughtjack/thoughtjack/internal/behavior"
	"github.com/thoughtjack/thoughtjack/internal/metrics"
	"github.com/thoughtjack/thoughtjack/internal/phase"
	"github.com/thoughtjack/thoughtjack/internal/scenario"
	"github.com/thoughtjack/thoughtjack/internal/transport"
)

// Options configures a Server beyond what the scenario document carries.
type Options struct {
	DeliveryOverride *scenario.DeliveryConfig // CLI --delivery, top of the scoping chain
	ShutdownGrace    time.Duration
	MaxLineBytes     int
}

// DefaultOptions mirrors spec.md §5's stated shutdown grace period.
func DefaultOptions() Options {
	return Options{ShutdownGrace: 5 * time.Second}
}

// Server runs one scenario against one stdin/stdout pair until the input
// is exhausted or ctx is cancelled.
type Server struct {
	scenario *scenario.Scenario
	engine   *phase.Engine
	opts     Options
	log      *zap.Logger

	writer *transport.Writer
	stats  *metrics.Stats

	sideEffectWG sync.WaitGroup
}

// New constructs a Server from an already-frozen scenario.
func New(s *scenario.Scenario, opts Options, log *zap.Logger) (*Server, error) {
	eng, err := phase.NewEngine(s)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{scenario: s, engine: eng, opts: opts, log: log, stats: metrics.NewStats()}, nil
}

// Stats returns the running session's delivery/notification/behavior
// counters, for the caller to print a summary after Run returns.
func (s *Server) Stats() *metrics.Stats { return s.stats }

// Run drives the reader/writer/timer tasks against stdin/stdout until EOF
// or cancellation, the single-process cooperative scheduling model spec.md
// §5 describes: one reader task, one serialized writer task, a 100ms
// phase-timer task, and handlers dispatched per line.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.writer = transport.NewWriter(ctx, stdout)
	defer s.shutdownWriter()

	reader := transport.NewReader(stdin, s.opts.MaxLineBytes)
	incoming := reader.Run(ctx)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.runTimer(gctx)
		return nil
	})

	group.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case msg, ok := <-incoming:
				if !ok {
					cancel()
					return nil
				}
				s.handleIncoming(gctx, msg)
			}
		}
	})

	err := group.Wait()
	s.joinSideEffects()
	return err
}

// runTimer ticks the phase engine every 100ms (spec.md §4.E
// "on_timer_tick"), stopping when ctx is done.
func (s *Server) runTimer(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if fired := s.engine.OnTimerTick(); fired != nil {
				s.flushEntryActions(fired)
			}
		}
	}
}

// joinSideEffects waits for outstanding side-effect goroutines up to the
// configured grace period, then returns without further blocking — the
// forced-abort half of spec.md §5's "5 s, then forced abort" is the
// process exiting out from under them once Run returns.
func (s *Server) joinSideEffects() {
	grace := s.opts.ShutdownGrace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	done := make(chan struct{})
	go func() {
		s.sideEffectWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		s.log.Warn("side effects did not finish within shutdown grace period")
	}
}

func (s *Server) shutdownWriter() {
	s.writer.Close()
	select {
	case <-s.writer.Done():
	case <-time.After(s.opts.graceOrDefault()):
	}
}

func (o Options) graceOrDefault() time.Duration {
	if o.ShutdownGrace <= 0 {
		return 5 * time.Second
	}
	return o.ShutdownGrace
}

// writeLine serializes a single write through the server's one writer
// task, the same task side effects write through via serverWriterAdapter.
func (s *Server) writeLine(data []byte) error {
	return s.writer.WriteLine(data)
}

var (
	_ behavior.Writer = (*serverWriterAdapter)(nil)
	_ behavior.Closer = (*serverWriterAdapter)(nil)
)

type serverWriterAdapter struct{ s *Server }

func (a serverWriterAdapter) WriteLine(data []byte) error { return a.s.writeLine(data) }

// Close ends the session's stdout transport, the effect connection_drop
// relies on to actually sever the connection rather than merely waiting.
func (a serverWriterAdapter) Close() { a.s.writer.Close() }
