package behavior

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// Writer is the minimal contract a side effect needs against the
// transport: a single serializing sink, matching the server's
// single-writer-task discipline (spec.md §5 "stdout writer ... receiving
// messages on an unbounded internal channel").
type Writer interface {
	WriteLine(data []byte) error
}

// Closer is the transport-level shutdown hook connection_drop uses to
// actually end the session, rather than merely waiting out delay_ms
// (spec.md §4.G "ConnectionDrop": "closes the transport after delay_ms").
type Closer interface {
	Close()
}

// Handle is a running side effect tied to the run's cancellation token; on
// shutdown every handle is joined with a grace period then aborted
// (spec.md §4.G: "handle tied to the run's cancellation token").
type Handle struct {
	done chan struct{}
}

// Wait blocks until the side effect finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) {
	select {
	case <-h.done:
	case <-ctx.Done():
	}
}

// Spawn starts one side effect as a goroutine tracked by wg, returning a
// Handle the caller can join at shutdown. Grounded on teacher's
// ConcurrencyRunner pattern of spawning a bounded set of cancellable
// workers against a shared errgroup
// (internal/pipeline/concurrency.go), adapted here to a detached handle
// per side effect rather than a barrier-joined group.
func Spawn(ctx context.Context, wg *sync.WaitGroup, w Writer, closer Closer, cfg scenario.SideEffectConfig, responseMsg []byte) *Handle {
	h := &Handle{done: make(chan struct{})}
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(h.done)
		switch cfg.Kind {
		case scenario.SideEffectNotificationFlood:
			notificationFlood(ctx, w, cfg)
		case scenario.SideEffectDuplicateRequest:
			duplicateRequest(ctx, w, cfg, responseMsg)
		case scenario.SideEffectConnectionDrop:
			connectionDrop(ctx, closer, cfg)
		case scenario.SideEffectPipeDeadlock:
			pipeDeadlock(ctx)
		}
	}()
	return h
}

// notificationFlood sends count notifications at rate_per_sec via this
// detached goroutine (spec.md §4.G "NotificationFlood").
func notificationFlood(ctx context.Context, w Writer, cfg scenario.SideEffectConfig) {
	count := cfg.Count
	if count <= 0 {
		count = 1
	}
	rate := cfg.RatePerSec
	if rate <= 0 {
		rate = 1
	}
	interval := time.Duration(float64(time.Second) / rate)
	method := cfg.Method
	if method == "" {
		method = "notifications/test"
	}

	for i := 0; i < count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
		notif, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "method": method, "params": map[string]any{}})
		if err != nil {
			continue
		}
		if err := w.WriteLine(notif); err != nil {
			return
		}
	}
}

// duplicateRequest re-emits the triggering request's already-serialized
// response bytes n times verbatim — not re-serialized — per the decided
// Open Question recorded in DESIGN.md: the spec says "re-emit the
// triggering request's response", and the literal bytes are what a real
// duplicate-delivery bug would replay (spec.md §4.G "DuplicateRequest").
func duplicateRequest(ctx context.Context, w Writer, cfg scenario.SideEffectConfig, responseMsg []byte) {
	n := cfg.N
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := w.WriteLine(responseMsg); err != nil {
			return
		}
	}
}

// connectionDrop closes the transport after delay_ms. If ctx ends first
// (run shutting down on its own), the transport is already being torn
// down and closer is left alone.
func connectionDrop(ctx context.Context, closer Closer, cfg scenario.SideEffectConfig) {
	delay := time.Duration(cfg.DelayMs) * time.Millisecond
	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}
	if closer != nil {
		closer.Close()
	}
}

// pipeDeadlock writes nothing to the client and blocks until ctx is
// cancelled. It does not issue a server→client request; this build has no
// outbound request channel (spec.md §4.G "PipeDeadlock").
func pipeDeadlock(ctx context.Context) {
	<-ctx.Done()
}

// DrainWriter adapts an io.Writer (e.g. the stdio writer's line channel
// sink) to the Writer interface side effects use.
type DrainWriter struct {
	W io.Writer
	// Mu serializes writes the way the server's single stdout-writer task
	// does; side effects never have exclusive ownership of the transport.
	Mu *sync.Mutex
}

func (d DrainWriter) WriteLine(data []byte) error {
	d.Mu.Lock()
	defer d.Mu.Unlock()
	_, err := d.W.Write(append(append([]byte(nil), data...), '\n'))
	return err
}
