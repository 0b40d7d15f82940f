package behavior

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

func TestNotificationFloodSendsCountAtRate(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	w := DrainWriter{W: &buf, Mu: &mu}

	var wg sync.WaitGroup
	cfg := scenario.SideEffectConfig{
		Kind:       scenario.SideEffectNotificationFlood,
		Trigger:    scenario.OnRequest,
		Count:      5,
		RatePerSec: 1000,
		Method:     "notifications/test",
	}
	h := Spawn(context.Background(), &wg, w, nil, cfg, nil)
	h.Wait(context.Background())
	wg.Wait()

	mu.Lock()
	n := strings.Count(buf.String(), "notifications/test")
	mu.Unlock()
	if n != 5 {
		t.Fatalf("expected 5 notifications, got %d in %q", n, buf.String())
	}
}

func TestDuplicateRequestReemitsLiteralBytes(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	w := DrainWriter{W: &buf, Mu: &mu}

	respBytes := []byte(`{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"pong"}]}}`)
	var wg sync.WaitGroup
	cfg := scenario.SideEffectConfig{Kind: scenario.SideEffectDuplicateRequest, Trigger: scenario.OnResponse, N: 3}
	h := Spawn(context.Background(), &wg, w, nil, cfg, respBytes)
	h.Wait(context.Background())
	wg.Wait()

	mu.Lock()
	out := buf.String()
	mu.Unlock()
	if strings.Count(out, "pong") != 3 {
		t.Fatalf("expected response re-emitted 3 times verbatim, got %q", out)
	}
}

type fakeCloser struct {
	mu     sync.Mutex
	closed bool
}

func (c *fakeCloser) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeCloser) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestConnectionDropWaitsDelay(t *testing.T) {
	var wg sync.WaitGroup
	cfg := scenario.SideEffectConfig{Kind: scenario.SideEffectConnectionDrop, Trigger: scenario.OnRequest, DelayMs: 5}
	start := time.Now()
	h := Spawn(context.Background(), &wg, DrainWriter{}, nil, cfg, nil)
	h.Wait(context.Background())
	wg.Wait()
	if time.Since(start) < 5*time.Millisecond {
		t.Fatalf("expected connection_drop to wait at least delay_ms")
	}
}

func TestConnectionDropClosesTransport(t *testing.T) {
	var wg sync.WaitGroup
	closer := &fakeCloser{}
	cfg := scenario.SideEffectConfig{Kind: scenario.SideEffectConnectionDrop, Trigger: scenario.OnRequest, DelayMs: 1}
	h := Spawn(context.Background(), &wg, DrainWriter{}, closer, cfg, nil)
	h.Wait(context.Background())
	wg.Wait()
	if !closer.isClosed() {
		t.Fatalf("expected connection_drop to close the transport after delay_ms")
	}
}

func TestConnectionDropDoesNotCloseIfCancelledFirst(t *testing.T) {
	var wg sync.WaitGroup
	closer := &fakeCloser{}
	cfg := scenario.SideEffectConfig{Kind: scenario.SideEffectConnectionDrop, Trigger: scenario.OnRequest, DelayMs: 1000}
	ctx, cancel := context.WithCancel(context.Background())
	h := Spawn(ctx, &wg, DrainWriter{}, closer, cfg, nil)
	cancel()
	h.Wait(context.Background())
	wg.Wait()
	if closer.isClosed() {
		t.Fatalf("expected connection_drop not to close the transport when cancelled before delay_ms elapses")
	}
}
