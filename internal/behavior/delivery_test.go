package behavior

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

func TestDeliverNormalAppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	if err := Deliver(context.Background(), &buf, scenario.DeliveryConfig{Kind: scenario.DeliveryNormal}, []byte(`{"jsonrpc":"2.0"}`)); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if buf.String() != "{\"jsonrpc\":\"2.0\"}\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestDeliverSlowLorisWritesAllBytes(t *testing.T) {
	var buf bytes.Buffer
	msg := []byte("hello")
	start := time.Now()
	if err := Deliver(context.Background(), &buf, scenario.DeliveryConfig{Kind: scenario.DeliverySlowLoris, IntervalMs: 1}, msg); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if buf.String() != "hello\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
	if elapsed := time.Since(start); elapsed < time.Duration(len(msg))*time.Millisecond {
		t.Fatalf("expected slow_loris to take at least %d ms, took %s", len(msg), elapsed)
	}
}

func TestDeliverSlowLorisHonoursCancellation(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Deliver(ctx, &buf, scenario.DeliveryConfig{Kind: scenario.DeliverySlowLoris, IntervalMs: 50}, []byte("abcdefgh"))
	if err == nil {
		t.Fatalf("expected cancellation error, got nil")
	}
}

func TestDeliverTruncatedCutsAtBoundary(t *testing.T) {
	var buf bytes.Buffer
	if err := Deliver(context.Background(), &buf, scenario.DeliveryConfig{Kind: scenario.DeliveryTruncated, CutAt: 3}, []byte("abcdef")); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if buf.String() != "abc" {
		t.Fatalf("expected truncated output without newline, got %q", buf.String())
	}
}

func TestDeliverNoResponseWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := Deliver(context.Background(), &buf, scenario.DeliveryConfig{Kind: scenario.DeliveryNoResponse}, []byte("abc")); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes written, got %q", buf.String())
	}
}

func TestDeliverMalformedInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	if err := Deliver(context.Background(), &buf, scenario.DeliveryConfig{Kind: scenario.DeliveryMalformed, Corruption: "invalid_utf8"}, []byte("abc")); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if bytes.Equal(buf.Bytes(), []byte("abc\n")) {
		t.Fatalf("expected corrupted output to differ from clean serialization")
	}
}

func TestResolveDeliveryScopingChain(t *testing.T) {
	baseline := scenario.Behaviors{Delivery: scenario.DeliveryConfig{Kind: scenario.DeliveryNormal}}
	phase := scenario.Behaviors{
		Delivery: scenario.DeliveryConfig{Kind: scenario.DeliveryChunked},
		ItemOverrides: []scenario.ItemOverride{
			{Item: scenario.ItemScope{Kind: "tool", Name: "echo"}, Delivery: scenario.DeliveryConfig{Kind: scenario.DeliverySlowLoris}},
		},
	}

	// item-level override wins over phase baseline delivery.
	got := ResolveDelivery(nil, Request{ItemKind: "tool", ItemName: "echo"}, phase, baseline)
	if got.Kind != scenario.DeliverySlowLoris {
		t.Fatalf("expected item override to win, got %v", got.Kind)
	}

	// no item match falls through to phase-level delivery.
	got = ResolveDelivery(nil, Request{ItemKind: "tool", ItemName: "other"}, phase, baseline)
	if got.Kind != scenario.DeliveryChunked {
		t.Fatalf("expected phase delivery to win, got %v", got.Kind)
	}

	// CLI override always wins.
	cli := scenario.DeliveryConfig{Kind: scenario.DeliveryNoResponse}
	got = ResolveDelivery(&cli, Request{ItemKind: "tool", ItemName: "echo"}, phase, baseline)
	if got.Kind != scenario.DeliveryNoResponse {
		t.Fatalf("expected CLI override to win, got %v", got.Kind)
	}
}
