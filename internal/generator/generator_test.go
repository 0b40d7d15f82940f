package generator

import (
	"bytes"
	"testing"
	"time"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

func TestNestedJSONDeterministicWithSeed(t *testing.T) {
	limits := scenario.DefaultGeneratorLimits()
	cfg := scenario.GeneratorConfig{Kind: scenario.GeneratorNestedJSON, Depth: 3, Width: 2, Seed: 42}

	g1, err := New(cfg, limits)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p1, err := g1.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	g2, err := New(cfg, limits)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p2, err := g2.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !bytes.Equal(p1.Inline, p2.Inline) {
		t.Fatalf("expected identical output for same seed, got %q vs %q", p1.Inline, p2.Inline)
	}
}

func TestNestedJSONRejectsDepthOverLimit(t *testing.T) {
	limits := scenario.GeneratorLimits{MaxDepth: 2, MaxWidth: 10, MaxTotalBytes: 1 << 20, MaxGenerationTime: 0, StreamThreshold: 1 << 20}
	cfg := scenario.GeneratorConfig{Kind: scenario.GeneratorNestedJSON, Depth: 5, Width: 2, Seed: 1}

	if _, err := New(cfg, limits); err == nil {
		t.Fatalf("expected limit-exceeded error, got nil")
	}
}

func TestGarbageProducesExactSize(t *testing.T) {
	limits := scenario.DefaultGeneratorLimits()
	cfg := scenario.GeneratorConfig{Kind: scenario.GeneratorGarbage, SizeBytes: 500, Alphabet: "hex", Seed: 7}

	g, err := New(cfg, limits)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	payload, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(payload.Inline) != 500 {
		t.Fatalf("expected 500 bytes, got %d", len(payload.Inline))
	}
}

func TestBatchNotificationsNoIDField(t *testing.T) {
	limits := scenario.DefaultGeneratorLimits()
	cfg := scenario.GeneratorConfig{Kind: scenario.GeneratorBatchNotifications, Count: 3, Method: "notifications/test_{i}"}

	g, err := New(cfg, limits)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	payload, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if bytes.Contains(payload.Inline, []byte(`"id"`)) {
		t.Fatalf("batch notifications must not contain an id field: %s", payload.Inline)
	}
	if !bytes.Contains(payload.Inline, []byte("notifications/test_0")) {
		t.Fatalf("expected templated method with index substitution, got %s", payload.Inline)
	}
}

func TestRepeatedKeysEmitsDuplicateKeysByHand(t *testing.T) {
	limits := scenario.DefaultGeneratorLimits()
	cfg := scenario.GeneratorConfig{Kind: scenario.GeneratorRepeatedKeys, KeyCount: 3, KeyName: "dup", ValueSize: 4}

	g, err := New(cfg, limits)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	payload, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if n := bytes.Count(payload.Inline, []byte(`"dup"`)); n != 3 {
		t.Fatalf("expected 3 literal occurrences of duplicated key, got %d in %s", n, payload.Inline)
	}
}

func TestUnicodeSpamRespectsLength(t *testing.T) {
	limits := scenario.DefaultGeneratorLimits()
	cfg := scenario.GeneratorConfig{Kind: scenario.GeneratorUnicodeSpam, RuneClasses: []string{"zero_width", "combining"}, Length: 64}

	g, err := New(cfg, limits)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	payload, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(payload.Inline) > 64 {
		t.Fatalf("expected output length <= 64 bytes, got %d", len(payload.Inline))
	}
}

func TestGenerateRespectsMaxGenerationTime(t *testing.T) {
	tiny := scenario.GeneratorLimits{
		MaxDepth: 256, MaxWidth: 1024, MaxTotalBytes: 16 << 20,
		MaxGenerationTime: time.Nanosecond, StreamThreshold: 16 << 20,
	}
	cases := []struct {
		name string
		cfg  scenario.GeneratorConfig
	}{
		{"nested_json", scenario.GeneratorConfig{Kind: scenario.GeneratorNestedJSON, Depth: 6, Width: 6, Seed: 1}},
		{"garbage", scenario.GeneratorConfig{Kind: scenario.GeneratorGarbage, SizeBytes: 1 << 20, Alphabet: "ascii", Seed: 1}},
		{"batch_notifications", scenario.GeneratorConfig{Kind: scenario.GeneratorBatchNotifications, Count: 200000, Method: "notifications/test_{i}"}},
		{"repeated_keys", scenario.GeneratorConfig{Kind: scenario.GeneratorRepeatedKeys, KeyCount: 200000, KeyName: "dup", ValueSize: 4}},
		{"unicode_spam", scenario.GeneratorConfig{Kind: scenario.GeneratorUnicodeSpam, RuneClasses: []string{"zero_width"}, Length: 1 << 20}},
		{"ansi_escape", scenario.GeneratorConfig{Kind: scenario.GeneratorAnsiEscape, Sequences: []string{"bell"}, Length: 1 << 20}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := New(tc.cfg, tiny)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			_, err = g.Generate()
			if err == nil {
				t.Fatalf("expected MaxGenerationTime to be enforced, got nil error")
			}
			genErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if genErr.Kind != ErrLimitExceeded || genErr.Name != "generation_time" {
				t.Fatalf("expected ErrLimitExceeded/generation_time, got %+v", genErr)
			}
		})
	}
}

func TestGeneratorStreamsAboveThreshold(t *testing.T) {
	limits := scenario.GeneratorLimits{MaxDepth: 256, MaxWidth: 1024, MaxTotalBytes: 1 << 20, MaxGenerationTime: 0, StreamThreshold: 100}
	cfg := scenario.GeneratorConfig{Kind: scenario.GeneratorGarbage, SizeBytes: 1000, Alphabet: "ascii", Seed: 3}

	g, err := New(cfg, limits)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	payload, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !payload.IsStream() {
		t.Fatalf("expected streaming payload above stream_threshold")
	}
	var total int
	for chunk := range payload.Stream {
		if len(chunk) > 64*1024 {
			t.Fatalf("chunk exceeds 64KiB: %d", len(chunk))
		}
		total += len(chunk)
	}
	if total != 1000 {
		t.Fatalf("expected 1000 total bytes across stream, got %d", total)
	}
}
