// Package behavior implements the delivery wire-strategies and side
// effects that misbehave against a client intentionally (spec.md §4.G).
package behavior

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// Deliver writes msg (already-serialized JSON-RPC bytes, without a
// trailing newline) to w according to cfg, honouring ctx cancellation
// between suspension points (spec.md §5 "Suspension points", §4.G
// delivery table).
func Deliver(ctx context.Context, w io.Writer, cfg scenario.DeliveryConfig, msg []byte) error {
	switch cfg.Kind {
	case "", scenario.DeliveryNormal:
		return deliverNormal(w, msg)
	case scenario.DeliverySlowLoris:
		return deliverSlowLoris(ctx, w, msg, cfg)
	case scenario.DeliveryChunked:
		return deliverChunked(ctx, w, msg, cfg)
	case scenario.DeliveryTruncated:
		return deliverTruncated(w, msg, cfg)
	case scenario.DeliveryMalformed:
		return deliverNormal(w, corrupt(msg, cfg.Corruption))
	case scenario.DeliveryNoResponse:
		return nil
	default:
		return fmt.Errorf("behavior: unknown delivery kind %q", cfg.Kind)
	}
}

func deliverNormal(w io.Writer, msg []byte) error {
	_, err := w.Write(append(append([]byte(nil), msg...), '\n'))
	return err
}

// deliverSlowLoris writes one byte every interval_ms, checking ctx between
// each byte so cancellation is observed promptly (spec.md §4.G:
// "must honour cancellation between bytes").
func deliverSlowLoris(ctx context.Context, w io.Writer, msg []byte, cfg scenario.DeliveryConfig) error {
	interval := time.Duration(cfg.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Millisecond
	}
	full := append(append([]byte(nil), msg...), '\n')
	for i, b := range full {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return err
		}
	}
	return nil
}

// deliverChunked writes in chunk_size pieces with delay_ms between them.
func deliverChunked(ctx context.Context, w io.Writer, msg []byte, cfg scenario.DeliveryConfig) error {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 16
	}
	delay := time.Duration(cfg.DelayMs) * time.Millisecond
	full := append(append([]byte(nil), msg...), '\n')
	for i := 0; i < len(full); i += chunkSize {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		end := i + chunkSize
		if end > len(full) {
			end = len(full)
		}
		if _, err := w.Write(full[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// deliverTruncated writes the first cut_at bytes then stops without a
// trailing newline (spec.md §4.G: "close write side without newline").
func deliverTruncated(w io.Writer, msg []byte, cfg scenario.DeliveryConfig) error {
	cut := cfg.CutAt
	if cut < 0 {
		cut = 0
	}
	if cut > len(msg) {
		cut = len(msg)
	}
	_, err := w.Write(msg[:cut])
	return err
}

// corrupt injects the configured corruption post-serialize (spec.md §4.G:
// "Inject configured corruption ... post-serialize").
func corrupt(msg []byte, kind string) []byte {
	switch kind {
	case "invalid_utf8":
		// 0xFF is never valid as a UTF-8 lead or continuation byte.
		return append(append([]byte(nil), msg...), 0xFF)
	case "unbalanced_braces":
		return bytes.TrimRight(msg, "}")
	default:
		return msg
	}
}
