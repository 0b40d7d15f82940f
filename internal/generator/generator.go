// Package generator implements the six adversarial payload factories
// (spec.md §4.B). A Generator is constructed once from a frozen
// scenario.GeneratorConfig and a scenario.GeneratorLimits, validating its
// parameters up front; Generate is called once per response and must be
// deterministic when the config carries a seed.
package generator

import (
	"fmt"
	"time"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// Payload is the result of a Generate call: either the full bytes inline,
// or a channel of ≤64 KiB chunks when the size of the produced bytes
// reaches the scenario's stream_threshold (spec.md §4.B "Streaming").
type Payload struct {
	Inline []byte
	Stream <-chan []byte
}

// IsStream reports whether this payload must be drained from Stream rather
// than read from Inline.
func (p Payload) IsStream() bool { return p.Stream != nil }

// ErrorKind enumerates the generator failure taxonomy (spec.md §4.B
// "Common error kinds").
type ErrorKind string

const (
	ErrInvalidParam   ErrorKind = "invalid_param"
	ErrLimitExceeded  ErrorKind = "limit_exceeded"
	ErrSeedRequired   ErrorKind = "seed_required"
)

// Error is the generator package's single error type.
type Error struct {
	Kind  ErrorKind
	Name  string
	Limit string
	Attempted string
	Reason string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrLimitExceeded:
		return fmt.Sprintf("generator: limit exceeded: %s (attempted %s, limit %s)", e.Name, e.Attempted, e.Limit)
	case ErrSeedRequired:
		return "generator: deterministic output requested but no seed available"
	default:
		return fmt.Sprintf("generator: invalid param %q: %s", e.Name, e.Reason)
	}
}

// Generator is the common capability set every variant implements
// (spec.md §4.B).
type Generator interface {
	// Generate produces the payload. Implementations must finish within
	// GeneratorLimits.MaxGenerationTime and respect MaxTotalBytes.
	Generate() (Payload, error)
	// EstimatedSize is advisory. Generate does not consult it: whether a
	// payload streams depends on the length of the bytes actually produced.
	EstimatedSize() int64
}

// New constructs the Generator variant named by cfg.Kind, validating its
// parameters against limits. Construction validates; Generate produces
// bytes (spec.md §4.B: "constructor validates and fixes the seed").
func New(cfg scenario.GeneratorConfig, limits scenario.GeneratorLimits) (Generator, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = splitmix64(uint64(time.Now().UnixNano()))
	}

	switch cfg.Kind {
	case scenario.GeneratorNestedJSON:
		return newNestedJSON(cfg, limits, seed)
	case scenario.GeneratorGarbage:
		return newGarbage(cfg, limits, seed)
	case scenario.GeneratorBatchNotifications:
		return newBatchNotifications(cfg, limits, seed)
	case scenario.GeneratorRepeatedKeys:
		return newRepeatedKeys(cfg, limits, seed)
	case scenario.GeneratorUnicodeSpam:
		return newUnicodeSpam(cfg, limits, seed)
	case scenario.GeneratorAnsiEscape:
		return newAnsiEscape(cfg, limits, seed)
	default:
		return nil, &Error{Kind: ErrInvalidParam, Name: "kind", Reason: fmt.Sprintf("unknown generator kind %q", cfg.Kind)}
	}
}

func streamThresholdExceeded(size int64, limits scenario.GeneratorLimits) bool {
	return limits.StreamThreshold > 0 && size >= limits.StreamThreshold
}

// deadline tracks one Generate call's wall-clock budget, shared by every
// variant that loops or recurses while building output (spec.md §4.B
// GeneratorLimits.MaxGenerationTime). A zero-valued MaxGenerationTime
// means no budget.
type deadline struct {
	start time.Time
	max   time.Duration
}

func newDeadline(limits scenario.GeneratorLimits) deadline {
	return deadline{start: time.Now(), max: limits.MaxGenerationTime}
}

func (d deadline) exceeded() bool {
	return d.max > 0 && time.Since(d.start) > d.max
}

func (d deadline) err() error {
	return &Error{
		Kind:      ErrLimitExceeded,
		Name:      "generation_time",
		Attempted: time.Since(d.start).String(),
		Limit:     d.max.String(),
	}
}

const streamChunkSize = 64 * 1024

// chunk splits data into ≤64 KiB pieces and streams them over a buffered
// channel that's closed once every chunk has been sent (spec.md §4.B:
// "yielding chunks of ≤64 KiB").
func chunk(data []byte) <-chan []byte {
	ch := make(chan []byte, (len(data)/streamChunkSize)+1)
	go func() {
		defer close(ch)
		for len(data) > 0 {
			n := streamChunkSize
			if n > len(data) {
				n = len(data)
			}
			ch <- data[:n]
			data = data[n:]
		}
	}()
	return ch
}
