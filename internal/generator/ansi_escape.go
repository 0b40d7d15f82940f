package generator

import (
	"fmt"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// ansiEscapeSequences maps `sequences` names to representative VT100/
// xterm control sequences (spec.md §4.B "AnsiEscape").
var ansiEscapeSequences = map[string]string{
	"cursor_move": "\x1b[10;20H",
	"color":       "\x1b[31;1m",
	"erase":       "\x1b[2J",
	"title_set":   "\x1b]0;pwned\x07",
	"bell":        "\x07",
}

type ansiEscape struct {
	sequences []string
	length    int
	seed      uint64
	size      int64
	limits    scenario.GeneratorLimits
}

func newAnsiEscape(cfg scenario.GeneratorConfig, limits scenario.GeneratorLimits, seed uint64) (Generator, error) {
	names := cfg.Sequences
	if len(names) == 0 {
		names = []string{"cursor_move", "color", "erase", "title_set", "bell"}
	}
	seqs := make([]string, 0, len(names))
	for _, name := range names {
		seq, ok := ansiEscapeSequences[name]
		if !ok {
			return nil, &Error{Kind: ErrInvalidParam, Name: "sequences", Reason: fmt.Sprintf("unknown sequence %q", name)}
		}
		seqs = append(seqs, seq)
	}
	length := cfg.Length
	if length <= 0 {
		length = 256
	}
	if int64(length) > limits.MaxTotalBytes {
		return nil, &Error{Kind: ErrLimitExceeded, Name: "length", Attempted: fmt.Sprint(length), Limit: fmt.Sprint(limits.MaxTotalBytes)}
	}
	return &ansiEscape{sequences: seqs, length: length, seed: seed, size: int64(length), limits: limits}, nil
}

func (a *ansiEscape) EstimatedSize() int64 { return a.size }

const ansiSpacerAlphabet = " .-_+=abcdefghijklmnopqrstuvwxyz"

func (a *ansiEscape) Generate() (Payload, error) {
	d := newDeadline(a.limits)
	r := newRand(a.seed, 1)
	out := make([]byte, 0, a.length)
	i := 0
	for len(out) < a.length {
		if i%4096 == 0 && d.exceeded() {
			return Payload{}, d.err()
		}
		seq := a.sequences[i%len(a.sequences)]
		i++
		if len(out)+len(seq) > a.length {
			break
		}
		out = append(out, seq...)
		if len(out) < a.length {
			out = append(out, ansiSpacerAlphabet[r.Intn(len(ansiSpacerAlphabet))])
		}
	}
	if int64(len(out)) > a.limits.MaxTotalBytes {
		return Payload{}, &Error{Kind: ErrLimitExceeded, Name: "total_bytes", Attempted: fmt.Sprint(len(out)), Limit: fmt.Sprint(a.limits.MaxTotalBytes)}
	}
	if streamThresholdExceeded(int64(len(out)), a.limits) {
		return Payload{Stream: chunk(out)}, nil
	}
	return Payload{Inline: out}, nil
}
