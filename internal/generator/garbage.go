package generator

import (
	"fmt"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// garbage produces size bytes drawn from the requested charset (spec.md
// §4.B "Garbage").
type garbage struct {
	size     int64
	alphabet string
	seed     uint64
	limits   scenario.GeneratorLimits
}

var garbageAlphabets = map[string]string{
	"printable": " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~",
	"ascii":     "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
	"hex":       "0123456789abcdef",
	"base64":    "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/",
}

func newGarbage(cfg scenario.GeneratorConfig, limits scenario.GeneratorLimits, seed uint64) (Generator, error) {
	size := cfg.SizeBytes
	if size <= 0 {
		size = 1024
	}
	if size > limits.MaxTotalBytes {
		return nil, &Error{Kind: ErrLimitExceeded, Name: "size_bytes", Attempted: fmt.Sprint(size), Limit: fmt.Sprint(limits.MaxTotalBytes)}
	}
	alphabet := cfg.Alphabet
	if alphabet == "" {
		alphabet = "printable"
	}
	if alphabet != "binary" {
		if _, ok := garbageAlphabets[alphabet]; !ok {
			return nil, &Error{Kind: ErrInvalidParam, Name: "alphabet", Reason: fmt.Sprintf("unknown charset %q", alphabet)}
		}
	}
	return &garbage{size: size, alphabet: alphabet, seed: seed, limits: limits}, nil
}

func (g *garbage) EstimatedSize() int64 { return g.size }

// garbageFillBatch is how many bytes are produced between deadline checks,
// keeping the time.Now() overhead off the hot per-byte path.
const garbageFillBatch = 1 << 16

func (g *garbage) Generate() (Payload, error) {
	r := newRand(g.seed, 0)
	data := make([]byte, g.size)
	d := newDeadline(g.limits)

	if g.alphabet == "binary" {
		for filled := 0; filled < len(data); filled += garbageFillBatch {
			if d.exceeded() {
				return Payload{}, d.err()
			}
			end := filled + garbageFillBatch
			if end > len(data) {
				end = len(data)
			}
			r.Read(data[filled:end]) //nolint:errcheck // math/rand.Rand.Read never errors
		}
	} else {
		set := garbageAlphabets[g.alphabet]
		for i := range data {
			if i%garbageFillBatch == 0 && d.exceeded() {
				return Payload{}, d.err()
			}
			data[i] = set[r.Intn(len(set))]
		}
	}
	if streamThresholdExceeded(g.size, g.limits) {
		return Payload{Stream: chunk(data)}, nil
	}
	return Payload{Inline: data}, nil
}
