package generator

import (
	"fmt"
	"strings"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// nestedJSON produces a JSON value nested depth levels deep, each interior
// level an object with width keys (spec.md §4.B "NestedJson").
type nestedJSON struct {
	depth, width, leafSize int
	seed                    uint64
	limits                  scenario.GeneratorLimits
	size                    int64
}

func newNestedJSON(cfg scenario.GeneratorConfig, limits scenario.GeneratorLimits, seed uint64) (Generator, error) {
	depth, width := cfg.Depth, cfg.Width
	if depth <= 0 {
		depth = 1
	}
	if width <= 0 {
		width = 1
	}
	leafSize := 8
	if depth > limits.MaxDepth {
		return nil, &Error{Kind: ErrLimitExceeded, Name: "depth", Attempted: fmt.Sprint(depth), Limit: fmt.Sprint(limits.MaxDepth)}
	}
	if width > limits.MaxWidth {
		return nil, &Error{Kind: ErrLimitExceeded, Name: "width", Attempted: fmt.Sprint(width), Limit: fmt.Sprint(limits.MaxWidth)}
	}

	n := &nestedJSON{depth: depth, width: width, leafSize: leafSize, seed: seed, limits: limits}
	n.size = n.estimate()
	if n.size > limits.MaxTotalBytes {
		return nil, &Error{Kind: ErrLimitExceeded, Name: "total_bytes", Attempted: fmt.Sprint(n.size), Limit: fmt.Sprint(limits.MaxTotalBytes)}
	}
	return n, nil
}

func (n *nestedJSON) EstimatedSize() int64 { return n.size }

func (n *nestedJSON) estimate() int64 {
	// One leaf per (width^depth) path, each "k<i>":"<leafSize bytes>".
	nodes := int64(1)
	total := int64(0)
	for level := 0; level < n.depth; level++ {
		total += nodes * int64(n.width) * int64(n.leafSize+8)
		nodes *= int64(n.width)
	}
	return total
}

func (n *nestedJSON) Generate() (Payload, error) {
	var b strings.Builder
	d := newDeadline(n.limits)
	if err := n.build(&b, n.depth, d); err != nil {
		return Payload{}, err
	}
	data := []byte(b.String())
	if int64(len(data)) > n.limits.MaxTotalBytes {
		return Payload{}, &Error{Kind: ErrLimitExceeded, Name: "total_bytes", Attempted: fmt.Sprint(len(data)), Limit: fmt.Sprint(n.limits.MaxTotalBytes)}
	}
	if streamThresholdExceeded(int64(len(data)), n.limits) {
		return Payload{Stream: chunk(data)}, nil
	}
	return Payload{Inline: data}, nil
}

func (n *nestedJSON) build(b *strings.Builder, remaining int, d deadline) error {
	if d.exceeded() {
		return d.err()
	}
	if remaining <= 0 {
		b.WriteByte('"')
		b.WriteString(leafString(n.leafSize))
		b.WriteByte('"')
		return nil
	}
	b.WriteByte('{')
	for i := 0; i < n.width; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "\"k%d\":", i)
		if err := n.build(b, remaining-1, d); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func leafString(size int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, size)
	for i := range b {
		b[i] = alphabet[i%len(alphabet)]
	}
	return string(b)
}
