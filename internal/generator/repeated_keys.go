package generator

import (
	"fmt"
	"strings"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// repeatedKeys produces a hand-assembled JSON object text with key_count
// textually duplicated keys — standard encoders collapse duplicate keys,
// so this writes the bytes directly rather than going through
// encoding/json (spec.md §4.B "RepeatedKeys": "must be emitted by hand").
type repeatedKeys struct {
	keyCount, valueSize int
	keyName              string
	limits                scenario.GeneratorLimits
	size                   int64
}

func newRepeatedKeys(cfg scenario.GeneratorConfig, limits scenario.GeneratorLimits, seed uint64) (Generator, error) {
	keyCount := cfg.KeyCount
	if keyCount <= 0 {
		keyCount = 1
	}
	valueSize := cfg.ValueSize
	if valueSize <= 0 {
		valueSize = 8
	}
	keyName := cfg.KeyName
	if keyName == "" {
		keyName = "k"
	}
	size := int64(keyCount) * int64(valueSize+len(keyName)+8)
	if size > limits.MaxTotalBytes {
		return nil, &Error{Kind: ErrLimitExceeded, Name: "key_count", Attempted: fmt.Sprint(size), Limit: fmt.Sprint(limits.MaxTotalBytes)}
	}
	return &repeatedKeys{keyCount: keyCount, valueSize: valueSize, keyName: keyName, limits: limits, size: size}, nil
}

func (r *repeatedKeys) EstimatedSize() int64 { return r.size }

func (r *repeatedKeys) Generate() (Payload, error) {
	d := newDeadline(r.limits)
	var sb strings.Builder
	sb.WriteByte('{')
	value := leafString(r.valueSize)
	for i := 0; i < r.keyCount; i++ {
		if i%4096 == 0 && d.exceeded() {
			return Payload{}, d.err()
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%q:%q", r.keyName, value)
	}
	sb.WriteByte('}')
	data := []byte(sb.String())
	if int64(len(data)) > r.limits.MaxTotalBytes {
		return Payload{}, &Error{Kind: ErrLimitExceeded, Name: "total_bytes", Attempted: fmt.Sprint(len(data)), Limit: fmt.Sprint(r.limits.MaxTotalBytes)}
	}
	if streamThresholdExceeded(int64(len(data)), r.limits) {
		return Payload{Stream: chunk(data)}, nil
	}
	return Payload{Inline: data}, nil
}
