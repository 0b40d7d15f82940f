package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// batchNotifications produces a JSON array of count JSON-RPC notification
// objects; method comes from a `{i}`-substituting template, and each
// carries no `id` field (spec.md §4.B "BatchNotifications").
type batchNotifications struct {
	count  int
	method string
	limits scenario.GeneratorLimits
	size   int64
}

func newBatchNotifications(cfg scenario.GeneratorConfig, limits scenario.GeneratorLimits, seed uint64) (Generator, error) {
	count := cfg.Count
	if count <= 0 {
		count = 1
	}
	method := cfg.Method
	if method == "" {
		method = "notifications/test"
	}
	b := &batchNotifications{count: count, method: method, limits: limits}
	b.size = b.estimate()
	if b.size > limits.MaxTotalBytes {
		return nil, &Error{Kind: ErrLimitExceeded, Name: "count", Attempted: fmt.Sprint(b.size), Limit: fmt.Sprint(limits.MaxTotalBytes)}
	}
	return b, nil
}

func (b *batchNotifications) estimate() int64 {
	return int64(b.count) * int64(len(b.method)+48)
}

func (b *batchNotifications) EstimatedSize() int64 { return b.size }

func (b *batchNotifications) Generate() (Payload, error) {
	d := newDeadline(b.limits)
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < b.count; i++ {
		if i%4096 == 0 && d.exceeded() {
			return Payload{}, d.err()
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		method := strings.ReplaceAll(b.method, "{i}", strconv.Itoa(i))
		fmt.Fprintf(&sb, `{"jsonrpc":"2.0","method":%q,"params":{}}`, method)
	}
	sb.WriteByte(']')
	data := []byte(sb.String())
	if int64(len(data)) > b.limits.MaxTotalBytes {
		return Payload{}, &Error{Kind: ErrLimitExceeded, Name: "total_bytes", Attempted: fmt.Sprint(len(data)), Limit: fmt.Sprint(b.limits.MaxTotalBytes)}
	}
	if streamThresholdExceeded(int64(len(data)), b.limits) {
		return Payload{Stream: chunk(data)}, nil
	}
	return Payload{Inline: data}, nil
}
