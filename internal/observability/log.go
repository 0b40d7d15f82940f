// Package observability wires ThoughtJack's structured event log: zap JSON
// lines written to stderr so stdout stays reserved for the MCP transport.
// The server writes warning and error records to it (such as dropped
// malformed lines); phase transitions, generator invocations and behavior
// dispatches are not logged.
package observability

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the CLI's --verbose/--quiet knobs (spec.md §6).
type Level int

const (
	LevelQuiet Level = iota
	LevelNormal
	LevelVerbose
)

// NewLogger builds the per-run event logger. Output always targets stderr
// in JSON lines, matching spec.md §6's "optional per-run event log to
// stderr in JSON lines" — here it is not optional, just level-gated.
func NewLogger(level Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch level {
	case LevelQuiet:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case LevelVerbose:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("run_id", uuid.NewString())), nil
}

// Noop returns a logger that discards everything, used by tests and by
// library callers that never set one up.
func Noop() *zap.Logger {
	return zap.NewNop()
}
