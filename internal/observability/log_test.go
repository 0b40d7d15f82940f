package observability

import "testing"

func TestNewLoggerBuildsForEveryLevel(t *testing.T) {
	for _, lvl := range []Level{LevelQuiet, LevelNormal, LevelVerbose} {
		log, err := NewLogger(lvl)
		if err != nil {
			t.Fatalf("NewLogger(%v): %v", lvl, err)
		}
		if log == nil {
			t.Fatalf("NewLogger(%v) returned nil logger", lvl)
		}
	}
}
