package logging

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevelEnv sets the initial threshold, e.g. GHOSTCHAT_LOG_LEVEL=warn.
const LogLevelEnv = "GHOSTCHAT_LOG_LEVEL"

// Level is the severity of a log entry.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelDebug, fmt.Errorf("unknown log level %q", s)
}

// threshold is shared by every logger in the process. Entries below it are
// dropped before formatting.
var threshold atomic.Int32

func init() {
	if v := os.Getenv(LogLevelEnv); v != "" {
		if l, err := ParseLevel(v); err == nil {
			threshold.Store(int32(l))
		}
	}
}

// SetLevel changes the process-wide threshold.
func SetLevel(l Level) {
	threshold.Store(int32(l))
}

// CurrentLevel reports the process-wide threshold.
func CurrentLevel() Level {
	return Level(threshold.Load())
}

func enabled(l Level) bool {
	return int32(l) >= threshold.Load()
}
