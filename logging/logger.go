package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// LogLevel orders log severities.
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts the level names case-insensitively.
func ParseLevel(s string) (LogLevel, error) {
	for l := TRACE; l <= ERROR; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

type logger struct {
	out   *log.Logger
	level LogLevel
}

var (
	mu     sync.RWMutex
	global *logger
)

// Init routes messages at or above level to w. Until Init is called every
// Log function is a no-op.
func Init(level LogLevel, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	global = &logger{out: log.New(w, "", log.LstdFlags), level: level}
}

// Enabled reports whether messages of the given level are written.
func Enabled(level LogLevel) bool {
	mu.RLock()
	defer mu.RUnlock()
	return global != nil && level >= global.level
}

func LogTrace(format string, args ...any) { logMessage(TRACE, format, args...) }
func LogDebug(format string, args ...any) { logMessage(DEBUG, format, args...) }
func LogInfo(format string, args ...any)  { logMessage(INFO, format, args...) }
func LogWarn(format string, args ...any)  { logMessage(WARN, format, args...) }
func LogError(format string, args ...any) { logMessage(ERROR, format, args...) }

func logMessage(level LogLevel, format string, args ...any) {
	mu.RLock()
	g := global
	mu.RUnlock()
	if g == nil || level < g.level {
		return
	}
	g.out.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}
