// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// The pricing engine itself never logs. Callers around it (the contract
// entry point, the REST server, batch pricing and the CLI) do.
//
// Example usage:
//
//	logger.SetLevel(logger.Debug)
//	logger.Infof("Call price: %s", price)
//	logger.Debugf("stock=%s strike=%s", p.Stock, p.Strike)
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

var levelNames = [...]string{"error", "info", "debug", "trace"}

func (l Level) String() string {
	if l < Error || l > Trace {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel converts a config value such as "info" or "DEBUG" to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return Info, fmt.Errorf("unknown log level %q", s)
}

// current holds the active verbosity level. It is read from concurrent
// request handlers, hence atomic.
var current atomic.Int32

func init() {
	current.Store(int32(Info))

	// stderr keeps logs apart from the priced output on stdout.
	log.SetOutput(os.Stderr)

	// e.g. 2026/01/25 15:42:10 contract.go:41 [INFO]  Call price: 8.0213...
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// SetLevel sets the global logging verbosity.
func SetLevel(l Level) {
	current.Store(int32(l))
}

// SetVerbosity is SetLevel for a numeric flag value (0=errors .. 3=trace).
// Out-of-range values fall back to Info.
func SetVerbosity(v int) {
	l := Level(v)
	if l < Error || l > Trace {
		l = Info
	}
	SetLevel(l)
}

// CurrentLevel returns the active verbosity.
func CurrentLevel() Level {
	return Level(current.Load())
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func logf(l Level, prefix, format string, args ...any) {
	if CurrentLevel() >= l {
		// depth 3: log.Output <- logf <- Errorf/Infof/... <- caller
		_ = log.Output(3, prefix+fmt.Sprintf(format, args...))
	}
}

// Errorf logs an error-level message.
func Errorf(format string, args ...any) {
	logf(Error, "[ERROR] ", format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	logf(Info, "[INFO]  ", format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	logf(Debug, "[DEBUG] ", format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	logf(Trace, "[TRACE] ", format, args...)
}
