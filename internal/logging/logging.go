// Package logging is the server's ambient logger: leveled, TTY-aware, and
// writing to stderr (or a configured log file), never stdout, since stdout
// is the JSON-RPC channel when the server
// runs over stdio (§5, `internal/lspserver`'s stdio transport).
//
// Grounded on danieljhkim-monodev's internal/cli/format.go, which leaves
// TTY detection to fatih/color and only decides per-message severity
// coloring itself; go-isatty is wired in explicitly here (as
// elves-elvish/sys does for its own IsATTY helper) since a log file
// destination other than the process's own stderr needs its own check.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level orders the severities a Logger accepts, low to high.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) (Level, bool) {
	switch s {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return 0, false
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	debugColor = color.New(color.FgHiBlack)
	infoColor  = color.New(color.FgCyan)
	warnColor  = color.New(color.FgYellow, color.Bold)
	errColor   = color.New(color.FgRed, color.Bold)
)

func colorFor(l Level) *color.Color {
	switch l {
	case LevelDebug:
		return debugColor
	case LevelWarn:
		return warnColor
	case LevelError:
		return errColor
	default:
		return infoColor
	}
}

// Logger writes leveled, timestamped lines to an underlying writer,
// colored only when that writer is a terminal. It's safe for concurrent
// use by the server's request handlers, which run one goroutine per
// notification (per §5's diagnostics-publishing pattern).
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
	color    bool
}

// New builds a Logger writing to out at minLevel. Coloring is enabled only
// when out is *os.File pointing at a terminal, mirroring fatih/color's own
// auto-detection but made explicit so a --log-file destination is never
// colored regardless of the terminal that launched the process.
func New(out io.Writer, minLevel Level) *Logger {
	enableColor := false
	if f, ok := out.(*os.File); ok {
		enableColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{out: out, minLevel: minLevel, color: enableColor}
}

// NewStderr builds the server's default logger: stderr, TTY-colored when
// attached to one, since stdout must stay reserved for the LSP wire
// protocol on the stdio transport.
func NewStderr(minLevel Level) *Logger {
	return New(os.Stderr, minLevel)
}

func (l *Logger) log(lvl Level, format string, args ...any) {
	if lvl < l.minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	ts := time.Now().UTC().Format("15:04:05.000")

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.color {
		colorFor(lvl).Fprintf(l.out, "%s [%s] %s\n", ts, lvl, msg)
		return
	}
	fmt.Fprintf(l.out, "%s [%s] %s\n", ts, lvl, msg)
}

func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args...) }
