// Package trace is a minimal tty-aware trace logger for the JIT bridge,
// grounded on the teacher's internal/evaluator/builtins_term.go: detect
// terminal/color support with github.com/mattn/go-isatty and hand-roll the
// formatting rather than pull in a logging framework.
package trace

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Logger writes short, single-line trace records for JIT-bridge activity
// (spec.md §4.5): a form being wrapped, a successful compile with its
// duration, and a compile failure.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	color  bool
	enabled bool
}

// New builds a Logger writing to w. Color is auto-detected the same way the
// teacher's term builtins detect it: NO_COLOR, TERM=dumb, and isatty all
// disable it.
func New(w io.Writer, enabled bool) *Logger {
	return &Logger{out: w, color: detectColor(w), enabled: enabled}
}

// Stderr builds a Logger on os.Stderr with tracing gated by enabled.
func Stderr(enabled bool) *Logger {
	return New(os.Stderr, enabled)
}

func detectColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (l *Logger) paint(code, s string) string {
	if !l.color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Wrap logs that an expression was wrapped into a synthetic repl_fn.
func (l *Logger) Wrap(uniqueName, moduleName string) {
	l.line(fmt.Sprintf("eval: wrapped %s -> module %s", l.paint("36", uniqueName), moduleName))
}

// Compiled logs a successful codegen+JIT-registration round trip with its
// wall-clock duration.
func (l *Logger) Compiled(moduleName string, d time.Duration) {
	l.line(fmt.Sprintf("jit: compiled %s in %s", l.paint("32", moduleName), d))
}

// Failed logs a JIT bridge failure.
func (l *Logger) Failed(moduleName string, err error) {
	l.line(fmt.Sprintf("jit: %s failed: %s", l.paint("31", moduleName), err))
}

func (l *Logger) line(msg string) {
	if !l.enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, msg)
}
