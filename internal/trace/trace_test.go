package trace_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/driftlang/drift/internal/trace"
)

func TestDisabledLoggerWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	log := trace.New(&buf, false)
	log.Wrap("repl_fn-1-abcd", "user.repl_fn_1")
	log.Compiled("user.repl_fn_1", time.Millisecond)
	log.Failed("user.repl_fn_1", errors.New("boom"))

	if buf.Len() != 0 {
		t.Fatalf("expected no output from a disabled logger, got %q", buf.String())
	}
}

func TestEnabledLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	log := trace.New(&buf, true)
	log.Wrap("repl_fn-1-abcd", "user.repl_fn_1")

	out := buf.String()
	if !strings.Contains(out, "wrapped") || !strings.Contains(out, "user.repl_fn_1") {
		t.Fatalf("expected a wrap line mentioning the module name, got %q", out)
	}
}

func TestCompiledAndFailedLines(t *testing.T) {
	var buf bytes.Buffer
	log := trace.New(&buf, true)

	log.Compiled("user.repl_fn_2", 5*time.Millisecond)
	log.Failed("user.repl_fn_3", errors.New("codegen exploded"))

	out := buf.String()
	if !strings.Contains(out, "compiled") {
		t.Fatalf("expected a compiled line, got %q", out)
	}
	if !strings.Contains(out, "codegen exploded") {
		t.Fatalf("expected the failure line to carry the error text, got %q", out)
	}
}

func TestNonFileWriterHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	log := trace.New(&buf, true)
	log.Wrap("x", "user.x")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatal("a non-*os.File writer should never get ANSI color codes")
	}
}
