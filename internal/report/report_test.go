package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"reap/internal/match"
	"reap/internal/proc"
	"reap/internal/signal"
)

func testConsole(v Verbosity, mode match.Mode) (*Console, *bytes.Buffer, *bytes.Buffer) {
	c := New(v, mode, ColorNever)
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	c.out = out
	c.err = errBuf
	c.spinnable = false
	return c, out, errBuf
}

func TestParseColorMode(t *testing.T) {
	for input, want := range map[string]ColorMode{"auto": ColorAuto, "always": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %v, got %v", input, want, got)
		}
	}
	if _, err := ParseColorMode("sometimes"); err == nil {
		t.Fatal("expected an error for an invalid mode")
	}
}

func TestWouldSignalGoesToStdout(t *testing.T) {
	c, out, errBuf := testConsole(Verbose, match.Basename)
	c.WouldSignal(proc.New(42, 1000, "nginx", "nginx -g daemon off;"), signal.TERM)

	want := "Would have sent TERM to process 42 (nginx)\n"
	if out.String() != want {
		t.Fatalf("expected %q on stdout, got %q", want, out.String())
	}
	if errBuf.Len() != 0 {
		t.Fatalf("unexpected stderr output: %q", errBuf.String())
	}
}

func TestCommandlineModeShowsInvocation(t *testing.T) {
	c, out, _ := testConsole(Verbose, match.Commandline)
	c.WouldSignal(proc.New(42, 1000, "sh", "/bin/sh -c sleep 60"), signal.TERM)

	if !strings.Contains(out.String(), "/bin/sh -c sleep 60") {
		t.Fatalf("expected the commandline in output, got %q", out.String())
	}
}

func TestQuietSuppressesEverything(t *testing.T) {
	c, out, errBuf := testConsole(Quiet, match.Basename)
	p := proc.New(42, 1000, "nginx", "")
	c.WouldSignal(p, signal.TERM)
	c.Signaling(p, signal.TERM)
	c.SendFailed(p, signal.TERM, errors.New("boom"))
	c.StillAlive(nil)
	c.Warn("a warning")
	c.Fatal(errors.New("fatal"))

	if out.Len() != 0 || errBuf.Len() != 0 {
		t.Fatalf("quiet mode produced output: stdout=%q stderr=%q", out.String(), errBuf.String())
	}
}

func TestNormalHidesNarrationKeepsWarnings(t *testing.T) {
	c, _, errBuf := testConsole(Normal, match.Basename)
	p := proc.New(42, 1000, "nginx", "")
	c.Signaling(p, signal.TERM)
	c.ShutDown(p)
	if errBuf.Len() != 0 {
		t.Fatalf("normal mode narrated: %q", errBuf.String())
	}

	c.StillAlive(nil)
	if !strings.Contains(errBuf.String(), "still alive") {
		t.Fatalf("expected the still-alive warning, got %q", errBuf.String())
	}
}

func TestFatalRendersCausalChain(t *testing.T) {
	c, _, errBuf := testConsole(Normal, match.Basename)
	inner := errors.New("permission denied")
	c.Fatal(fmt.Errorf("could not build process list: %w", inner))

	got := errBuf.String()
	if !strings.Contains(got, "ERROR: could not build process list") {
		t.Fatalf("expected the error headline, got %q", got)
	}
	if !strings.Contains(got, "Caused by: permission denied") {
		t.Fatalf("expected the cause line, got %q", got)
	}
}
