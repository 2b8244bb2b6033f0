// Package report renders engine events and run diagnostics to the
// console.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"reap/internal/engine"
	"reap/internal/match"
	"reap/internal/signal"
)

// Verbosity selects how much of the run is narrated.
type Verbosity int

const (
	Normal Verbosity = iota
	Verbose
	Quiet
)

// ShowNormal reports whether warnings and results are rendered.
func (v Verbosity) ShowNormal() bool { return v != Quiet }

// ShowVerbose reports whether per-action narration is rendered.
func (v Verbosity) ShowVerbose() bool { return v == Verbose }

// ColorMode mirrors the --color flag.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode resolves the --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// Console implements engine.Reporter on stdout/stderr: results go to
// stdout, narration and warnings to stderr.
type Console struct {
	out       io.Writer
	err       io.Writer
	verbosity Verbosity
	mode      match.Mode
	spinnable bool
	spin      *spinner.Spinner

	red    lipgloss.Style
	yellow lipgloss.Style
	green  lipgloss.Style
	faint  lipgloss.Style
}

// New builds a console reporter. Color auto-detection looks at stderr,
// where run narration goes.
func New(verbosity Verbosity, mode match.Mode, color ColorMode) *Console {
	c := &Console{
		out:       os.Stdout,
		err:       os.Stderr,
		verbosity: verbosity,
		mode:      mode,
		spinnable: isatty.IsTerminal(os.Stderr.Fd()),
	}

	colored := false
	switch color {
	case ColorAlways:
		colored = true
	case ColorNever:
		colored = false
	default:
		colored = isatty.IsTerminal(os.Stderr.Fd())
	}

	if colored {
		lipgloss.SetColorProfile(termenv.ANSI256)
		c.red = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		c.yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
		c.green = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		c.faint = lipgloss.NewStyle().Faint(true)
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return c
}

// describe renders "pid (name)" with the commandline appended in
// whole-command mode.
func (c *Console) describe(t engine.Target) string {
	pid := c.green.Render(strconv.Itoa(t.Pid()))
	name := c.green.Render(t.Name())
	if c.mode == match.Commandline {
		return fmt.Sprintf("%s (%s): %s", pid, name, c.faint.Render(t.Commandline()))
	}
	return fmt.Sprintf("%s (%s)", pid, name)
}

func (c *Console) WouldSignal(t engine.Target, sig signal.Signal) {
	if !c.verbosity.ShowNormal() {
		return
	}
	fmt.Fprintf(c.out, "Would have sent %s to process %s\n", sig, c.describe(t))
}

func (c *Console) Signaling(t engine.Target, sig signal.Signal) {
	if !c.verbosity.ShowVerbose() {
		return
	}
	fmt.Fprintf(c.err, "Sending %s to process %s\n", sig, c.describe(t))
}

func (c *Console) SendFailed(t engine.Target, sig signal.Signal, err error) {
	if !c.verbosity.ShowNormal() {
		return
	}
	fmt.Fprintf(c.err, "%s %s: %s\n",
		c.red.Render(fmt.Sprintf("Failed to send %s to", sig)),
		c.describe(t),
		c.red.Render(err.Error()))
}

func (c *Console) ShutDown(t engine.Target) {
	if !c.verbosity.ShowVerbose() {
		return
	}
	fmt.Fprintf(c.err, "Process shut down: %s\n", c.describe(t))
}

func (c *Console) WaitBegin(wait time.Duration) {
	// The spinner would interleave with verbose narration, and has no
	// terminal to animate on when piped.
	if !c.verbosity.ShowNormal() || c.verbosity.ShowVerbose() || !c.spinnable {
		return
	}
	c.spin = spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
	c.spin.Suffix = fmt.Sprintf(" waiting up to %s for processes to exit", wait)
	c.spin.Start()
}

func (c *Console) WaitEnd() {
	if c.spin != nil {
		c.spin.Stop()
		c.spin = nil
	}
}

func (c *Console) Escalating(sig signal.Signal) {
	if !c.verbosity.ShowVerbose() {
		return
	}
	fmt.Fprintf(c.err, "%s\n", c.red.Render("Timeout reached. Forcefully shutting down processes."))
}

func (c *Console) StillAlive(ts []engine.Target) {
	if !c.verbosity.ShowNormal() {
		return
	}
	fmt.Fprintf(c.err, "%s\n", c.yellow.Render("WARNING: Some processes are still alive."))
	if !c.verbosity.ShowVerbose() {
		return
	}
	for _, t := range ts {
		fmt.Fprintf(c.err, "Process %s\n", c.describe(t))
	}
}

// Warn renders a one-line warning outside the event stream.
func (c *Console) Warn(msg string) {
	if !c.verbosity.ShowNormal() {
		return
	}
	fmt.Fprintf(c.err, "%s\n", c.yellow.Render("WARNING: "+msg))
}

// Fatal renders a run-aborting error together with its causal chain.
func (c *Console) Fatal(err error) {
	if !c.verbosity.ShowNormal() {
		return
	}
	fmt.Fprintf(c.err, "%s\n", c.red.Render("ERROR: "+err.Error()))
	depth := 1
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(c.err, "%s\n",
			c.red.Render(fmt.Sprintf("%*sCaused by: %s", depth*2, "", cause)))
		depth++
	}
}
