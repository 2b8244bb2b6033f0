// Package signal maps between human-readable names/numbers and the
// closed catalog of signals reap knows how to deliver.
package signal

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Signal identifies one entry in the supported catalog.
type Signal int

// Catalog entries, in numeric order on Linux.
const (
	HUP Signal = iota
	INT
	QUIT
	ABRT
	KILL
	USR1
	USR2
	ALRM
	TERM
	STOP
)

var catalog = [...]struct {
	name string
	num  unix.Signal
}{
	HUP:  {"HUP", unix.SIGHUP},
	INT:  {"INT", unix.SIGINT},
	QUIT: {"QUIT", unix.SIGQUIT},
	ABRT: {"ABRT", unix.SIGABRT},
	KILL: {"KILL", unix.SIGKILL},
	USR1: {"USR1", unix.SIGUSR1},
	USR2: {"USR2", unix.SIGUSR2},
	ALRM: {"ALRM", unix.SIGALRM},
	TERM: {"TERM", unix.SIGTERM},
	STOP: {"STOP", unix.SIGSTOP},
}

// Signals returns the full catalog, for listing and validation.
func Signals() []Signal {
	all := make([]Signal, len(catalog))
	for i := range catalog {
		all[i] = Signal(i)
	}
	return all
}

// Name returns the short name, e.g. "TERM".
func (s Signal) Name() string { return catalog[s].name }

// FullName returns the SIG-prefixed name, e.g. "SIGTERM".
func (s Signal) FullName() string { return "SIG" + catalog[s].name }

// Number returns the OS signal number.
func (s Signal) Number() unix.Signal { return catalog[s].num }

func (s Signal) String() string { return s.Name() }

// ParseError reports input that does not name a cataloged signal.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unknown signal %q", e.Input)
}

// Parse resolves a signal from its short name, its SIG-prefixed name,
// or its decimal number. Names are case-insensitive.
func Parse(s string) (Signal, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	num, numErr := strconv.Atoi(upper)

	for _, sig := range Signals() {
		if upper == sig.Name() || upper == sig.FullName() {
			return sig, nil
		}
		if numErr == nil && num == int(sig.Number()) {
			return sig, nil
		}
	}
	return 0, &ParseError{Input: s}
}
