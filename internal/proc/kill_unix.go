//go:build !windows

package proc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	"reap/internal/signal"
)

// KillErrorKind enumerates the per-send failure classes.
type KillErrorKind int

const (
	// InvalidSignal means the OS rejected the signal identifier itself.
	InvalidSignal KillErrorKind = iota
	// NoPermission means the caller may not signal this process.
	NoPermission
	// DoesNotExist means the process was gone before the signal
	// arrived. Callers treat this as success: the goal is met.
	DoesNotExist
	// Unexpected covers any other delivery failure.
	Unexpected
)

func (k KillErrorKind) String() string {
	switch k {
	case InvalidSignal:
		return "invalid signal"
	case NoPermission:
		return "no permission"
	case DoesNotExist:
		return "process does not exist"
	default:
		return "unexpected kill failure"
	}
}

// KillError reports a failed signal delivery to one pid.
type KillError struct {
	Kind KillErrorKind
	Pid  int
	Err  error
}

func (e *KillError) Error() string {
	return fmt.Sprintf("%s (pid %d): %v", e.Kind, e.Pid, e.Err)
}

func (e *KillError) Unwrap() error { return e.Err }

// Send delivers sig to the process. Success means the OS accepted the
// signal, not that the process has acted on it or exited.
func (p *Process) Send(sig signal.Signal) error {
	if err := unix.Kill(p.pid, sig.Number()); err != nil {
		return &KillError{Kind: killKind(err), Pid: p.pid, Err: err}
	}
	return nil
}

func killKind(err error) KillErrorKind {
	switch {
	case errors.Is(err, unix.EINVAL):
		return InvalidSignal
	case errors.Is(err, unix.EPERM):
		return NoPermission
	case errors.Is(err, unix.ESRCH):
		return DoesNotExist
	default:
		return Unexpected
	}
}

// Alive re-checks process-table presence by pid. Point-in-time only: a
// pid reused within the tool's short liveness window would be reported
// as alive. The window is bounded by the wait duration, so this stays
// best-effort rather than eliminated.
func (p *Process) Alive() bool {
	_, err := os.Stat(filepath.Join(procRoot, strconv.Itoa(p.pid)))
	return err == nil
}
