// Package engine drives the terminate/wait/kill escalation state
// machine over a selected set of processes.
package engine

import (
	"context"
	"errors"
	"time"

	"reap/internal/proc"
	"reap/internal/signal"
)

// Target is one selected process the engine can signal and observe.
// *proc.Process satisfies it; tests substitute fakes.
type Target interface {
	Pid() int
	Name() string
	Commandline() string
	Send(sig signal.Signal) error
	Alive() bool
}

// Reporter receives per-process notifications at the moment they occur.
// The engine keeps no per-process results beyond the run; the reporter
// is the only record of them.
type Reporter interface {
	// WouldSignal is emitted once per target during a dry run.
	WouldSignal(t Target, sig signal.Signal)
	// Signaling is emitted immediately before each send attempt.
	Signaling(t Target, sig signal.Signal)
	// SendFailed is emitted for a non-recoverable send failure. The
	// target is dropped from tracking and the run fails.
	SendFailed(t Target, sig signal.Signal, err error)
	// ShutDown is emitted when a target is confirmed gone, either by a
	// liveness poll or because a send found it already exited.
	ShutDown(t Target)
	// WaitBegin and WaitEnd bracket the polling phase.
	WaitBegin(wait time.Duration)
	WaitEnd()
	// Escalating is emitted when the wait deadline passes and the kill
	// signal is about to be dispatched.
	Escalating(sig signal.Signal)
	// StillAlive is emitted with the survivors when the wait deadline
	// passes and force-kill is disabled.
	StillAlive(ts []Target)
}

// Policy fixes the signals and timing for one run.
type Policy struct {
	Terminate signal.Signal
	Kill      signal.Signal
	// Wait bounds the poll-for-death phase. Zero means fire and
	// forget: return right after the terminate phase.
	Wait time.Duration
	// ForceKill dispatches Kill to survivors once Wait expires. When
	// false, survivors are left alone and the run fails.
	ForceKill bool
	// DryRun reports intended actions without sending anything.
	DryRun bool
}

// DefaultPollInterval is the liveness re-check granularity.
const DefaultPollInterval = 100 * time.Millisecond

// Engine runs the escalation state machine. A zero PollInterval falls
// back to DefaultPollInterval.
type Engine struct {
	Policy       Policy
	Reporter     Reporter
	PollInterval time.Duration
}

// Run drives the machine over targets in discovery order and reports
// whether every target was handled successfully. Strictly sequential:
// the tracked set is owned by this loop alone and the poll sleep is
// the only suspension point.
func (e *Engine) Run(ctx context.Context, targets []Target) bool {
	if e.Policy.DryRun {
		for _, t := range targets {
			e.Reporter.WouldSignal(t, e.Policy.Terminate)
		}
		return true
	}

	tracked, success := e.sendPhase(targets, e.Policy.Terminate)

	if e.Policy.Wait <= 0 {
		return success
	}

	tracked, allDead := e.waitPhase(ctx, tracked)
	if allDead {
		return success
	}
	if ctx.Err() != nil {
		// Cancelled mid-wait with survivors: report failure without
		// escalating.
		return false
	}

	if !e.Policy.ForceKill {
		e.Reporter.StillAlive(tracked)
		return false
	}

	e.Reporter.Escalating(e.Policy.Kill)
	// The run ends right after dispatch; survivors are not re-checked.
	_, killOK := e.sendPhase(tracked, e.Policy.Kill)
	return success && killOK
}

// sendPhase signals each target in discovery order. A target that is
// already gone is dropped without failing the run; any other send
// failure drops the target and fails the run.
func (e *Engine) sendPhase(targets []Target, sig signal.Signal) (tracked []Target, ok bool) {
	ok = true
	tracked = make([]Target, 0, len(targets))
	for _, t := range targets {
		e.Reporter.Signaling(t, sig)
		err := t.Send(sig)
		if err == nil {
			tracked = append(tracked, t)
			continue
		}
		var kerr *proc.KillError
		if errors.As(err, &kerr) && kerr.Kind == proc.DoesNotExist {
			// Quit before the signal arrived: the goal is met.
			e.Reporter.ShutDown(t)
			continue
		}
		e.Reporter.SendFailed(t, sig, err)
		ok = false
	}
	return tracked, ok
}

// waitPhase polls the tracked set until it drains or the wait deadline
// passes, pruning dead targets without re-signaling them.
func (e *Engine) waitPhase(ctx context.Context, tracked []Target) ([]Target, bool) {
	if len(tracked) == 0 {
		return nil, true
	}

	interval := e.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	e.Reporter.WaitBegin(e.Policy.Wait)
	defer e.Reporter.WaitEnd()

	deadline := time.Now().Add(e.Policy.Wait)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return tracked, false
		case <-time.After(interval):
		}

		alive := tracked[:0]
		for _, t := range tracked {
			if t.Alive() {
				alive = append(alive, t)
				continue
			}
			e.Reporter.ShutDown(t)
		}
		tracked = alive

		if len(tracked) == 0 {
			return nil, true
		}
	}
	return tracked, false
}
