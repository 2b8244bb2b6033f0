// Package app wires pattern compilation, process discovery, and the
// escalation engine behind a single controller entry point for the
// cmd layer.
package app

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"time"

	"reap/internal/engine"
	"reap/internal/match"
	"reap/internal/proc"
)

// RunParams carries one fully-resolved invocation.
type RunParams struct {
	Patterns []string
	Mode     match.Mode
	Policy   engine.Policy
	// User restricts matching to processes owned by the named user.
	User string
	// Mine restricts matching to the invoking user's processes. It has
	// no effect when User is set.
	Mine bool
	// PollInterval overrides the engine's liveness re-check
	// granularity; zero keeps the engine default.
	PollInterval time.Duration
}

// RunResult aggregates the outcome for the cmd layer.
type RunResult struct {
	// Success is true iff every selected process was handled.
	Success bool
	// Matched counts the processes selected for termination.
	Matched int
}

// Run executes one termination pass: compile the matcher, walk the
// process table, and drive the escalation engine over the matches in
// discovery order. The returned error covers fatal conditions only
// (bad patterns, unknown user, unreadable process table); per-process
// failures are reported through the reporter and reflected in Success.
func Run(ctx context.Context, params RunParams, reporter engine.Reporter) (RunResult, error) {
	matcher, err := match.Compile(params.Patterns, params.Mode)
	if err != nil {
		return RunResult{}, fmt.Errorf("could not load patterns: %w", err)
	}

	targets, err := selectTargets(params, matcher)
	if err != nil {
		return RunResult{}, fmt.Errorf("could not build process list: %w", err)
	}

	eng := engine.Engine{
		Policy:       params.Policy,
		Reporter:     reporter,
		PollInterval: params.PollInterval,
	}
	ok := eng.Run(ctx, targets)
	return RunResult{Success: ok, Matched: len(targets)}, nil
}

// processIter is the slice of the proc iterator the controller needs;
// tests substitute synthetic sequences.
type processIter interface {
	Next() (*proc.Process, bool)
}

// Discovery seams, swapped in tests.
var (
	openAll    = func() (processIter, error) { return proc.All() }
	openByUser = func(uid uint32) (processIter, error) { return proc.ByUser(uid) }
	lookupUser = user.Lookup
	currentUID = os.Getuid
)

func selectTargets(params RunParams, matcher *match.Matcher) ([]engine.Target, error) {
	it, err := openScope(params)
	if err != nil {
		return nil, err
	}

	var targets []engine.Target
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		if matcher.Match(p) {
			targets = append(targets, p)
		}
	}
	return targets, nil
}

func openScope(params RunParams) (processIter, error) {
	switch {
	case params.User != "":
		uid, err := resolveUser(params.User)
		if err != nil {
			return nil, err
		}
		return openByUser(uid)
	case params.Mine:
		return openByUser(uint32(currentUID()))
	default:
		return openAll()
	}
}

func resolveUser(name string) (uint32, error) {
	u, err := lookupUser(name)
	if err != nil {
		return 0, fmt.Errorf("could not find user %q: %w", name, err)
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("non-numeric uid %q for user %q: %w", u.Uid, name, err)
	}
	return uint32(uid), nil
}
