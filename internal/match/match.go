// Package match filters process snapshots against a compiled pattern
// set.
package match

import (
	"fmt"
	"regexp"

	"reap/internal/proc"
)

// Mode selects which snapshot field patterns are tested against.
type Mode int

const (
	// Basename matches the executable basename.
	Basename Mode = iota
	// Commandline matches the full invocation.
	Commandline
)

// Matcher holds a compiled, case-insensitive pattern set. It is a pure
// function of its inputs: no state beyond the compiled patterns.
type Matcher struct {
	patterns []*regexp.Regexp
	mode     Mode
}

// Compile builds a Matcher from the raw pattern list. Every pattern is
// compiled case-insensitively; matching is substring, not anchored. A
// pattern that fails to compile is fatal before any process is touched.
func Compile(patterns []string, mode Mode) (*Matcher, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pat, err)
		}
		compiled = append(compiled, re)
	}
	return &Matcher{patterns: compiled, mode: mode}, nil
}

// Mode reports which snapshot field the matcher tests.
func (m *Matcher) Mode() Mode { return m.mode }

// Match reports whether at least one pattern matches anywhere in the
// mode-selected field. An empty pattern set matches nothing.
func (m *Matcher) Match(p *proc.Process) bool {
	target := p.Name()
	if m.mode == Commandline {
		target = p.Commandline()
	}
	for _, re := range m.patterns {
		if re.MatchString(target) {
			return true
		}
	}
	return false
}
