// Package patterns reads the newline-delimited pattern list reap
// consumes on stdin.
package patterns

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Read collects patterns from r: one per line, optional trailing
// #-comment stripped, blank lines dropped, order preserved.
func Read(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := StripComment(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pattern list: %w", err)
	}
	return out, nil
}

// StripComment removes a trailing #-comment and surrounding whitespace.
func StripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
