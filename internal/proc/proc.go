// Package proc enumerates live processes from procfs and delivers
// signals to them.
package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const procRoot = "/proc"

// Process is an immutable snapshot of one live process, captured at
// discovery time. The pid and owning uid are read from the same procfs
// entry; pid reuse between discovery and a later signal is still
// possible and accepted as best-effort.
type Process struct {
	pid     int
	uid     uint32
	name    string
	cmdline string
}

// New constructs a snapshot directly from its identity fields.
// Discovery goes through the iterator; New exists for callers that
// already hold the fields.
func New(pid int, uid uint32, name, cmdline string) *Process {
	return &Process{pid: pid, uid: uid, name: name, cmdline: cmdline}
}

// Pid returns the process id.
func (p *Process) Pid() int { return p.pid }

// Uid returns the owning user id at discovery time.
func (p *Process) Uid() uint32 { return p.uid }

// Name returns the executable basename.
func (p *Process) Name() string { return p.name }

// Commandline returns the full invocation, arguments joined by spaces.
func (p *Process) Commandline() string { return p.cmdline }

// Iterator walks the process table lazily. It is single-pass and
// non-restartable, and reflects the table as it changes underneath:
// entries may appear or vanish between calls to Next. There is no
// snapshot isolation.
type Iterator struct {
	dir     *os.File
	pending []string
	filter  func(*Process) bool
	done    bool
}

// All opens an iterator over every live process. The only hard failure
// is being unable to open the process table root; entries that cannot
// be resolved individually are skipped.
func All() (*Iterator, error) {
	dir, err := os.Open(procRoot)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", procRoot, err)
	}
	return &Iterator{dir: dir}, nil
}

// ByUser restricts All to processes owned by the given uid. The filter
// is applied lazily, one entry at a time.
func ByUser(uid uint32) (*Iterator, error) {
	it, err := All()
	if err != nil {
		return nil, err
	}
	it.filter = func(p *Process) bool { return p.uid == uid }
	return it, nil
}

const readBatch = 128

// Next returns the next resolvable process, or false once the table is
// exhausted.
func (it *Iterator) Next() (*Process, bool) {
	for {
		if len(it.pending) == 0 {
			if it.done {
				return nil, false
			}
			names, err := it.dir.Readdirnames(readBatch)
			if err != nil {
				// io.EOF or a directory read failure; either way the
				// walk ends after any names already returned.
				it.done = true
				it.dir.Close()
			}
			if len(names) == 0 {
				return nil, false
			}
			it.pending = names
		}

		name := it.pending[0]
		it.pending = it.pending[1:]

		pid, err := strconv.Atoi(name)
		if err != nil || pid <= 0 {
			continue
		}
		p, err := fromEntry(pid)
		if err != nil {
			// Vanished mid-read, unreadable, or malformed: drop the
			// entry and keep scanning.
			continue
		}
		if it.filter != nil && !it.filter(p) {
			continue
		}
		return p, true
	}
}

func fromEntry(pid int) (*Process, error) {
	dir := filepath.Join(procRoot, strconv.Itoa(pid))

	// The uid comes from a stat of the directory the pid names, so both
	// fields describe the same procfs entry.
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("no ownership metadata for %s", dir)
	}

	comm, err := os.ReadFile(filepath.Join(dir, "comm"))
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(dir, "cmdline"))
	if err != nil {
		return nil, err
	}

	return &Process{
		pid:     pid,
		uid:     st.Uid,
		name:    strings.TrimRight(string(comm), "\n"),
		cmdline: StringifyCmdline(raw),
	}, nil
}

// StringifyCmdline renders a raw NUL-separated argument vector as a
// single line: NULs become single spaces and trailing whitespace is
// trimmed. The transform is lossy: an argument containing a space is
// indistinguishable from two arguments afterwards. Idempotent on its
// own output.
func StringifyCmdline(raw []byte) string {
	joined := strings.ReplaceAll(string(raw), "\x00", " ")
	return strings.TrimRight(joined, " \t\n")
}
