package proc

import (
	"errors"
	"os"
	osignal "os/signal"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"reap/internal/signal"
)

func TestStringifyCmdline(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want string
	}{
		{"shell invocation", []byte("/bin/sh\x00-c\x00echo hi\x00"), "/bin/sh -c echo hi"},
		{"single argument", []byte("sleep\x00"), "sleep"},
		{"empty", nil, ""},
		{"only nuls", []byte("\x00\x00"), ""},
		{"trailing whitespace", []byte("cat \x00"), "cat"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StringifyCmdline(tc.raw)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if again := StringifyCmdline([]byte(got)); again != got {
				t.Fatalf("not idempotent: %q became %q", got, again)
			}
		})
	}
}

func TestAllFindsSelf(t *testing.T) {
	it, err := All()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	self := os.Getpid()
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		if p.Pid() != self {
			continue
		}
		if p.Uid() != uint32(os.Getuid()) {
			t.Fatalf("expected uid %d, got %d", os.Getuid(), p.Uid())
		}
		if p.Name() == "" {
			t.Fatal("expected a non-empty name")
		}
		if p.Commandline() == "" {
			t.Fatal("expected a non-empty commandline")
		}
		return
	}
	t.Fatalf("pid %d not found in enumeration", self)
}

func TestByUserFiltersOwnership(t *testing.T) {
	// A uid near the top of the 32-bit range should own nothing.
	it, err := ByUser(4294900000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	self := os.Getpid()
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		if p.Pid() == self {
			t.Fatal("user filter let the current process through")
		}
	}

	it, err = ByUser(uint32(os.Getuid()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		if p.Pid() == self {
			found = true
		}
	}
	if !found {
		t.Fatal("expected to find the current process under its own uid")
	}
}

func TestIteratorIsSinglePass(t *testing.T) {
	it, err := All()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, ok := it.Next(); ok; _, ok = it.Next() {
	}
	if _, ok := it.Next(); ok {
		t.Fatal("exhausted iterator yielded another entry")
	}
}

func TestAlive(t *testing.T) {
	self := New(os.Getpid(), uint32(os.Getuid()), "test", "")
	if !self.Alive() {
		t.Fatal("expected the current process to be alive")
	}

	gone := New(1<<22+12345, 0, "ghost", "")
	if gone.Alive() {
		t.Fatal("expected an absent pid to be dead")
	}
}

func TestSendToAbsentPid(t *testing.T) {
	gone := New(1<<22+12345, 0, "ghost", "")
	err := gone.Send(signal.TERM)
	if err == nil {
		t.Fatal("expected an error")
	}
	var kerr *KillError
	if !errors.As(err, &kerr) {
		t.Fatalf("expected KillError, got %T", err)
	}
	if kerr.Kind != DoesNotExist {
		t.Fatalf("expected DoesNotExist, got %v", kerr.Kind)
	}
	if kerr.Pid != gone.Pid() {
		t.Fatalf("expected pid %d in error, got %d", gone.Pid(), kerr.Pid)
	}
}

func TestSendDeliversToSelf(t *testing.T) {
	ch := make(chan os.Signal, 1)
	osignal.Notify(ch, unix.SIGUSR1)
	defer osignal.Stop(ch)

	self := New(os.Getpid(), uint32(os.Getuid()), "test", "")
	if err := self.Send(signal.USR1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case got := <-ch:
		if got != unix.SIGUSR1 {
			t.Fatalf("expected SIGUSR1, got %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("signal was not delivered")
	}
}
