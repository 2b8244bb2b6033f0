package patterns

import (
	"strings"
	"testing"
)

func TestStripComment(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Foobar", "Foobar"},
		{"Foo#bar", "Foo"},
		{" Complicated # oh yes!! # another one", "Complicated"},
		{"# Just a comment", ""},
		{"  \t# Just a comment", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StripComment(tc.in); got != tc.want {
			t.Errorf("strip %q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestReadPreservesOrderAndDropsBlanks(t *testing.T) {
	input := "nginx\n\n# a comment line\npostgres # primary\n  \nredis\n"
	got, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"nginx", "postgres", "redis"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestReadEmptyInput(t *testing.T) {
	got, err := Read(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no patterns, got %v", got)
	}
}
