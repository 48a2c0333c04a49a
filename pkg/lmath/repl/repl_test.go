package repl

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/sambeau/lmath/pkg/lmath/evaluator"
	"github.com/sambeau/lmath/pkg/lmath/lmath"
)

func newTestSession() (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	return NewSession(&out, Options{}), &out
}

func TestHandleEvaluates(t *testing.T) {
	s, out := newTestSession()

	inputs := []string{"let x = 2", "x + 1", "print('hi', x)", "", "math.floor(-0.5)"}
	for _, in := range inputs {
		if _, done := s.Handle(in); done {
			t.Fatalf("Handle(%q) ended the session", in)
		}
	}

	want := "3\nhi\t2\n-1\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestHandleReturnsEvaluatedInput(t *testing.T) {
	s, _ := newTestSession()

	if got, _ := s.Handle("1 + 1"); got != "1 + 1" {
		t.Errorf("evaluated = %q", got)
	}
	if got, _ := s.Handle(":env"); got != "" {
		t.Errorf("commands should not be returned for history, got %q", got)
	}
	if got, _ := s.Handle("   "); got != "" {
		t.Errorf("blank input returned %q", got)
	}
}

func TestHandleMultiLine(t *testing.T) {
	s, out := newTestSession()

	if got, _ := s.Handle("math.max(1,"); got != "" {
		t.Fatalf("incomplete input ran: %q", got)
	}
	if !s.Pending() || s.Prompt() != CONTINUATION_PROMPT {
		t.Fatalf("expected continuation, prompt %q", s.Prompt())
	}
	got, _ := s.Handle("  7)")
	if got != "math.max(1,\n  7)" {
		t.Errorf("evaluated = %q", got)
	}
	if out.String() != "7\n" {
		t.Errorf("output = %q", out.String())
	}
	if s.Pending() || s.Prompt() != PROMPT {
		t.Error("buffer should be empty after evaluation")
	}
}

func TestCancelDropsPendingInput(t *testing.T) {
	s, out := newTestSession()
	s.Handle("math.abs(")
	s.Cancel()
	if s.Pending() {
		t.Fatal("Cancel left input pending")
	}
	s.Handle("5")
	if out.String() != "5\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestHandleErrors(t *testing.T) {
	s, out := newTestSession()

	s.Handle("y + 1")
	if !strings.Contains(out.String(), "Runtime error") || !strings.Contains(out.String(), "y") {
		t.Errorf("runtime error output = %q", out.String())
	}

	out.Reset()
	s.Handle("let = 3")
	if !strings.HasPrefix(out.String(), "Parser error") {
		t.Errorf("parse error output = %q", out.String())
	}

	// the session survives errors
	out.Reset()
	s.Handle("2 * 3")
	if out.String() != "6\n" {
		t.Errorf("output after errors = %q", out.String())
	}
}

func TestExit(t *testing.T) {
	for _, cmd := range []string{"exit", "quit", "  exit  "} {
		s, out := newTestSession()
		if _, done := s.Handle(cmd); !done {
			t.Errorf("%q did not end the session", cmd)
		}
		if out.String() != "Goodbye!\n" {
			t.Errorf("%q printed %q", cmd, out.String())
		}
	}
}

func TestSeedCommand(t *testing.T) {
	s, out := newTestSession()
	s.Handle(":seed 42")
	if out.String() != "Seeded with 42\n" {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	s.Handle("math.random()")

	want := lmath.New(lmath.WithSeed(42)).Random()
	if out.String() != evaluator.FormatNumber(want)+"\n" {
		t.Errorf("random after :seed = %q, want %s", out.String(), evaluator.FormatNumber(want))
	}
}

func TestSeedCommandUsage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{":seed", "usage: :seed <number>\n"},
		{":seed 1 2", "usage: :seed <number>\n"},
		{":seed abc", "invalid seed: abc\n"},
	}
	for _, tt := range tests {
		s, out := newTestSession()
		s.Handle(tt.input)
		if out.String() != tt.want {
			t.Errorf("%q printed %q, want %q", tt.input, out.String(), tt.want)
		}
	}
}

func TestEnvAndReset(t *testing.T) {
	s, out := newTestSession()

	s.Handle(":env")
	if out.String() != "(no user variables)\n" {
		t.Errorf("empty env = %q", out.String())
	}

	s.Handle("let b = 2")
	s.Handle("let a = 'one'")
	out.Reset()
	s.Handle(":env")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "a = ") || strings.TrimSpace(lines[1]) != "b = 2" {
		t.Errorf("env = %q", out.String())
	}

	out.Reset()
	s.Handle(":reset")
	s.Handle(":env")
	if out.String() != "Environment reset\n(no user variables)\n" {
		t.Errorf("after reset = %q", out.String())
	}
}

func TestDescribeCommand(t *testing.T) {
	s, out := newTestSession()

	s.Handle(":describe")
	if !strings.HasPrefix(out.String(), "Module: math") {
		t.Errorf(":describe = %q", out.String())
	}

	out.Reset()
	s.Handle(":d math.randomseed")
	if !strings.HasPrefix(out.String(), "math.randomseed(x)") {
		t.Errorf(":d math.randomseed = %q", out.String())
	}

	out.Reset()
	s.Handle(":describe math.rando")
	if !strings.Contains(out.String(), "Did you mean: math.random?") {
		t.Errorf("unknown topic = %q", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	s, out := newTestSession()
	s.Handle(":frobnicate")
	if !strings.HasPrefix(out.String(), "Unknown command: :frobnicate") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCustomInstance(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, Options{
		NewInstance: func(l lmath.Logger) *lmath.Instance {
			return lmath.New(lmath.WithLogger(l), lmath.WithModAlias(true))
		},
	})
	s.Handle("math.mod(7, 3)")
	if out.String() != "1\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCompletions(t *testing.T) {
	s, _ := newTestSession()
	s.Handle("let radius = 3")

	tests := []struct {
		line    string
		want    []string
		notWant []string
	}{
		{"math.ran", []string{"math.random", "math.randomseed"}, []string{"math.rad"}},
		{"let r = math.fl", []string{"let r = math.floor"}, nil},
		{"ra", []string{"radius"}, nil},
		{"le", []string{"let"}, nil},
		{"x + ", nil, nil},
		{"", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := s.Completions(tt.line)
			if tt.want == nil && got != nil {
				t.Fatalf("expected no completions, got %v", got)
			}
			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("missing %q in %v", w, got)
				}
			}
			for _, w := range tt.notWant {
				if slices.Contains(got, w) {
					t.Errorf("unexpected %q in %v", w, got)
				}
			}
		})
	}
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"math.max(1, 2)", false},
		{"math.max(1,", true},
		{"((1 + 2)", true},
		{"print(')')", false},
		{"print('(')", false},
		{`print("\")(")`, false},
		{"1 -- (comment", false},
		{"math.abs( -- open\n-3)", false},
		{"math.abs( -- open", true},
		{"1 - (2", true},
	}

	for _, tt := range tests {
		if got := needsMoreInput(tt.input); got != tt.want {
			t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
