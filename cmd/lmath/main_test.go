package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sambeau/lmath/pkg/lmath/evaluator"
	"github.com/sambeau/lmath/pkg/lmath/lmath"
)

// testEnv returns a getenv that points LMATH_CONFIG at a config file with
// the given content, so a user's own config never leaks into tests.
func testEnv(t *testing.T, configYAML string) func(string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lmath.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return func(key string) string {
		if key == "LMATH_CONFIG" {
			return path
		}
		return ""
	}
}

func runCLI(t *testing.T, getenv func(string) string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr, getenv)
	return stdout.String(), stderr.String(), err
}

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lm")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEvaluateInline(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"number", "1 + 2", "3\n"},
		{"print", "print(1, 'two')", "1\ttwo\n"},
		{"let is silent", "let x = 1", ""},
		{"tuple", "math.modf(3.5)", "3\t0.5\n"},
		{"huge", "math.huge", "inf\n"},
		{"statements", "let r = 2; math.pi * r ^ 2", "12.566370614359\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, err := runCLI(t, testEnv(t, ""), "-e", tt.code)
			if err != nil {
				t.Fatalf("run() error: %v\nstderr: %s", err, errOut)
			}
			if out != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, out)
			}
		})
	}
}

func TestSeedFlag(t *testing.T) {
	out, _, err := runCLI(t, testEnv(t, ""), "--seed", "42", "-e", "math.random()")
	if err != nil {
		t.Fatal(err)
	}
	want := evaluator.FormatNumber(lmath.New(lmath.WithSeed(42)).Random()) + "\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSeedFlagOverridesConfig(t *testing.T) {
	env := testEnv(t, "random:\n  seed: 5\n")

	fromConfig, _, err := runCLI(t, env, "-e", "math.random(100)")
	if err != nil {
		t.Fatal(err)
	}
	want := evaluator.FormatNumber(lmath.New(lmath.WithSeed(5)).Random(100)) + "\n"
	if fromConfig != want {
		t.Errorf("config seed: got %q, want %q", fromConfig, want)
	}

	fromFlag, _, err := runCLI(t, env, "-seed", "6", "-e", "math.random(100)")
	if err != nil {
		t.Fatal(err)
	}
	want = evaluator.FormatNumber(lmath.New(lmath.WithSeed(6)).Random(100)) + "\n"
	if fromFlag != want {
		t.Errorf("flag seed: got %q, want %q", fromFlag, want)
	}
}

func TestModAliasFromConfig(t *testing.T) {
	out, _, err := runCLI(t, testEnv(t, "compat:\n  mod_alias: true\n"), "-e", "math.mod(-7, 3)")
	if err != nil {
		t.Fatal(err)
	}
	if out != "-1\n" {
		t.Errorf("got %q", out)
	}

	_, errOut, err := runCLI(t, testEnv(t, ""), "-e", "math.mod(-7, 3)")
	if !errors.Is(err, errScriptFailed) {
		t.Fatalf("expected a script failure without the alias, got %v", err)
	}
	if !strings.Contains(errOut, "math.fmod") {
		t.Errorf("expected a hint towards fmod, got:\n%s", errOut)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		wants []string
	}{
		{"runtime", "let x = 1\nmath.floor('a')", []string{"Runtime error", "line 2", "math.floor('a')", "^"}},
		{"parse", "let = 2", []string{"Parser error", "let = 2", "^"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, err := runCLI(t, testEnv(t, ""), "-e", tt.code)
			if !errors.Is(err, errScriptFailed) {
				t.Fatalf("expected errScriptFailed, got %v", err)
			}
			for _, want := range tt.wants {
				if !strings.Contains(errOut, want) {
					t.Errorf("stderr missing %q:\n%s", want, errOut)
				}
			}
			if code := exitCode(err, &bytes.Buffer{}); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
		})
	}
}

func TestExecuteFile(t *testing.T) {
	script := writeScript(t, "math.randomseed(3)\nprint(math.random(6))\n")
	out, errOut, err := runCLI(t, testEnv(t, ""), script)
	if err != nil {
		t.Fatalf("run() error: %v\n%s", err, errOut)
	}
	in := lmath.New(lmath.WithSeed(3))
	if want := evaluator.FormatNumber(in.Random(6)) + "\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestMissingFile(t *testing.T) {
	_, _, err := runCLI(t, testEnv(t, ""), filepath.Join(t.TempDir(), "nope.lm"))
	var stderr bytes.Buffer
	if code := exitCode(err, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "reading file") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestCheckFiles(t *testing.T) {
	good := writeScript(t, "let x = math.sqrt(2)\nprint(x)\n")
	bad := writeScript(t, "let x = (1 +\nprint(x)\n")

	if _, _, err := runCLI(t, testEnv(t, ""), "--check", good); err != nil {
		t.Errorf("good file: %v", err)
	}

	_, errOut, err := runCLI(t, testEnv(t, ""), "--check", good, bad)
	if !errors.Is(err, errScriptFailed) {
		t.Fatalf("bad file: %v", err)
	}
	if !strings.Contains(errOut, "Parser error") || !strings.Contains(errOut, bad) {
		t.Errorf("stderr = %q", errOut)
	}

	_, _, err = runCLI(t, testEnv(t, ""), "--check")
	if code := exitCode(err, &bytes.Buffer{}); code != 2 {
		t.Errorf("--check without files exit code = %d, want 2", code)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		config string
	}{
		{"unknown flag", []string{"--frobnicate"}, ""},
		{"bad seed", []string{"--seed", "abc", "-e", "1"}, ""},
		{"watch without file", []string{"--watch"}, ""},
		{"invalid config", []string{"-e", "1"}, "logging:\n  level: loud\n"},
		{"missing config", []string{"--config", "/does/not/exist.yaml", "-e", "1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, testEnv(t, tt.config), tt.args...)
			if code := exitCode(err, &bytes.Buffer{}); code != 2 {
				t.Errorf("exit code = %d (%v), want 2", code, err)
			}
		})
	}
}

func TestHelpAndVersion(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}} {
		out, _, err := runCLI(t, testEnv(t, ""), args...)
		if err != nil || !strings.Contains(out, "Usage:") {
			t.Errorf("%v: err=%v out=%q", args, err, out)
		}
	}
	for _, args := range [][]string{{"-V"}, {"--version"}} {
		out, _, err := runCLI(t, testEnv(t, ""), args...)
		if err != nil || out != "lmath version "+Version+"\n" {
			t.Errorf("%v: err=%v out=%q", args, err, out)
		}
	}
}

func TestDescribeCommand(t *testing.T) {
	env := testEnv(t, "")

	out, _, err := runCLI(t, env, "describe", "math.random")
	if err != nil || !strings.HasPrefix(out, "math.random(m?, n?)") {
		t.Errorf("text: err=%v out=%q", err, out)
	}

	out, _, err = runCLI(t, env, "describe", "--json", "math.floor")
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil || decoded["name"] != "math.floor" {
		t.Errorf("json: %v %q", err, out)
	}

	out, _, err = runCLI(t, env, "describe", "--html", "math")
	if err != nil || !strings.Contains(out, "<table>") {
		t.Errorf("html: err=%v out=%q", err, out)
	}

	_, _, err = runCLI(t, env, "describe")
	if code := exitCode(err, &bytes.Buffer{}); code != 2 {
		t.Errorf("no topic exit code = %d, want 2", code)
	}

	_, _, err = runCLI(t, env, "describe", "math.nope")
	if code := exitCode(err, &bytes.Buffer{}); code != 1 {
		t.Errorf("unknown topic exit code = %d, want 1", code)
	}
}

func TestSampleCommand(t *testing.T) {
	env := testEnv(t, "output:\n  locale: de\n")

	out, _, err := runCLI(t, env, "sample", "-n", "1200", "-seed", "1", "6")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 6 rows and a summary, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[6], "trials: 1.200") {
		t.Errorf("summary should use the configured locale: %q", lines[6])
	}

	again, _, _ := runCLI(t, env, "sample", "-n", "1200", "-seed", "1", "6")
	if again != out {
		t.Error("seeded samples differ")
	}

	out, _, err = runCLI(t, env, "sample", "-n", "1200", "-locale", "en", "6")
	if err != nil || !strings.Contains(out, "trials: 1,200") {
		t.Errorf("-locale en: err=%v out=%q", err, out)
	}

	for _, args := range [][]string{{"sample"}, {"sample", "0"}, {"sample", "six"}, {"sample", "-n", "0", "6"}, {"sample", "-locale", "!!", "6"}} {
		_, _, err := runCLI(t, env, args...)
		if code := exitCode(err, &bytes.Buffer{}); code != 2 {
			t.Errorf("%v exit code = %d (%v), want 2", args, code, err)
		}
	}
}

func TestPrintSourceContext(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		col    int
		expect string
	}{
		{"plain", "let x = y", 9, "    let x = y\n            ^\n"},
		{"indented", "    1 + nope", 9, "    1 + nope\n        ^\n"},
		{"tab", "\tmath.abs()", 2, "    math.abs()\n    ^\n"},
		{"no column", "x", 0, "    x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printSourceContext(&buf, []string{tt.line}, 1, tt.col)
			if buf.String() != tt.expect {
				t.Errorf("got %q, want %q", buf.String(), tt.expect)
			}
		})
	}

	var buf bytes.Buffer
	printSourceContext(&buf, []string{"x"}, 3, 1)
	if buf.Len() != 0 {
		t.Errorf("out-of-range line printed %q", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil, &bytes.Buffer{}) != 0 {
		t.Error("nil error should exit 0")
	}
	var stderr bytes.Buffer
	if exitCode(errScriptFailed, &stderr) != 1 || stderr.Len() != 0 {
		t.Errorf("script failure: printed %q", stderr.String())
	}
	if exitCode(errors.New("boom"), &stderr) != 1 || stderr.String() != "error: boom\n" {
		t.Errorf("plain error: printed %q", stderr.String())
	}
	if exitCode(usagef("bad"), &bytes.Buffer{}) != 2 {
		t.Error("usage error should exit 2")
	}
}
