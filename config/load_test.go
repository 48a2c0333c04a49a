package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) string { return "" }

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "lmath.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Random.Seed != nil {
		t.Errorf("expected no default seed, got %v", *cfg.Random.Seed)
	}
	if cfg.Compat.ModAlias {
		t.Error("expected mod alias off by default")
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" || cfg.Logging.Output != "stderr" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected 100ms debounce, got %s", cfg.Watch.Debounce)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "LM_SEED":
			return "42"
		case "LM_LEVEL":
			return "debug"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple substitution", "seed: ${LM_SEED}", "seed: 42"},
		{"with default (env set)", "seed: ${LM_SEED:-1}", "seed: 42"},
		{"with default (env not set)", "seed: ${UNSET_VAR:-7}", "seed: 7"},
		{"unset without default", "seed: ${UNSET_VAR}", "seed: "},
		{"multiple substitutions", "${LM_LEVEL}/${LM_SEED}", "debug/42"},
		{"no substitution needed", "static: value", "static: value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
random:
  seed: ${SEED:-12.5}
compat:
  mod_alias: true
repl:
  history: history.txt
  prompt: "lm> "
output:
  locale: de-DE
logging:
  level: info
  format: json
  output: logs/lmath.log
watch:
  debounce: 250ms
`)

	cfg, resolved, err := LoadWithPath(path, noEnv)
	if err != nil {
		t.Fatalf("LoadWithPath() error: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Random.Seed == nil || *cfg.Random.Seed != 12.5 {
		t.Errorf("seed = %v", cfg.Random.Seed)
	}
	if !cfg.Compat.ModAlias {
		t.Error("mod_alias not loaded")
	}
	if cfg.REPL.Prompt != "lm> " {
		t.Errorf("prompt = %q", cfg.REPL.Prompt)
	}
	if cfg.REPL.History != filepath.Join(dir, "history.txt") {
		t.Errorf("history = %q, want it resolved against the config dir", cfg.REPL.History)
	}
	if cfg.Logging.Output != filepath.Join(dir, "logs", "lmath.log") {
		t.Errorf("logging output = %q", cfg.Logging.Output)
	}
	if cfg.Output.Locale != "de-DE" {
		t.Errorf("locale = %q", cfg.Output.Locale)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("debounce = %s", cfg.Watch.Debounce)
	}
	if cfg.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, dir)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "logging:\n  level: debug\n")
	cfg, err := Load(path, noEnv)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" || cfg.Logging.Output != "stderr" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.REPL.Prompt != "> " {
		t.Errorf("prompt = %q", cfg.REPL.Prompt)
	}
}

func TestLoadValidationCollectsErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
logging:
  level: loud
  format: xml
watch:
  debounce: 0s
output:
  locale: "!!"
`)
	_, err := Load(path, noEnv)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "configuration errors:\n  - ") {
		t.Errorf("unexpected message: %q", msg)
	}
	for _, want := range []string{"invalid log level: loud", "invalid log format: xml", "invalid watch.debounce", "invalid output.locale"} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing %q in %q", want, msg)
		}
	}
}

func TestLoadParseError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "random: [unclosed\n")
	if _, err := Load(path, noEnv); err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("err = %v", err)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Run("explicit missing", func(t *testing.T) {
		_, err := resolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml"), noEnv)
		if err == nil || !strings.Contains(err.Error(), "config file not found") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("env var", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "")
		getenv := func(k string) string {
			if k == "LMATH_CONFIG" {
				return path
			}
			return ""
		}
		got, err := resolveConfigPath("", getenv)
		if err != nil || got != path {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("env var missing", func(t *testing.T) {
		getenv := func(k string) string {
			if k == "LMATH_CONFIG" {
				return "/does/not/exist.yaml"
			}
			return ""
		}
		if _, err := resolveConfigPath("", getenv); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("working directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "")
		t.Chdir(dir)
		got, err := resolveConfigPath("", noEnv)
		if err != nil || got != "lmath.yaml" {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("home config", func(t *testing.T) {
		home := t.TempDir()
		cfgDir := filepath.Join(home, ".config", "lmath")
		if err := os.MkdirAll(cfgDir, 0o755); err != nil {
			t.Fatal(err)
		}
		want := writeConfig(t, cfgDir, "")
		t.Setenv("HOME", home)
		t.Chdir(t.TempDir())
		got, err := resolveConfigPath("", noEnv)
		if err != nil || got != want {
			t.Errorf("got %q, %v; want %q", got, err, want)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Chdir(t.TempDir())
		cfg, path, err := LoadWithPath("", noEnv)
		if err != nil || path != "" {
			t.Fatalf("got %q, %v", path, err)
		}
		if cfg.Logging.Level != Defaults().Logging.Level {
			t.Error("expected defaults")
		}
	})
}
