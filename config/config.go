package config

import "time"

// Config represents the complete lmath configuration
type Config struct {
	BaseDir string        `yaml:"-"` // Directory containing the config file, for resolving relative paths
	Random  RandomConfig  `yaml:"random"`
	Compat  CompatConfig  `yaml:"compat"`
	REPL    REPLConfig    `yaml:"repl"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
}

// RandomConfig holds generator settings
type RandomConfig struct {
	Seed *float64 `yaml:"seed"` // Seed applied to every new instance; unset means unseeded
}

// CompatConfig holds compatibility switches
type CompatConfig struct {
	ModAlias bool `yaml:"mod_alias"` // Export math.mod as an alias of math.fmod
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	History string `yaml:"history"` // History file (default: ~/.lmath_history)
	Prompt  string `yaml:"prompt"`
}

// OutputConfig holds report formatting settings
type OutputConfig struct {
	Locale string `yaml:"locale"` // BCP 47 tag for number formatting in reports
}

// LoggingConfig holds diagnostic logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stderr, stdout, or a file path
}

// WatchConfig holds file watcher settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before re-running a changed script
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt: "> ",
		},
		Output: OutputConfig{
			Locale: "en",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
	}
}
