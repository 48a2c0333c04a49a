package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/sambeau/lmath/config"
	lerrors "github.com/sambeau/lmath/pkg/lmath/errors"
	"github.com/sambeau/lmath/pkg/lmath/evaluator"
	"github.com/sambeau/lmath/pkg/lmath/lmath"
	"github.com/sambeau/lmath/pkg/lmath/logger"
	"github.com/sambeau/lmath/pkg/lmath/repl"
	"github.com/sambeau/lmath/pkg/lmath/watch"
)

// Version is set at compile time via -ldflags
var Version = "dev"

// errScriptFailed reports a parse or runtime failure that has already been
// printed with its source context.
var errScriptFailed = errors.New("script failed")

// usageError is a bad command line or configuration. It exits with status 2.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{fmt.Errorf(format, args...)}
}

func main() {
	ctx := context.Background()
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode prints err if it has not been reported yet and maps it to the
// process status: 0 success, 1 script error, 2 usage or config error.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errScriptFailed) {
		return 1
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	// Check for subcommands first (before flag parsing)
	if len(args) > 0 {
		switch args[0] {
		case "describe":
			return describeCommand(args[1:], stdout)
		case "sample":
			return sampleCommand(args[1:], stdout, getenv)
		}
	}

	flags := flag.NewFlagSet("lmath", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		helpFlag    = flags.Bool("h", false, "Show help message")
		helpLong    = flags.Bool("help", false, "Show help message")
		versionFlag = flags.Bool("V", false, "Show version information")
		versionLong = flags.Bool("version", false, "Show version information")
		evalFlag    = flags.String("e", "", "Evaluate code string")
		evalLong    = flags.String("eval", "", "Evaluate code string")
		checkFlag   = flags.Bool("check", false, "Check syntax without executing")
		watchFlag   = flags.Bool("watch", false, "Re-run the script when it changes")
		configPath  = flags.String("config", "", "Path to config file")
		seedFlag    = flags.String("seed", "", "Seed the random generator")
	)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printHelp(stdout)
			return nil
		}
		printHelp(stderr)
		return &usageError{err}
	}

	if *helpFlag || *helpLong {
		printHelp(stdout)
		return nil
	}
	if *versionFlag || *versionLong {
		fmt.Fprintf(stdout, "lmath version %s\n", Version)
		return nil
	}

	cfg, configFile, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return &usageError{fmt.Errorf("loading config: %w", err)}
	}
	if err := applySeedFlag(cfg, *seedFlag); err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return &usageError{err}
	}
	defer closeLog()
	if configFile != "" {
		logger.Debug().Str("file", configFile).Msg("loaded config")
	}

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLong
	}

	switch {
	case evalCode != "":
		return executeInline(cfg, evalCode, stdout, stderr)
	case *checkFlag:
		if flags.NArg() == 0 {
			return usagef("--check requires at least one file")
		}
		return checkFiles(flags.Args(), stderr)
	case flags.NArg() > 0:
		filename := flags.Arg(0)
		if !*watchFlag {
			return executeFile(cfg, filename, stdout, stderr)
		}
		return watchFile(ctx, cfg, filename, stdout, stderr)
	case *watchFlag:
		return usagef("--watch requires a file")
	default:
		repl.Start(stdout, repl.Options{
			Prompt:      cfg.REPL.Prompt,
			HistoryFile: cfg.REPL.History,
			Version:     Version,
			NewInstance: func(out lmath.Logger) *lmath.Instance {
				return newInstance(cfg, out)
			},
		})
		return nil
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `lmath - math scripting runtime version %s

Usage:
  lmath [options] [file]
  lmath -e "code"
  lmath --check <file>...
  lmath describe [--json|--html] <topic>
  lmath sample [-n trials] [-seed s] [-locale tag] <faces>

Commands:
  describe <topic>      Show help for math or math.<name>
  sample <faces>        Roll math.random(faces) and print a histogram

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -e, --eval <code>     Evaluate code and print the result
  --check               Check syntax without executing
  --watch               Re-run the file whenever it changes
  --config <path>       Config file (default: ./lmath.yaml or ~/.config/lmath/lmath.yaml)
  --seed <number>       Seed the random generator (overrides random.seed)

Examples:
  lmath                              Start interactive REPL
  lmath dice.lm                      Run a script
  lmath --watch dice.lm              Run a script and re-run it on save
  lmath -e "math.random(1, 6)"       Roll a die
  lmath --seed 42 -e "math.random()" Reproducible draw
  lmath describe math.random         Show help for math.random
  lmath sample -n 60000 6            Check a die for bias
`, Version)
}

func applySeedFlag(cfg *config.Config, seed string) error {
	if seed == "" {
		return nil
	}
	v, err := strconv.ParseFloat(seed, 64)
	if err != nil {
		return usagef("invalid --seed %q: must be a number", seed)
	}
	cfg.Random.Seed = &v
	return nil
}

// setupLogging points the diagnostic logger at cfg.Logging.Output.
func setupLogging(cfg *config.Config) (func() error, error) {
	w, closeFn, err := logger.Open(cfg.Logging.Output)
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, w); err != nil {
		closeFn()
		return nil, err
	}
	return closeFn, nil
}

func newInstance(cfg *config.Config, out lmath.Logger) *lmath.Instance {
	opts := []lmath.Option{
		lmath.WithLogger(out),
		lmath.WithModAlias(cfg.Compat.ModAlias),
	}
	if cfg.Random.Seed != nil {
		opts = append(opts, lmath.WithSeed(*cfg.Random.Seed))
	}
	return lmath.New(opts...)
}

// executeInline evaluates inline code provided via -e flag
func executeInline(cfg *config.Config, code string, stdout, stderr io.Writer) error {
	in := newInstance(cfg, lmath.WriterLogger(stdout))
	return evalAndPrint(in, code, "<eval>", stdout, stderr)
}

// executeFile reads and executes a script file
func executeFile(cfg *config.Config, filename string, stdout, stderr io.Writer) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return usagef("reading file '%s': %w", filename, err)
	}
	in := newInstance(cfg, lmath.WriterLogger(stdout))
	return evalAndPrint(in, string(content), filename, stdout, stderr)
}

// evalAndPrint runs source and prints a non-nil result. Failures are printed
// with source context and reported as errScriptFailed.
func evalAndPrint(in *lmath.Instance, source, filename string, stdout, stderr io.Writer) error {
	result, err := in.Eval(source, filename)
	if err != nil {
		printError(stderr, source, err)
		return errScriptFailed
	}
	if result != nil && result.Type() != evaluator.NULL_OBJ {
		fmt.Fprintln(stdout, result.Inspect())
	}
	return nil
}

// watchFile runs filename, then runs it again with a fresh instance each
// time it is saved, until ctx is cancelled or the process is interrupted.
func watchFile(ctx context.Context, cfg *config.Config, filename string, stdout, stderr io.Writer) error {
	if _, err := os.Stat(filename); err != nil {
		return usagef("reading file '%s': %w", filename, err)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runOnce := func() {
		err := executeFile(cfg, filename, stdout, stderr)
		if err != nil && !errors.Is(err, errScriptFailed) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	}

	w, err := watch.New(filename, cfg.Watch.Debounce, func(string) {
		fmt.Fprintf(stderr, "--- %s changed, re-running ---\n", filename)
		runOnce()
	})
	if err != nil {
		return err
	}
	defer w.Close()

	runOnce()
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// checkFiles checks the syntax of one or more files without executing them
func checkFiles(files []string, stderr io.Writer) error {
	in := lmath.New(lmath.WithLogger(lmath.NullLogger()))
	hasErrors := false

	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			return usagef("reading %s: %w", filename, err)
		}
		if errs := in.Check(string(content), filename); len(errs) != 0 {
			for _, e := range errs {
				printError(stderr, string(content), e)
			}
			hasErrors = true
		}
	}

	if hasErrors {
		return errScriptFailed
	}
	return nil
}

// printError prints a script error with the offending source line
func printError(w io.Writer, source string, err error) {
	var me *lerrors.MathError
	if !errors.As(err, &me) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, me.PrettyString())
	printSourceContext(w, strings.Split(source, "\n"), me.Line, me.Column)
}

// printSourceContext prints the source line and error pointer
func printSourceContext(w io.Writer, lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]
	trimmedLine := strings.TrimLeft(sourceLine, " \t")
	trimCount := visualWidth(sourceLine[:len(sourceLine)-len(trimmedLine)])

	fmt.Fprintf(w, "    %s\n", trimmedLine)

	if colNum > 0 {
		end := min(colNum-1, len(sourceLine))
		adjustedCol := max(visualWidth(sourceLine[:end])-trimCount, 0)
		fmt.Fprintf(w, "    %s^\n", strings.Repeat(" ", adjustedCol))
	}
}

// visualWidth counts columns with tabs as 8.
func visualWidth(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\t' {
			n += 8
		} else {
			n++
		}
	}
	return n
}
