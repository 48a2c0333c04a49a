package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/sambeau/lmath/pkg/lmath/evaluator"
	"github.com/sambeau/lmath/pkg/lmath/help"
	"github.com/sambeau/lmath/pkg/lmath/lmath"
	"github.com/sambeau/lmath/pkg/lmath/logger"
)

const PROMPT = "> "
const CONTINUATION_PROMPT = ">> "

// Options configures a REPL session.
type Options struct {
	Prompt      string // defaults to PROMPT
	HistoryFile string // defaults to ~/.lmath_history
	Version     string
	// NewInstance builds the runtime for the session and for :reset.
	// It defaults to lmath.New with print writing to the session output.
	NewInstance func(out lmath.Logger) *lmath.Instance
}

// Session holds the state of one interactive session. It does no terminal
// handling, so it can be driven line by line.
type Session struct {
	opts     Options
	out      io.Writer
	instance *lmath.Instance
	buf      strings.Builder
}

// NewSession creates a session that writes to out.
func NewSession(out io.Writer, opts Options) *Session {
	if opts.Prompt == "" {
		opts.Prompt = PROMPT
	}
	if opts.NewInstance == nil {
		opts.NewInstance = func(l lmath.Logger) *lmath.Instance {
			return lmath.New(lmath.WithLogger(l))
		}
	}
	s := &Session{opts: opts, out: out}
	s.instance = opts.NewInstance(lmath.WriterLogger(out))
	return s
}

// Prompt returns the prompt for the next line.
func (s *Session) Prompt() string {
	if s.buf.Len() > 0 {
		return CONTINUATION_PROMPT
	}
	return s.opts.Prompt
}

// Pending reports whether a multi-line input is being collected.
func (s *Session) Pending() bool {
	return s.buf.Len() > 0
}

// Cancel drops any buffered input.
func (s *Session) Cancel() {
	s.buf.Reset()
}

// Handle processes one input line. It returns the complete input that was
// evaluated (for history), or "" if nothing ran, and whether the session
// should end.
func (s *Session) Handle(input string) (evaluated string, done bool) {
	trimmed := strings.TrimSpace(input)

	if s.buf.Len() == 0 {
		switch {
		case trimmed == "exit" || trimmed == "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return "", true
		case strings.HasPrefix(trimmed, ":"):
			s.handleCommand(trimmed)
			return "", false
		case trimmed == "":
			return "", false
		}
	}

	if s.buf.Len() > 0 {
		s.buf.WriteString("\n")
	}
	s.buf.WriteString(input)

	full := s.buf.String()
	if needsMoreInput(full) {
		return "", false
	}
	s.buf.Reset()

	result, err := s.instance.Eval(full, "<repl>")
	if err != nil {
		printError(s.out, err)
		return full, false
	}
	if result != nil && result.Type() != evaluator.NULL_OBJ {
		fmt.Fprintln(s.out, result.Inspect())
	}
	return full, false
}

// handleCommand handles REPL meta-commands that start with ':'
func (s *Session) handleCommand(cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?     Show this help")
		fmt.Fprintln(s.out, "  :env              Show variables in scope")
		fmt.Fprintln(s.out, "  :seed <number>    Seed this session's random generator")
		fmt.Fprintln(s.out, "  :describe <name>  Describe math or math.<name>")
		fmt.Fprintln(s.out, "  :reset            Start over with a fresh math module")
		fmt.Fprintln(s.out, "  exit, quit        Exit the REPL")

	case ":env":
		s.printEnvironment()

	case ":seed":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "usage: :seed <number>")
			return
		}
		seed, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			fmt.Fprintf(s.out, "invalid seed: %s\n", fields[1])
			return
		}
		s.instance.RandomSeed(seed)
		fmt.Fprintf(s.out, "Seeded with %s\n", evaluator.FormatNumber(seed))

	case ":describe", ":d":
		topic := "math"
		if len(fields) > 1 {
			topic = fields[1]
		}
		result, err := help.DescribeTopic(topic)
		if err != nil {
			fmt.Fprintln(s.out, err)
			return
		}
		fmt.Fprint(s.out, help.FormatText(result))

	case ":reset":
		s.instance = s.opts.NewInstance(lmath.WriterLogger(s.out))
		fmt.Fprintln(s.out, "Environment reset")

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", fields[0])
	}
}

// printEnvironment displays user-defined variables
func (s *Session) printEnvironment() {
	count := 0
	for _, name := range s.instance.Names() {
		if name == "math" || name == "print" {
			continue
		}
		v, _ := s.instance.Lookup(name)
		fmt.Fprintf(s.out, "  %s = %s\n", name, v.Inspect())
		count++
	}
	if count == 0 {
		fmt.Fprintln(s.out, "(no user variables)")
	}
}

// Completions returns completion candidates for the word being typed at the
// end of line. Candidates are whole lines, as liner expects.
func (s *Session) Completions(line string) []string {
	if line == "" || line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}
	start := len(line)
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	prefix, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	candidates := append([]string{"let"}, s.instance.Names()...)
	if mod := s.instance.Math(); mod != nil {
		for _, name := range mod.Names() {
			candidates = append(candidates, "math."+name)
		}
	}

	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			matches = append(matches, prefix+c)
		}
	}
	return matches
}

func isWordChar(ch byte) bool {
	return ch == '_' || ch == '.' || 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || '0' <= ch && ch <= '9'
}

// needsMoreInput reports whether input has unclosed parentheses outside
// strings and comments.
func needsMoreInput(input string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(input); i++ {
		ch := input[i]
		if quote != 0 {
			switch ch {
			case '\\':
				i++
			case quote:
				quote = 0
			case '\n':
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '-':
			if i+1 < len(input) && input[i+1] == '-' {
				for i < len(input) && input[i] != '\n' {
					i++
				}
			}
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth > 0
}

func printError(out io.Writer, err error) {
	type pretty interface{ PrettyString() string }
	if p, ok := err.(pretty); ok {
		io.WriteString(out, p.PrettyString())
		io.WriteString(out, "\n")
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}

// DefaultHistoryFile returns ~/.lmath_history, or a file in the temp dir if
// the home directory is unknown.
func DefaultHistoryFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".lmath_history")
	}
	return filepath.Join(os.TempDir(), ".lmath_history")
}

// Start runs the REPL with line editing, history, and tab completion
func Start(out io.Writer, opts Options) {
	s := NewSession(out, opts)

	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)
	line.SetCompleter(s.Completions)

	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = DefaultHistoryFile()
	}
	if f, err := os.Open(historyFile); err == nil {
		if _, err := line.ReadHistory(f); err != nil {
			logger.Warn().Err(err).Str("file", historyFile).Msg("could not read history")
		}
		f.Close()
	}
	defer func() {
		f, err := os.Create(historyFile)
		if err != nil {
			logger.Warn().Err(err).Str("file", historyFile).Msg("could not save history")
			return
		}
		line.WriteHistory(f)
		f.Close()
	}()

	fmt.Fprintf(out, "lmath %s\n", opts.Version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit, ':help' for commands")

	for {
		input, err := line.Prompt(s.Prompt())
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if s.Pending() {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				s.Cancel()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		evaluated, done := s.Handle(input)
		if evaluated != "" {
			line.AppendHistory(evaluated)
		}
		if done {
			return
		}
	}
}
