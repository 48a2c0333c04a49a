// Package errors provides structured error types for lmath scripts.
//
// MathError is one error type for both parse and runtime failures. It carries
// a catalog code, a rendered message and optional hints, and renders itself
// for terminals or as JSON.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Syntax errors
	ClassType      ErrorClass = "type"      // Argument and operand types
	ClassUndefined ErrorClass = "undefined" // Unknown names and fields
	ClassOperator  ErrorClass = "operator"  // Invalid operations
	ClassState     ErrorClass = "state"     // Invalid state
)

// MathError represents any error from parsing or evaluation.
type MathError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based, 0 if unknown
	Column  int            `json:"column"` // 1-based, 0 if unknown
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *MathError) Error() string {
	return e.String()
}

// String returns a one-line representation followed by indented hints.
func (e *MathError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *MathError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse:
		sb.WriteString("Parser error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *MathError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *MathError) WithFile(file string) *MathError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *MathError) WithPosition(line, column int) *MathError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsParseError returns true if this is a parser error.
func (e *MathError) IsParseError() bool {
	return e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "unterminated string",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "invalid number literal: {{.Literal}}",
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "illegal character '{{.Char}}'",
	},

	// Argument errors. ARG-0001 is the error raised when a math function
	// argument cannot be coerced to a number.
	"ARG-0001": {
		Class:    ClassType,
		Template: "bad argument #{{.Position}} to '{{.Function}}' (number expected, got {{.Got}})",
	},

	// Undefined errors
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "identifier not found: {{.Name}}",
	},
	"UNDEF-0002": {
		Class:    ClassUndefined,
		Template: "{{.Module}} has no field '{{.Field}}'",
	},

	// Operator errors
	"OP-0001": {
		Class:    ClassOperator,
		Template: "attempt to perform arithmetic on a {{.Got}} value",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "attempt to call a {{.Got}} value",
	},
	"OP-0003": {
		Class:    ClassOperator,
		Template: "attempt to index a {{.Got}} value",
	},

	// State errors
	"STATE-0001": {
		Class:    ClassState,
		Template: "cannot reassign builtin '{{.Name}}'",
		Hints:    []string{"choose another name, e.g. let my{{.Name}} = ..."},
	},
}

// New creates a MathError from a catalog code and template data.
func New(code string, data map[string]any) *MathError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &MathError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		if rendered := renderTemplate(hintTmpl, data); rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &MathError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a MathError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *MathError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewArgType creates the error for a math function argument that is not a
// number or a numeric string. pos is 1-based.
func NewArgType(function string, pos int, got string) *MathError {
	return New("ARG-0001", map[string]any{
		"Function": function,
		"Position": pos,
		"Got":      got,
	})
}

// IsArgType reports whether err is a non-numeric argument error.
func IsArgType(err error) bool {
	me, ok := err.(*MathError)
	return ok && me.Code == "ARG-0001"
}

func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// TypeName returns a lowercase type name for error messages.
func TypeName(t string) string {
	return strings.ToLower(t)
}

// ============================================================================
// Fuzzy matching for "Did you mean?" hints
// ============================================================================

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// FindClosestMatch returns the candidate closest to input, or "" when
// nothing is near enough. The allowed distance grows with input length.
func FindClosestMatch(input string, candidates []string) string {
	if input == "" || len(candidates) == 0 {
		return ""
	}

	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Strings(sorted)

	best := ""
	bestDist := threshold + 1
	inputLower := strings.ToLower(input)
	for _, c := range sorted {
		d := levenshteinDistance(inputLower, strings.ToLower(c))
		if d > 0 && d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// NewUndefinedIdentifier creates an undefined identifier error with a
// "Did you mean?" hint when a close name exists.
func NewUndefinedIdentifier(name string, available []string) *MathError {
	err := New("UNDEF-0001", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}

// NewUndefinedField creates an error for a missing module field.
func NewUndefinedField(module, field string, available []string) *MathError {
	err := New("UNDEF-0002", map[string]any{"Module": module, "Field": field})
	if suggestion := FindClosestMatch(field, available); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+module+"."+suggestion+"`?")
	}
	return err
}
