package evaluator

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	lerrors "github.com/sambeau/lmath/pkg/lmath/errors"
)

// ObjectType represents the type of objects in the language
type ObjectType string

const (
	NUMBER_OBJ  = "NUMBER"
	STRING_OBJ  = "STRING"
	NULL_OBJ    = "NULL"
	TUPLE_OBJ   = "TUPLE"
	ERROR_OBJ   = "ERROR"
	BUILTIN_OBJ = "BUILTIN"
	MODULE_OBJ  = "MODULE"
)

// Object represents all values in the language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Number is the only numeric type: an IEEE-754 double.
type Number struct {
	Value float64
}

func (n *Number) Inspect() string  { return FormatNumber(n.Value) }
func (n *Number) Type() ObjectType { return NUMBER_OBJ }

// FormatNumber renders a number with 14 significant digits, the way print
// shows it.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', 14, 64)
}

// String represents string objects
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// Null is the absence of a value.
type Null struct{}

func (n *Null) Inspect() string  { return "nil" }
func (n *Null) Type() ObjectType { return NULL_OBJ }

// NULL is the single Null value.
var NULL = &Null{}

// Tuple holds the results of a builtin that returns more than one value.
// Inside an expression only the first value is used.
type Tuple struct {
	Values []Object
}

func (t *Tuple) Type() ObjectType { return TUPLE_OBJ }
func (t *Tuple) Inspect() string {
	parts := make([]string, len(t.Values))
	for i, v := range t.Values {
		parts[i] = v.Inspect()
	}
	return strings.Join(parts, "\t")
}

// First returns the first value, or NULL for an empty tuple.
func (t *Tuple) First() Object {
	if len(t.Values) == 0 {
		return NULL
	}
	return t.Values[0]
}

// Error represents error objects with structured error information.
type Error struct {
	Message string
	Line    int
	Column  int
	Class   lerrors.ErrorClass
	Code    string
	Hints   []string
	File    string
	Data    map[string]any
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "ERROR: " + e.Message
}

// ToMathError converts this Error to a MathError.
func (e *Error) ToMathError() *lerrors.MathError {
	class := e.Class
	if class == "" {
		class = lerrors.ClassType
	}
	return &lerrors.MathError{
		Class:   class,
		Code:    e.Code,
		Message: e.Message,
		Hints:   e.Hints,
		Line:    e.Line,
		Column:  e.Column,
		File:    e.File,
		Data:    e.Data,
	}
}

// BuiltinFunction is the signature of functions implemented in Go.
type BuiltinFunction func(args ...Object) Object

// Builtin is a Go function callable from scripts. Name is used in error
// messages.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "function: " + b.Name }

// ModuleDict is a module's exported values together with its metadata.
type ModuleDict struct {
	Name    string
	Meta    *ModuleMeta
	Exports map[string]Object
}

func (md *ModuleDict) Type() ObjectType { return MODULE_OBJ }
func (md *ModuleDict) Inspect() string {
	return fmt.Sprintf("module: %s{%s}", md.Name, strings.Join(md.Names(), ", "))
}

// Names returns the sorted export names.
func (md *ModuleDict) Names() []string {
	keys := make([]string, 0, len(md.Exports))
	for k := range md.Exports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// typeName is the lowercase name used in error messages.
func typeName(obj Object) string {
	if obj == nil {
		return "no value"
	}
	switch obj.(type) {
	case *Number:
		return "number"
	case *String:
		return "string"
	case *Null:
		return "nil"
	case *Builtin:
		return "function"
	case *ModuleDict:
		return "module"
	case *Tuple:
		return "tuple"
	}
	return lerrors.TypeName(string(obj.Type()))
}
