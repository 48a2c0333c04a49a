// eval_errors.go - Error creation helpers for the evaluator
//
// All functions return *Error objects that can be returned directly from
// Eval or from a builtin.

package evaluator

import (
	lerrors "github.com/sambeau/lmath/pkg/lmath/errors"
	"github.com/sambeau/lmath/pkg/lmath/lexer"
)

// fromMathError copies a catalog error into an evaluator Error.
func fromMathError(merr *lerrors.MathError) *Error {
	return &Error{
		Class:   merr.Class,
		Code:    merr.Code,
		Message: merr.Message,
		Hints:   merr.Hints,
		Line:    merr.Line,
		Column:  merr.Column,
		File:    merr.File,
		Data:    merr.Data,
	}
}

// newStructuredError creates a structured error from the catalog.
func newStructuredError(code string, data map[string]any) *Error {
	return fromMathError(lerrors.New(code, data))
}

// newArgTypeError is raised when argument pos of function fn is not a number.
func newArgTypeError(fn string, pos int, got Object) *Error {
	return fromMathError(lerrors.NewArgType(fn, pos, typeName(got)))
}

// newOperatorError creates an OP-xxxx error at tok.
func newOperatorError(code string, tok lexer.Token, env *Environment, got Object) *Error {
	err := newStructuredError(code, map[string]any{"Got": typeName(got)})
	return withPosition(err, tok, env)
}

// withPosition fills in the position and file of err when it has none.
func withPosition(err *Error, tok lexer.Token, env *Environment) *Error {
	if err.Line == 0 {
		err.Line = tok.Line
		err.Column = tok.Column
	}
	if err.File == "" && env != nil {
		err.File = env.Filename
	}
	return err
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}
