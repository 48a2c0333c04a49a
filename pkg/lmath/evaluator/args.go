package evaluator

import "github.com/sambeau/lmath/pkg/lmath/parser"

// checkNumber returns argument pos (1-based) of fn as a number. Numeric
// strings are converted. A missing argument is reported as "no value".
func checkNumber(fn string, args []Object, pos int) (float64, *Error) {
	var arg Object
	if pos <= len(args) {
		arg = args[pos-1]
	}
	if v, ok := toNumber(arg); ok {
		return v, nil
	}
	return 0, newArgTypeError(fn, pos, arg)
}

// toNumber converts numbers and numeric strings to float64.
func toNumber(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case *Number:
		return v.Value, true
	case *String:
		return parser.ParseNumber(v.Value)
	}
	return 0, false
}
