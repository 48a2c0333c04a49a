package evaluator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sambeau/lmath/pkg/lmath/ast"
	lerrors "github.com/sambeau/lmath/pkg/lmath/errors"
)

// Logger receives the output of print.
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// defaultStdoutLogger is the default logger that writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...any) {
	fmt.Print(joinValues(values))
}

func (l *defaultStdoutLogger) LogLine(values ...any) {
	fmt.Println(joinValues(values))
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// Environment holds variable bindings for one script instance.
type Environment struct {
	store     map[string]Object
	protected map[string]bool // names that cannot be rebound
	Filename  string
	Logger    Logger
}

// NewEnvironment creates an empty environment
func NewEnvironment() *Environment {
	return &Environment{
		store:     make(map[string]Object),
		protected: make(map[string]bool),
		Logger:    DefaultLogger,
	}
}

// NewRootEnvironment creates an environment with a fresh math module and
// print bound as protected names.
func NewRootEnvironment(opts MathOptions) *Environment {
	env := NewEnvironment()
	env.SetProtected("math", LoadMathModule(opts))
	env.SetProtected("print", &Builtin{Name: "print", Fn: func(args ...Object) Object {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Inspect()
		}
		env.Logger.LogLine(strings.Join(parts, "\t"))
		return NULL
	}})
	return env
}

// Get retrieves a value from the environment
func (e *Environment) Get(name string) (Object, bool) {
	v, ok := e.store[name]
	return v, ok
}

// Set stores a value in the environment
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// SetProtected stores a value that scripts cannot rebind
func (e *Environment) SetProtected(name string, val Object) Object {
	e.store[name] = val
	e.protected[name] = true
	return val
}

// IsProtected reports whether name is a protected binding
func (e *Environment) IsProtected(name string) bool {
	return e.protected[name]
}

// Names returns all bound names, sorted
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for k := range e.store {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Module returns the module bound to name, or nil.
func (e *Environment) Module(name string) *ModuleDict {
	v, _ := e.Get(name)
	mod, _ := v.(*ModuleDict)
	return mod
}

// Eval evaluates a node. Errors are returned as *Error objects.
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case *ast.Program:
		return evalProgram(node, env)

	case *ast.LetStatement:
		return evalBinding(node.Name, node.Value, env)

	case *ast.AssignmentStatement:
		return evalBinding(node.Name, node.Value, env)

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	case *ast.NumberLiteral:
		return &Number{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.PrefixExpression:
		right := evalValue(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node, right, env)

	case *ast.InfixExpression:
		left := evalValue(node.Left, env)
		if isError(left) {
			return left
		}
		right := evalValue(node.Right, env)
		if isError(right) {
			return right
		}
		return evalInfixExpression(node, left, right, env)

	case *ast.DotExpression:
		return evalDotExpression(node, env)

	case *ast.CallExpression:
		return evalCallExpression(node, env)
	}

	return newStructuredError("UNKNOWN", map[string]any{"message": fmt.Sprintf("cannot evaluate %T", node)})
}

func evalProgram(program *ast.Program, env *Environment) Object {
	var result Object = NULL
	for _, statement := range program.Statements {
		result = Eval(statement, env)
		if errObj, ok := result.(*Error); ok {
			if errObj.File == "" {
				errObj.File = env.Filename
			}
			return errObj
		}
	}
	return result
}

// evalValue evaluates an expression and keeps only the first value of a
// multi-result call.
func evalValue(node ast.Expression, env *Environment) Object {
	obj := Eval(node, env)
	if t, ok := obj.(*Tuple); ok {
		return t.First()
	}
	return obj
}

func evalBinding(name *ast.Identifier, value ast.Expression, env *Environment) Object {
	if env.IsProtected(name.Value) {
		err := newStructuredError("STATE-0001", map[string]any{"Name": name.Value})
		return withPosition(err, name.Token, env)
	}
	val := evalValue(value, env)
	if isError(val) {
		return val
	}
	env.Set(name.Value, val)
	return NULL
}

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	err := fromMathError(lerrors.NewUndefinedIdentifier(node.Value, env.Names()))
	return withPosition(err, node.Token, env)
}

func evalPrefixExpression(node *ast.PrefixExpression, right Object, env *Environment) Object {
	x, ok := toNumber(right)
	if !ok {
		return newOperatorError("OP-0001", node.Token, env, right)
	}
	return &Number{Value: -x}
}

func evalInfixExpression(node *ast.InfixExpression, left, right Object, env *Environment) Object {
	a, ok := toNumber(left)
	if !ok {
		return newOperatorError("OP-0001", node.Token, env, left)
	}
	b, ok := toNumber(right)
	if !ok {
		return newOperatorError("OP-0001", node.Token, env, right)
	}

	switch node.Operator {
	case "+":
		return &Number{Value: a + b}
	case "-":
		return &Number{Value: a - b}
	case "*":
		return &Number{Value: a * b}
	case "/":
		return &Number{Value: a / b}
	case "%":
		return &Number{Value: a - math.Floor(a/b)*b}
	case "^":
		return &Number{Value: math.Pow(a, b)}
	}
	err := newStructuredError("UNKNOWN", map[string]any{"message": "unknown operator: " + node.Operator})
	return withPosition(err, node.Token, env)
}

func evalDotExpression(node *ast.DotExpression, env *Environment) Object {
	left := evalValue(node.Left, env)
	if isError(left) {
		return left
	}
	mod, ok := left.(*ModuleDict)
	if !ok {
		return newOperatorError("OP-0003", node.Token, env, left)
	}
	if val, ok := mod.Exports[node.Key]; ok {
		return val
	}
	err := fromMathError(lerrors.NewUndefinedField(mod.Name, node.Key, mod.Names()))
	return withPosition(err, node.Token, env)
}

func evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	fn := evalValue(node.Function, env)
	if isError(fn) {
		return fn
	}
	builtin, ok := fn.(*Builtin)
	if !ok {
		return newOperatorError("OP-0002", node.Token, env, fn)
	}

	args, errObj := evalArguments(node.Arguments, env)
	if errObj != nil {
		return errObj
	}

	result := builtin.Fn(args...)
	if errObj, ok := result.(*Error); ok {
		return withPosition(errObj, node.Token, env)
	}
	return result
}

// evalArguments evaluates call arguments left to right. A multi-result call
// in the last position contributes all of its values; anywhere else only
// its first.
func evalArguments(exprs []ast.Expression, env *Environment) ([]Object, *Error) {
	args := make([]Object, 0, len(exprs))
	for i, e := range exprs {
		obj := Eval(e, env)
		if errObj, ok := obj.(*Error); ok {
			return nil, errObj
		}
		if t, ok := obj.(*Tuple); ok {
			if i == len(exprs)-1 {
				args = append(args, t.Values...)
				continue
			}
			obj = t.First()
		}
		args = append(args, obj)
	}
	return args, nil
}
