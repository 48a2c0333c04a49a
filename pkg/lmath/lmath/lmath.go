// Package lmath embeds the lmath script runtime.
//
// Each Instance has its own environment and therefore its own math module
// and random generator:
//
//	in := lmath.New(lmath.WithSeed(42))
//	v, err := in.Eval("math.random(1, 6)", "roll.lm")
//
// Instances are not safe for concurrent use. Use one per goroutine.
package lmath

import (
	"math"

	lerrors "github.com/sambeau/lmath/pkg/lmath/errors"
	"github.com/sambeau/lmath/pkg/lmath/evaluator"
	"github.com/sambeau/lmath/pkg/lmath/lexer"
	"github.com/sambeau/lmath/pkg/lmath/parser"
)

// Option configures an Instance.
type Option func(*config)

type config struct {
	logger   Logger
	seed     *float64
	modAlias bool
}

// WithLogger sets where print writes.
func WithLogger(l Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithSeed seeds the instance's generator as if the first script statement
// were math.randomseed(seed).
func WithSeed(seed float64) Option {
	return func(c *config) { c.seed = &seed }
}

// WithModAlias exports math.fmod a second time as math.mod.
func WithModAlias(enabled bool) Option {
	return func(c *config) { c.modAlias = enabled }
}

// Instance is one script runtime.
type Instance struct {
	env *evaluator.Environment
}

// New creates an instance with a fresh environment.
func New(opts ...Option) *Instance {
	cfg := config{logger: StdoutLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	env := evaluator.NewRootEnvironment(evaluator.MathOptions{ModAlias: cfg.modAlias})
	env.Logger = cfg.logger

	in := &Instance{env: env}
	if cfg.seed != nil {
		in.RandomSeed(*cfg.seed)
	}
	return in
}

// Eval parses and runs source. It returns the value of the last statement.
// Parse and runtime failures are returned as *errors.MathError; for parse
// failures only the first error is returned.
func (in *Instance) Eval(source, filename string) (evaluator.Object, error) {
	p := parser.New(lexer.NewWithFilename(source, filename))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		return nil, errs[0]
	}

	in.env.Filename = filename
	result := evaluator.Eval(program, in.env)
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, errObj.ToMathError()
	}
	return result, nil
}

// Check parses source without running it and returns every parse error.
func (in *Instance) Check(source, filename string) []*lerrors.MathError {
	p := parser.New(lexer.NewWithFilename(source, filename))
	p.ParseProgram()
	return p.StructuredErrors()
}

// Math returns the instance's math module.
func (in *Instance) Math() *evaluator.ModuleDict {
	return in.env.Module("math")
}

// Lookup returns the value bound to name.
func (in *Instance) Lookup(name string) (evaluator.Object, bool) {
	return in.env.Get(name)
}

// Names returns the names bound in the instance's environment.
func (in *Instance) Names() []string {
	return in.env.Names()
}

// Random calls math.random with the given bounds, sharing the generator
// scripts on this instance use.
func (in *Instance) Random(bounds ...float64) float64 {
	args := make([]evaluator.Object, len(bounds))
	for i, b := range bounds {
		args[i] = &evaluator.Number{Value: b}
	}
	if n, ok := in.call("random", args...).(*evaluator.Number); ok {
		return n.Value
	}
	return math.NaN()
}

// RandomSeed calls math.randomseed(seed).
func (in *Instance) RandomSeed(seed float64) {
	in.call("randomseed", &evaluator.Number{Value: seed})
}

func (in *Instance) call(name string, args ...evaluator.Object) evaluator.Object {
	fn, ok := in.Math().Exports[name].(*evaluator.Builtin)
	if !ok {
		return evaluator.NULL
	}
	return fn.Fn(args...)
}
