package evaluator

import (
	"math"

	"github.com/sambeau/lmath/pkg/lmath/prng"
)

var mathModuleMeta = ModuleMeta{
	Description: "Mathematical functions, constants and a seedable random generator",
	Exports: map[string]ExportMeta{
		// Constants
		"pi":   {Kind: "constant", Description: "Pi (3.14159...)"},
		"huge": {Kind: "constant", Description: "Positive infinity"},
		// Rounding & sign
		"floor": {Kind: "function", Arity: "1", Description: "Round down to integer"},
		"ceil":  {Kind: "function", Arity: "1", Description: "Round up to integer"},
		"abs":   {Kind: "function", Arity: "1", Description: "Absolute value"},
		"modf":  {Kind: "function", Arity: "1", Description: "Integer and fractional parts (two results)"},
		"fmod":  {Kind: "function", Arity: "2", Description: "Remainder of x/y with the sign of x"},
		"mod":   {Kind: "function", Arity: "2", Description: "Alias for fmod (compat.mod_alias)"},
		// Comparison
		"min": {Kind: "function", Arity: "1+", Description: "Minimum of the arguments"},
		"max": {Kind: "function", Arity: "1+", Description: "Maximum of the arguments"},
		// Powers & Logarithms
		"sqrt":  {Kind: "function", Arity: "1", Description: "Square root"},
		"pow":   {Kind: "function", Arity: "2", Description: "Power (base, exponent)"},
		"exp":   {Kind: "function", Arity: "1", Description: "e^x"},
		"log":   {Kind: "function", Arity: "1-2", Description: "Natural logarithm, or logarithm to base y"},
		"log10": {Kind: "function", Arity: "1", Description: "Base-10 logarithm"},
		"frexp": {Kind: "function", Arity: "1", Description: "Mantissa and exponent (two results)"},
		"ldexp": {Kind: "function", Arity: "2", Description: "m * 2^e"},
		// Trigonometry
		"sin":   {Kind: "function", Arity: "1", Description: "Sine (radians)"},
		"cos":   {Kind: "function", Arity: "1", Description: "Cosine (radians)"},
		"tan":   {Kind: "function", Arity: "1", Description: "Tangent (radians)"},
		"asin":  {Kind: "function", Arity: "1", Description: "Arc sine"},
		"acos":  {Kind: "function", Arity: "1", Description: "Arc cosine"},
		"atan":  {Kind: "function", Arity: "1", Description: "Arc tangent"},
		"atan2": {Kind: "function", Arity: "2", Description: "Arc tangent of y/x"},
		"sinh":  {Kind: "function", Arity: "1", Description: "Hyperbolic sine"},
		"cosh":  {Kind: "function", Arity: "1", Description: "Hyperbolic cosine"},
		"tanh":  {Kind: "function", Arity: "1", Description: "Hyperbolic tangent"},
		// Angular Conversion
		"deg": {Kind: "function", Arity: "1", Description: "Radians to degrees"},
		"rad": {Kind: "function", Arity: "1", Description: "Degrees to radians"},
		// Random
		"random":     {Kind: "function", Arity: "0-2", Description: "Float in [0,1), integer in [1,m], or integer in [m,n]"},
		"randomseed": {Kind: "function", Arity: "1", Description: "Seed this instance's random generator"},
	},
}

// MathOptions configures a math module load.
type MathOptions struct {
	// ModAlias exports fmod a second time as mod.
	ModAlias bool
}

// LoadMathModule returns a new math module. Every call allocates its own
// random generator, shared only by that module's random and randomseed.
func LoadMathModule(opts MathOptions) *ModuleDict {
	state := prng.New()

	exports := map[string]Object{
		// Constants
		"pi":   &Number{Value: math.Pi},
		"huge": &Number{Value: math.Inf(1)},

		// Rounding & sign
		"floor": mathUnary("floor", math.Floor),
		"ceil":  mathUnary("ceil", math.Ceil),
		"abs":   mathUnary("abs", math.Abs),
		"modf":  &Builtin{Name: "modf", Fn: mathModf},
		"fmod":  mathBinary("fmod", math.Mod),

		// Comparison
		"min": mathFold("min", func(a, b float64) bool { return b < a }),
		"max": mathFold("max", func(a, b float64) bool { return b > a }),

		// Powers & Logarithms
		"sqrt":  mathUnary("sqrt", math.Sqrt),
		"pow":   mathBinary("pow", math.Pow),
		"exp":   mathUnary("exp", math.Exp),
		"log":   &Builtin{Name: "log", Fn: mathLog},
		"log10": mathUnary("log10", math.Log10),
		"frexp": &Builtin{Name: "frexp", Fn: mathFrexp},
		"ldexp": &Builtin{Name: "ldexp", Fn: mathLdexp},

		// Trigonometry
		"sin":   mathUnary("sin", math.Sin),
		"cos":   mathUnary("cos", math.Cos),
		"tan":   mathUnary("tan", math.Tan),
		"asin":  mathUnary("asin", math.Asin),
		"acos":  mathUnary("acos", math.Acos),
		"atan":  mathUnary("atan", math.Atan),
		"atan2": mathBinary("atan2", math.Atan2),
		"sinh":  mathUnary("sinh", math.Sinh),
		"cosh":  mathUnary("cosh", math.Cosh),
		"tanh":  mathUnary("tanh", math.Tanh),

		// Angular Conversion
		"deg": mathUnary("deg", func(x float64) float64 { return x * 57.29577951308232 }),
		"rad": mathUnary("rad", func(x float64) float64 { return x * 0.017453292519943295 }),

		// Random
		"random":     mathRandom(state),
		"randomseed": mathRandomSeed(state),
	}

	meta := &mathModuleMeta
	if opts.ModAlias {
		exports["mod"] = mathBinary("mod", math.Mod)
	} else {
		meta = withoutExport(meta, "mod")
	}

	return &ModuleDict{Name: "math", Meta: meta, Exports: exports}
}

func withoutExport(meta *ModuleMeta, name string) *ModuleMeta {
	out := &ModuleMeta{Description: meta.Description, Exports: make(map[string]ExportMeta, len(meta.Exports))}
	for k, v := range meta.Exports {
		if k != name {
			out.Exports[k] = v
		}
	}
	return out
}

// =============================================================================
// Builtin constructors
// =============================================================================

func mathUnary(name string, f func(float64) float64) *Builtin {
	return &Builtin{Name: name, Fn: func(args ...Object) Object {
		x, err := checkNumber(name, args, 1)
		if err != nil {
			return err
		}
		return &Number{Value: f(x)}
	}}
}

func mathBinary(name string, f func(x, y float64) float64) *Builtin {
	return &Builtin{Name: name, Fn: func(args ...Object) Object {
		x, err := checkNumber(name, args, 1)
		if err != nil {
			return err
		}
		y, err := checkNumber(name, args, 2)
		if err != nil {
			return err
		}
		return &Number{Value: f(x, y)}
	}}
}

// mathFold keeps the running value unless better(current, next) says
// otherwise, so NaN arguments never replace it.
func mathFold(name string, better func(cur, next float64) bool) *Builtin {
	return &Builtin{Name: name, Fn: func(args ...Object) Object {
		cur, err := checkNumber(name, args, 1)
		if err != nil {
			return err
		}
		for i := 2; i <= len(args); i++ {
			d, err := checkNumber(name, args, i)
			if err != nil {
				return err
			}
			if better(cur, d) {
				cur = d
			}
		}
		return &Number{Value: cur}
	}}
}

// =============================================================================
// Multi-argument and multi-result functions
// =============================================================================

// mathLog is the natural logarithm, or log base y as log2(x) * (1/log2(y)).
func mathLog(args ...Object) Object {
	x, err := checkNumber("log", args, 1)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return &Number{Value: math.Log(x)}
	}
	y, err := checkNumber("log", args, 2)
	if err != nil {
		return err
	}
	return &Number{Value: math.Log2(x) * (1.0 / math.Log2(y))}
}

func mathFrexp(args ...Object) Object {
	x, err := checkNumber("frexp", args, 1)
	if err != nil {
		return err
	}
	frac, exp := math.Frexp(x)
	return &Tuple{Values: []Object{&Number{Value: frac}, &Number{Value: float64(exp)}}}
}

func mathModf(args ...Object) Object {
	x, err := checkNumber("modf", args, 1)
	if err != nil {
		return err
	}
	var ip, fp float64
	if math.IsInf(x, 0) {
		// math.Modf gives NaN for the fraction of an infinity.
		ip, fp = x, math.Copysign(0, x)
	} else {
		ip, fp = math.Modf(x)
	}
	return &Tuple{Values: []Object{&Number{Value: ip}, &Number{Value: fp}}}
}

// ldexpLimit bounds the exponent before conversion to int; any exponent
// beyond it already overflows or underflows every finite mantissa.
const ldexpLimit = 1 << 16

func mathLdexp(args ...Object) Object {
	m, err := checkNumber("ldexp", args, 1)
	if err != nil {
		return err
	}
	e, err := checkNumber("ldexp", args, 2)
	if err != nil {
		return err
	}
	var exp int
	switch {
	case math.IsNaN(e):
		exp = 0
	case e > ldexpLimit:
		exp = ldexpLimit
	case e < -ldexpLimit:
		exp = -ldexpLimit
	default:
		exp = int(e)
	}
	return &Number{Value: math.Ldexp(m, exp)}
}

// =============================================================================
// Random Functions
// =============================================================================

// mathRandom checks every bound it will use before drawing, so a bad
// argument leaves the generator untouched.
func mathRandom(state *prng.State) *Builtin {
	return &Builtin{Name: "random", Fn: func(args ...Object) Object {
		n := min(len(args), 2)
		bounds := make([]float64, n)
		for i := range bounds {
			v, err := checkNumber("random", args, i+1)
			if err != nil {
				return err
			}
			bounds[i] = v
		}
		return &Number{Value: state.Random(bounds...)}
	}}
}

func mathRandomSeed(state *prng.State) *Builtin {
	return &Builtin{Name: "randomseed", Fn: func(args ...Object) Object {
		seed, err := checkNumber("randomseed", args, 1)
		if err != nil {
			return err
		}
		state.Seed(seed)
		return NULL
	}}
}
