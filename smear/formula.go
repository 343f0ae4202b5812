package smear

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
)

// Formula is a parsed arithmetic expression over a particle's kinematic
// variables, used to express a device's resolution as a function of the
// particle being measured. Supported syntax: + - * / ^ (exponentiation),
// parentheses, numeric literals, the variables E, P, theta, phi, pT, pZ,
// eta, y, m, and the functions sqrt, abs, sin, cos, tan, asin, acos, atan,
// atan2, exp, log, log10, pow, min, max.
//
// A Formula is immutable after construction; a single instance is shared
// across all particles a device processes and Eval is safe for concurrent
// use.
type Formula struct {
	src  string
	root ast.Expr
}

var formulaFuncs = map[string]struct {
	arity int
	fn    func(args []float64) (float64, string)
}{
	"sqrt": {1, func(a []float64) (float64, string) {
		if a[0] < 0 {
			return 0, "sqrt of negative value"
		}
		return math.Sqrt(a[0]), ""
	}},
	"abs": {1, func(a []float64) (float64, string) { return math.Abs(a[0]), "" }},
	"sin": {1, func(a []float64) (float64, string) { return math.Sin(a[0]), "" }},
	"cos": {1, func(a []float64) (float64, string) { return math.Cos(a[0]), "" }},
	"tan": {1, func(a []float64) (float64, string) { return math.Tan(a[0]), "" }},
	"asin": {1, func(a []float64) (float64, string) {
		if a[0] < -1 || a[0] > 1 {
			return 0, "asin argument outside [-1,1]"
		}
		return math.Asin(a[0]), ""
	}},
	"acos": {1, func(a []float64) (float64, string) {
		if a[0] < -1 || a[0] > 1 {
			return 0, "acos argument outside [-1,1]"
		}
		return math.Acos(a[0]), ""
	}},
	"atan":  {1, func(a []float64) (float64, string) { return math.Atan(a[0]), "" }},
	"atan2": {2, func(a []float64) (float64, string) { return math.Atan2(a[0], a[1]), "" }},
	"exp":   {1, func(a []float64) (float64, string) { return math.Exp(a[0]), "" }},
	"log": {1, func(a []float64) (float64, string) {
		if a[0] <= 0 {
			return 0, "log of non-positive value"
		}
		return math.Log(a[0]), ""
	}},
	"log10": {1, func(a []float64) (float64, string) {
		if a[0] <= 0 {
			return 0, "log10 of non-positive value"
		}
		return math.Log10(a[0]), ""
	}},
	"pow": {2, func(a []float64) (float64, string) { return math.Pow(a[0], a[1]), "" }},
	"min": {2, func(a []float64) (float64, string) { return math.Min(a[0], a[1]), "" }},
	"max": {2, func(a []float64) (float64, string) { return math.Max(a[0], a[1]), "" }},
}

func kinVar(name string) (func(Kin) float64, bool) {
	switch name {
	case "E", "e":
		return func(k Kin) float64 { return k.E }, true
	case "P", "p":
		return func(k Kin) float64 { return k.P }, true
	case "theta":
		return func(k Kin) float64 { return k.Theta }, true
	case "phi":
		return func(k Kin) float64 { return k.Phi }, true
	case "pT", "pt", "Pt":
		return func(k Kin) float64 { return k.Pt }, true
	case "pZ", "pz", "Pz":
		return func(k Kin) float64 { return k.Pz }, true
	case "eta":
		return func(k Kin) float64 { return k.Eta }, true
	case "y":
		return func(k Kin) float64 { return k.Y }, true
	case "m", "M":
		return func(k Kin) float64 { return k.M }, true
	case "pi":
		return func(Kin) float64 { return math.Pi }, true
	}
	return nil, false
}

// NewFormula parses src. It returns a *ParseError when the text is not a
// pure arithmetic expression over the recognized variables and functions.
func NewFormula(src string) (*Formula, error) {
	root, err := parser.ParseExpr(src)
	if err != nil {
		return nil, &ParseError{Expr: src, Detail: err.Error()}
	}
	root = promotePow(root)
	if detail := validate(root); detail != "" {
		return nil, &ParseError{Expr: src, Detail: detail}
	}
	return &Formula{src: src, root: root}, nil
}

// MustFormula is NewFormula for statically known expressions.
func MustFormula(src string) *Formula {
	f, err := NewFormula(src)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Formula) String() string { return f.src }

// Eval substitutes the particle kinematics k into the expression. It
// returns a *EvalError when the result is mathematically undefined; the
// caller must treat that as "no resolution applicable" for the dimension,
// never as a value.
func (f *Formula) Eval(k Kin) (float64, error) {
	v, reason := evalExpr(f.root, k)
	if reason == "" && (math.IsNaN(v) || math.IsInf(v, 0)) {
		reason = "non-finite result"
	}
	if reason != "" {
		return 0, &EvalError{Expr: f.src, Reason: reason}
	}
	return v, nil
}

// Go parses binary ^ with lower precedence than * and / (and equal to
// + and -), while in formula syntax exponentiation binds tightest.
// promotePow restructures the parsed tree so that a ^ node only keeps
// operands that no unparenthesized neighbor operator should have claimed:
// (a op b) ^ c becomes a op (b ^ c), and a ^ (b op c) becomes (a ^ b) op c.
func promotePow(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		x := promotePow(n.X)
		y := promotePow(n.Y)
		if n.Op == token.XOR {
			if lb, ok := x.(*ast.BinaryExpr); ok && weakerThanPow(lb.Op) {
				inner := promotePow(&ast.BinaryExpr{X: lb.Y, Op: token.XOR, Y: y})
				return &ast.BinaryExpr{X: lb.X, Op: lb.Op, Y: inner}
			}
			if rb, ok := y.(*ast.BinaryExpr); ok && weakerThanPow(rb.Op) {
				inner := promotePow(&ast.BinaryExpr{X: x, Op: token.XOR, Y: rb.X})
				return &ast.BinaryExpr{X: inner, Op: rb.Op, Y: rb.Y}
			}
		}
		n.X, n.Y = x, y
		return n
	case *ast.ParenExpr:
		n.X = promotePow(n.X)
		return n
	case *ast.UnaryExpr:
		n.X = promotePow(n.X)
		return n
	case *ast.CallExpr:
		for i, arg := range n.Args {
			n.Args[i] = promotePow(arg)
		}
		return n
	}
	return e
}

func weakerThanPow(op token.Token) bool {
	switch op {
	case token.ADD, token.SUB, token.MUL, token.QUO:
		return true
	}
	return false
}

// validate walks the tree once at construction time so that Eval can never
// hit an unrecognized token. It returns a description of the first
// offending node, or "".
func validate(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return fmt.Sprintf("unsupported literal %s", n.Value)
		}
		return ""
	case *ast.Ident:
		if _, ok := kinVar(n.Name); !ok {
			return fmt.Sprintf("unrecognized variable %q", n.Name)
		}
		return ""
	case *ast.ParenExpr:
		return validate(n.X)
	case *ast.UnaryExpr:
		if n.Op != token.ADD && n.Op != token.SUB {
			return fmt.Sprintf("unsupported unary operator %s", n.Op)
		}
		return validate(n.X)
	case *ast.BinaryExpr:
		switch n.Op {
		case token.ADD, token.SUB, token.MUL, token.QUO, token.XOR:
		default:
			return fmt.Sprintf("unsupported operator %s", n.Op)
		}
		if d := validate(n.X); d != "" {
			return d
		}
		return validate(n.Y)
	case *ast.CallExpr:
		id, ok := n.Fun.(*ast.Ident)
		if !ok {
			return "unsupported function call"
		}
		def, ok := formulaFuncs[id.Name]
		if !ok {
			return fmt.Sprintf("unrecognized function %q", id.Name)
		}
		if len(n.Args) != def.arity {
			return fmt.Sprintf("%s takes %d argument(s), got %d", id.Name, def.arity, len(n.Args))
		}
		for _, arg := range n.Args {
			if d := validate(arg); d != "" {
				return d
			}
		}
		return ""
	}
	return fmt.Sprintf("unsupported expression %T", e)
}

func evalExpr(e ast.Expr, k Kin) (float64, string) {
	switch n := e.(type) {
	case *ast.BasicLit:
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return 0, "bad literal " + n.Value
		}
		return v, ""
	case *ast.Ident:
		get, _ := kinVar(n.Name)
		return get(k), ""
	case *ast.ParenExpr:
		return evalExpr(n.X, k)
	case *ast.UnaryExpr:
		v, reason := evalExpr(n.X, k)
		if reason != "" {
			return 0, reason
		}
		if n.Op == token.SUB {
			return -v, ""
		}
		return v, ""
	case *ast.BinaryExpr:
		x, reason := evalExpr(n.X, k)
		if reason != "" {
			return 0, reason
		}
		y, reason := evalExpr(n.Y, k)
		if reason != "" {
			return 0, reason
		}
		switch n.Op {
		case token.ADD:
			return x + y, ""
		case token.SUB:
			return x - y, ""
		case token.MUL:
			return x * y, ""
		case token.QUO:
			if y == 0 {
				return 0, "division by zero"
			}
			return x / y, ""
		case token.XOR:
			return math.Pow(x, y), ""
		}
	case *ast.CallExpr:
		id := n.Fun.(*ast.Ident)
		args := make([]float64, len(n.Args))
		for i, arg := range n.Args {
			v, reason := evalExpr(arg, k)
			if reason != "" {
				return 0, reason
			}
			args[i] = v
		}
		return formulaFuncs[id.Name].fn(args)
	}
	return 0, "unsupported expression"
}
