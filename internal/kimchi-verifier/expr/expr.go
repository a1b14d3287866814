// Package expr is the Linearization Evaluator (LE): a tokenized
// reverse-Polish instruction set and the small stack machine that
// interprets it (spec.md §4.4). No teacher file models this — the gate
// set here is circuit-dependent and only known at index-build time, so a
// flat token vector plus a tight-dispatch stack machine is used instead
// of per-token virtual calls, per spec.md §9's explicit steer away from
// the visitor pattern. The plain switch-on-tag shape matches the low
// abstraction the rest of the adapted teacher code uses (e.g.
// protocols/proof.go's ProofItemType switch).
package expr

import (
	"fmt"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/field"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/gate"
)

// Op is the token opcode.
type Op int

const (
	OpLiteral Op = iota
	OpCell
	OpDup
	OpPow
	OpAdd
	OpSub
	OpMul
	OpNeg
	OpStore
	OpLoad
	OpAlpha
	OpBeta
	OpGamma
	OpJointCombiner
	OpEndoCoefficient
	OpMds
	OpVanishesOnLast4Rows
)

// Token is one reverse-Polish instruction. Only the fields relevant to Op
// are populated; this mirrors kimchi's `PolishToken` enum collapsed into
// a single tagged struct, which is friendlier to a Go switch than an
// interface-per-variant hierarchy would be.
type Token[F any] struct {
	Op     Op
	Lit    F          // OpLiteral
	Column gate.Column // OpCell
	Row    gate.Row    // OpCell
	K      int         // OpPow exponent, OpStore/OpLoad slot
	I, J   int         // OpMds indices
}

func Literal[F any](v F) Token[F] { return Token[F]{Op: OpLiteral, Lit: v} }
func Cell[F any](c gate.Column, r gate.Row) Token[F] {
	return Token[F]{Op: OpCell, Column: c, Row: r}
}
func Dup[F any]() Token[F]                   { return Token[F]{Op: OpDup} }
func Pow[F any](k int) Token[F]               { return Token[F]{Op: OpPow, K: k} }
func Add[F any]() Token[F]                    { return Token[F]{Op: OpAdd} }
func Sub[F any]() Token[F]                    { return Token[F]{Op: OpSub} }
func Mul[F any]() Token[F]                    { return Token[F]{Op: OpMul} }
func Neg[F any]() Token[F]                    { return Token[F]{Op: OpNeg} }
func Store[F any](slot int) Token[F]          { return Token[F]{Op: OpStore, K: slot} }
func Load[F any](slot int) Token[F]           { return Token[F]{Op: OpLoad, K: slot} }
func Alpha[F any]() Token[F]                  { return Token[F]{Op: OpAlpha} }
func Beta[F any]() Token[F]                   { return Token[F]{Op: OpBeta} }
func Gamma[F any]() Token[F]                  { return Token[F]{Op: OpGamma} }
func JointCombiner[F any]() Token[F]          { return Token[F]{Op: OpJointCombiner} }
func EndoCoefficient[F any]() Token[F]        { return Token[F]{Op: OpEndoCoefficient} }
func Mds[F any](i, j int) Token[F]            { return Token[F]{Op: OpMds, I: i, J: j} }
func VanishesOnLast4Rows[F any]() Token[F]    { return Token[F]{Op: OpVanishesOnLast4Rows} }

// CellSource is whatever can answer "give me the value of this column on
// this row" — satisfied by the proof package's evaluation record, kept as
// an interface here so expr never has to import proof (which would cycle
// back through expr for linearization terms).
type CellSource[F any] interface {
	Cell(c gate.Column, r gate.Row) (F, error)
}

// Constants bundles the named oracle values and circuit constants the
// token machine can reference without threading a dozen parameters
// through every call (spec.md §4.4's Alpha/Beta/Gamma/JointCombiner/
// EndoCoefficient/Mds/VanishesOnLast4Rows tokens).
type Constants[F any] struct {
	Alpha           F
	Beta            F
	Gamma           F
	JointCombiner   F
	EndoCoefficient F
	Mds             func(i, j int) F
	// VanishesOnLast4 is (ζ^n - 1) / (ζ - ω^{n-4})·(ζ - ω^{n-3})·(ζ - ω^{n-2})·(ζ - ω^{n-1}),
	// precomputed by the caller since it depends on the evaluation
	// domain's generator and is reused by several tokens.
	VanishesOnLast4 F
}

// Evaluate runs a token program against a stack machine, per spec.md
// §4.4. The store/load slots back a small fixed scratch array rather than
// a map, since real linearization programs never need more than a
// handful of temporaries.
func Evaluate[F field.Element[F]](tokens []Token[F], cells CellSource[F], c Constants[F]) (F, error) {
	var zero F
	var stack []F
	var scratch [8]F

	push := func(v F) { stack = append(stack, v) }
	pop := func() (F, error) {
		if len(stack) == 0 {
			return zero, fmt.Errorf("expr: pop on empty stack")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for _, t := range tokens {
		switch t.Op {
		case OpLiteral:
			push(t.Lit)
		case OpCell:
			v, err := cells.Cell(t.Column, t.Row)
			if err != nil {
				return zero, fmt.Errorf("expr: cell %+v: %w", t.Column, err)
			}
			push(v)
		case OpDup:
			v, err := pop()
			if err != nil {
				return zero, err
			}
			push(v)
			push(v)
		case OpPow:
			v, err := pop()
			if err != nil {
				return zero, err
			}
			push(v.Pow(uint64(t.K)))
		case OpAdd:
			b, err := pop()
			if err != nil {
				return zero, err
			}
			a, err := pop()
			if err != nil {
				return zero, err
			}
			push(a.Add(b))
		case OpSub:
			b, err := pop()
			if err != nil {
				return zero, err
			}
			a, err := pop()
			if err != nil {
				return zero, err
			}
			push(a.Sub(b))
		case OpMul:
			b, err := pop()
			if err != nil {
				return zero, err
			}
			a, err := pop()
			if err != nil {
				return zero, err
			}
			push(a.Mul(b))
		case OpNeg:
			a, err := pop()
			if err != nil {
				return zero, err
			}
			push(a.Neg())
		case OpStore:
			if t.K < 0 || t.K >= len(scratch) {
				return zero, fmt.Errorf("expr: store slot %d out of range", t.K)
			}
			v, err := pop()
			if err != nil {
				return zero, err
			}
			scratch[t.K] = v
			push(v)
		case OpLoad:
			if t.K < 0 || t.K >= len(scratch) {
				return zero, fmt.Errorf("expr: load slot %d out of range", t.K)
			}
			push(scratch[t.K])
		case OpAlpha:
			push(c.Alpha)
		case OpBeta:
			push(c.Beta)
		case OpGamma:
			push(c.Gamma)
		case OpJointCombiner:
			push(c.JointCombiner)
		case OpEndoCoefficient:
			push(c.EndoCoefficient)
		case OpMds:
			if c.Mds == nil {
				return zero, fmt.Errorf("expr: Mds constant table not supplied")
			}
			push(c.Mds(t.I, t.J))
		case OpVanishesOnLast4Rows:
			push(c.VanishesOnLast4)
		default:
			return zero, fmt.Errorf("expr: unknown opcode %d", t.Op)
		}
	}

	if len(stack) != 1 {
		return zero, fmt.Errorf("expr: program left %d values on the stack, want 1", len(stack))
	}
	return stack[0], nil
}
