package expr_test

import (
	"errors"
	"testing"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/backend/bn254"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/expr"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/gate"
)

type fakeCells struct {
	curr, next map[gate.Column]bn254.ScalarElement
}

func (c fakeCells) Cell(col gate.Column, row gate.Row) (bn254.ScalarElement, error) {
	m := c.curr
	if row == gate.Next {
		m = c.next
	}
	v, ok := m[col]
	if !ok {
		return bn254.ScalarElement{}, errors.New("cell not found")
	}
	return v, nil
}

func f(x uint64) bn254.ScalarElement { return bn254.ScalarFactory{}.FromUint64(x) }

func TestEvaluateArithmetic(t *testing.T) {
	// (2 + 3) * 4 - 1 = 19
	tokens := []expr.Token[bn254.ScalarElement]{
		expr.Literal(f(2)),
		expr.Literal(f(3)),
		expr.Add[bn254.ScalarElement](),
		expr.Literal(f(4)),
		expr.Mul[bn254.ScalarElement](),
		expr.Literal(f(1)),
		expr.Sub[bn254.ScalarElement](),
	}
	got, err := expr.Evaluate(tokens, fakeCells{}, expr.Constants[bn254.ScalarElement]{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != f(19) {
		t.Fatalf("got %v, want 19", got)
	}
}

func TestEvaluateCellAndStoreLoad(t *testing.T) {
	cells := fakeCells{curr: map[gate.Column]bn254.ScalarElement{gate.Witness(0): f(7)}}
	// push witness[0], store it in slot 0 (Store leaves it on the stack),
	// load it back, multiply.
	tokens := []expr.Token[bn254.ScalarElement]{
		expr.Cell[bn254.ScalarElement](gate.Witness(0), gate.Curr),
		expr.Store[bn254.ScalarElement](0),
		expr.Load[bn254.ScalarElement](0),
		expr.Mul[bn254.ScalarElement](),
	}
	got, err := expr.Evaluate(tokens, cells, expr.Constants[bn254.ScalarElement]{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != f(49) {
		t.Fatalf("got %v, want 49", got)
	}
}

func TestEvaluateConstantsAndMds(t *testing.T) {
	c := expr.Constants[bn254.ScalarElement]{
		Alpha:           f(2),
		Beta:            f(3),
		Gamma:           f(5),
		JointCombiner:   f(7),
		EndoCoefficient: f(11),
		Mds: func(i, j int) bn254.ScalarElement {
			return f(uint64(i*10 + j))
		},
		VanishesOnLast4: f(13),
	}
	tokens := []expr.Token[bn254.ScalarElement]{
		expr.Alpha[bn254.ScalarElement](),
		expr.Beta[bn254.ScalarElement](),
		expr.Add[bn254.ScalarElement](),
		expr.Gamma[bn254.ScalarElement](),
		expr.Add[bn254.ScalarElement](),
		expr.JointCombiner[bn254.ScalarElement](),
		expr.Add[bn254.ScalarElement](),
		expr.EndoCoefficient[bn254.ScalarElement](),
		expr.Add[bn254.ScalarElement](),
		expr.Mds[bn254.ScalarElement](1, 2),
		expr.Add[bn254.ScalarElement](),
		expr.VanishesOnLast4Rows[bn254.ScalarElement](),
		expr.Add[bn254.ScalarElement](),
	}
	got, err := expr.Evaluate(tokens, fakeCells{}, c)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// 2+3+5+7+11+12+13 = 53
	if got != f(53) {
		t.Fatalf("got %v, want 53", got)
	}
}

func TestEvaluatePow(t *testing.T) {
	tokens := []expr.Token[bn254.ScalarElement]{
		expr.Literal(f(3)),
		expr.Pow[bn254.ScalarElement](4),
	}
	got, err := expr.Evaluate(tokens, fakeCells{}, expr.Constants[bn254.ScalarElement]{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != f(81) {
		t.Fatalf("got %v, want 81", got)
	}
}

func TestEvaluateMissingCellErrors(t *testing.T) {
	tokens := []expr.Token[bn254.ScalarElement]{
		expr.Cell[bn254.ScalarElement](gate.Witness(3), gate.Curr),
	}
	if _, err := expr.Evaluate(tokens, fakeCells{}, expr.Constants[bn254.ScalarElement]{}); err == nil {
		t.Fatal("expected an error for an unresolved cell")
	}
}

func TestEvaluateUnbalancedStackErrors(t *testing.T) {
	tokens := []expr.Token[bn254.ScalarElement]{
		expr.Literal(f(1)),
		expr.Literal(f(2)),
	}
	if _, err := expr.Evaluate(tokens, fakeCells{}, expr.Constants[bn254.ScalarElement]{}); err == nil {
		t.Fatal("expected an error when the program leaves more than one value on the stack")
	}
}

func TestEvaluateEmptyStackPopErrors(t *testing.T) {
	tokens := []expr.Token[bn254.ScalarElement]{
		expr.Add[bn254.ScalarElement](),
	}
	if _, err := expr.Evaluate(tokens, fakeCells{}, expr.Constants[bn254.ScalarElement]{}); err == nil {
		t.Fatal("expected an error popping an empty stack")
	}
}
