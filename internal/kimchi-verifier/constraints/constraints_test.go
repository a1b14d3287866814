package constraints_test

import (
	"testing"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/backend/bn254"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/constraints"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/gate"
)

func genericGates(n int) []gate.Gate {
	gates := make([]gate.Gate, n)
	for i := range gates {
		var wires [gate.Permuts]gate.Port
		for c := 0; c < gate.Permuts; c++ {
			pos := uint64(c)*uint64(n) + uint64(i)
			wires[c] = gate.Port{Local: pos, WiredTo: pos}
		}
		gates[i] = gate.Gate{Kind: gate.Generic, Wires: wires}
	}
	return gates
}

func create(t *testing.T, gates []gate.Gate) *constraints.ConstraintSystem[bn254.ScalarElement] {
	t.Helper()
	cs, err := constraints.Create[bn254.ScalarElement](
		gates, 0, nil, nil, bn254.ScalarFactory{}, bn254.NewDomain,
	)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return cs
}

func TestCreatePadsToPowerOfTwo(t *testing.T) {
	cs := create(t, genericGates(3))
	if cs.N != 4 {
		t.Fatalf("N = %d, want 4 (next power of two after 3 gates)", cs.N)
	}
	if uint64(len(cs.Gates)) != cs.N {
		t.Fatalf("len(Gates) = %d, want %d", len(cs.Gates), cs.N)
	}
}

// TestPaddingIdempotence checks the padding half of spec.md §8's
// padding-idempotence property: every padded row in [k, n) is a Zero gate
// whose wires self-loop at the padded stride n. It does not check that
// every position of the whole wiring table is targeted exactly once.
func TestPaddingIdempotence(t *testing.T) {
	k := 3
	cs := create(t, genericGates(k))
	n := cs.N
	for i := k; i < int(n); i++ {
		g := cs.Gates[i]
		if g.Kind != gate.Zero {
			t.Fatalf("padded gate %d has kind %s, want Zero", i, g.Kind)
		}
		for c := 0; c < gate.Permuts; c++ {
			pos := uint64(c)*n + uint64(i)
			if g.Wires[c].Local != pos || g.Wires[c].WiredTo != pos {
				t.Fatalf("padded gate %d column %d is not self-looped: %+v", i, c, g.Wires[c])
			}
		}
	}
}

// TestShiftNonResidue checks spec.md §8's shift-non-residue property:
// Shifts[0] is the identity, every other shift is a quadratic
// non-residue outside d1, and all shifts are pairwise distinct.
func TestShiftNonResidue(t *testing.T) {
	cs := create(t, genericGates(4))
	one := bn254.ScalarFactory{}.One()
	if cs.Shifts[0] != one {
		t.Fatalf("Shifts[0] = %v, want the multiplicative identity", cs.Shifts[0])
	}

	d1 := cs.Domains.D1
	inD1 := func(x bn254.ScalarElement) bool {
		g := d1.Generator()
		pow := one
		for i := uint64(0); i < d1.Size(); i++ {
			if pow == x {
				return true
			}
			pow = pow.Mul(g)
		}
		return false
	}

	seen := map[bn254.ScalarElement]bool{cs.Shifts[0]: true}
	for i := 1; i < gate.Permuts; i++ {
		s := cs.Shifts[i]
		if s.Legendre() != -1 {
			t.Fatalf("Shifts[%d] is not a quadratic non-residue", i)
		}
		if inD1(s) {
			t.Fatalf("Shifts[%d] lies inside d1", i)
		}
		if seen[s] {
			t.Fatalf("Shifts[%d] duplicates an earlier shift", i)
		}
		seen[s] = true
	}
}

func f(x uint64) bn254.ScalarElement { return bn254.ScalarFactory{}.FromUint64(x) }

func TestPermScalarsLengthMismatch(t *testing.T) {
	_, err := constraints.PermScalars(f(1), f(1), f(1), f(1), []bn254.ScalarElement{f(1)}, nil, f(1), f(1), f(1))
	if err == nil {
		t.Fatal("expected an error for mismatched sigma/witness evaluation lengths")
	}
}

func TestPermScalarsArithmetic(t *testing.T) {
	// result = -(wLast + betaZeta + gamma) * alpha0 * zkp * zOmega * Π(w_i + beta*sigma_i + gamma)
	wLast, betaZeta, beta, gamma := f(2), f(3), f(5), f(7)
	sigmaEvals := []bn254.ScalarElement{f(11)}
	wEvals := []bn254.ScalarElement{f(13)}
	alpha0, zkp, zOmega := f(1), f(1), f(1)

	got, err := constraints.PermScalars(wLast, betaZeta, beta, gamma, sigmaEvals, wEvals, alpha0, zkp, zOmega)
	if err != nil {
		t.Fatalf("PermScalars: %v", err)
	}

	lead := wLast.Add(betaZeta).Add(gamma).Neg()     // -(2+3+7) = -12
	term := wEvals[0].Add(beta.Mul(sigmaEvals[0])).Add(gamma) // 13 + 5*11 + 7 = 75
	want := lead.Mul(term)

	if got != want {
		t.Fatalf("PermScalars mismatch: got %v, want %v", got, want)
	}
}

// TestDomainConsistency checks spec.md §8's domain-consistency property:
// d1 has size N, d2=2N, and d3=d4=4N (3N rounded up to the next power of
// two, per domain.Derive).
func TestDomainConsistency(t *testing.T) {
	cs := create(t, genericGates(4))
	n := cs.N
	if got := cs.Domains.D1.Size(); got != n {
		t.Fatalf("D1.Size() = %d, want %d", got, n)
	}
	if got := cs.Domains.D2.Size(); got != 2*n {
		t.Fatalf("D2.Size() = %d, want %d", got, 2*n)
	}
	if got := cs.Domains.D3.Size(); got != 4*n {
		t.Fatalf("D3.Size() = %d, want %d (3N rounded up to the next power of two)", got, 4*n)
	}
	if got := cs.Domains.D4.Size(); got != 4*n {
		t.Fatalf("D4.Size() = %d, want %d", got, 4*n)
	}
}

// selectorByKind finds the compiled Selector for kind, failing the test if
// Create did not emit one.
func selectorByKind(t *testing.T, cs *constraints.ConstraintSystem[bn254.ScalarElement], kind constraints.SelectorKind) constraints.Selector[bn254.ScalarElement] {
	t.Helper()
	for _, s := range cs.Selectors {
		if s.Kind == kind {
			return s
		}
	}
	t.Fatalf("no selector compiled for kind %v", kind)
	return constraints.Selector[bn254.ScalarElement]{}
}

// TestSelectorRoundTrip checks spec.md §8's selector round-trip property:
// interpolating a selector's per-gate coefficients on d1 and evaluating
// the result back on d1 must reproduce the original coefficient vector.
func TestSelectorRoundTrip(t *testing.T) {
	n := 4
	gates := make([]gate.Gate, n)
	want := make([]bn254.ScalarElement, n)
	for i := range gates {
		var wires [gate.Permuts]gate.Port
		for c := 0; c < gate.Permuts; c++ {
			pos := uint64(c)*uint64(n) + uint64(i)
			wires[c] = gate.Port{Local: pos, WiredTo: pos}
		}
		// QL (index 0) carries i+1; every other selector coefficient is 0.
		gates[i] = gate.Gate{Kind: gate.Generic, Wires: wires, Coefficients: []uint64{uint64(i + 1), 0, 0, 0, 0}}
		want[i] = f(uint64(i + 1))
	}

	cs := create(t, gates)
	ql := selectorByKind(t, cs, constraints.QL)

	got := cs.Domains.D1.Evaluate(ql.D1)
	if len(got) != len(want) {
		t.Fatalf("round-tripped QL selector has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("QL selector round-trip[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// crossWiredGates builds n self-looped generic gates except column 0 of
// the first two rows, which are copy-constrained to each other — a real
// permutation cycle rather than every genericGates self-loop.
func crossWiredGates(n int) []gate.Gate {
	gates := genericGates(n)
	pos0 := uint64(0)*uint64(n) + 0
	pos1 := uint64(0)*uint64(n) + 1
	gates[0].Wires[0] = gate.Port{Local: pos0, WiredTo: pos1}
	gates[1].Wires[0] = gate.Port{Local: pos1, WiredTo: pos0}
	return gates
}

// TestPermutationRoundTrip checks spec.md §8's permutation round-trip
// property (ConstraintSystem.Verify, the witness self-check): a witness
// honoring every copy constraint verifies, and breaking one is detected.
func TestPermutationRoundTrip(t *testing.T) {
	cs := create(t, crossWiredGates(2))
	n := cs.N

	witness := make([]bn254.ScalarElement, uint64(gate.Permuts)*n)
	shared := f(5)
	witness[0*n+0] = shared
	witness[0*n+1] = shared
	for c := 1; c < gate.Permuts; c++ {
		for i := uint64(0); i < n; i++ {
			witness[uint64(c)*n+i] = f(uint64(c)*100 + i)
		}
	}

	if err := cs.Verify(witness, nil); err != nil {
		t.Fatalf("Verify on a consistent witness: %v", err)
	}

	witness[0*n+1] = f(6) // break the column-0 row0<->row1 copy constraint
	if err := cs.Verify(witness, nil); err == nil {
		t.Fatal("expected an error for a witness violating a copy constraint")
	}
}

func TestGnrcScalars(t *testing.T) {
	alpha, w0, w1, w2, gs, one := f(2), f(3), f(5), f(7), f(11), f(1)
	got := constraints.GnrcScalars(alpha, w0, w1, w2, gs, one)
	if len(got) != 6 {
		t.Fatalf("GnrcScalars returned %d values, want 6", len(got))
	}
	want := []bn254.ScalarElement{
		gs,
		alpha.Mul(w0),
		alpha.Mul(w1),
		alpha.Mul(w2),
		alpha.Mul(w0).Mul(w1),
		alpha.Mul(one),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GnrcScalars[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
