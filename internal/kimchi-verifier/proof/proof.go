// Package proof holds the ProverProof data model (spec.md §3). Grounded
// on protocols/proof.go's tagged-item Proof/ProofItem shape, replaced
// here by the concrete kimchi record layout (commitments + two-point
// evaluations + opening proof) since this spec's proof shape is fixed,
// not a generic tagged stream.
package proof

import (
	"fmt"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/curve"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/gate"
)

// EvalRow is one row's worth of scalar-field evaluations: z, the generic
// and Poseidon selectors, the COLUMNS witness values, and the
// PERMUTS-1 committed sigma evaluations, plus an optional lookup block.
// Mirrors spec.md §3's `evals[row]` shape.
type EvalRow[Fr any] struct {
	Z                Fr
	GenericSelector  Fr
	PoseidonSelector Fr
	W                [gate.Columns]Fr
	S                [gate.Permuts - 1]Fr
	Lookup           *LookupEvalRow[Fr]
}

// LookupEvalRow is the optional lookup-argument evaluation block absorbed
// by absorb_evaluations (spec.md §4.2) and used in batch assembly
// (spec.md §4.6 step 9).
type LookupEvalRow[Fr any] struct {
	Sorted  []Fr
	Aggreg  Fr
	Table   Fr
	Runtime *Fr
}

// Cell implements expr.CellSource, letting the linearization evaluator
// pull a named column's value off this row without either package
// depending on the other's concrete types.
func (r EvalRow[Fr]) Cell(c gate.Column, _ gate.Row) (Fr, error) {
	var zero Fr
	switch c.Tag {
	case gate.ColWitness:
		if c.Index < 0 || c.Index >= gate.Columns {
			return zero, fmt.Errorf("witness column %d out of range", c.Index)
		}
		return r.W[c.Index], nil
	case gate.ColZ:
		return r.Z, nil
	case gate.ColLookupSorted:
		if r.Lookup == nil || c.Index < 0 || c.Index >= len(r.Lookup.Sorted) {
			return zero, fmt.Errorf("lookup sorted column %d unavailable", c.Index)
		}
		return r.Lookup.Sorted[c.Index], nil
	case gate.ColLookupAggreg:
		if r.Lookup == nil {
			return zero, fmt.Errorf("lookup aggregation column unavailable")
		}
		return r.Lookup.Aggreg, nil
	case gate.ColLookupTable:
		if r.Lookup == nil {
			return zero, fmt.Errorf("lookup table column unavailable")
		}
		return r.Lookup.Table, nil
	case gate.ColLookupRuntimeTable:
		if r.Lookup == nil || r.Lookup.Runtime == nil {
			return zero, fmt.Errorf("lookup runtime column unavailable")
		}
		return *r.Lookup.Runtime, nil
	default:
		return zero, fmt.Errorf("column %+v is not directly cell-addressable", c)
	}
}

// CellAt indexes evals[row] the way Cell expects its caller to, selecting
// which row's EvalRow to read from before delegating.
func CellAt[Fr any](evals [2]EvalRow[Fr], c gate.Column, r gate.Row) (Fr, error) {
	return evals[r].Cell(c, r)
}

// Commitments bundles every polynomial commitment a ProverProof carries.
type Commitments[G any] struct {
	W      [gate.Columns]curve.PolyComm[G]
	Z      curve.PolyComm[G]
	T      curve.PolyComm[G] // chunked into gate.Permuts pieces, see spec.md §7 IncorrectCommitmentLength("t")
	Lookup *LookupCommitments[G]
}

// LookupCommitments is the optional lookup-argument commitment set.
type LookupCommitments[G any] struct {
	Sorted  []curve.PolyComm[G]
	Aggreg  curve.PolyComm[G]
	Runtime *curve.PolyComm[G]
}

// RecursionChallenge is one previous-round folding challenge carried
// forward for verification, per spec.md §3/§4.3 step 3.
type RecursionChallenge[Fr any, G any] struct {
	Chals []Fr
	Comm  curve.PolyComm[G]
}

// ProverProof is the full artifact the verifier protocol consumes.
type ProverProof[Fq any, Fr any, G any] struct {
	PublicInput    []Fr
	Commitments    Commitments[G]
	Evals          [2]EvalRow[Fr] // [0] = at ζ, [1] = at ζω
	FtEval1        Fr             // ft(ζω)
	Opening        curve.OpeningProof
	PrevChallenges []RecursionChallenge[Fr, G]
}
