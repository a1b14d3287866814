// Package index holds the VerifierIndex artifact (spec.md §3): the
// immutable, circuit-dependent public parameter set the verifier checks
// a proof against. Grounded on protocols/claim.go's Claim type (a small
// immutable struct with a Validate-then-Hash lifecycle) generalized from
// a STARK claim (program digest + public input/output) to a PLONK
// verifier index (circuit commitments + coordinate shifts + compiled
// linearization program).
package index

import (
	"fmt"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/curve"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/domain"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/expr"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/gate"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/lookup"
)

// LinearizationTerm pairs a commitment-selecting column with the token
// program whose evaluation becomes that column's MSM scalar (spec.md
// §4.5 step 3).
type LinearizationTerm[Fr any] struct {
	Column gate.Column
	Tokens []expr.Token[Fr]
}

// Linearization is the compiled program a VerifierIndex carries: a
// constant term plus the per-column index terms (spec.md §3, §4.5).
type Linearization[Fr any] struct {
	ConstantTerm []expr.Token[Fr]
	IndexTerms   []LinearizationTerm[Fr]
}

// ColumnCommitments groups every per-column commitment a VerifierIndex
// may hold, each present or explicitly absent per spec.md §3.
type ColumnCommitments[G any] struct {
	// Sigma holds all gate.Permuts (7) sigma commitments. Only the first
	// gate.Permuts-1 (6) ever appear with their own opened evaluation
	// (proof.EvalRow.S); the last is folded directly into the
	// permutation-argument scalar (constraints.PermScalars) and never
	// separately evaluated, mirroring kimchi's `sigma_comm[PERMUTS-1]`
	// special-cased in `f_comm` reconstruction (spec.md §4.5 step 1).
	Sigma              [gate.Permuts]curve.PolyComm[G]
	Coefficients       [gate.Columns]curve.PolyComm[G]
	Generic            *curve.PolyComm[G]
	Poseidon           *curve.PolyComm[G]
	CompleteAdd        *curve.PolyComm[G]
	VarBaseMul         *curve.PolyComm[G]
	EndoMul            *curve.PolyComm[G]
	EndoMulScalar      *curve.PolyComm[G]
	ChaCha             [4]*curve.PolyComm[G]
	RangeCheck         [2]*curve.PolyComm[G]
	ForeignFieldAdd    *curve.PolyComm[G]
}

// VerifierIndex is the immutable circuit-dependent parameter set (spec.md
// §3). It is created once per circuit and held read-only during
// verification (spec.md §5's "shared resources" rule).
type VerifierIndex[Fq any, Fr any, G any] struct {
	DomainSize  uint64 // n
	MaxPolySize uint64 // SRS chunking length
	PublicSize  int

	Domains domain.EvaluationDomains[Fr]

	// Shifts holds one coordinate shift per permuted column; Shifts[0] is
	// always the multiplicative identity (spec.md §3's r, o generalized to
	// gate.Permuts values, mirroring constraints.ConstraintSystem.Shifts).
	Shifts [gate.Permuts]Fr

	Columns ColumnCommitments[G]

	EndoR Fr // endomorphism scalar for the scalar-field side
	EndoQ Fq // endomorphism coefficient for the base-field side

	Zkpm []Fr // zero-knowledge-padding polynomial coefficients (d1-sized)

	Linearization Linearization[Fr]

	Lookup *lookup.Index[G]

	PrevChallengesExpected int

	SRSLength uint64
}

// Validate checks internal consistency the way protocols/claim.go's
// Validate() checks a Claim before it is used, surfacing structural
// mistakes before any Fiat-Shamir work begins.
func (vi VerifierIndex[Fq, Fr, G]) Validate() error {
	if vi.DomainSize == 0 || !domain.IsPowerOfTwo(vi.DomainSize) {
		return fmt.Errorf("index: domain size %d is not a power of two", vi.DomainSize)
	}
	if vi.MaxPolySize == 0 {
		return fmt.Errorf("index: max_poly_size must be nonzero")
	}
	if vi.PublicSize < 0 {
		return fmt.Errorf("index: negative public input size %d", vi.PublicSize)
	}
	if vi.SRSLength < vi.DomainSize {
		return fmt.Errorf("index: srs too small: length %d < domain size %d", vi.SRSLength, vi.DomainSize)
	}
	return nil
}

// Digest hashes every circuit-dependent public parameter into a single
// base-field value absorbed at the start of the transcript (spec.md §4.3
// step 2), mirroring protocols/claim.go's Claim.Hash(). The hash itself
// is delegated to a caller-supplied function because hashing group
// elements and field elements is a base-sponge concern (consumed, spec.md
// §6), not something this package re-implements.
func (vi VerifierIndex[Fq, Fr, G]) Digest(hash func(VerifierIndex[Fq, Fr, G]) Fq) Fq {
	return hash(vi)
}
