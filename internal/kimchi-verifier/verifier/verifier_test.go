package verifier_test

import (
	"errors"
	"testing"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/backend/bn254"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/curve"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/domain"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/expr"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/gate"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/index"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/lookup"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/proof"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/sponge"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/verifier"
)

type fq = bn254.BaseElement
type frElem = bn254.ScalarElement
type pt = bn254.Point

func f(x uint64) frElem { return bn254.ScalarFactory{}.FromUint64(x) }

// fakeOpener lets tests decide whether a batched opening is accepted
// without implementing any real inner-product argument.
type fakeOpener struct {
	ok  bool
	err error
}

func (o fakeOpener) Verify(_ []curve.EvaluationQuery[frElem, pt], _ curve.OpeningProof, _, _ frElem) (bool, error) {
	return o.ok, o.err
}

func endomorphism() sponge.DefaultEndomorphism[frElem] {
	f := bn254.ScalarFactory{}
	return sponge.DefaultEndomorphism[frElem]{Zero: f.Zero(), One: f.One()}
}

func newVerifier(t *testing.T, opener curve.Opener[frElem, frElem, pt]) *verifier.Verifier[fq, frElem, pt] {
	t.Helper()
	hooks := verifier.Hooks[fq, frElem, pt]{
		FqFactory:    bn254.BaseFactory{},
		FrFactory:    bn254.ScalarFactory{},
		NewFqSponge:  func() sponge.Backend[fq] { return bn254.NewBaseSponge() },
		NewFrSponge:  func() sponge.Backend[frElem] { return bn254.NewScalarSponge() },
		Endomorphism: endomorphism(),
		IndexDigest: func(index.VerifierIndex[fq, frElem, pt]) fq {
			return bn254.BaseFactory{}.Zero()
		},
		PublicCommitment: func(_ index.VerifierIndex[fq, frElem, pt], _ []frElem) (curve.PolyComm[pt], error) {
			return curve.PolyComm[pt]{}, nil
		},
		Mds:             func(int, int) frElem { return bn254.ScalarFactory{}.Zero() },
		EndoCoefficient: bn254.ScalarFactory{}.Zero(),
		Opener:          opener,
	}
	vf, err := verifier.New[fq, frElem, pt](hooks, verifier.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return vf
}

// minimalIndex builds a structurally valid, lookup-free VerifierIndex for
// a single-gate domain of size n=4. Only D1 is populated since nothing in
// the verify pipeline reaches D2-D4 once lookup is disabled.
func minimalIndex(t *testing.T) index.VerifierIndex[fq, frElem, pt] {
	t.Helper()
	d1, err := bn254.NewDomain(4)
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}
	var shifts [gate.Permuts]frElem
	shifts[0] = f(1)
	for i := 1; i < gate.Permuts; i++ {
		shifts[i] = f(uint64(2 + i))
	}
	return index.VerifierIndex[fq, frElem, pt]{
		DomainSize:  4,
		MaxPolySize: 4,
		PublicSize:  0,
		Domains:     domain.EvaluationDomains[frElem]{D1: d1},
		Shifts:      shifts,
		EndoR:       f(0),
		EndoQ:       bn254.BaseFactory{}.Zero(),
		Zkpm:        nil,
		Linearization: index.Linearization[frElem]{
			ConstantTerm: []expr.Token[frElem]{expr.Literal(f(0))},
		},
		SRSLength: 4,
	}
}

// minimalProof builds a structurally valid, lookup-free ProverProof
// matching minimalIndex: zero-valued field evaluations and identity-point
// commitments throughout, except for the t-commitment's chunk count,
// which must be exactly gate.Permuts per spec.md §7's
// IncorrectCommitmentLength("t") check.
func minimalProof() proof.ProverProof[fq, frElem, pt] {
	return proof.ProverProof[fq, frElem, pt]{
		Commitments: proof.Commitments[pt]{
			T: curve.PolyComm[pt]{Unshifted: make([]pt, gate.Permuts)},
		},
	}
}

func minimalBatch(t *testing.T) verifier.BatchInput[fq, frElem, pt] {
	t.Helper()
	return verifier.BatchInput[fq, frElem, pt]{
		Index:        minimalIndex(t),
		Proof:        minimalProof(),
		SRSLength:    4,
		SRSMaxDegree: 4,
	}
}

func TestBatchVerifyEmptyBatchSucceeds(t *testing.T) {
	vf := newVerifier(t, fakeOpener{ok: true})
	if err := vf.BatchVerify(nil); err != nil {
		t.Fatalf("BatchVerify(nil) = %v, want nil", err)
	}
}

func TestBatchVerifyDifferentSRSLengths(t *testing.T) {
	vf := newVerifier(t, fakeOpener{ok: true})
	a := minimalBatch(t)
	b := minimalBatch(t)
	b.SRSLength = a.SRSLength + 1

	err := vf.BatchVerify([]verifier.BatchInput[fq, frElem, pt]{a, b})
	if !errors.Is(err, verifier.ErrDifferentSRS) {
		t.Fatalf("BatchVerify = %v, want ErrDifferentSRS", err)
	}
}

func TestVerifySRSTooSmall(t *testing.T) {
	vf := newVerifier(t, fakeOpener{ok: true})
	b := minimalBatch(t)
	b.SRSMaxDegree = b.Index.DomainSize - 1

	err := vf.Verify(b)
	if !errors.Is(err, verifier.ErrSRSTooSmall) {
		t.Fatalf("Verify = %v, want ErrSRSTooSmall", err)
	}
}

func TestVerifyIncorrectPublicInputLength(t *testing.T) {
	vf := newVerifier(t, fakeOpener{ok: true})
	b := minimalBatch(t)
	b.Index.PublicSize = 1 // proof still declares zero public inputs

	err := vf.Verify(b)
	if !errors.Is(err, verifier.ErrIncorrectPublicInputLength) {
		t.Fatalf("Verify = %v, want ErrIncorrectPublicInputLength", err)
	}
}

func TestVerifyIncorrectCommitmentLength(t *testing.T) {
	vf := newVerifier(t, fakeOpener{ok: true})
	b := minimalBatch(t)
	b.Proof.Commitments.T.Unshifted = b.Proof.Commitments.T.Unshifted[:gate.Permuts-1]

	err := vf.Verify(b)
	if !errors.Is(err, verifier.ErrIncorrectCommitmentLength) {
		t.Fatalf("Verify = %v, want ErrIncorrectCommitmentLength", err)
	}
}

func TestVerifyLookupCommitmentMissing(t *testing.T) {
	vf := newVerifier(t, fakeOpener{ok: true})
	b := minimalBatch(t)
	b.Index.Lookup = &lookup.Index[pt]{}
	// b.Proof.Commitments.Lookup left nil.

	err := vf.Verify(b)
	if !errors.Is(err, verifier.ErrLookupCommitmentMissing) {
		t.Fatalf("Verify = %v, want ErrLookupCommitmentMissing", err)
	}
}

// TestVerifyHonestMinimalProofPasses exercises the full oracle-derivation,
// linearization and batch-assembly pipeline end to end for a trivial
// all-zero circuit, deferring only the final opening check to a fake
// Opener (the opening argument itself is out of scope).
func TestVerifyHonestMinimalProofPasses(t *testing.T) {
	vf := newVerifier(t, fakeOpener{ok: true})
	b := minimalBatch(t)
	if err := vf.Verify(b); err != nil {
		t.Fatalf("Verify = %v, want nil", err)
	}
}

// TestVerifyRejectsFailedOpening checks that a negative opener verdict
// surfaces as ErrOpenProof even though every structural check upstream
// passed.
func TestVerifyRejectsFailedOpening(t *testing.T) {
	vf := newVerifier(t, fakeOpener{ok: false})
	b := minimalBatch(t)

	err := vf.Verify(b)
	if !errors.Is(err, verifier.ErrOpenProof) {
		t.Fatalf("Verify = %v, want ErrOpenProof", err)
	}
}

// TestVerifyDeterministic checks spec.md §8's "the verifier is a pure
// function of (index, proof)" property: the same input, run twice, must
// reach the same verdict.
func TestVerifyDeterministic(t *testing.T) {
	vf := newVerifier(t, fakeOpener{ok: true})
	b := minimalBatch(t)

	err1 := vf.Verify(b)
	err2 := vf.Verify(b)
	if (err1 == nil) != (err2 == nil) {
		t.Fatalf("Verify is not deterministic: first = %v, second = %v", err1, err2)
	}
}
