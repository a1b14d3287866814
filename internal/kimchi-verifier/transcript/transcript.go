// Package transcript is the Transcript (T) component (spec.md §4.2): the
// dual-sponge Fiat-Shamir orchestrator. Grounded on
// protocols/proof_stream.go's ProofStream (absorb-on-enqueue, a single
// running sponge) and utils/channel.go's Channel (hash dispatch,
// ReceiveRandom* squeeze helpers), generalized from one sponge to the
// base-field/scalar-field pair spec.md §4.2 requires.
package transcript

import (
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/field"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/gate"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/proof"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/sponge"
)

// Transcript runs the two sponges of spec.md §4.2: FqSponge absorbs base
// field elements and group-element coordinates; FrSponge absorbs
// scalar-field elements. Both squeeze truncated ScalarChallenge values.
type Transcript[Fq field.Element[Fq], Fr field.Element[Fr]] struct {
	fq        sponge.Backend[Fq]
	fr        sponge.Backend[Fr]
	fqFactory field.Factory[Fq]
	frFactory field.Factory[Fr]
}

// New builds a Transcript from fresh base/scalar sponges, mirroring
// protocols/proof_stream.go's NewProofStream constructor shape.
func New[Fq field.Element[Fq], Fr field.Element[Fr]](
	fq sponge.Backend[Fq],
	fr sponge.Backend[Fr],
	fqFactory field.Factory[Fq],
	frFactory field.Factory[Fr],
) *Transcript[Fq, Fr] {
	return &Transcript[Fq, Fr]{fq: fq, fr: fr, fqFactory: fqFactory, frFactory: frFactory}
}

// NewFqOnly starts a Transcript with only its base-field sponge live,
// matching the real pipeline's shape: the Fr sponge does not exist yet
// until the digest bridge (spec.md §4.3 step 13) splices one in via
// BeginFr.
func NewFqOnly[Fq field.Element[Fq], Fr field.Element[Fr]](
	fq sponge.Backend[Fq],
	fqFactory field.Factory[Fq],
) *Transcript[Fq, Fr] {
	return &Transcript[Fq, Fr]{fq: fq, fqFactory: fqFactory}
}

// BeginFr supplies the Fr sponge once it exists (spec.md §4.3 step 13).
func (t *Transcript[Fq, Fr]) BeginFr(fr sponge.Backend[Fr], frFactory field.Factory[Fr]) {
	t.fr = fr
	t.frFactory = frFactory
}

// AbsorbFq absorbs base-field scalars into the Fq sponge (spec.md §4.2's
// absorb_fq).
func (t *Transcript[Fq, Fr]) AbsorbFq(vals ...Fq) {
	t.fq.AbsorbMany(vals)
}

// AbsorbG absorbs a group element's affine coordinates into the Fq
// sponge, converting each coordinate's canonical byte encoding into a
// base-field element via the supplied factory (spec.md §4.2's absorb_g).
func AbsorbG[Fq field.Element[Fq], Fr field.Element[Fr], G interface {
	Coordinates() (x, y []byte)
}](t *Transcript[Fq, Fr], points ...G) {
	for _, p := range points {
		x, y := p.Coordinates()
		t.fq.Absorb(t.fqFactory.FromBytes(x))
		t.fq.Absorb(t.fqFactory.FromBytes(y))
	}
}

// AbsorbCommitment absorbs every unshifted chunk (and the shifted chunk,
// if present) of a commitment — the "unshifted components" spec.md §4.3
// steps 3-6 and 11 repeatedly absorb.
func AbsorbCommitment[Fq field.Element[Fq], Fr field.Element[Fr], G interface {
	Coordinates() (x, y []byte)
}](t *Transcript[Fq, Fr], unshifted []G, shifted *G) {
	AbsorbG[Fq, Fr](t, unshifted...)
	if shifted != nil {
		AbsorbG[Fq, Fr](t, *shifted)
	}
}

// SqueezeFqChallenge squeezes a truncated ScalarChallenge from the Fq
// sponge (spec.md §4.2's squeeze_fq_challenge).
func (t *Transcript[Fq, Fr]) SqueezeFqChallenge() sponge.ScalarChallenge[Fr] {
	limbs := make([]uint64, sponge.ChallengeLengthInLimbs)
	for i := range limbs {
		limbs[i] = limbFromBytes(t.fq.Squeeze().Bytes())
	}
	return sponge.NewScalarChallenge[Fr](limbs)
}

// DigestFq returns the Fq sponge's current digest (spec.md §4.3 step 13).
func (t *Transcript[Fq, Fr]) DigestFq() Fq {
	return t.fq.Squeeze()
}

// DigestFqAsFr squeezes a clone of the Fq sponge and reduces the result
// directly into a scalar-field element via frFactory, bridging base field
// to scalar field (spec.md §4.3 step 13). This is distinct from DigestFq:
// the real base sponge's digest is defined to produce a scalar-field
// value directly (by byte-reducing its squeeze output), not a base-field
// one, so callers needing the bridge use this instead of DigestFq plus a
// separate conversion. Squeezing a clone, not t.fq itself, matches the
// original's `fq_sponge.clone().digest()`: the live Fq sponge must keep
// its pre-digest state, since assembleBatch later hands FqBackend() (the
// same live sponge) to the opener as part of the §4.6 handoff.
func (t *Transcript[Fq, Fr]) DigestFqAsFr(frFactory field.Factory[Fr]) Fr {
	digest := t.fq.Clone().Squeeze()
	return frFactory.FromBytes(digest.Bytes())
}

// FqBackend exposes the underlying Fq sponge, used by the verifier
// protocol to carry `sponge: fq_sponge` into the BatchEvaluationProof
// handoff (spec.md §4.6).
func (t *Transcript[Fq, Fr]) FqBackend() sponge.Backend[Fq] {
	return t.fq
}

// AbsorbFr absorbs scalar-field elements into the Fr sponge.
func (t *Transcript[Fq, Fr]) AbsorbFr(vals ...Fr) {
	t.fr.AbsorbMany(vals)
}

// SqueezeFrChallenge squeezes a truncated ScalarChallenge from the Fr
// sponge.
func (t *Transcript[Fq, Fr]) SqueezeFrChallenge() sponge.ScalarChallenge[Fr] {
	limbs := make([]uint64, sponge.ChallengeLengthInLimbs)
	for i := range limbs {
		limbs[i] = limbFromBytes(t.fr.Squeeze().Bytes())
	}
	return sponge.NewScalarChallenge[Fr](limbs)
}

// DigestFr returns the Fr sponge's current digest.
func (t *Transcript[Fq, Fr]) DigestFr() Fr {
	return t.fr.Squeeze()
}

// ForkFr clones the current Fr sponge state into an independent sponge.
// The verifier's previous-challenge step does not use it: that step
// starts from a fresh Fr sponge instead.
func (t *Transcript[Fq, Fr]) ForkFr() sponge.Backend[Fr] {
	return t.fr.Clone()
}

// AbsorbEvaluations absorbs both evaluation records in the fixed
// canonical order spec.md §4.2 mandates: z, generic_selector,
// poseidon_selector, w[0..Columns), s[0..Permuts-1), then (if present)
// the lookup block (aggreg, table, sorted[*], runtime). Order matters —
// it must match the prover bit-for-bit.
func (t *Transcript[Fq, Fr]) AbsorbEvaluations(evals [2]proof.EvalRow[Fr]) {
	for _, row := range evals {
		t.AbsorbFr(row.Z, row.GenericSelector, row.PoseidonSelector)
		for i := 0; i < gate.Columns; i++ {
			t.AbsorbFr(row.W[i])
		}
		for i := 0; i < gate.Permuts-1; i++ {
			t.AbsorbFr(row.S[i])
		}
		if row.Lookup != nil {
			t.AbsorbFr(row.Lookup.Aggreg, row.Lookup.Table)
			t.AbsorbFr(row.Lookup.Sorted...)
			if row.Lookup.Runtime != nil {
				t.AbsorbFr(*row.Lookup.Runtime)
			}
		}
	}
}

func limbFromBytes(b []byte) uint64 {
	var v uint64
	n := len(b)
	if n > 8 {
		n = 8
	}
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
