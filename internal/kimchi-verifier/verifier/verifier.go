// Package verifier is the Verifier Protocol (VP) component (spec.md §2/
// §4.3-§4.7): the orchestrator that drives the Fiat-Shamir transcript,
// reconstructs the linearization commitment, and assembles a batched
// opening request. Grounded on protocols/verifier.go's Verifier/Verify/
// VerifyBatch shape (a struct wrapping the protocol's consumed
// parameters, a sequential multi-step Verify method with one named step
// per comment block, and a VerifyBatch that loops per-proof) generalized
// from a STARK's challenge-reconstruction pipeline to kimchi's
// dual-sponge oracle derivation.
package verifier

import (
	"fmt"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/curve"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/expr"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/field"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/gate"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/index"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/proof"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/sponge"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/transcript"
)

// Hooks bundles every external collaborator this package consumes
// (spec.md §6): sponge construction, the endomorphism decomposition, the
// verifier-index digest function, the public-input commitment builder
// (SRS lagrange-basis MSM plus mask_custom blinding, consumed per spec.md
// §6's `mask_custom` routine), the Poseidon MDS table, and the opening
// verifier. Nothing in this package constructs field, curve, or sponge
// arithmetic itself.
type Hooks[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]] struct {
	FqFactory field.Factory[Fq]
	FrFactory field.Factory[Fr]

	NewFqSponge func() sponge.Backend[Fq]
	NewFrSponge func() sponge.Backend[Fr]

	Endomorphism sponge.Endomorphism[Fr]

	// IndexDigest hashes every circuit-dependent public parameter into a
	// single base-field value (spec.md §4.3 step 2).
	IndexDigest func(index.VerifierIndex[Fq, Fr, G]) Fq

	// PublicCommitment builds the public-input commitment from the
	// index's SRS lagrange basis and the proof's declared public input
	// (spec.md §4.3 step 4). This is the SRS-resident, consumed
	// collaborator named in spec.md §6 — it is never computed here.
	PublicCommitment func(idx index.VerifierIndex[Fq, Fr, G], publicInput []Fr) (curve.PolyComm[G], error)

	// Mds answers the Poseidon MDS matrix entries the linearization
	// evaluator's Mds(i,j) token references (spec.md §4.4); Poseidon
	// sponge parameters are consumed circuit metadata, not computed here.
	Mds func(i, j int) Fr

	// EndoCoefficient is the curve's endomorphism coefficient used inside
	// circuit identities via the EndoCoefficient token, distinct from
	// idx.EndoR (the challenge-decomposition scalar).
	EndoCoefficient Fr

	Opener curve.Opener[Fr, Fr, G]
}

// Config is the batch verifier's configuration; mirrors utils/config.go's
// Config/Validate/With* fluent shape. New rejects a non-positive
// MaxBatchSize; beyond that, neither MaxBatchSize nor EnableLookup is read
// by Verify or BatchVerify (batch length is not capped, and lookup checks
// run whenever the index declares a lookup).
type Config struct {
	MaxBatchSize int
	EnableLookup bool
}

// DefaultConfig mirrors utils/config.go's DefaultConfig().
func DefaultConfig() Config {
	return Config{MaxBatchSize: 64, EnableLookup: true}
}

// Validate checks the configuration is usable before a Verifier is built.
func (c Config) Validate() error {
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("verifier: MaxBatchSize must be positive, got %d", c.MaxBatchSize)
	}
	return nil
}

// WithMaxBatchSize returns a copy of c with MaxBatchSize set.
func (c Config) WithMaxBatchSize(n int) Config {
	c.MaxBatchSize = n
	return c
}

// WithLookup returns a copy of c with EnableLookup set.
func (c Config) WithLookup(enabled bool) Config {
	c.EnableLookup = enabled
	return c
}

// Oracles is the Fiat-Shamir output of spec.md §4.3: every challenge in
// both raw (*_chal, pre-endomorphism) and derived (post-endomorphism)
// form, plus the two public-input evaluations computed along the way.
type Oracles[Fr any] struct {
	Beta, Gamma Fr

	AlphaChal sponge.ScalarChallenge[Fr]
	Alpha     Fr

	ZetaChal sponge.ScalarChallenge[Fr]
	Zeta     Fr

	VChal sponge.ScalarChallenge[Fr]
	V     Fr

	UChal sponge.ScalarChallenge[Fr]
	U     Fr

	JointCombinerChal *sponge.ScalarChallenge[Fr]
	JointCombiner     *Fr

	PublicEvalZeta      Fr
	PublicEvalZetaOmega Fr
}

// Verifier is the VP orchestrator (spec.md §2), parameterized over the
// base field, scalar field, and curve group the way every package in this
// module is.
type Verifier[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]] struct {
	hooks Hooks[Fq, Fr, G]
	cfg   Config
}

// New builds a Verifier from its consumed collaborators and a validated
// configuration, mirroring protocols/verifier.go's NewVerifier.
func New[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]](hooks Hooks[Fq, Fr, G], cfg Config) (*Verifier[Fq, Fr, G], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("verifier: invalid config: %w", err)
	}
	return &Verifier[Fq, Fr, G]{hooks: hooks, cfg: cfg}, nil
}

// BatchInput pairs one proof with the verifier index and SRS parameters
// it is checked against, the unit batch_verify operates on.
type BatchInput[Fq any, Fr any, G any] struct {
	Index        index.VerifierIndex[Fq, Fr, G]
	Proof        proof.ProverProof[Fq, Fr, G]
	SRSLength    uint64
	SRSMaxDegree uint64
}

// cellSource adapts a proof's two-row evaluation record to
// expr.CellSource, dispatching Curr/Next through proof.CellAt without
// either package depending on the other's concrete types.
type cellSource[Fr any] struct {
	evals [2]proof.EvalRow[Fr]
}

func (c cellSource[Fr]) Cell(col gate.Column, row gate.Row) (Fr, error) {
	return proof.CellAt(c.evals, col, row)
}

// oracles runs spec.md §4.3's eighteen-step Fiat-Shamir pipeline exactly
// as ordered; reordering any absorb/squeeze pair breaks soundness (spec.md
// §5's ordering guarantee). It returns the derived Oracles, the transcript
// (now holding both sponges, needed by assembleBatch's BatchEvaluationProof),
// and the public-input commitment computed along the way.
func (vf *Verifier[Fq, Fr, G]) oracles(
	idx index.VerifierIndex[Fq, Fr, G],
	pf proof.ProverProof[Fq, Fr, G],
) (*Oracles[Fr], *transcript.Transcript[Fq, Fr], curve.PolyComm[G], error) {
	var zeroComm curve.PolyComm[G]
	one := vf.hooks.FrFactory.One()
	zero := vf.hooks.FrFactory.Zero()

	// Step 1: initialize fq_sponge.
	tr := transcript.NewFqOnly[Fq, Fr](vf.hooks.NewFqSponge(), vf.hooks.FqFactory)

	// Step 2: absorb digest(VerifierIndex).
	tr.AbsorbFq(idx.Digest(vf.hooks.IndexDigest))

	// Step 3: absorb previous recursion challenges' commitments.
	if len(pf.PrevChallenges) != idx.PrevChallengesExpected {
		return nil, nil, zeroComm, fmt.Errorf("%w: expected %d, got %d", ErrIncorrectPrevChallengesLength, idx.PrevChallengesExpected, len(pf.PrevChallenges))
	}
	for _, pc := range pf.PrevChallenges {
		transcript.AbsorbCommitment[Fq, Fr](tr, pc.Comm.Unshifted, pc.Comm.Shifted)
	}

	// Step 4: absorb the public-input commitment.
	if len(pf.PublicInput) != idx.PublicSize {
		return nil, nil, zeroComm, fmt.Errorf("%w: expected %d, got %d", ErrIncorrectPublicInputLength, idx.PublicSize, len(pf.PublicInput))
	}
	publicComm, err := vf.hooks.PublicCommitment(idx, pf.PublicInput)
	if err != nil {
		return nil, nil, zeroComm, fmt.Errorf("verifier: building public-input commitment: %w", err)
	}
	transcript.AbsorbCommitment[Fq, Fr](tr, publicComm.Unshifted, publicComm.Shifted)

	// Step 5: absorb the COLUMNS witness commitments.
	for i := 0; i < gate.Columns; i++ {
		transcript.AbsorbCommitment[Fq, Fr](tr, pf.Commitments.W[i].Unshifted, pf.Commitments.W[i].Shifted)
	}

	// Step 6: lookup setup, if configured.
	var jointCombinerChal *sponge.ScalarChallenge[Fr]
	var jointCombiner *Fr
	if idx.Lookup != nil {
		if pf.Commitments.Lookup == nil {
			return nil, nil, zeroComm, ErrLookupCommitmentMissing
		}
		if idx.Lookup.RequiresRuntimeProof() {
			if pf.Commitments.Lookup.Runtime == nil {
				return nil, nil, zeroComm, ErrIncorrectRuntimeProof
			}
			transcript.AbsorbCommitment[Fq, Fr](tr, pf.Commitments.Lookup.Runtime.Unshifted, pf.Commitments.Lookup.Runtime.Shifted)
		} else if pf.Commitments.Lookup.Runtime != nil {
			return nil, nil, zeroComm, ErrIncorrectRuntimeProof
		}

		if len(idx.Lookup.TableColumnComms) > 1 {
			chal := tr.SqueezeFqChallenge()
			jointCombinerChal = &chal
			jc := sponge.ToField(chal, idx.EndoR, vf.hooks.Endomorphism)
			jointCombiner = &jc
		} else {
			chal := sponge.NewScalarChallenge[Fr](nil)
			jointCombinerChal = &chal
			jc := zero
			jointCombiner = &jc
		}

		for _, sorted := range pf.Commitments.Lookup.Sorted {
			transcript.AbsorbCommitment[Fq, Fr](tr, sorted.Unshifted, sorted.Shifted)
		}

		for _, row := range pf.Evals {
			if row.Lookup == nil {
				return nil, nil, zeroComm, ErrLookupEvalsMissing
			}
			if len(row.Lookup.Sorted) != len(pf.Commitments.Lookup.Sorted) {
				return nil, nil, zeroComm, ErrProofInconsistentLookup
			}
		}
	}

	// Step 7: squeeze β, γ as raw (non-endomorphism) scalar-field values.
	betaChal := tr.SqueezeFqChallenge()
	beta := sponge.RawField(betaChal, vf.hooks.FrFactory)
	gammaChal := tr.SqueezeFqChallenge()
	gamma := sponge.RawField(gammaChal, vf.hooks.FrFactory)

	// Step 8: absorb the lookup aggregation commitment.
	if idx.Lookup != nil {
		transcript.AbsorbCommitment[Fq, Fr](tr, pf.Commitments.Lookup.Aggreg.Unshifted, pf.Commitments.Lookup.Aggreg.Shifted)
	}

	// Step 9: absorb z_comm.
	transcript.AbsorbCommitment[Fq, Fr](tr, pf.Commitments.Z.Unshifted, pf.Commitments.Z.Shifted)

	// Step 10: squeeze α.
	alphaChal := tr.SqueezeFqChallenge()
	alpha := sponge.ToField(alphaChal, idx.EndoR, vf.hooks.Endomorphism)

	// Step 11: check t_comm's chunk count, absorb it.
	if len(pf.Commitments.T.Unshifted) != gate.Permuts {
		return nil, nil, zeroComm, fmt.Errorf("%w: \"t\" has %d chunks, want %d", ErrIncorrectCommitmentLength, len(pf.Commitments.T.Unshifted), gate.Permuts)
	}
	transcript.AbsorbCommitment[Fq, Fr](tr, pf.Commitments.T.Unshifted, pf.Commitments.T.Shifted)

	// Step 12: squeeze ζ.
	zetaChal := tr.SqueezeFqChallenge()
	zeta := sponge.ToField(zetaChal, idx.EndoR, vf.hooks.Endomorphism)

	// Step 13: bridge fq_sponge's digest into a fresh fr_sponge.
	digest := tr.DigestFqAsFr(vf.hooks.FrFactory)
	tr.BeginFr(vf.hooks.NewFrSponge(), vf.hooks.FrFactory)
	tr.AbsorbFr(digest)

	// Step 14: scope the previous-challenge sub-sponge.
	scoped := vf.hooks.NewFrSponge()
	for _, pc := range pf.PrevChallenges {
		scoped.AbsorbMany(pc.Chals)
	}
	tr.AbsorbFr(scoped.Squeeze())

	// Step 15: batched inversion of ζ - ω^i and ζω - ω^i for i < |public|.
	n := idx.DomainSize
	omega := idx.Domains.D1.Generator()
	pubLen := len(pf.PublicInput)
	zetaOmega := zeta.Mul(omega)

	omegaPows := make([]Fr, pubLen)
	pow := one
	for i := 0; i < pubLen; i++ {
		omegaPows[i] = pow
		pow = pow.Mul(omega)
	}

	diffs := make([]Fr, 0, 2*pubLen)
	for i := 0; i < pubLen; i++ {
		diffs = append(diffs, zeta.Sub(omegaPows[i]))
	}
	for i := 0; i < pubLen; i++ {
		diffs = append(diffs, zetaOmega.Sub(omegaPows[i]))
	}
	inverted, err := batchedInvert(diffs, one)
	if err != nil {
		return nil, nil, zeroComm, fmt.Errorf("verifier: batch-inverting public evaluation denominators: %w", err)
	}

	// Step 16: negated public-input polynomial at ζ and ζω, barycentric form.
	nFr := vf.hooks.FrFactory.FromUint64(n)
	nInv, ok := nFr.Inverse()
	if !ok {
		return nil, nil, zeroComm, fmt.Errorf("verifier: domain size %d has no inverse in the scalar field", n)
	}
	zetaPowN := zeta.Pow(n)
	zetaOmegaPowN := zetaOmega.Pow(n)

	publicEvalZeta := zero
	publicEvalZetaOmega := zero
	for i := 0; i < pubLen; i++ {
		lZeta := inverted[i]
		lZetaOmega := inverted[pubLen+i]
		publicEvalZeta = publicEvalZeta.Sub(lZeta.Mul(pf.PublicInput[i]).Mul(omegaPows[i]))
		publicEvalZetaOmega = publicEvalZetaOmega.Sub(lZetaOmega.Mul(pf.PublicInput[i]).Mul(omegaPows[i]))
	}
	publicEvalZeta = publicEvalZeta.Mul(zetaPowN.Sub(one)).Mul(nInv)
	publicEvalZetaOmega = publicEvalZetaOmega.Mul(zetaOmegaPowN.Sub(one)).Mul(nInv)

	// Step 17: absorb ft_eval1, public evaluations, and both eval records.
	tr.AbsorbFr(pf.FtEval1)
	tr.AbsorbFr(publicEvalZeta)
	tr.AbsorbFr(publicEvalZetaOmega)
	tr.AbsorbEvaluations(pf.Evals)

	// Step 18: squeeze v, u.
	vChal := tr.SqueezeFrChallenge()
	v := sponge.ToField(vChal, idx.EndoR, vf.hooks.Endomorphism)
	uChal := tr.SqueezeFrChallenge()
	u := sponge.ToField(uChal, idx.EndoR, vf.hooks.Endomorphism)

	return &Oracles[Fr]{
		Beta: beta, Gamma: gamma,
		AlphaChal: alphaChal, Alpha: alpha,
		ZetaChal: zetaChal, Zeta: zeta,
		VChal: vChal, V: v,
		UChal: uChal, U: u,
		JointCombinerChal:    jointCombinerChal,
		JointCombiner:        jointCombiner,
		PublicEvalZeta:       publicEvalZeta,
		PublicEvalZetaOmega:  publicEvalZetaOmega,
	}, tr, publicComm, nil
}

// batchedInvert implements Montgomery's trick: one field inversion
// amortized across every element, per spec.md §4.3 step 15 and §5's
// "batched field inversion is a single data-parallel kernel" note (the
// parallel-kernel aspect is left to the field backend's own Inverse;
// here only the accumulate/invert/unwind sequencing is in scope).
func batchedInvert[Fr field.Element[Fr]](vals []Fr, one Fr) ([]Fr, error) {
	n := len(vals)
	if n == 0 {
		return nil, nil
	}
	prefix := make([]Fr, n)
	acc := one
	for i, v := range vals {
		prefix[i] = acc
		acc = acc.Mul(v)
	}
	accInv, ok := acc.Inverse()
	if !ok {
		return nil, fmt.Errorf("batch inversion: product is zero, one of the %d inputs is zero", n)
	}
	out := make([]Fr, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(vals[i])
	}
	return out, nil
}

// constants builds the expr.Constants block an evaluator call needs,
// bundling the oracle set with the circuit-level Mds/EndoCoefficient
// parameters and the precomputed VanishesOnLast4Rows value.
func (vf *Verifier[Fq, Fr, G]) constants(idx index.VerifierIndex[Fq, Fr, G], o *Oracles[Fr]) expr.Constants[Fr] {
	one := vf.hooks.FrFactory.One()
	n := idx.DomainSize
	omega := idx.Domains.D1.Generator()

	var last4 [4]Fr
	pow := omega.Pow(n - 4)
	for i := 0; i < 4; i++ {
		last4[i] = pow
		pow = pow.Mul(omega)
	}
	denom := o.Zeta.Sub(last4[0])
	for i := 1; i < 4; i++ {
		denom = denom.Mul(o.Zeta.Sub(last4[i]))
	}
	denomInv, ok := denom.Inverse()
	var vanishes Fr
	if ok {
		vanishes = o.Zeta.Pow(n).Sub(one).Mul(denomInv)
	}

	jc := one
	if o.JointCombiner != nil {
		jc = *o.JointCombiner
	}

	return expr.Constants[Fr]{
		Alpha:           o.Alpha,
		Beta:            o.Beta,
		Gamma:           o.Gamma,
		JointCombiner:   jc,
		EndoCoefficient: vf.hooks.EndoCoefficient,
		Mds:             vf.hooks.Mds,
		VanishesOnLast4: vanishes,
	}
}
