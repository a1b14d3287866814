package verifier

import (
	"fmt"

	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/constraints"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/curve"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/expr"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/field"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/gate"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/index"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/lookup"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/proof"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/sponge"
	"github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/transcript"
)

// ftEval0 computes ft(ζ) per spec.md §4.5's formula. alpha0, alpha1,
// alpha2 are taken as consecutive powers of α (α¹, α², α³) rather than
// drawn from a tracked "powers-of-alpha allotment" the way the original
// implementation's argument-specific alpha-power bookkeeping system does
// — this module's Linearization carries no such allotment table, so the
// three powers used by the permutation argument and its zero-knowledge
// correction are simply α's first three powers, a documented
// simplification of the real per-argument alpha accounting.
func (vf *Verifier[Fq, Fr, G]) ftEval0(
	idx index.VerifierIndex[Fq, Fr, G],
	pf proof.ProverProof[Fq, Fr, G],
	o *Oracles[Fr],
) (Fr, error) {
	var zero Fr
	one := vf.hooks.FrFactory.One()

	zkp := idx.Domains.D1.EvaluatePolynomial(idx.Zkpm, o.Zeta)

	alpha0 := o.Alpha
	alpha1 := alpha0.Mul(o.Alpha)
	alpha2 := alpha1.Mul(o.Alpha)

	wLast := pf.Evals[0].W[gate.Permuts-1]
	zOmega := pf.Evals[1].Z

	init := wLast.Add(o.Gamma).Mul(zOmega).Mul(alpha0).Mul(zkp)

	perm := init
	for i := 0; i < gate.Permuts-1; i++ {
		sigmaI := pf.Evals[0].S[i]
		wI := pf.Evals[0].W[i]
		term := o.Beta.Mul(sigmaI).Add(wI).Add(o.Gamma)
		perm = perm.Mul(term)
	}

	betaZeta := o.Beta.Mul(o.Zeta)
	minus := alpha0.Mul(zkp).Mul(pf.Evals[0].Z)
	for i := 0; i < gate.Permuts; i++ {
		wI := pf.Evals[0].W[i]
		term := o.Gamma.Add(betaZeta.Mul(idx.Shifts[i])).Add(wI)
		minus = minus.Mul(term)
	}

	n := idx.DomainSize
	omega := idx.Domains.D1.Generator()
	vanish := o.Zeta.Pow(n).Sub(one)
	term1 := vanish.Mul(alpha1).Mul(o.Zeta.Sub(omega))
	term2 := vanish.Mul(alpha2).Mul(o.Zeta.Sub(one))
	numerator := term1.Add(term2).Mul(one.Sub(pf.Evals[0].Z))
	denom := o.Zeta.Sub(omega).Mul(o.Zeta.Sub(one))
	denomInv, ok := denom.Inverse()
	if !ok {
		return zero, fmt.Errorf("verifier: zero-knowledge correction denominator vanished at ζ=%v", o.Zeta)
	}
	zkcorr := numerator.Mul(denomInv)

	cells := cellSource[Fr]{evals: pf.Evals}
	constantTerm, err := expr.Evaluate(idx.Linearization.ConstantTerm, cells, vf.constants(idx, o))
	if err != nil {
		return zero, fmt.Errorf("verifier: evaluating linearization constant term: %w", err)
	}

	ft0 := perm.Sub(o.PublicEvalZeta).Sub(minus).Add(zkcorr).Sub(constantTerm)
	return ft0, nil
}

// linearizationCommitment reconstructs f_comm, the multi-scalar
// multiplication of spec.md §4.5's reconstruction steps 1-4.
func (vf *Verifier[Fq, Fr, G]) linearizationCommitment(
	idx index.VerifierIndex[Fq, Fr, G],
	pf proof.ProverProof[Fq, Fr, G],
	o *Oracles[Fr],
) (curve.PolyComm[G], error) {
	var zeroComm curve.PolyComm[G]
	one := vf.hooks.FrFactory.One()

	zkp := idx.Domains.D1.EvaluatePolynomial(idx.Zkpm, o.Zeta)
	alpha0 := o.Alpha
	betaZeta := o.Beta.Mul(o.Zeta)
	wLast := pf.Evals[0].W[gate.Permuts-1]
	zOmega := pf.Evals[1].Z

	sigmaEvals := pf.Evals[0].S[:]
	wEvals := pf.Evals[0].W[:gate.Permuts-1]
	permScalar, err := constraints.PermScalars(wLast, betaZeta, o.Beta, o.Gamma, sigmaEvals[:], wEvals, alpha0, zkp, zOmega)
	if err != nil {
		return zeroComm, fmt.Errorf("verifier: perm_scalars: %w", err)
	}

	fComm := curve.ScaleChunks[Fr, G](curve.PolyComm[G]{}, permScalar, idx.Columns.Sigma[gate.Permuts-1])

	gnrcScalars := constraints.GnrcScalars(o.Alpha, pf.Evals[0].W[0], pf.Evals[0].W[1], pf.Evals[0].W[2], pf.Evals[0].GenericSelector, one)
	for k, s := range gnrcScalars {
		if k >= len(idx.Columns.Coefficients) {
			break
		}
		fComm = curve.ScaleChunks[Fr, G](fComm, s, idx.Columns.Coefficients[k])
	}

	cells := cellSource[Fr]{evals: pf.Evals}
	c := vf.constants(idx, o)
	for _, term := range idx.Linearization.IndexTerms {
		scalar, err := expr.Evaluate(term.Tokens, cells, c)
		if err != nil {
			return zeroComm, fmt.Errorf("verifier: evaluating linearization term for column %+v: %w", term.Column, err)
		}
		comm, err := resolveColumn[Fq, Fr, G](idx, pf, term.Column)
		if err != nil {
			return zeroComm, err
		}
		fComm = curve.ScaleChunks[Fr, G](fComm, scalar, comm)
	}

	return fComm, nil
}

// resolveColumn selects the commitment a linearization index term's
// column names, per spec.md §4.5 step 3's dispatch table.
func resolveColumn[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]](
	idx index.VerifierIndex[Fq, Fr, G],
	pf proof.ProverProof[Fq, Fr, G],
	col gate.Column,
) (curve.PolyComm[G], error) {
	var zero curve.PolyComm[G]
	switch col.Tag {
	case gate.ColWitness:
		if col.Index < 0 || col.Index >= gate.Columns {
			return zero, fmt.Errorf("verifier: witness column %d out of range", col.Index)
		}
		return pf.Commitments.W[col.Index], nil
	case gate.ColCoefficient:
		if col.Index < 0 || col.Index >= len(idx.Columns.Coefficients) {
			return zero, fmt.Errorf("verifier: coefficient column %d out of range", col.Index)
		}
		return idx.Columns.Coefficients[col.Index], nil
	case gate.ColZ:
		return pf.Commitments.Z, nil
	case gate.ColLookupSorted:
		if pf.Commitments.Lookup == nil {
			return zero, ErrLookupCommitmentMissing
		}
		if col.Index < 0 || col.Index >= len(pf.Commitments.Lookup.Sorted) {
			return zero, fmt.Errorf("verifier: lookup sorted column %d out of range", col.Index)
		}
		return pf.Commitments.Lookup.Sorted[col.Index], nil
	case gate.ColLookupAggreg:
		if pf.Commitments.Lookup == nil {
			return zero, ErrLookupCommitmentMissing
		}
		return pf.Commitments.Lookup.Aggreg, nil
	case gate.ColLookupKindIndex:
		if idx.Lookup == nil || col.Index < 0 || col.Index >= len(idx.Lookup.LookupSelectors) {
			return zero, fmt.Errorf("verifier: lookup kind-index selector %d unavailable", col.Index)
		}
		return idx.Lookup.LookupSelectors[col.Index], nil
	case gate.ColLookupRuntimeSelector:
		if idx.Lookup == nil || idx.Lookup.RuntimeTablesSelector == nil {
			return zero, fmt.Errorf("verifier: runtime-table selector unavailable")
		}
		return *idx.Lookup.RuntimeTablesSelector, nil
	case gate.ColIndex:
		return resolveIndexColumn[Fq, Fr, G](idx, col.Kind)
	default:
		return zero, fmt.Errorf("verifier: column %+v is not reachable from the linearization program", col)
	}
}

// resolveIndexColumn maps a per-gate-kind Index(kind) column to its
// verifier-index commitment.
func resolveIndexColumn[Fq field.Element[Fq], Fr field.Element[Fr], G curve.Point[Fr, G]](
	idx index.VerifierIndex[Fq, Fr, G],
	kind gate.Kind,
) (curve.PolyComm[G], error) {
	var zero curve.PolyComm[G]
	deref := func(p *curve.PolyComm[G], name string) (curve.PolyComm[G], error) {
		if p == nil {
			return zero, fmt.Errorf("verifier: index has no %s commitment", name)
		}
		return *p, nil
	}
	switch kind {
	case gate.Generic:
		return deref(idx.Columns.Generic, "generic")
	case gate.Poseidon:
		return deref(idx.Columns.Poseidon, "poseidon")
	case gate.CompleteAdd:
		return deref(idx.Columns.CompleteAdd, "complete_add")
	case gate.VarBaseMul:
		return deref(idx.Columns.VarBaseMul, "var_base_mul")
	case gate.EndoMul:
		return deref(idx.Columns.EndoMul, "endo_mul")
	case gate.EndoMulScalar:
		return deref(idx.Columns.EndoMulScalar, "endo_mul_scalar")
	case gate.ChaCha0:
		return deref(idx.Columns.ChaCha[0], "chacha0")
	case gate.ChaCha1:
		return deref(idx.Columns.ChaCha[1], "chacha1")
	case gate.ChaCha2:
		return deref(idx.Columns.ChaCha[2], "chacha2")
	case gate.ChaChaFinal:
		return deref(idx.Columns.ChaCha[3], "chacha_final")
	case gate.RangeCheck0:
		return deref(idx.Columns.RangeCheck[0], "range_check0")
	case gate.RangeCheck1:
		return deref(idx.Columns.RangeCheck[1], "range_check1")
	case gate.ForeignFieldAdd:
		return deref(idx.Columns.ForeignFieldAdd, "foreign_field_add")
	default:
		return zero, fmt.Errorf("verifier: gate kind %s has no index commitment", kind)
	}
}

// compact folds a chunked commitment's unshifted points under successive
// powers of s, per spec.md §4.5's C(chunks, s) = Σ_i s^i · chunks[i].
func compact[Fr interface{ Mul(Fr) Fr }, G curve.Point[Fr, G]](c curve.PolyComm[G], s Fr, one Fr) curve.PolyComm[G] {
	var acc G
	power := one
	for _, p := range c.Unshifted {
		acc = acc.Add(p.ScalarMul(power))
		power = power.Mul(s)
	}
	return curve.PolyComm[G]{Unshifted: []G{acc}}
}

// ftComm forms the chunked ft commitment, per spec.md §4.5's final step:
// ft_comm = C(f_comm, ζ^max_poly_size) − (ζ^n−1)·C(t_comm, ζ^max_poly_size).
func (vf *Verifier[Fq, Fr, G]) ftComm(
	idx index.VerifierIndex[Fq, Fr, G],
	pf proof.ProverProof[Fq, Fr, G],
	o *Oracles[Fr],
	fComm curve.PolyComm[G],
) curve.PolyComm[G] {
	one := vf.hooks.FrFactory.One()
	zetaPowMax := o.Zeta.Pow(idx.MaxPolySize)

	fCompact := compact[Fr, G](fComm, zetaPowMax, one)
	tCompact := compact[Fr, G](pf.Commitments.T, zetaPowMax, one)

	factor := o.Zeta.Pow(idx.DomainSize).Sub(one).Neg()
	tScaled := curve.ScaleChunks[Fr, G](curve.PolyComm[G]{}, factor, tCompact)

	return curve.Add[Fr, G](fCompact, tScaled)
}

// BatchEvaluationProof is the handoff value spec.md §4.6 describes:
// everything the external opening verifier needs, built once per proof
// by toBatch.
type BatchEvaluationProof[Fq any, Fr any, G any] struct {
	Sponge               sponge.Backend[Fq]
	Evaluations          []curve.EvaluationQuery[Fr, G]
	EvaluationPoints     [2]Fr
	Polyscale            Fr
	Evalscale            Fr
	Opening              curve.OpeningProof
	CombinedInnerProduct Fr
}

// batchItem is one logical row of spec.md §4.6's ordered evaluation list
// before it is split into the two per-point queries the consumed Opener
// contract expects.
type batchItem[Fr any, G any] struct {
	commitment         curve.PolyComm[G]
	atZeta, atZetaOmega Fr
}

// assembleBatch builds the ordered evaluation list and combined inner
// product of spec.md §4.6, then packages the BatchEvaluationProof.
func (vf *Verifier[Fq, Fr, G]) assembleBatch(
	idx index.VerifierIndex[Fq, Fr, G],
	pf proof.ProverProof[Fq, Fr, G],
	o *Oracles[Fr],
	publicComm curve.PolyComm[G],
	ftComm curve.PolyComm[G],
	ft0 Fr,
	tr *transcript.Transcript[Fq, Fr],
) (*BatchEvaluationProof[Fq, Fr, G], error) {
	one := vf.hooks.FrFactory.One()
	var items []batchItem[Fr, G]

	for _, pc := range pf.PrevChallenges {
		items = append(items, batchItem[Fr, G]{
			commitment:  pc.Comm,
			atZeta:      bPoly(pc.Chals, o.Zeta, one),
			atZetaOmega: bPoly(pc.Chals, o.Zeta.Mul(idx.Domains.D1.Generator()), one),
		})
	}

	items = append(items, batchItem[Fr, G]{commitment: publicComm, atZeta: o.PublicEvalZeta, atZetaOmega: o.PublicEvalZetaOmega})
	items = append(items, batchItem[Fr, G]{commitment: ftComm, atZeta: ft0, atZetaOmega: pf.FtEval1})
	items = append(items, batchItem[Fr, G]{commitment: pf.Commitments.Z, atZeta: pf.Evals[0].Z, atZetaOmega: pf.Evals[1].Z})

	if idx.Columns.Generic != nil {
		items = append(items, batchItem[Fr, G]{commitment: *idx.Columns.Generic, atZeta: pf.Evals[0].GenericSelector, atZetaOmega: pf.Evals[1].GenericSelector})
	}
	if idx.Columns.Poseidon != nil {
		items = append(items, batchItem[Fr, G]{commitment: *idx.Columns.Poseidon, atZeta: pf.Evals[0].PoseidonSelector, atZetaOmega: pf.Evals[1].PoseidonSelector})
	}

	for i := 0; i < gate.Columns; i++ {
		items = append(items, batchItem[Fr, G]{commitment: pf.Commitments.W[i], atZeta: pf.Evals[0].W[i], atZetaOmega: pf.Evals[1].W[i]})
	}
	for i := 0; i < gate.Permuts-1; i++ {
		items = append(items, batchItem[Fr, G]{commitment: idx.Columns.Sigma[i], atZeta: pf.Evals[0].S[i], atZetaOmega: pf.Evals[1].S[i]})
	}

	if idx.Lookup != nil {
		for i, sorted := range pf.Commitments.Lookup.Sorted {
			items = append(items, batchItem[Fr, G]{commitment: sorted, atZeta: pf.Evals[0].Lookup.Sorted[i], atZetaOmega: pf.Evals[1].Lookup.Sorted[i]})
		}
		items = append(items, batchItem[Fr, G]{commitment: pf.Commitments.Lookup.Aggreg, atZeta: pf.Evals[0].Lookup.Aggreg, atZetaOmega: pf.Evals[1].Lookup.Aggreg})

		var jc Fr
		if o.JointCombiner != nil {
			jc = *o.JointCombiner
		}
		tableComm, err := lookup.CombineTableCommitment[Fr, G](*idx.Lookup, jc, pf.Commitments.Lookup.Runtime, one)
		if err != nil {
			return nil, fmt.Errorf("verifier: combining lookup table commitment: %w", err)
		}
		items = append(items, batchItem[Fr, G]{commitment: tableComm, atZeta: pf.Evals[0].Lookup.Table, atZetaOmega: pf.Evals[1].Lookup.Table})

		if idx.Lookup.RequiresRuntimeProof() {
			items = append(items, batchItem[Fr, G]{
				commitment:  *pf.Commitments.Lookup.Runtime,
				atZeta:      derefOrZero(pf.Evals[0].Lookup.Runtime),
				atZetaOmega: derefOrZero(pf.Evals[1].Lookup.Runtime),
			})
		}
	}

	queries := make([]curve.EvaluationQuery[Fr, G], 0, 2*len(items))
	var zero Fr
	cip := zero
	vPow := one
	for _, it := range items {
		queries = append(queries, curve.EvaluationQuery[Fr, G]{Commitment: it.commitment, Point: o.Zeta, Evaluation: []Fr{it.atZeta}})
		queries = append(queries, curve.EvaluationQuery[Fr, G]{Commitment: it.commitment, Point: o.Zeta.Mul(idx.Domains.D1.Generator()), Evaluation: []Fr{it.atZetaOmega}})

		cip = cip.Add(vPow.Mul(it.atZeta))
		cip = cip.Add(vPow.Mul(o.U).Mul(it.atZetaOmega))
		vPow = vPow.Mul(o.V)
	}

	return &BatchEvaluationProof[Fq, Fr, G]{
		Sponge:               tr.FqBackend(),
		Evaluations:          queries,
		EvaluationPoints:     [2]Fr{o.Zeta, o.Zeta.Mul(idx.Domains.D1.Generator())},
		Polyscale:            o.V,
		Evalscale:            o.U,
		Opening:              pf.Opening,
		CombinedInnerProduct: cip,
	}, nil
}

func derefOrZero[Fr any](p *Fr) Fr {
	if p == nil {
		var zero Fr
		return zero
	}
	return *p
}

// bPoly evaluates the bulletproof challenge polynomial
// b(x) = Π_i (1 + chals[i]·x^{2^{k-1-i}}) at x, the standard folding
// check used to verify a previous round's recursion challenges against
// its commitment. The source code for this evaluation lives in the
// commitment/bulletproof crate, which is outside this module's retrieval
// pack; this is the well-known closed form for that evaluation, noted as
// a grounding gap in DESIGN.md rather than traced to a specific source
// line.
func bPoly[Fr field.Element[Fr]](chals []Fr, x Fr, one Fr) Fr {
	if len(chals) == 0 {
		return one
	}
	k := len(chals)
	result := one
	pow := x
	for i := k - 1; i >= 0; i-- {
		term := one.Add(chals[i].Mul(pow))
		result = result.Mul(term)
		pow = pow.Mul(pow)
	}
	return result
}

// toBatch runs spec.md §4.3 through §4.6 for a single proof: oracle
// derivation, the quotient check, the linearization and ft commitments,
// and batch assembly.
func (vf *Verifier[Fq, Fr, G]) toBatch(
	idx index.VerifierIndex[Fq, Fr, G],
	pf proof.ProverProof[Fq, Fr, G],
) (*BatchEvaluationProof[Fq, Fr, G], error) {
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("verifier: invalid index: %w", err)
	}

	o, tr, publicComm, err := vf.oracles(idx, pf)
	if err != nil {
		return nil, err
	}

	ft0, err := vf.ftEval0(idx, pf, o)
	if err != nil {
		return nil, fmt.Errorf("verifier: computing ft_eval0: %w", err)
	}

	fComm, err := vf.linearizationCommitment(idx, pf, o)
	if err != nil {
		return nil, err
	}

	ftComm := vf.ftComm(idx, pf, o, fComm)

	bp, err := vf.assembleBatch(idx, pf, o, publicComm, ftComm, ft0, tr)
	if err != nil {
		return nil, err
	}
	return bp, nil
}

// Verify checks a single proof, per spec.md §4.7's
// `verify(proof)` wrapping `batch_verify([proof])`.
func (vf *Verifier[Fq, Fr, G]) Verify(b BatchInput[Fq, Fr, G]) error {
	return vf.BatchVerify([]BatchInput[Fq, Fr, G]{b})
}

// BatchVerify implements spec.md §4.7's batch_verify. The consumed
// Opener contract (curve.Opener) verifies one proof's query set at a
// time, so — unlike the original implementation's single combined
// opener call across the whole batch — this loops the opener once per
// proof after the structural SRS checks; documented as a simplification
// in DESIGN.md tracking the already-fixed Opener interface shape.
func (vf *Verifier[Fq, Fr, G]) BatchVerify(batch []BatchInput[Fq, Fr, G]) error {
	if len(batch) == 0 {
		return nil
	}

	srsLen := batch[0].SRSLength
	for _, b := range batch[1:] {
		if b.SRSLength != srsLen {
			return ErrDifferentSRS
		}
	}
	for _, b := range batch {
		if b.SRSMaxDegree < b.Index.DomainSize {
			return ErrSRSTooSmall
		}
	}

	proofs := make([]*BatchEvaluationProof[Fq, Fr, G], len(batch))
	for i, b := range batch {
		bp, err := vf.toBatch(b.Index, b.Proof)
		if err != nil {
			return fmt.Errorf("verifier: proof %d: %w", i, err)
		}
		proofs[i] = bp
	}

	for i, bp := range proofs {
		ok, err := vf.hooks.Opener.Verify(bp.Evaluations, bp.Opening, bp.Polyscale, bp.Evalscale)
		if err != nil {
			return fmt.Errorf("verifier: proof %d: opener: %w", i, err)
		}
		if !ok {
			return fmt.Errorf("%w: proof %d", ErrOpenProof, i)
		}
	}

	return nil
}
