// Package curve states the contracts this module expects from an
// elliptic-curve group and its associated polynomial-commitment and
// opening-verifier machinery. All of it is an external collaborator
// (spec.md §1/§6); this package names shapes, it never implements group
// law or a multi-scalar multiplication.
package curve

// Point is a self-bounded group element over scalar field Fr. G mirrors
// the Rust `G: KimchiCurve` bound the original verifier is generic over.
type Point[Fr any, G any] interface {
	comparable

	Add(G) G
	Neg() G
	ScalarMul(Fr) G
	IsZero() bool

	// Coordinates returns the affine (x, y) pair in the base field, as
	// the raw bytes an FqSponge absorbs (spec.md §4.2).
	Coordinates() (x, y []byte)
}

// PolyComm is a (possibly multi-chunk) polynomial commitment: one curve
// point per chunk plus an optional blinding-factor commitment, mirroring
// kimchi's `PolyComm<G> { unshifted: Vec<G>, shifted: Option<G> }`.
type PolyComm[G any] struct {
	Unshifted []G
	Shifted   *G
}

// Add combines two commitments chunk-wise (used to fold prover
// commitments with public-input commitments, spec.md §4.3 step 4 and
// §4.6's f_comm reconstruction).
func Add[Fr any, G Point[Fr, G]](a, b PolyComm[G]) PolyComm[G] {
	n := len(a.Unshifted)
	if len(b.Unshifted) > n {
		n = len(b.Unshifted)
	}
	out := make([]G, n)
	var zero G
	for i := 0; i < n; i++ {
		x, y := zero, zero
		if i < len(a.Unshifted) {
			x = a.Unshifted[i]
		}
		if i < len(b.Unshifted) {
			y = b.Unshifted[i]
		}
		out[i] = x.Add(y)
	}
	return PolyComm[G]{Unshifted: out}
}

// ScaleChunks multiplies every chunk of a commitment by a scalar and
// accumulates into acc, mirroring the `scale`+`PolyComm::add` pattern used
// throughout kimchi's `f_comm`/`ft_comm` reconstruction.
func ScaleChunks[Fr any, G Point[Fr, G]](acc PolyComm[G], scalar Fr, c PolyComm[G]) PolyComm[G] {
	scaled := PolyComm[G]{Unshifted: make([]G, len(c.Unshifted))}
	for i, p := range c.Unshifted {
		scaled.Unshifted[i] = p.ScalarMul(scalar)
	}
	return Add[Fr, G](acc, scaled)
}

// MSM is a multi-scalar-multiplication primitive; backends almost always
// have a faster implementation than a naive per-term ScalarMul+Add loop,
// so it is exposed as its own consumed operation rather than derived.
type MSM[Fr any, G any] func(scalars []Fr, points []G) G

// OpeningProof is the data the opener needs to verify a batched
// polynomial opening; this module only threads it through, never
// inspects its internal shape beyond what Opener.Verify needs.
type OpeningProof any

// EvaluationQuery names one evaluation query: which commitment, at which
// point, claiming which value.
type EvaluationQuery[F any, G any] struct {
	Commitment PolyComm[G]
	Point      F
	Evaluation []F // one value per chunk
}

// Opener is the consumed inner-product/KZG-style opening verifier
// (spec.md §1 Non-goal, §6). Implementing it is explicitly out of scope;
// the verifier (VP) builds a BatchEvaluationProof-equivalent value and
// hands it here.
type Opener[F any, Fr any, G any] interface {
	Verify(queries []EvaluationQuery[F, G], proof OpeningProof, v, u Fr) (bool, error)
}
