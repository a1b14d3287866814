// Package field states the contract this module expects from a finite
// field implementation. The field arithmetic itself is an external
// collaborator (see SPEC_FULL.md §1/§6): nothing in this package performs
// modular reduction, inversion, or exponentiation — it only names the
// shape a concrete field element must have to be usable by the rest of
// the verifier.
package field

// Element is a self-bounded element of some finite field F. The bound
// mirrors the Rust trait bound `F: ark_ff::Field` that the original
// kimchi verifier is generic over.
type Element[F any] interface {
	comparable

	Add(F) F
	Sub(F) F
	Mul(F) F
	Neg() F
	Square() F
	Inverse() (F, bool)
	Pow(exp uint64) F

	IsZero() bool
	IsOne() bool

	// Legendre reports whether the element is a non-zero quadratic
	// residue (+1), a non-residue (-1), or zero (0). Used by the
	// constraint system to sample the `r`/`o` coordinate shifts
	// (spec.md §4.1 step 2, original_source's `legendre().is_qnr()`).
	Legendre() int

	// Bytes is the canonical big-endian encoding, used by sponges to
	// absorb field elements.
	Bytes() []byte
}

// Zero and One are supplied per-concrete-field via a small factory, since
// Go generics have no way to call a type parameter's zero-value
// constructor directly.
type Factory[F any] interface {
	Zero() F
	One() F
	FromUint64(uint64) F
	// FromBytes reduces a big-endian byte string into a field element;
	// used by the transcript to absorb curve-point coordinates, which
	// arrive as raw bytes rather than as already-typed field elements
	// (spec.md §4.2).
	FromBytes([]byte) F
}
