// Package sponge carries the transcript's cryptographic primitive (the
// Poseidon permutation, consumed per spec.md §1/§6) and the in-scope
// derivation logic layered on top of it: truncated scalar challenges and
// their endomorphism-scalar expansion. Grounded on utils/channel.go's
// hash-dispatch shape (absorb/squeeze against a configurable hash
// function) and original_source/kimchi/src/plonk_sponge.rs's
// `ScalarChallenge`/`to_field`.
package sponge

import "encoding/binary"

// Backend is the raw sponge permutation, consumed (spec.md §6). A
// concrete sponge absorbs field elements of F and squeezes field elements
// of F; the transcript package runs two of these (one over the base
// field, one over the scalar field) per spec.md §4.2.
type Backend[F any] interface {
	Absorb(F)
	AbsorbMany([]F)
	Squeeze() F
	// Clone returns an independent copy of the sponge state, used by the
	// transcript to take a digest without advancing the live sponge
	// (Transcript.DigestFqAsFr) and to fork the Fr sponge (Transcript.ForkFr).
	Clone() Backend[F]
}

// ChallengeLengthInLimbs is the number of base-field limbs squeezed to
// build one ScalarChallenge, matching kimchi's
// `CHALLENGE_LENGTH_IN_LIMBS` constant (spec.md §9 open question (a): we
// do not second-guess which sponge construction produces these limbs,
// only that exactly this many are squeezed).
const ChallengeLengthInLimbs = 2

// LimbBits is the bit width of one limb.
const LimbBits = 64

// ScalarChallenge is a truncated, not-yet-expanded challenge: a handful of
// base-field limbs that must be passed through the curve's endomorphism
// decomposition (ToField) before use as a scalar-field element. Mirrors
// original_source/kimchi/src/plonk_sponge.rs's `ScalarChallenge<Fr>`.
type ScalarChallenge[Fr any] struct {
	limbs []uint64
}

// NewScalarChallenge packages raw squeezed limbs into a ScalarChallenge.
func NewScalarChallenge[Fr any](limbs []uint64) ScalarChallenge[Fr] {
	cp := make([]uint64, len(limbs))
	copy(cp, limbs)
	return ScalarChallenge[Fr]{limbs: cp}
}

// Limbs returns the raw, un-expanded challenge limbs.
func (c ScalarChallenge[Fr]) Limbs() []uint64 {
	return c.limbs
}

// Endomorphism is the curve-specific GLV decomposition kernel: given the
// endomorphism coefficient endoR and a bit sequence, it recombines the
// bits into a scalar-field element. This recombination is a transcript
// derivation step (spec.md §4.2), not curve group arithmetic, so it lives
// here rather than in package curve; only the field operations it uses
// (Add/Mul by powers of 2 and endoR) are consumed.
type Endomorphism[Fr any] interface {
	// Recombine folds the challenge's limb bits, two at a time, into a
	// scalar-field element using endoR the way ScalarChallenge::to_field
	// does: each pair of bits (b0, b1) contributes
	// a = 2a + b0 + b1*endoR, doubled at every step.
	Recombine(limbs []uint64, endoR Fr) Fr
}

// ToField expands a ScalarChallenge into a usable scalar-field element
// via the curve's endomorphism, per original_source's `to_field(endo_r)`.
func ToField[Fr any](c ScalarChallenge[Fr], endoR Fr, endo Endomorphism[Fr]) Fr {
	return endo.Recombine(c.limbs, endoR)
}

// fieldOps is the minimal arithmetic DefaultEndomorphism needs; any
// field.Element[Fr] satisfies it, but spelling it out here avoids this
// package importing package field for a two-method subset.
type fieldOps[Fr any] interface {
	Add(Fr) Fr
	Mul(Fr) Fr
}

// DefaultEndomorphism implements the bit-recombination algorithm
// original_source/kimchi/src/plonk_sponge.rs's `ScalarChallenge::to_field`
// performs: for each pair of bits (b0, b1), taken from the most
// significant limb down, `a = 2a + b0 + b1*endoR`, doubling the
// accumulator at every step. It is generic over any field satisfying
// Add/Mul, so every backend can reuse it instead of reimplementing GLV
// recombination — the decomposition is a transcript-layer concern (spec.md
// §4.2), not curve arithmetic.
type DefaultEndomorphism[Fr fieldOps[Fr]] struct {
	// Zero and One build the 0/1 field elements the bit stream needs;
	// supplied by the caller since this package has no field factory.
	Zero, One Fr
}

// rawBytes renders the limbs as a big-endian byte string, most significant
// limb first, for reduction straight into a field element.
func (c ScalarChallenge[Fr]) rawBytes() []byte {
	buf := make([]byte, 8*len(c.limbs))
	for i, limb := range c.limbs {
		off := (len(c.limbs) - 1 - i) * 8
		binary.BigEndian.PutUint64(buf[off:off+8], limb)
	}
	return buf
}

// byteFactory is the minimal hook RawField needs: reducing an arbitrary
// byte string into a field element, already required of any field.Factory.
type byteFactory[Fr any] interface {
	FromBytes([]byte) Fr
}

// RawField reinterprets a squeezed challenge's limbs directly as a
// field element (big-endian, reduced by the factory), with no
// endomorphism expansion. β and γ use this form: spec.md §4.3 step 7 calls
// them "raw scalar-field elements — truncated challenges treated as
// scalars" rather than endomorphism-derived values like α, ζ, v, u.
func RawField[Fr any](c ScalarChallenge[Fr], factory byteFactory[Fr]) Fr {
	return factory.FromBytes(c.rawBytes())
}

func (e DefaultEndomorphism[Fr]) Recombine(limbs []uint64, endoR Fr) Fr {
	acc := e.Zero
	for i := len(limbs) - 1; i >= 0; i-- {
		limb := limbs[i]
		for bit := LimbBits - 2; bit >= 0; bit -= 2 {
			b0 := (limb >> uint(bit)) & 1
			b1 := (limb >> uint(bit+1)) & 1
			acc = acc.Add(acc) // double
			if b0 == 1 {
				acc = acc.Add(e.One)
			}
			if b1 == 1 {
				acc = acc.Add(endoR)
			}
		}
	}
	return acc
}
