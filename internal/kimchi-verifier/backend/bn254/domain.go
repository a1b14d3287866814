package bn254

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	kdomain "github.com/lucent-zk/kimchi-verifier/internal/kimchi-verifier/domain"
)

// Domain adapts gnark-crypto's fft.Domain to domain.Domain[ScalarElement].
type Domain struct {
	d *fft.Domain
}

func (d Domain) Size() uint64 { return d.d.Cardinality }

func (d Domain) Generator() ScalarElement {
	return ScalarElement{d.d.Generator}
}

func (d Domain) Evaluate(coeffs []ScalarElement) []ScalarElement {
	vals := toFr(coeffs, d.d.Cardinality)
	d.d.FFT(vals, fft.DIF)
	fft.BitReverse(vals)
	return fromFr(vals)
}

func (d Domain) Interpolate(evals []ScalarElement) []ScalarElement {
	vals := toFr(evals, d.d.Cardinality)
	fft.BitReverse(vals)
	d.d.FFTInverse(vals, fft.DIT)
	return fromFr(vals)
}

func (d Domain) EvaluatePolynomial(coeffs []ScalarElement, at ScalarElement) ScalarElement {
	var result fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		result.Mul(&result, &at.v)
		result.Add(&result, &coeffs[i].v)
	}
	return ScalarElement{result}
}

func toFr(xs []ScalarElement, size uint64) []fr.Element {
	out := make([]fr.Element, size)
	for i, x := range xs {
		if uint64(i) >= size {
			break
		}
		out[i] = x.v
	}
	return out
}

func fromFr(xs []fr.Element) []ScalarElement {
	out := make([]ScalarElement, len(xs))
	for i, x := range xs {
		out[i] = ScalarElement{x}
	}
	return out
}

// NewDomain is a domain.Factory[ScalarElement] building gnark-crypto FFT
// domains on demand, per SPEC_FULL.md §6.
func NewDomain(size uint64) (kdomain.Domain[ScalarElement], error) {
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("bn254: domain size %d is not a power of two", size)
	}
	return Domain{d: fft.NewDomain(size)}, nil
}
