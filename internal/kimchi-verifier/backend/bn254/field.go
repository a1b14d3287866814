// Package bn254 is the one concrete backend this module ships (SPEC_FULL.md
// §6): a thin adapter satisfying the field/domain/curve/sponge contracts
// by wrapping github.com/consensys/gnark-crypto's BN254 scalar field,
// base field, FFT domains and G1 group, plus a sha3-based sponge grounded
// on utils/channel.go's own hashing. None of the protocol logic lives
// here — this package only teaches the generic core how to talk to a
// real curve.
package bn254

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ScalarElement wraps gnark-crypto's fr.Element to satisfy
// field.Element[ScalarElement].
type ScalarElement struct{ v fr.Element }

func (e ScalarElement) Add(o ScalarElement) ScalarElement {
	var r fr.Element
	r.Add(&e.v, &o.v)
	return ScalarElement{r}
}

func (e ScalarElement) Sub(o ScalarElement) ScalarElement {
	var r fr.Element
	r.Sub(&e.v, &o.v)
	return ScalarElement{r}
}

func (e ScalarElement) Mul(o ScalarElement) ScalarElement {
	var r fr.Element
	r.Mul(&e.v, &o.v)
	return ScalarElement{r}
}

func (e ScalarElement) Neg() ScalarElement {
	var r fr.Element
	r.Neg(&e.v)
	return ScalarElement{r}
}

func (e ScalarElement) Square() ScalarElement {
	var r fr.Element
	r.Square(&e.v)
	return ScalarElement{r}
}

func (e ScalarElement) Inverse() (ScalarElement, bool) {
	if e.v.IsZero() {
		return ScalarElement{}, false
	}
	var r fr.Element
	r.Inverse(&e.v)
	return ScalarElement{r}, true
}

func (e ScalarElement) Pow(exp uint64) ScalarElement {
	var r fr.Element
	r.Exp(e.v, new(big.Int).SetUint64(exp))
	return ScalarElement{r}
}

func (e ScalarElement) IsZero() bool { return e.v.IsZero() }
func (e ScalarElement) IsOne() bool  { return e.v.IsOne() }

// Legendre reports quadratic-residue status, per field.Element's contract
// used by the constraint system's coordinate-shift sampling (spec.md
// §4.1 step 2).
func (e ScalarElement) Legendre() int {
	return e.v.Legendre()
}

func (e ScalarElement) Bytes() []byte {
	b := e.v.Bytes()
	return b[:]
}

// ScalarFactory implements field.Factory[ScalarElement].
type ScalarFactory struct{}

func (ScalarFactory) Zero() ScalarElement { return ScalarElement{} }
func (ScalarFactory) One() ScalarElement {
	var v fr.Element
	v.SetOne()
	return ScalarElement{v}
}
func (ScalarFactory) FromUint64(x uint64) ScalarElement {
	var v fr.Element
	v.SetUint64(x)
	return ScalarElement{v}
}
func (ScalarFactory) FromBytes(b []byte) ScalarElement {
	var v fr.Element
	v.SetBytes(b)
	return ScalarElement{v}
}

// BaseElement wraps gnark-crypto's fp.Element to satisfy
// field.Element[BaseElement]; this is the curve's base field, used by
// the FqSponge to absorb group-element coordinates.
type BaseElement struct{ v fp.Element }

func (e BaseElement) Add(o BaseElement) BaseElement {
	var r fp.Element
	r.Add(&e.v, &o.v)
	return BaseElement{r}
}

func (e BaseElement) Sub(o BaseElement) BaseElement {
	var r fp.Element
	r.Sub(&e.v, &o.v)
	return BaseElement{r}
}

func (e BaseElement) Mul(o BaseElement) BaseElement {
	var r fp.Element
	r.Mul(&e.v, &o.v)
	return BaseElement{r}
}

func (e BaseElement) Neg() BaseElement {
	var r fp.Element
	r.Neg(&e.v)
	return BaseElement{r}
}

func (e BaseElement) Square() BaseElement {
	var r fp.Element
	r.Square(&e.v)
	return BaseElement{r}
}

func (e BaseElement) Inverse() (BaseElement, bool) {
	if e.v.IsZero() {
		return BaseElement{}, false
	}
	var r fp.Element
	r.Inverse(&e.v)
	return BaseElement{r}, true
}

func (e BaseElement) Pow(exp uint64) BaseElement {
	var r fp.Element
	r.Exp(e.v, new(big.Int).SetUint64(exp))
	return BaseElement{r}
}

func (e BaseElement) IsZero() bool { return e.v.IsZero() }
func (e BaseElement) IsOne() bool  { return e.v.IsOne() }
func (e BaseElement) Legendre() int {
	return e.v.Legendre()
}
func (e BaseElement) Bytes() []byte {
	b := e.v.Bytes()
	return b[:]
}

// BaseFactory implements field.Factory[BaseElement].
type BaseFactory struct{}

func (BaseFactory) Zero() BaseElement { return BaseElement{} }
func (BaseFactory) One() BaseElement {
	var v fp.Element
	v.SetOne()
	return BaseElement{v}
}
func (BaseFactory) FromUint64(x uint64) BaseElement {
	var v fp.Element
	v.SetUint64(x)
	return BaseElement{v}
}
func (BaseFactory) FromBytes(b []byte) BaseElement {
	var v fp.Element
	v.SetBytes(b)
	return BaseElement{v}
}
