package bn254

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// Point adapts gnark-crypto's G1Affine to curve.Point[ScalarElement, Point].
type Point struct {
	p bn254.G1Affine
}

func NewPoint(p bn254.G1Affine) Point { return Point{p} }

func (p Point) Add(o Point) Point {
	var r bn254.G1Jac
	var a, b bn254.G1Jac
	a.FromAffine(&p.p)
	b.FromAffine(&o.p)
	r.Set(&a).AddAssign(&b)
	var out bn254.G1Affine
	out.FromJacobian(&r)
	return Point{out}
}

func (p Point) Neg() Point {
	var out bn254.G1Affine
	out.Neg(&p.p)
	return Point{out}
}

func (p Point) ScalarMul(s ScalarElement) Point {
	var out bn254.G1Affine
	var scalar big.Int
	s.v.BigInt(&scalar)
	out.ScalarMultiplication(&p.p, &scalar)
	return Point{out}
}

func (p Point) IsZero() bool {
	return p.p.IsInfinity()
}

// Coordinates returns the canonical byte encodings of the affine (x, y)
// pair, what an FqSponge absorbs per spec.md §4.2.
func (p Point) Coordinates() (x, y []byte) {
	xb := p.p.X.Bytes()
	yb := p.p.Y.Bytes()
	return xb[:], yb[:]
}
