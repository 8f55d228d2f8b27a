package curve

import (
	"math/big"

	"github.com/mahdiidarabi/sigkat/internal/bigint"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// Point is an affine curve point. The zero Point with Inf set is the
// identity; X and Y are ignored in that case.
type Point struct {
	X, Y *big.Int
	Inf  bool
}

// Infinity returns the identity element.
func Infinity() Point { return Point{Inf: true} }

// Equal reports whether p and q are the same point.
func (p Point) Equal(q Point) bool {
	if p.Inf || q.Inf {
		return p.Inf == q.Inf
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// jacobian holds (X, Y, Z) representing (X/Z², Y/Z³). Z == 0 is infinity.
type jacobian struct {
	x, y, z *big.Int
}

func (c *Params) toJacobian(p Point) jacobian {
	if p.Inf {
		return jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
	}
	return jacobian{x: new(big.Int).Set(p.X), y: new(big.Int).Set(p.Y), z: big.NewInt(1)}
}

func (c *Params) toAffine(j jacobian) Point {
	if j.z.Sign() == 0 {
		return Infinity()
	}
	zinv, err := bigint.ModInverse(j.z, c.P)
	if err != nil {
		// z is nonzero mod a prime, so this only happens for a corrupt
		// parameter set.
		panic("curve: non-invertible Z coordinate")
	}
	zinv2 := c.mul(zinv, zinv)
	x := c.mul(j.x, zinv2)
	y := c.mul(j.y, c.mul(zinv2, zinv))
	return Point{X: x, Y: y}
}

func (c *Params) mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, c.P)
}

func (c *Params) sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, c.P)
}

func (c *Params) add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, c.P)
}

func (c *Params) mulInt(a *big.Int, k int64) *big.Int {
	r := new(big.Int).Mul(a, big.NewInt(k))
	return r.Mod(r, c.P)
}

// double uses the generic-a doubling formula:
//
//	S = 4·X·Y², M = 3·X² + a·Z⁴
//	X' = M² − 2S, Y' = M·(S − X') − 8·Y⁴, Z' = 2·Y·Z
func (c *Params) double(p jacobian) jacobian {
	if p.z.Sign() == 0 || p.y.Sign() == 0 {
		return jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
	}
	xx := c.mul(p.x, p.x)
	yy := c.mul(p.y, p.y)
	yyyy := c.mul(yy, yy)
	zz := c.mul(p.z, p.z)

	s := c.mulInt(c.mul(p.x, yy), 4)
	m := c.add(c.mulInt(xx, 3), c.mul(c.A, c.mul(zz, zz)))

	x3 := c.sub(c.mul(m, m), c.mulInt(s, 2))
	y3 := c.sub(c.mul(m, c.sub(s, x3)), c.mulInt(yyyy, 8))
	z3 := c.mulInt(c.mul(p.y, p.z), 2)
	return jacobian{x: x3, y: y3, z: z3}
}

// addJ adds two Jacobian points, falling back to double when they coincide.
func (c *Params) addJ(p, q jacobian) jacobian {
	if p.z.Sign() == 0 {
		return q
	}
	if q.z.Sign() == 0 {
		return p
	}
	z1z1 := c.mul(p.z, p.z)
	z2z2 := c.mul(q.z, q.z)
	u1 := c.mul(p.x, z2z2)
	u2 := c.mul(q.x, z1z1)
	s1 := c.mul(p.y, c.mul(q.z, z2z2))
	s2 := c.mul(q.y, c.mul(p.z, z1z1))

	h := c.sub(u2, u1)
	r := c.sub(s2, s1)
	if h.Sign() == 0 {
		if r.Sign() == 0 {
			return c.double(p)
		}
		return jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
	}

	hh := c.mul(h, h)
	hhh := c.mul(hh, h)
	v := c.mul(u1, hh)

	x3 := c.sub(c.sub(c.mul(r, r), hhh), c.mulInt(v, 2))
	y3 := c.sub(c.mul(r, c.sub(v, x3)), c.mul(s1, hhh))
	z3 := c.mul(c.mul(p.z, q.z), h)
	return jacobian{x: x3, y: y3, z: z3}
}

// ladder computes k·p with a Montgomery ladder over the bit length of the
// group order, so the iteration count does not depend on k. k must already
// be reduced mod n; zero yields the identity.
func (c *Params) ladder(k *big.Int, p jacobian) jacobian {
	r0 := jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
	r1 := p
	for i := c.N.BitLen() - 1; i >= 0; i-- {
		if k.Bit(i) == 0 {
			r1 = c.addJ(r0, r1)
			r0 = c.double(r0)
		} else {
			r0 = c.addJ(r0, r1)
			r1 = c.double(r1)
		}
	}
	return r0
}

// IsOnCurve reports whether p is a finite point with coordinates in [0, p-1]
// satisfying the curve equation.
func (c *Params) IsOnCurve(p Point) bool {
	if p.Inf || p.X == nil || p.Y == nil {
		return false
	}
	if p.X.Sign() < 0 || p.X.Cmp(c.P) >= 0 || p.Y.Sign() < 0 || p.Y.Cmp(c.P) >= 0 {
		return false
	}
	lhs := c.mul(p.Y, p.Y)
	rhs := c.mul(c.mul(p.X, p.X), p.X)
	rhs = c.add(rhs, c.mul(c.A, p.X))
	rhs = c.add(rhs, c.B)
	return lhs.Cmp(rhs) == 0
}

// Add returns p + q. Both inputs may be the identity.
func (c *Params) Add(p, q Point) Point {
	return c.toAffine(c.addJ(c.toJacobian(p), c.toJacobian(q)))
}

// Double returns 2·p.
func (c *Params) Double(p Point) Point {
	return c.toAffine(c.double(c.toJacobian(p)))
}

// Neg returns −p.
func (c *Params) Neg(p Point) Point {
	if p.Inf {
		return p
	}
	y := new(big.Int).Sub(c.P, p.Y)
	y.Mod(y, c.P)
	return Point{X: new(big.Int).Set(p.X), Y: y}
}

// ScalarMult returns k·p.
//
// Args:
//   - k: scalar in [1, n-1]
//   - p: a finite point on the curve
//
// Returns:
//   - ErrInvalidScalar when k is outside [1, n-1], ErrInvalidKey when p is
//     not a finite curve point
func (c *Params) ScalarMult(k *big.Int, p Point) (Point, error) {
	if err := c.checkScalar(k); err != nil {
		return Point{}, err
	}
	if !c.IsOnCurve(p) {
		return Point{}, errors.Invalidf(errors.ErrInvalidKey, "point is not on %s", c.Name)
	}
	return c.toAffine(c.ladder(k, c.toJacobian(p))), nil
}

// ScalarBaseMult returns k·G.
func (c *Params) ScalarBaseMult(k *big.Int) (Point, error) {
	if err := c.checkScalar(k); err != nil {
		return Point{}, err
	}
	return c.toAffine(c.ladder(k, c.toJacobian(c.Generator()))), nil
}

// CombinedMult returns u1·G + u2·q. The scalars are reduced mod n and may be
// zero; the result may be the identity. q must be a curve point.
func (c *Params) CombinedMult(u1, u2 *big.Int, q Point) Point {
	a := new(big.Int).Mod(u1, c.N)
	b := new(big.Int).Mod(u2, c.N)
	r := c.addJ(c.ladder(a, c.toJacobian(c.Generator())), c.ladder(b, c.toJacobian(q)))
	return c.toAffine(r)
}

func (c *Params) checkScalar(k *big.Int) error {
	if k == nil || k.Sign() <= 0 || k.Cmp(c.N) >= 0 {
		return errors.Invalidf(errors.ErrInvalidScalar, "scalar outside [1, n-1] for %s", c.Name)
	}
	return nil
}

// Marshal encodes p as an uncompressed SEC1 point: 0x04 || X || Y.
func (c *Params) Marshal(p Point) ([]byte, error) {
	if p.Inf {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "the identity has no encoding")
	}
	size := c.ByteLen()
	x, err := bigint.ToFixed(p.X, size)
	if err != nil {
		return nil, errors.Wrap(err, "x coordinate")
	}
	y, err := bigint.ToFixed(p.Y, size)
	if err != nil {
		return nil, errors.Wrap(err, "y coordinate")
	}
	out := make([]byte, 0, 1+2*size)
	out = append(out, 0x04)
	out = append(out, x...)
	return append(out, y...), nil
}

// Unmarshal decodes an uncompressed SEC1 point and checks it is on the curve.
func (c *Params) Unmarshal(data []byte) (Point, error) {
	size := c.ByteLen()
	if len(data) != 1+2*size || data[0] != 0x04 {
		return Point{}, errors.Invalidf(errors.ErrInvalidEncoding, "not an uncompressed %s point", c.Name)
	}
	return c.PointFromCoordinates(data[1:1+size], data[1+size:])
}

// PointFromCoordinates builds a point from the fixed-width qx and qy fields
// used by the vector format and checks that it lies on the curve.
func (c *Params) PointFromCoordinates(x, y []byte) (Point, error) {
	size := c.ByteLen()
	if len(x) != size || len(y) != size {
		return Point{}, errors.Invalidf(errors.ErrInvalidEncoding,
			"%s coordinates must be %d bytes, got %d and %d", c.Name, size, len(x), len(y))
	}
	p := Point{X: new(big.Int).SetBytes(x), Y: new(big.Int).SetBytes(y)}
	if !c.IsOnCurve(p) {
		return Point{}, errors.Invalidf(errors.ErrInvalidKey, "point is not on %s", c.Name)
	}
	return p, nil
}
