// Package curve implements short Weierstrass curve arithmetic
// (y² = x³ + ax + b over GF(p)) for the ECDSA primitive.
//
// Points are affine at the API boundary and Jacobian internally. The
// identity is carried out of band in Point.Inf and is never serialized.
package curve

import (
	"crypto/elliptic"
	"math/big"
	"sort"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/sigkat/internal/bigint"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// Params describes a curve. Values are configuration and must not be
// mutated after registration.
type Params struct {
	Name    string
	P       *big.Int // field prime
	A, B    *big.Int // curve coefficients
	Gx, Gy  *big.Int // base point
	N       *big.Int // order of the base point
	BitSize int      // field size in bits
}

// ByteLen returns the width of one serialized coordinate.
func (c *Params) ByteLen() int {
	return (c.BitSize + 7) / 8
}

// ScalarLen returns the width of one serialized scalar (r, s, or a private
// key).
func (c *Params) ScalarLen() int {
	return bigint.BitLenBytes(c.N)
}

// Generator returns the base point.
func (c *Params) Generator() Point {
	return Point{X: new(big.Int).Set(c.Gx), Y: new(big.Int).Set(c.Gy)}
}

var registry = map[string]*Params{}

var aliases = map[string]string{
	"P384":       "P-384",
	"SECP384R1":  "P-384",
	"P256":       "P-256",
	"SECP256R1":  "P-256",
	"PRIME256V1": "P-256",
	"P521":       "P-521",
	"SECP521R1":  "P-521",
	"SECP256K1":  "secp256k1",
}

func init() {
	register(fromNIST(elliptic.P384().Params()))
	register(fromNIST(elliptic.P256().Params()))
	register(fromNIST(elliptic.P521().Params()))

	k := secp256k1.S256().Params()
	register(&Params{
		Name:    "secp256k1",
		P:       k.P,
		A:       new(big.Int),
		B:       k.B,
		Gx:      k.Gx,
		Gy:      k.Gy,
		N:       k.N,
		BitSize: k.BitSize,
	})
}

// NIST prime curves all use a = -3.
func fromNIST(p *elliptic.CurveParams) *Params {
	return &Params{
		Name:    p.Name,
		P:       p.P,
		A:       new(big.Int).Sub(p.P, big.NewInt(3)),
		B:       p.B,
		Gx:      p.Gx,
		Gy:      p.Gy,
		N:       p.N,
		BitSize: p.BitSize,
	}
}

func register(c *Params) {
	registry[c.Name] = c
}

// P384 returns the NIST P-384 parameters.
func P384() *Params { return registry["P-384"] }

// Lookup returns the curve registered under name. Common aliases such as
// "secp384r1" are accepted.
func Lookup(name string) (*Params, error) {
	if c, ok := registry[name]; ok {
		return c, nil
	}
	if canonical, ok := aliases[strings.ToUpper(strings.ReplaceAll(name, "-", ""))]; ok {
		return registry[canonical], nil
	}
	return nil, errors.Invalidf(errors.ErrUnsupportedAlgorithm, "curve %q", name)
}

// Names lists the registered curve names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
