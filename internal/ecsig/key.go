// Package ecsig implements ECDSA signing and verification over the curves in
// internal/curve.
//
// Verification never errors: malformed or out-of-range input simply does not
// verify. Signing draws nonces from a NonceSource; RFC 6979 deterministic
// nonces are the default so that signing is reproducible.
package ecsig

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/mahdiidarabi/sigkat/internal/bigint"
	"github.com/mahdiidarabi/sigkat/internal/curve"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// PublicKey is an ECDSA verification key.
type PublicKey struct {
	Curve *curve.Params
	Q     curve.Point
}

// PrivateKey is an ECDSA signing key with its public half.
type PrivateKey struct {
	PublicKey
	D *big.Int
}

// NewPublicKey decodes a public key from fixed-width qx and qy fields. The
// point must lie on c.
func NewPublicKey(c *curve.Params, qx, qy []byte) (*PublicKey, error) {
	q, err := c.PointFromCoordinates(qx, qy)
	if err != nil {
		return nil, err
	}
	return &PublicKey{Curve: c, Q: q}, nil
}

// PublicKeyFromBytes decodes the qx || qy layout produced by Bytes.
func PublicKeyFromBytes(c *curve.Params, b []byte) (*PublicKey, error) {
	size := c.ByteLen()
	if len(b) != 2*size {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "%s public key must be %d bytes, got %d", c.Name, 2*size, len(b))
	}
	return NewPublicKey(c, b[:size], b[size:])
}

// Bytes returns qx || qy, each at the coordinate width.
func (k *PublicKey) Bytes() ([]byte, error) {
	enc, err := k.Curve.Marshal(k.Q)
	if err != nil {
		return nil, err
	}
	return enc[1:], nil
}

// NewPrivateKey decodes a fixed-width private scalar and derives the public
// point.
func NewPrivateKey(c *curve.Params, d []byte) (*PrivateKey, error) {
	if len(d) != c.ScalarLen() {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "%s private key must be %d bytes, got %d", c.Name, c.ScalarLen(), len(d))
	}
	x := new(big.Int).SetBytes(d)
	q, err := c.ScalarBaseMult(x)
	if err != nil {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "%s private scalar outside [1, n-1]", c.Name)
	}
	return &PrivateKey{PublicKey: PublicKey{Curve: c, Q: q}, D: x}, nil
}

// Bytes returns the private scalar at the scalar width.
func (k *PrivateKey) Bytes() ([]byte, error) {
	return bigint.ToFixed(k.D, k.Curve.ScalarLen())
}

// Public returns the verification key.
func (k *PrivateKey) Public() *PublicKey {
	return &k.PublicKey
}

// GenerateKey returns a fresh key pair on c. The scalar is drawn with 64
// extra bits and reduced into [1, n-1] so the bias is negligible.
func GenerateKey(c *curve.Params, random io.Reader) (*PrivateKey, error) {
	if random == nil {
		random = rand.Reader
	}
	buf := make([]byte, c.ScalarLen()+8)
	if _, err := io.ReadFull(random, buf); err != nil {
		return nil, errors.Wrap(err, "read key material")
	}

	nMinus1 := new(big.Int).Sub(c.N, bigOne)
	d := new(big.Int).SetBytes(buf)
	d.Mod(d, nMinus1)
	d.Add(d, bigOne)

	q, err := c.ScalarBaseMult(d)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PublicKey: PublicKey{Curve: c, Q: q}, D: d}, nil
}
