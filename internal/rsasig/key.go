// Package rsasig implements RSASSA-PKCS1-v1_5 signing and verification on top
// of the owned big-integer arithmetic in internal/bigint.
//
// Keys are built from the fixed-width encodings used by the known-answer
// vectors: every field carries its declared bit width and must match it
// exactly.
package rsasig

import (
	"math/big"

	"github.com/mahdiidarabi/sigkat/internal/bigint"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

var bigOne = big.NewInt(1)

// PublicKey is an RSA verification key.
type PublicKey struct {
	N     *big.Int // modulus
	E     *big.Int // public exponent
	bits  int      // declared modulus width
	eBits int      // declared exponent width
}

// PrivateKey is an RSA signing key. Only the modulus and private exponent
// are required for PKCS#1 v1.5 signing.
type PrivateKey struct {
	N     *big.Int // modulus
	D     *big.Int // private exponent
	bits  int      // declared modulus width
	dBits int      // declared private exponent width
}

// NewPublicKey decodes a public key from fixed-width big-endian fields.
func NewPublicKey(m, e []byte, mBits, eBits int) (*PublicKey, error) {
	if eBits == 0 || len(e) == 0 {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "public exponent has zero size")
	}
	n, err := decodeModulus(m, mBits)
	if err != nil {
		return nil, err
	}
	exp, err := bigint.FromFixed(e, eBits)
	if err != nil {
		return nil, errors.Wrap(err, "public exponent")
	}
	if eBits > mBits || exp.Cmp(n) >= 0 {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "public exponent is not below the modulus")
	}
	if exp.Cmp(bigOne) <= 0 || exp.Bit(0) == 0 {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "public exponent must be odd and greater than 1")
	}
	return &PublicKey{N: n, E: exp, bits: mBits, eBits: eBits}, nil
}

// NewPrivateKey decodes a private key from fixed-width big-endian fields.
func NewPrivateKey(m, d []byte, mBits, dBits int) (*PrivateKey, error) {
	if dBits == 0 || len(d) == 0 {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "private exponent has zero size")
	}
	n, err := decodeModulus(m, mBits)
	if err != nil {
		return nil, err
	}
	exp, err := bigint.FromFixed(d, dBits)
	if err != nil {
		return nil, errors.Wrap(err, "private exponent")
	}
	if dBits > mBits {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "private exponent is wider than the modulus")
	}
	if exp.Sign() == 0 || exp.Cmp(n) >= 0 {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "private exponent out of range")
	}
	return &PrivateKey{N: n, D: exp, bits: mBits, dBits: dBits}, nil
}

func decodeModulus(m []byte, mBits int) (*big.Int, error) {
	n, err := bigint.FromFixed(m, mBits)
	if err != nil {
		return nil, errors.Wrap(err, "modulus")
	}
	if n.Bit(0) == 0 || n.Cmp(bigOne) <= 0 {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "modulus must be odd and greater than 1")
	}
	return n, nil
}

// Bits returns the declared modulus width.
func (k *PublicKey) Bits() int { return k.bits }

// Size returns the modulus width in bytes, which is also the signature length.
func (k *PublicKey) Size() int { return bigint.Width(k.bits) }

// ExponentBits returns the declared public exponent width.
func (k *PublicKey) ExponentBits() int { return k.eBits }

// Bits returns the declared modulus width.
func (k *PrivateKey) Bits() int { return k.bits }

// Size returns the modulus width in bytes.
func (k *PrivateKey) Size() int { return bigint.Width(k.bits) }

// ExponentBits returns the declared private exponent width.
func (k *PrivateKey) ExponentBits() int { return k.dBits }
