// Package bigint provides the arbitrary-precision helpers shared by the RSA
// and elliptic-curve code: fixed-width big-endian encoding, modular
// exponentiation and modular inversion.
//
// Exponentiation uses a Montgomery ladder so that every exponent bit costs the
// same sequence of big-number operations. math/big itself is not constant
// time, so this package is suitable for conformance testing, not for handling
// production secrets.
package bigint

import (
	"crypto/subtle"
	"math/big"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// Fixed is a modulus-bound integer: a big-endian byte string of a declared bit
// width. Leading zero bytes are significant padding.
type Fixed struct {
	bytes []byte
	bits  int
}

// NewFixed validates b against bits and returns the fixed-width value. The
// byte slice is copied.
func NewFixed(b []byte, bits int) (Fixed, error) {
	if err := checkWidth(len(b), bits); err != nil {
		return Fixed{}, err
	}
	return Fixed{bytes: append([]byte(nil), b...), bits: bits}, nil
}

// Bits returns the declared bit width.
func (f Fixed) Bits() int { return f.bits }

// Bytes returns a copy of the big-endian encoding.
func (f Fixed) Bytes() []byte { return append([]byte(nil), f.bytes...) }

// Len returns the encoded length in bytes.
func (f Fixed) Len() int { return len(f.bytes) }

// Int returns the integer value.
func (f Fixed) Int() *big.Int { return new(big.Int).SetBytes(f.bytes) }

// FromFixed decodes a big-endian byte string whose declared width is bits.
func FromFixed(b []byte, bits int) (*big.Int, error) {
	if err := checkWidth(len(b), bits); err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// ToFixed encodes x as exactly size big-endian bytes, left-padded with zeros.
func ToFixed(x *big.Int, size int) ([]byte, error) {
	if x == nil || x.Sign() < 0 {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "cannot encode a negative or nil integer")
	}
	if size <= 0 || BitLenBytes(x) > size {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "%d-bit value does not fit in %d bytes", x.BitLen(), size)
	}
	return x.FillBytes(make([]byte, size)), nil
}

// Width returns the byte length of a field holding bits bits.
func Width(bits int) int {
	return (bits + 7) / 8
}

// BitLenBytes returns the minimal byte length of x's magnitude.
func BitLenBytes(x *big.Int) int {
	return Width(x.BitLen())
}

// Equal reports whether a and b hold the same bytes, in time that depends
// only on their lengths.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

func checkWidth(n, bits int) error {
	if bits <= 0 || bits%8 != 0 {
		return errors.Invalidf(errors.ErrInvalidEncoding, "declared width of %d bits is not a positive multiple of 8", bits)
	}
	if n*8 != bits {
		return errors.Invalidf(errors.ErrInvalidEncoding, "%d bytes do not match declared width of %d bits", n, bits)
	}
	return nil
}
