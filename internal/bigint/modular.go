package bigint

import (
	"math/big"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// ErrNotInvertible is returned by ModInverse when gcd(a, m) != 1.
var ErrNotInvertible = errors.New("value is not invertible")

var one = big.NewInt(1)

// PowMod returns base^exp mod mod.
func PowMod(base, exp, mod *big.Int) (*big.Int, error) {
	if exp == nil {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "nil exponent")
	}
	return PowModFixed(base, exp, mod, exp.BitLen())
}

// PowModFixed returns base^exp mod mod, running the ladder over exactly bits
// iterations. Use it with the declared width of a secret exponent so the
// iteration count does not depend on the exponent's leading zeros.
func PowModFixed(base, exp, mod *big.Int, bits int) (*big.Int, error) {
	switch {
	case mod == nil || mod.Sign() <= 0:
		return nil, errors.Invalidf(errors.ErrInvalidKey, "modulus must be positive")
	case base == nil || exp == nil:
		return nil, errors.Invalidf(errors.ErrInvalidKey, "nil operand")
	case exp.Sign() < 0:
		return nil, errors.Invalidf(errors.ErrInvalidKey, "negative exponent")
	case bits < exp.BitLen():
		return nil, errors.Invalidf(errors.ErrInvalidKey, "%d-bit exponent exceeds ladder width %d", exp.BitLen(), bits)
	}
	if mod.Cmp(one) == 0 {
		return new(big.Int), nil
	}

	// Invariant: r1 = r0 * base (mod m).
	r0 := big.NewInt(1)
	r1 := new(big.Int).Mod(base, mod)
	t := new(big.Int)
	for i := bits - 1; i >= 0; i-- {
		if exp.Bit(i) == 0 {
			t.Mul(r0, r1)
			r1.Mod(t, mod)
			t.Mul(r0, r0)
			r0.Mod(t, mod)
		} else {
			t.Mul(r0, r1)
			r0.Mod(t, mod)
			t.Mul(r1, r1)
			r1.Mod(t, mod)
		}
	}
	return r0, nil
}

// ModInverse returns x such that a*x ≡ 1 (mod m), computed with the extended
// Euclidean algorithm.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "modulus must be positive")
	}
	if a == nil {
		return nil, ErrNotInvertible
	}

	oldR := new(big.Int).Mod(a, m)
	r := new(big.Int).Set(m)
	oldS := big.NewInt(1)
	s := new(big.Int)
	q := new(big.Int)
	t := new(big.Int)

	for r.Sign() != 0 {
		q.Quo(oldR, r)

		t.Mul(q, r)
		t.Sub(oldR, t)
		oldR.Set(r)
		r.Set(t)

		t.Mul(q, s)
		t.Sub(oldS, t)
		oldS.Set(s)
		s.Set(t)
	}

	if oldR.Cmp(one) != 0 {
		return nil, ErrNotInvertible
	}
	return oldS.Mod(oldS, m), nil
}

// Mod returns x mod m as a new integer in [0, m-1].
func Mod(x, m *big.Int) *big.Int {
	return new(big.Int).Mod(x, m)
}
