package ecsig

import (
	"math/big"

	"github.com/mahdiidarabi/sigkat/internal/bigint"
	"github.com/mahdiidarabi/sigkat/internal/curve"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// MaxNonceAttempts bounds how many nonces Sign draws before giving up.
const MaxNonceAttempts = 8

var bigOne = big.NewInt(1)

// Signature is an ECDSA (r, s) pair.
type Signature struct {
	R, S *big.Int
}

// hashToInt implements bits2int: the leftmost bitlen(n) bits of the digest as
// an integer. The result is not reduced mod n.
func hashToInt(c *curve.Params, digest []byte) *big.Int {
	orderBits := c.N.BitLen()
	orderBytes := (orderBits + 7) / 8
	if len(digest) > orderBytes {
		digest = digest[:orderBytes]
	}
	e := new(big.Int).SetBytes(digest)
	if excess := len(digest)*8 - orderBits; excess > 0 {
		e.Rsh(e, uint(excess))
	}
	return e
}

func inRange(c *curve.Params, x *big.Int) bool {
	return x != nil && x.Sign() > 0 && x.Cmp(c.N) < 0
}

// Sign signs an already-hashed digest. A nil nonces uses RFC 6979 with the
// hash inferred from len(digest).
//
// A nonce outside [1, n-1], or one that yields r == 0 or s == 0, is discarded
// and the next one is drawn. After MaxNonceAttempts discards Sign returns
// ErrNonceExhausted.
func Sign(priv *PrivateKey, digest []byte, nonces NonceSource) (*Signature, error) {
	if priv == nil || priv.Curve == nil || !inRange(priv.Curve, priv.D) {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "private scalar out of range")
	}
	if nonces == nil {
		nonces = RFC6979{}
	}
	c := priv.Curve
	e := hashToInt(c, digest)
	e.Mod(e, c.N)

	stream, err := nonces.Stream(c, priv.D, digest)
	if err != nil {
		return nil, errors.Wrap(err, "nonce source")
	}

	for attempt := 0; attempt < MaxNonceAttempts; attempt++ {
		k, err := stream.Next()
		if err != nil {
			return nil, errors.Wrap(err, "draw nonce")
		}
		if !inRange(c, k) {
			continue
		}

		R, err := c.ScalarBaseMult(k)
		if err != nil {
			continue
		}
		r := new(big.Int).Mod(R.X, c.N)
		if r.Sign() == 0 {
			continue
		}

		kinv, err := bigint.ModInverse(k, c.N)
		if err != nil {
			continue
		}
		s := new(big.Int).Mul(r, priv.D)
		s.Add(s, e)
		s.Mul(s, kinv)
		s.Mod(s, c.N)
		if s.Sign() == 0 {
			continue
		}
		return &Signature{R: r, S: s}, nil
	}
	return nil, errors.Invalidf(errors.ErrNonceExhausted, "no usable nonce after %d attempts", MaxNonceAttempts)
}

// Verify reports whether (r, s) is a valid signature of digest under pub.
// Out-of-range r or s is rejected before any point arithmetic, and an
// off-curve public key never verifies.
func Verify(pub *PublicKey, digest []byte, r, s *big.Int) bool {
	if pub == nil || pub.Curve == nil {
		return false
	}
	c := pub.Curve
	if !inRange(c, r) || !inRange(c, s) {
		return false
	}
	if !c.IsOnCurve(pub.Q) {
		return false
	}

	e := hashToInt(c, digest)
	e.Mod(e, c.N)

	w, err := bigint.ModInverse(s, c.N)
	if err != nil {
		return false
	}
	u1 := new(big.Int).Mul(e, w)
	u1.Mod(u1, c.N)
	u2 := new(big.Int).Mul(r, w)
	u2.Mod(u2, c.N)

	R := c.CombinedMult(u1, u2, pub.Q)
	if R.Inf {
		return false
	}
	v := new(big.Int).Mod(R.X, c.N)
	return v.Cmp(r) == 0
}

// VerifyFixed is Verify over the fixed-width fields of a test vector: qx and
// qy at the coordinate width, r and s at the scalar width. Any width mismatch
// or off-curve point makes it return false.
func VerifyFixed(c *curve.Params, qx, qy, digest, r, s []byte) bool {
	if c == nil || len(r) != c.ScalarLen() || len(s) != c.ScalarLen() {
		return false
	}
	pub, err := NewPublicKey(c, qx, qy)
	if err != nil {
		return false
	}
	return Verify(pub, digest, new(big.Int).SetBytes(r), new(big.Int).SetBytes(s))
}

// Fixed returns r and s each encoded at the scalar width of c.
func (sig *Signature) Fixed(c *curve.Params) (r, s []byte, err error) {
	if r, err = bigint.ToFixed(sig.R, c.ScalarLen()); err != nil {
		return nil, nil, errors.Wrap(err, "r")
	}
	if s, err = bigint.ToFixed(sig.S, c.ScalarLen()); err != nil {
		return nil, nil, errors.Wrap(err, "s")
	}
	return r, s, nil
}
