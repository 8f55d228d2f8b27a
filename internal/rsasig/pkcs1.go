package rsasig

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/sigkat/internal/bigint"
	"github.com/mahdiidarabi/sigkat/internal/digest"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// minPadding is the minimum number of 0xFF bytes in the padding string.
const minPadding = 8

// encode builds the k-byte encoded message
//
//	EM = 0x00 || 0x01 || PS (0xFF...) || 0x00 || DigestInfo
func encode(alg digest.Algorithm, d []byte, k int) ([]byte, error) {
	t, err := digest.DigestInfo(alg, d)
	if err != nil {
		return nil, err
	}
	if k < len(t)+minPadding+3 {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "%d-byte modulus too short for %s DigestInfo", k, alg)
	}

	em := make([]byte, k)
	em[1] = 0x01
	psEnd := k - len(t) - 1
	for i := 2; i < psEnd; i++ {
		em[i] = 0xff
	}
	copy(em[psEnd+1:], t)
	return em, nil
}

// Sign returns the PKCS#1 v1.5 signature of the already-hashed digest d,
// encoded at the modulus width.
func Sign(priv *PrivateKey, alg digest.Algorithm, d []byte) ([]byte, error) {
	if priv == nil {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "nil private key")
	}
	em, err := encode(alg, d, priv.Size())
	if err != nil {
		return nil, err
	}
	m := new(big.Int).SetBytes(em)
	if m.Cmp(priv.N) >= 0 {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "encoded message exceeds modulus")
	}

	s, err := bigint.PowModFixed(m, priv.D, priv.N, priv.dBits)
	if err != nil {
		return nil, errors.Wrap(err, "rsa sign")
	}
	return bigint.ToFixed(s, priv.Size())
}

// Verify reports whether sig is a valid PKCS#1 v1.5 signature of digest d.
// Structural problems (wrong lengths, bad padding, unknown hash) make it
// return false; it never panics on malformed input.
func Verify(pub *PublicKey, alg digest.Algorithm, d, sig []byte) bool {
	return Check(pub, alg, d, sig) == nil
}

// VerifyAuto is Verify with the hash algorithm inferred from len(d).
func VerifyAuto(pub *PublicKey, d, sig []byte) bool {
	alg, err := digest.FromSize(len(d))
	if err != nil {
		return false
	}
	return Verify(pub, alg, d, sig)
}

// Rejection explains why a signature did not verify. It is a diagnostic, not
// an error condition.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

func reject(format string, args ...any) *Rejection {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// Check verifies sig and returns nil on success or a *Rejection describing the
// first structural mismatch.
func Check(pub *PublicKey, alg digest.Algorithm, d, sig []byte) *Rejection {
	if pub == nil {
		return reject("nil public key")
	}
	k := pub.Size()
	if len(sig) != k {
		return reject("signature is %d bytes, modulus is %d", len(sig), k)
	}
	if !alg.Valid() {
		return reject("unsupported hash algorithm")
	}
	if len(d) != alg.Size() {
		return reject("%s digest must be %d bytes, got %d", alg, alg.Size(), len(d))
	}

	s := new(big.Int).SetBytes(sig)
	if s.Cmp(pub.N) >= 0 {
		return reject("signature representative out of range")
	}
	m, err := bigint.PowMod(s, pub.E, pub.N)
	if err != nil {
		return reject("exponentiation failed: %v", err)
	}
	em, err := bigint.ToFixed(m, k)
	if err != nil {
		return reject("encoded message does not fit modulus")
	}
	want, err := encode(alg, d, k)
	if err != nil {
		return reject("%v", err)
	}
	if bigint.Equal(em, want) {
		return nil
	}
	return diagnose(em, alg, d)
}

// diagnose runs only after the constant-time comparison has failed, to turn
// the mismatch into a readable reason.
func diagnose(em []byte, alg digest.Algorithm, d []byte) *Rejection {
	if len(em) < 2 || em[0] != 0x00 || em[1] != 0x01 {
		return reject("bad block type")
	}
	i := 2
	for i < len(em) && em[i] == 0xff {
		i++
	}
	if i-2 < minPadding {
		return reject("padding string shorter than %d bytes", minPadding)
	}
	if i >= len(em) || em[i] != 0x00 {
		return reject("missing padding separator")
	}
	gotAlg, gotDigest, err := digest.ParseDigestInfo(em[i+1:])
	if err != nil {
		return reject("malformed DigestInfo: %v", err)
	}
	if gotAlg != alg {
		return reject("signature carries %s, expected %s", gotAlg, alg)
	}
	if !bytes.Equal(gotDigest, d) {
		return reject("digest mismatch")
	}
	return reject("encoded message mismatch")
}
