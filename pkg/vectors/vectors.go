// Package vectors models known-answer test vectors for RSA PKCS#1 v1.5 and
// ECDSA, and reads and writes them as JSON, YAML, or CSV.
//
// Vectors are immutable inputs. Loading checks only the hex syntax; Validate
// enforces the width invariants so that a harness can report a malformed
// vector as a failure instead of refusing the whole file.
package vectors

import (
	"github.com/mahdiidarabi/sigkat/internal/curve"
	"github.com/mahdiidarabi/sigkat/internal/digest"
	"github.com/mahdiidarabi/sigkat/internal/ecsig"
	"github.com/mahdiidarabi/sigkat/internal/errors"
	"github.com/mahdiidarabi/sigkat/internal/rsasig"
)

// DefaultCurve is assumed for ECDSA vectors that do not name one.
const DefaultCurve = "P-384"

// RSAKey is RSA key material with declared field widths. D is empty for
// verify-only vectors.
type RSAKey struct {
	M     Hex `json:"m" yaml:"m"`
	D     Hex `json:"d,omitempty" yaml:"d,omitempty"`
	E     Hex `json:"e" yaml:"e"`
	MBits int `json:"m_bits" yaml:"m_bits"`
	DBits int `json:"d_bits,omitempty" yaml:"d_bits,omitempty"`
	EBits int `json:"e_bits" yaml:"e_bits"`
}

// RSAVector is one PKCS#1 v1.5 known answer: Signature is the signature of
// the pre-hashed Digest under Key.
type RSAVector struct {
	Key       RSAKey `json:"key" yaml:"key"`
	Hash      string `json:"hash,omitempty" yaml:"hash,omitempty"`
	Digest    Hex    `json:"digest" yaml:"digest"`
	Signature Hex    `json:"signature" yaml:"signature"`
	SSize     int    `json:"s_size" yaml:"s_size"`
	DSize     int    `json:"d_size" yaml:"d_size"`
}

// ECDSAVector is one ECDSA verification case: Result says whether (R, S)
// must verify for digest M under (Qx, Qy).
type ECDSAVector struct {
	Curve  string `json:"curve,omitempty" yaml:"curve,omitempty"`
	Hash   string `json:"hash,omitempty" yaml:"hash,omitempty"`
	Qx     Hex    `json:"qx" yaml:"qx"`
	Qy     Hex    `json:"qy" yaml:"qy"`
	R      Hex    `json:"r" yaml:"r"`
	S      Hex    `json:"s" yaml:"s"`
	M      Hex    `json:"m" yaml:"m"`
	Result bool   `json:"result" yaml:"result"`
}

// Collection is an ordered set of vectors. Order is preserved for reporting.
type Collection struct {
	RSA   []RSAVector   `json:"rsa,omitempty" yaml:"rsa,omitempty"`
	ECDSA []ECDSAVector `json:"ecdsa,omitempty" yaml:"ecdsa,omitempty"`
}

// Len returns the total number of vectors.
func (c *Collection) Len() int {
	return len(c.RSA) + len(c.ECDSA)
}

// Append adds the vectors of other after those already in c.
func (c *Collection) Append(other *Collection) {
	c.RSA = append(c.RSA, other.RSA...)
	c.ECDSA = append(c.ECDSA, other.ECDSA...)
}

// Validate checks every vector and returns the first failure, annotated
// with its kind and index.
func (c *Collection) Validate() error {
	for i := range c.RSA {
		if err := c.RSA[i].Validate(); err != nil {
			return errors.Wrapf(err, "rsa vector %d", i)
		}
	}
	for i := range c.ECDSA {
		if err := c.ECDSA[i].Validate(); err != nil {
			return errors.Wrapf(err, "ecdsa vector %d", i)
		}
	}
	return nil
}

// Algorithm returns the declared hash, or the one implied by d_size.
func (v *RSAVector) Algorithm() (digest.Algorithm, error) {
	if v.Hash != "" {
		return digest.Parse(v.Hash)
	}
	size := v.DSize
	if size == 0 {
		size = len(v.Digest)
	}
	return digest.FromSize(size)
}

// HasPrivateKey reports whether the vector carries d and can be re-signed.
func (v *RSAVector) HasPrivateKey() bool {
	return len(v.Key.D) > 0
}

// PublicKey decodes the verification key.
func (v *RSAVector) PublicKey() (*rsasig.PublicKey, error) {
	return rsasig.NewPublicKey(v.Key.M, v.Key.E, v.Key.MBits, v.Key.EBits)
}

// PrivateKey decodes the signing key. It fails with ErrInvalidKey when the
// vector has no d.
func (v *RSAVector) PrivateKey() (*rsasig.PrivateKey, error) {
	if !v.HasPrivateKey() {
		return nil, errors.Invalidf(errors.ErrInvalidKey, "vector has no private exponent")
	}
	return rsasig.NewPrivateKey(v.Key.M, v.Key.D, v.Key.MBits, v.Key.DBits)
}

// Validate enforces the RSA width invariants.
func (v *RSAVector) Validate() error {
	k := v.Key
	if k.MBits <= 0 || k.M.Bits() != k.MBits {
		return errors.Invalidf(errors.ErrInvalidEncoding, "m is %d bits, declared %d", k.M.Bits(), k.MBits)
	}
	if k.E.Bits() != k.EBits {
		return errors.Invalidf(errors.ErrInvalidEncoding, "e is %d bits, declared %d", k.E.Bits(), k.EBits)
	}
	if v.HasPrivateKey() && k.D.Bits() != k.DBits {
		return errors.Invalidf(errors.ErrInvalidEncoding, "d is %d bits, declared %d", k.D.Bits(), k.DBits)
	}
	if len(v.Signature) != v.SSize || v.SSize*8 != k.MBits {
		return errors.Invalidf(errors.ErrInvalidEncoding, "signature is %d bytes, s_size %d, modulus %d bits", len(v.Signature), v.SSize, k.MBits)
	}
	if len(v.Digest) != v.DSize {
		return errors.Invalidf(errors.ErrInvalidEncoding, "digest is %d bytes, d_size %d", len(v.Digest), v.DSize)
	}
	alg, err := v.Algorithm()
	if err != nil {
		return err
	}
	if alg.Size() != v.DSize {
		return errors.Invalidf(errors.ErrInvalidEncoding, "%s digest must be %d bytes, d_size %d", alg, alg.Size(), v.DSize)
	}
	if _, err := v.PublicKey(); err != nil {
		return err
	}
	if v.HasPrivateKey() {
		if _, err := v.PrivateKey(); err != nil {
			return err
		}
	}
	return nil
}

// CurveParams returns the vector's curve, P-384 when none is declared.
func (v *ECDSAVector) CurveParams() (*curve.Params, error) {
	name := v.Curve
	if name == "" {
		name = DefaultCurve
	}
	return curve.Lookup(name)
}

// Algorithm returns the declared hash, or the one implied by len(M).
func (v *ECDSAVector) Algorithm() (digest.Algorithm, error) {
	if v.Hash != "" {
		return digest.Parse(v.Hash)
	}
	return digest.FromSize(len(v.M))
}

// Verify runs ECDSA verification on the vector's fields. It does not look at
// Result.
func (v *ECDSAVector) Verify() bool {
	c, err := v.CurveParams()
	if err != nil {
		return false
	}
	return ecsig.VerifyFixed(c, v.Qx, v.Qy, v.M, v.R, v.S)
}

// Validate enforces the ECDSA width invariants. An off-curve public key is
// not a width error: such a vector is well formed and expected to fail.
func (v *ECDSAVector) Validate() error {
	c, err := v.CurveParams()
	if err != nil {
		return err
	}
	if len(v.Qx) != c.ByteLen() || len(v.Qy) != c.ByteLen() {
		return errors.Invalidf(errors.ErrInvalidEncoding, "%s coordinates must be %d bytes, got %d and %d", c.Name, c.ByteLen(), len(v.Qx), len(v.Qy))
	}
	if len(v.R) != c.ScalarLen() || len(v.S) != c.ScalarLen() {
		return errors.Invalidf(errors.ErrInvalidEncoding, "%s scalars must be %d bytes, got %d and %d", c.Name, c.ScalarLen(), len(v.R), len(v.S))
	}
	if len(v.M) == 0 {
		return errors.Invalidf(errors.ErrInvalidEncoding, "empty digest")
	}
	if v.Hash == "" {
		if _, err := digest.FromSize(len(v.M)); err != nil {
			return errors.Invalidf(errors.ErrInvalidEncoding, "no supported hash produces a %d-byte digest", len(v.M))
		}
		return nil
	}
	alg, err := digest.Parse(v.Hash)
	if err != nil {
		return err
	}
	if len(v.M) != alg.Size() {
		return errors.Invalidf(errors.ErrInvalidEncoding, "%s digest must be %d bytes, got %d", alg, alg.Size(), len(v.M))
	}
	return nil
}
