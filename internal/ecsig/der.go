package ecsig

import (
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// MarshalDER encodes the signature as
//
//	ECDSA-Sig-Value ::= SEQUENCE { r INTEGER, s INTEGER }
func (sig *Signature) MarshalDER() ([]byte, error) {
	if sig == nil || sig.R == nil || sig.S == nil || sig.R.Sign() <= 0 || sig.S.Sign() <= 0 {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "signature components must be positive")
	}
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(sig.R)
		b.AddASN1BigInt(sig.S)
	})
	return b.Bytes()
}

// ParseDER decodes a DER ECDSA-Sig-Value. Trailing data is rejected.
func ParseDER(der []byte) (*Signature, error) {
	var (
		input = cryptobyte.String(der)
		inner cryptobyte.String
		r     = new(big.Int)
		s     = new(big.Int)
	)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(r) || !inner.ReadASN1Integer(s) || !inner.Empty() {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "malformed ECDSA-Sig-Value")
	}
	return &Signature{R: r, S: s}, nil
}
