// Package digest adapts the SHA-2 family to the signature primitives: digest
// computation, algorithm lookup by name or digest length, and the DER
// DigestInfo structure embedded in PKCS#1 v1.5 signatures.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	encasn1 "encoding/asn1"
	"hash"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// Algorithm identifies a supported hash function.
type Algorithm int

const (
	SHA256 Algorithm = iota + 1
	SHA384
	SHA512
)

// Algorithms lists every supported algorithm in ascending output size.
var Algorithms = []Algorithm{SHA256, SHA384, SHA512}

var oids = map[Algorithm]encasn1.ObjectIdentifier{
	SHA256: {2, 16, 840, 1, 101, 3, 4, 2, 1},
	SHA384: {2, 16, 840, 1, 101, 3, 4, 2, 2},
	SHA512: {2, 16, 840, 1, 101, 3, 4, 2, 3},
}

func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "SHA-256"
	case SHA384:
		return "SHA-384"
	case SHA512:
		return "SHA-512"
	default:
		return "UNKNOWN"
	}
}

// Size returns the digest length in bytes, or 0 for an unknown algorithm.
func (a Algorithm) Size() int {
	switch a {
	case SHA256:
		return sha256.Size
	case SHA384:
		return sha512.Size384
	case SHA512:
		return sha512.Size
	default:
		return 0
	}
}

// Valid reports whether a is a supported algorithm.
func (a Algorithm) Valid() bool {
	return a.Size() != 0
}

// OID returns the algorithm's ASN.1 object identifier.
func (a Algorithm) OID() (encasn1.ObjectIdentifier, error) {
	oid, ok := oids[a]
	if !ok {
		return nil, errors.Invalidf(errors.ErrUnsupportedAlgorithm, "hash %d", int(a))
	}
	return oid, nil
}

// New returns a fresh hash.Hash for a.
func New(a Algorithm) (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, errors.Invalidf(errors.ErrUnsupportedAlgorithm, "hash %d", int(a))
	}
}

// Sum returns the digest of data under a.
func Sum(a Algorithm, data []byte) ([]byte, error) {
	switch a {
	case SHA256:
		d := sha256.Sum256(data)
		return d[:], nil
	case SHA384:
		d := sha512.Sum384(data)
		return d[:], nil
	case SHA512:
		d := sha512.Sum512(data)
		return d[:], nil
	default:
		return nil, errors.Invalidf(errors.ErrUnsupportedAlgorithm, "hash %d", int(a))
	}
}

// Parse maps a name such as "sha384", "SHA-384" or "sha_384" to an Algorithm.
func Parse(name string) (Algorithm, error) {
	n := strings.ToLower(name)
	n = strings.NewReplacer("-", "", "_", "", " ", "").Replace(n)
	switch n {
	case "sha256":
		return SHA256, nil
	case "sha384":
		return SHA384, nil
	case "sha512":
		return SHA512, nil
	default:
		return 0, errors.Invalidf(errors.ErrUnsupportedAlgorithm, "hash %q", name)
	}
}

// FromSize returns the algorithm whose output is n bytes long.
func FromSize(n int) (Algorithm, error) {
	for _, a := range Algorithms {
		if a.Size() == n {
			return a, nil
		}
	}
	return 0, errors.Invalidf(errors.ErrUnsupportedAlgorithm, "no hash produces %d-byte digests", n)
}

// DigestInfo returns the DER encoding of
//
//	DigestInfo ::= SEQUENCE {
//	    digestAlgorithm AlgorithmIdentifier,  -- parameters NULL
//	    digest          OCTET STRING }
func DigestInfo(a Algorithm, d []byte) ([]byte, error) {
	oid, err := a.OID()
	if err != nil {
		return nil, err
	}
	if len(d) != a.Size() {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "%s digest must be %d bytes, got %d", a, a.Size(), len(d))
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oid)
			b.AddASN1NULL()
		})
		b.AddASN1OctetString(d)
	})
	return b.Bytes()
}

// ParseDigestInfo decodes a DER DigestInfo and returns the algorithm and
// digest it carries.
func ParseDigestInfo(der []byte) (Algorithm, []byte, error) {
	input := cryptobyte.String(der)
	var (
		info, algID cryptobyte.String
		oid         encasn1.ObjectIdentifier
		d           []byte
	)
	if !input.ReadASN1(&info, cbasn1.SEQUENCE) || !input.Empty() ||
		!info.ReadASN1(&algID, cbasn1.SEQUENCE) ||
		!algID.ReadASN1ObjectIdentifier(&oid) ||
		!algID.SkipASN1(cbasn1.NULL) || !algID.Empty() ||
		!info.ReadASN1Bytes(&d, cbasn1.OCTET_STRING) || !info.Empty() {
		return 0, nil, errors.Invalidf(errors.ErrInvalidEncoding, "malformed DigestInfo")
	}

	for a, known := range oids {
		if known.Equal(oid) {
			if len(d) != a.Size() {
				return 0, nil, errors.Invalidf(errors.ErrInvalidEncoding, "%s digest must be %d bytes, got %d", a, a.Size(), len(d))
			}
			return a, d, nil
		}
	}
	return 0, nil, errors.Invalidf(errors.ErrUnsupportedAlgorithm, "digest OID %s", oid)
}
