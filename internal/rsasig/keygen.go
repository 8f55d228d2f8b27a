package rsasig

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/mahdiidarabi/sigkat/internal/bigint"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// DefaultExponent is the public exponent used by GenerateKey (0x010001).
const DefaultExponent = 65537

// exponentBits is the declared width of DefaultExponent in the vector format.
const exponentBits = 24

// GenerateKey creates a fresh key pair with a bits-wide modulus and
// e = 65537. The private exponent is e^-1 mod λ(n). It exists to feed
// round-trip sampling; vectors themselves are generated offline.
func GenerateKey(random io.Reader, bits int) (*PublicKey, *PrivateKey, error) {
	if bits < 512 || bits%8 != 0 {
		return nil, nil, errors.Invalidf(errors.ErrInvalidKey, "unsupported modulus size %d", bits)
	}
	if random == nil {
		random = rand.Reader
	}
	e := big.NewInt(DefaultExponent)

	for {
		p, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, nil, errors.Wrap(err, "generate prime")
		}
		q, err := rand.Prime(random, bits-bits/2)
		if err != nil {
			return nil, nil, errors.Wrap(err, "generate prime")
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}

		pm1 := new(big.Int).Sub(p, bigOne)
		qm1 := new(big.Int).Sub(q, bigOne)
		gcd := new(big.Int).GCD(nil, nil, pm1, qm1)
		lambda := new(big.Int).Mul(pm1, qm1)
		lambda.Quo(lambda, gcd)

		d, err := bigint.ModInverse(e, lambda)
		if errors.Is(err, bigint.ErrNotInvertible) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		pub := &PublicKey{N: n, E: e, bits: bits, eBits: exponentBits}
		priv := &PrivateKey{N: new(big.Int).Set(n), D: d, bits: bits, dBits: bits}
		return pub, priv, nil
	}
}
