package ecsig

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"math/big"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/sigkat/internal/curve"
	"github.com/mahdiidarabi/sigkat/internal/digest"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

const rfc6979Key = "6B9D3DAD2E1B8C1C05B19875B6659F4DE23C3B667BF297BA9AA47740787137D896D5724E4C70A825F872C9EA60D2EDF5"

func rfc6979Priv(t testing.TB) *PrivateKey {
	t.Helper()
	priv, err := NewPrivateKey(curve.P384(), unhex(t, rfc6979Key))
	require.NoError(t, err)
	return priv
}

func TestVerifyFixtures(t *testing.T) {
	c := curve.P384()
	for i, f := range loadFixtures(t) {
		t.Run(fmt.Sprintf("vector %d", i), func(t *testing.T) {
			got := VerifyFixed(c, unhex(t, f.Qx), unhex(t, f.Qy), unhex(t, f.M), unhex(t, f.R), unhex(t, f.S))
			assert.Equal(t, f.Result, got)
		})
	}
}

func TestVerifyFixturesRejectSingleByteFlips(t *testing.T) {
	c := curve.P384()
	for i, f := range loadFixtures(t) {
		if !f.Result {
			continue
		}
		qx, qy := unhex(t, f.Qx), unhex(t, f.Qy)
		r, s, m := unhex(t, f.R), unhex(t, f.S), unhex(t, f.M)

		t.Run(fmt.Sprintf("vector %d", i), func(t *testing.T) {
			for _, pos := range []int{0, 17, 47} {
				assert.False(t, VerifyFixed(c, qx, qy, m, flip(r, pos), s), "r[%d]", pos)
				assert.False(t, VerifyFixed(c, qx, qy, m, r, flip(s, pos)), "s[%d]", pos)
				assert.False(t, VerifyFixed(c, qx, qy, flip(m, pos), r, s), "m[%d]", pos)
			}
		})
	}
}

func TestRFC6979KnownAnswers(t *testing.T) {
	priv := rfc6979Priv(t)
	assert.Equal(t, hexInt(t, "EC3A4E415B4E19A4568618029F427FA5DA9A8BC4AE92E02E06AAE5286B300C64DEF8F0EA9055866064A254515480BC13"), priv.Q.X)
	assert.Equal(t, hexInt(t, "8015D9B72D7D57244EA8EF9AC0C621896708A59367F9DFB9F54CA84B3F1C9DB1288B231C3AE0D4FE7344FD2533264720"), priv.Q.Y)

	sha384 := sha512.Sum384([]byte("sample"))
	sha256Sample := sha256.Sum256([]byte("sample"))
	sha512Test := sha512.Sum512([]byte("test"))

	tests := []struct {
		name   string
		digest []byte
		r, s   string
	}{
		{
			name:   "sample SHA-384",
			digest: sha384[:],
			r:      "94EDBB92A5ECB8AAD4736E56C691916B3F88140666CE9FA73D64C4EA95AD133C81A648152E44ACF96E36DD1E80FABE46",
			s:      "99EF4AEB15F178CEA1FE40DB2603138F130E740A19624526203B6351D0A3A94FA329C145786E679E7B82C71A38628AC8",
		},
		{
			name:   "sample SHA-256",
			digest: sha256Sample[:],
			r:      "21B13D1E013C7FA1392D03C5F99AF8B30C570C6F98D4EA8E354B63A21D3DAA33BDE1E888E63355D92FA2B3C36D8FB2CD",
			s:      "F3AA443FB107745BF4BD77CB3891674632068A10CA67E3D45DB2266FA7D1FEEBEFDC63ECCD1AC42EC0CB8668A4FA0AB0",
		},
		{
			name:   "test SHA-512",
			digest: sha512Test[:],
			r:      "A0D5D090C9980FAF3C2CE57B7AE951D31977DD11C775D314AF55F76C676447D06FB6495CD21B4B6E340FC236584FB277",
			s:      "976984E59B4C77B0E8E4460DCA3D9F20E07B9BB1F63BEEFAF576F6B2E8B224634A2092CD3792E0159AD9CEE37659C736",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Sign(priv, tt.digest, nil)
			require.NoError(t, err)
			assert.Equal(t, hexInt(t, tt.r), sig.R)
			assert.Equal(t, hexInt(t, tt.s), sig.S)
			assert.True(t, Verify(priv.Public(), tt.digest, sig.R, sig.S))
		})
	}

	t.Run("nonce", func(t *testing.T) {
		stream, err := RFC6979{Hash: digest.SHA384}.Stream(priv.Curve, priv.D, sha384[:])
		require.NoError(t, err)
		k, err := stream.Next()
		require.NoError(t, err)
		assert.Equal(t, hexInt(t, "94ED910D1A099DAD3254E9242AE85ABDE4BA15168EAF0CA87A555FD56D10FBCA2907E3E83BA95368623B8C4686915CF9"), k)
	})
}

func TestVerifyRejectsOutOfRange(t *testing.T) {
	f := loadFixtures(t)[0]
	c := curve.P384()
	pub, err := NewPublicKey(c, unhex(t, f.Qx), unhex(t, f.Qy))
	require.NoError(t, err)
	m := unhex(t, f.M)
	r, s := new(big.Int).SetBytes(unhex(t, f.R)), new(big.Int).SetBytes(unhex(t, f.S))
	require.True(t, Verify(pub, m, r, s))

	tests := []struct {
		name string
		r, s *big.Int
	}{
		{"r zero", new(big.Int), s},
		{"s zero", r, new(big.Int)},
		{"r equals n", new(big.Int).Set(c.N), s},
		{"s equals n", r, new(big.Int).Set(c.N)},
		{"r plus n", new(big.Int).Add(r, c.N), s},
		{"negative s", r, new(big.Int).Neg(s)},
		{"nil r", nil, s},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify(pub, m, tt.r, tt.s))
		})
	}

	t.Run("r zero rejected before point arithmetic", func(t *testing.T) {
		// A key with no coordinates would panic in point arithmetic.
		broken := &PublicKey{Curve: c}
		assert.NotPanics(t, func() {
			assert.False(t, Verify(broken, m, new(big.Int), s))
		})
	})

	t.Run("off-curve key", func(t *testing.T) {
		bad := &PublicKey{Curve: c, Q: curve.Point{X: pub.Q.X, Y: new(big.Int).Add(pub.Q.Y, big.NewInt(1))}}
		assert.False(t, Verify(bad, m, r, s))
	})

	t.Run("nil key", func(t *testing.T) {
		assert.False(t, Verify(nil, m, r, s))
	})
}

func TestVerifyFixedRejectsWidthMismatch(t *testing.T) {
	f := loadFixtures(t)[0]
	c := curve.P384()
	qx, qy := unhex(t, f.Qx), unhex(t, f.Qy)
	r, s, m := unhex(t, f.R), unhex(t, f.S), unhex(t, f.M)

	assert.False(t, VerifyFixed(c, qx, qy, m, r[1:], s))
	assert.False(t, VerifyFixed(c, qx, qy, m, r, append(s, 0x00)))
	assert.False(t, VerifyFixed(c, qx[1:], qy, m, r, s))
	assert.False(t, VerifyFixed(nil, qx, qy, m, r, s))
	assert.NotPanics(t, func() { VerifyFixed(c, nil, nil, nil, nil, nil) })
}

func TestSignNonceRetries(t *testing.T) {
	priv := rfc6979Priv(t)
	d := sha512.Sum384([]byte("sample"))

	t.Run("exhausted", func(t *testing.T) {
		for _, bad := range []*big.Int{new(big.Int), new(big.Int).Set(priv.Curve.N)} {
			src := &fixedNonces{ks: []*big.Int{bad}}
			_, err := Sign(priv, d[:], src)
			assert.True(t, errors.Is(err, errors.ErrNonceExhausted))
			assert.Equal(t, MaxNonceAttempts, src.drawn)
		}
	})

	t.Run("recovers after a bad candidate", func(t *testing.T) {
		k := hexInt(t, "94ED910D1A099DAD3254E9242AE85ABDE4BA15168EAF0CA87A555FD56D10FBCA2907E3E83BA95368623B8C4686915CF9")
		src := &fixedNonces{ks: []*big.Int{new(big.Int), k}}
		sig, err := Sign(priv, d[:], src)
		require.NoError(t, err)
		assert.Equal(t, 2, src.drawn)
		assert.Equal(t, hexInt(t, "94EDBB92A5ECB8AAD4736E56C691916B3F88140666CE9FA73D64C4EA95AD133C81A648152E44ACF96E36DD1E80FABE46"), sig.R)
	})
}

func TestSignRejectsBadKey(t *testing.T) {
	_, err := Sign(nil, make([]byte, 48), nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidKey))

	c := curve.P384()
	_, err = Sign(&PrivateKey{PublicKey: PublicKey{Curve: c}, D: new(big.Int)}, make([]byte, 48), nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidKey))

	_, err = NewPrivateKey(c, make([]byte, 48))
	assert.True(t, errors.Is(err, errors.ErrInvalidKey))

	_, err = NewPrivateKey(c, make([]byte, 32))
	assert.True(t, errors.Is(err, errors.ErrInvalidEncoding))
}

func TestRoundTripFreshKeys(t *testing.T) {
	trials := 50
	if os.Getenv("SIGKAT_SOAK") != "" {
		trials = 10000
	}
	if testing.Short() {
		trials = 5
	}

	for _, name := range curve.Names() {
		c, err := curve.Lookup(name)
		require.NoError(t, err)

		t.Run(name, func(t *testing.T) {
			n := trials
			if name != "P-384" {
				n = trials / 5
			}
			for i := 0; i < n; i++ {
				priv, err := GenerateKey(c, rand.Reader)
				require.NoError(t, err)

				alg := digest.Algorithms[i%len(digest.Algorithms)]
				d, err := digest.Sum(alg, []byte(fmt.Sprintf("trial %d", i)))
				require.NoError(t, err)

				var nonces NonceSource = RFC6979{}
				if i%2 == 1 {
					nonces = RandomNonces{}
				}
				sig, err := Sign(priv, d, nonces)
				require.NoError(t, err)
				require.True(t, Verify(priv.Public(), d, sig.R, sig.S), "trial %d", i)

				tampered := append([]byte(nil), d...)
				tampered[0] ^= 0x80
				require.False(t, Verify(priv.Public(), tampered, sig.R, sig.S), "trial %d", i)
			}
		})
	}
}

func TestInteropWithStandardLibrary(t *testing.T) {
	d := sha512.Sum384([]byte("interop"))

	t.Run("ours verified by crypto/ecdsa", func(t *testing.T) {
		priv, err := GenerateKey(curve.P384(), rand.Reader)
		require.NoError(t, err)
		sig, err := Sign(priv, d[:], nil)
		require.NoError(t, err)
		der, err := sig.MarshalDER()
		require.NoError(t, err)

		pub := &ecdsa.PublicKey{Curve: elliptic.P384(), X: priv.Q.X, Y: priv.Q.Y}
		assert.True(t, ecdsa.VerifyASN1(pub, d[:], der))
	})

	t.Run("crypto/ecdsa verified by ours", func(t *testing.T) {
		goPriv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		require.NoError(t, err)
		der, err := ecdsa.SignASN1(rand.Reader, goPriv, d[:])
		require.NoError(t, err)
		sig, err := ParseDER(der)
		require.NoError(t, err)

		pub := &PublicKey{Curve: curve.P384(), Q: curve.Point{X: goPriv.X, Y: goPriv.Y}}
		assert.True(t, Verify(pub, d[:], sig.R, sig.S))
	})
}

func TestDER(t *testing.T) {
	sig := &Signature{R: big.NewInt(0x80), S: big.NewInt(1)}
	der, err := sig.MarshalDER()
	require.NoError(t, err)
	// 0x80 needs a leading zero to stay positive.
	assert.Equal(t, []byte{0x30, 0x07, 0x02, 0x02, 0x00, 0x80, 0x02, 0x01, 0x01}, der)

	back, err := ParseDER(der)
	require.NoError(t, err)
	assert.Equal(t, sig.R, back.R)
	assert.Equal(t, sig.S, back.S)

	tests := []struct {
		name string
		der  []byte
	}{
		{"trailing data", append(append([]byte(nil), der...), 0x00)},
		{"truncated", der[:len(der)-1]},
		{"missing s", []byte{0x30, 0x04, 0x02, 0x02, 0x00, 0x80}},
		{"not a sequence", []byte{0x31, 0x00}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDER(tt.der)
			assert.True(t, errors.Is(err, errors.ErrInvalidEncoding))
		})
	}

	_, err = (&Signature{R: new(big.Int), S: big.NewInt(1)}).MarshalDER()
	assert.True(t, errors.Is(err, errors.ErrInvalidEncoding))
}

func TestKeyEncoding(t *testing.T) {
	priv := rfc6979Priv(t)

	d, err := priv.Bytes()
	require.NoError(t, err)
	assert.Equal(t, unhex(t, rfc6979Key), d)

	pubBytes, err := priv.Public().Bytes()
	require.NoError(t, err)
	require.Len(t, pubBytes, 96)

	pub, err := PublicKeyFromBytes(curve.P384(), pubBytes)
	require.NoError(t, err)
	assert.True(t, pub.Q.Equal(priv.Q))

	_, err = PublicKeyFromBytes(curve.P384(), pubBytes[:95])
	assert.True(t, errors.Is(err, errors.ErrInvalidEncoding))

	sig, err := Sign(priv, make([]byte, 48), nil)
	require.NoError(t, err)
	r, s, err := sig.Fixed(priv.Curve)
	require.NoError(t, err)
	assert.Len(t, r, 48)
	assert.Len(t, s, 48)
}

func TestVerifyIsDeterministicUnderConcurrency(t *testing.T) {
	c := curve.P384()
	fixtures := loadFixtures(t)
	decoded := make([][5][]byte, len(fixtures))
	for i, f := range fixtures {
		decoded[i] = [5][]byte{unhex(t, f.Qx), unhex(t, f.Qy), unhex(t, f.M), unhex(t, f.R), unhex(t, f.S)}
	}

	var wg sync.WaitGroup
	results := make([][]bool, 8)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for _, v := range decoded {
				results[g] = append(results[g], VerifyFixed(c, v[0], v[1], v[2], v[3], v[4]))
			}
		}(g)
	}
	wg.Wait()

	for g := range results {
		assert.Equal(t, results[0], results[g])
	}
	for i, f := range fixtures {
		assert.Equal(t, f.Result, results[0][i], "vector %d", i)
	}
}
