package ecsig

import (
	"crypto/hmac"
	"crypto/rand"
	"hash"
	"io"
	"math/big"

	"github.com/mahdiidarabi/sigkat/internal/bigint"
	"github.com/mahdiidarabi/sigkat/internal/curve"
	"github.com/mahdiidarabi/sigkat/internal/digest"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// NonceSource produces the per-signature nonce candidates k. Candidates may
// fall outside [1, n-1]; Sign discards those and asks for the next one.
type NonceSource interface {
	Stream(c *curve.Params, x *big.Int, digest []byte) (NonceStream, error)
}

// NonceStream yields successive nonce candidates for one signature.
type NonceStream interface {
	Next() (*big.Int, error)
}

// RFC6979 derives nonces deterministically from the private scalar and the
// digest with HMAC-DRBG (RFC 6979 section 3.2). A zero Hash picks the
// algorithm matching len(digest), falling back to SHA-512.
type RFC6979 struct {
	Hash digest.Algorithm
}

// Stream implements NonceSource.
func (n RFC6979) Stream(c *curve.Params, x *big.Int, d []byte) (NonceStream, error) {
	alg := n.Hash
	if !alg.Valid() {
		var err error
		if alg, err = digest.FromSize(len(d)); err != nil {
			alg = digest.SHA512
		}
	}
	newHash := func() hash.Hash {
		h, _ := digest.New(alg)
		return h
	}

	qlen := c.N.BitLen()
	rlen := (qlen + 7) / 8

	key, err := bigint.ToFixed(x, rlen)
	if err != nil {
		return nil, errors.Wrap(err, "private scalar")
	}
	h1 := hashToInt(c, d)
	h1.Mod(h1, c.N)
	msg, err := bigint.ToFixed(h1, rlen)
	if err != nil {
		return nil, err
	}

	size := newHash().Size()
	s := &drbg{newHash: newHash, qlen: qlen, rlen: rlen}
	s.v = make([]byte, size)
	for i := range s.v {
		s.v[i] = 0x01
	}
	s.k = make([]byte, size)

	s.k = s.mac(s.k, s.v, []byte{0x00}, key, msg)
	s.v = s.mac(s.k, s.v)
	s.k = s.mac(s.k, s.v, []byte{0x01}, key, msg)
	s.v = s.mac(s.k, s.v)
	return s, nil
}

type drbg struct {
	newHash func() hash.Hash
	k, v    []byte
	qlen    int
	rlen    int
	started bool
}

func (s *drbg) mac(key []byte, parts ...[]byte) []byte {
	m := hmac.New(s.newHash, key)
	for _, p := range parts {
		m.Write(p)
	}
	return m.Sum(nil)
}

// Next returns the next candidate. Every call after the first reseeds with
// K = HMAC_K(V || 0x00), V = HMAC_K(V), as step 3.2.h.3 requires when a
// candidate was rejected.
func (s *drbg) Next() (*big.Int, error) {
	if s.started {
		s.k = s.mac(s.k, s.v, []byte{0x00})
		s.v = s.mac(s.k, s.v)
	}
	s.started = true

	t := make([]byte, 0, s.rlen)
	for len(t) < s.rlen {
		s.v = s.mac(s.k, s.v)
		t = append(t, s.v...)
	}
	k := new(big.Int).SetBytes(t[:s.rlen])
	if excess := s.rlen*8 - s.qlen; excess > 0 {
		k.Rsh(k, uint(excess))
	}
	return k, nil
}

// RandomNonces draws nonces from Rand, or crypto/rand when Rand is nil.
// Candidates are truncated to the order's bit length, so Sign's range check
// performs rejection sampling.
type RandomNonces struct {
	Rand io.Reader
}

// Stream implements NonceSource.
func (n RandomNonces) Stream(c *curve.Params, _ *big.Int, _ []byte) (NonceStream, error) {
	r := n.Rand
	if r == nil {
		r = rand.Reader
	}
	return &randomStream{r: r, c: c}, nil
}

type randomStream struct {
	r io.Reader
	c *curve.Params
}

func (s *randomStream) Next() (*big.Int, error) {
	buf := make([]byte, s.c.ScalarLen())
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, err
	}
	return hashToInt(s.c, buf), nil
}
