package ecsig

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/sigkat/internal/curve"
)

type ecdsaFixture struct {
	Qx     string `json:"qx"`
	Qy     string `json:"qy"`
	R      string `json:"r"`
	S      string `json:"s"`
	M      string `json:"m"`
	Result bool   `json:"result"`
}

func fixturesDir() string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "..", "..", "fixtures")
}

func loadFixtures(t testing.TB) []ecdsaFixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(fixturesDir(), "ecdsa_p384.json"))
	require.NoError(t, err)

	var doc struct {
		ECDSA []ecdsaFixture `json:"ecdsa"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NotEmpty(t, doc.ECDSA)
	return doc.ECDSA
}

func unhex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func hexInt(t testing.TB, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 16)
	require.True(t, ok, "bad hex %q", s)
	return v
}

func flip(b []byte, i int) []byte {
	out := append([]byte(nil), b...)
	out[i] ^= 0x01
	return out
}

// fixedNonces replays a list of candidates and counts how many were drawn.
type fixedNonces struct {
	ks    []*big.Int
	drawn int
}

func (f *fixedNonces) Stream(_ *curve.Params, _ *big.Int, _ []byte) (NonceStream, error) {
	return f, nil
}

func (f *fixedNonces) Next() (*big.Int, error) {
	k := f.ks[f.drawn%len(f.ks)]
	f.drawn++
	return k, nil
}
