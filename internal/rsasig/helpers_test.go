package rsasig

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

type rsaFixture struct {
	Key struct {
		M     string `json:"m"`
		D     string `json:"d"`
		E     string `json:"e"`
		MBits int    `json:"m_bits"`
		DBits int    `json:"d_bits"`
		EBits int    `json:"e_bits"`
	} `json:"key"`
	Digest    string `json:"digest"`
	Signature string `json:"signature"`
	SSize     int    `json:"s_size"`
	DSize     int    `json:"d_size"`
}

func fixturesDir() string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "..", "..", "fixtures")
}

func loadFixtures(t testing.TB) []rsaFixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(fixturesDir(), "rsa_pkcs1v15.json"))
	require.NoError(t, err)

	var doc struct {
		RSA []rsaFixture `json:"rsa"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NotEmpty(t, doc.RSA)
	return doc.RSA
}

func unhex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func (f rsaFixture) keys(t testing.TB) (*PublicKey, *PrivateKey) {
	t.Helper()
	m := unhex(t, f.Key.M)
	pub, err := NewPublicKey(m, unhex(t, f.Key.E), f.Key.MBits, f.Key.EBits)
	require.NoError(t, err)
	priv, err := NewPrivateKey(m, unhex(t, f.Key.D), f.Key.MBits, f.Key.DBits)
	require.NoError(t, err)
	return pub, priv
}
