package bigint

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

func TestFromFixed(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		bits    int
		want    int64
		wantErr bool
	}{
		{"three byte exponent", []byte{0x01, 0x00, 0x01}, 24, 65537, false},
		{"leading zeros kept as padding", []byte{0x00, 0x00, 0x2a}, 24, 42, false},
		{"all zero", []byte{0x00}, 8, 0, false},
		{"length too short", []byte{0x01, 0x00}, 24, 0, true},
		{"length too long", []byte{0x00, 0x01, 0x00, 0x01}, 24, 0, true},
		{"width not multiple of 8", []byte{0x01}, 7, 0, true},
		{"zero width", nil, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromFixed(tt.in, tt.bits)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidEncoding))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestToFixed(t *testing.T) {
	t.Run("pads to width", func(t *testing.T) {
		b, err := ToFixed(big.NewInt(65537), 4)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x01}, b)
	})

	t.Run("zero", func(t *testing.T) {
		b, err := ToFixed(new(big.Int), 2)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0x00}, b)
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := ToFixed(big.NewInt(0x10000), 2)
		assert.True(t, errors.Is(err, errors.ErrInvalidEncoding))
	})

	t.Run("negative", func(t *testing.T) {
		_, err := ToFixed(big.NewInt(-1), 2)
		assert.True(t, errors.Is(err, errors.ErrInvalidEncoding))
	})
}

func TestFixed(t *testing.T) {
	raw := []byte{0x00, 0xff}
	f, err := NewFixed(raw, 16)
	require.NoError(t, err)

	raw[1] = 0x00
	assert.Equal(t, []byte{0x00, 0xff}, f.Bytes(), "NewFixed must copy its input")
	assert.Equal(t, 16, f.Bits())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, int64(255), f.Int().Int64())

	_, err = NewFixed([]byte{0x01}, 16)
	assert.True(t, errors.Is(err, errors.ErrInvalidEncoding))
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 48, Width(384))
	assert.Equal(t, 66, Width(521))
	assert.Equal(t, 32, Width(256))
}

func TestBitLenBytes(t *testing.T) {
	assert.Equal(t, 0, BitLenBytes(big.NewInt(0)))
	assert.Equal(t, 1, BitLenBytes(big.NewInt(255)))
	assert.Equal(t, 2, BitLenBytes(big.NewInt(256)))
	assert.Equal(t, 3, BitLenBytes(big.NewInt(65537)))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]byte{1, 2, 3}, []byte{1, 2, 3}))
	assert.False(t, Equal([]byte{1, 2, 3}, []byte{1, 2, 4}))
	assert.False(t, Equal([]byte{1, 2, 3}, []byte{1, 2}))
}

func TestPowModSmall(t *testing.T) {
	tests := []struct {
		base, exp, mod, want int64
	}{
		{4, 13, 497, 445},
		{2, 10, 1000, 24},
		{7, 0, 13, 1},
		{0, 5, 13, 0},
		{5, 3, 1, 0},
		{123456789, 65537, 1000000007, new(big.Int).Exp(big.NewInt(123456789), big.NewInt(65537), big.NewInt(1000000007)).Int64()},
	}

	for _, tt := range tests {
		got, err := PowMod(big.NewInt(tt.base), big.NewInt(tt.exp), big.NewInt(tt.mod))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Int64(), "%d^%d mod %d", tt.base, tt.exp, tt.mod)
	}
}

func TestPowModMatchesMathBig(t *testing.T) {
	for _, bits := range []int{512, 2048, 4096} {
		mod := randomOdd(t, bits)

		for i := 0; i < 3; i++ {
			base, err := rand.Int(rand.Reader, mod)
			require.NoError(t, err)
			exp, err := rand.Int(rand.Reader, mod)
			require.NoError(t, err)

			got, err := PowMod(base, exp, mod)
			require.NoError(t, err)
			want := new(big.Int).Exp(base, exp, mod)
			assert.Zero(t, got.Cmp(want), "bits=%d", bits)
		}
	}
}

func TestPowModFixed(t *testing.T) {
	base := big.NewInt(3)
	exp := big.NewInt(5)
	mod := big.NewInt(1000)

	got, err := PowModFixed(base, exp, mod, 64)
	require.NoError(t, err)
	assert.Equal(t, int64(243), got.Int64())

	_, err = PowModFixed(base, exp, mod, 2)
	assert.True(t, errors.Is(err, errors.ErrInvalidKey))
}

func TestPowModRejectsBadModulus(t *testing.T) {
	_, err := PowMod(big.NewInt(2), big.NewInt(3), big.NewInt(0))
	assert.True(t, errors.Is(err, errors.ErrInvalidKey))

	_, err = PowMod(big.NewInt(2), big.NewInt(3), big.NewInt(-7))
	assert.True(t, errors.Is(err, errors.ErrInvalidKey))

	_, err = PowMod(big.NewInt(2), big.NewInt(-3), big.NewInt(7))
	assert.True(t, errors.Is(err, errors.ErrInvalidKey))
}

func TestModInverse(t *testing.T) {
	t.Run("small", func(t *testing.T) {
		got, err := ModInverse(big.NewInt(3), big.NewInt(11))
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.Int64())
	})

	t.Run("input larger than modulus", func(t *testing.T) {
		got, err := ModInverse(big.NewInt(14), big.NewInt(11))
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.Int64())
	})

	t.Run("not invertible", func(t *testing.T) {
		_, err := ModInverse(big.NewInt(6), big.NewInt(9))
		assert.ErrorIs(t, err, ErrNotInvertible)

		_, err = ModInverse(big.NewInt(0), big.NewInt(9))
		assert.ErrorIs(t, err, ErrNotInvertible)
	})

	t.Run("matches math/big", func(t *testing.T) {
		n, err := rand.Prime(rand.Reader, 384)
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			a, err := rand.Int(rand.Reader, n)
			require.NoError(t, err)
			if a.Sign() == 0 {
				continue
			}
			got, err := ModInverse(a, n)
			require.NoError(t, err)
			assert.Zero(t, got.Cmp(new(big.Int).ModInverse(a, n)))

			check := new(big.Int).Mul(a, got)
			assert.Equal(t, int64(1), check.Mod(check, n).Int64())
		}
	})
}

// randomOdd returns an odd modulus of exactly bits bits.
func randomOdd(tb testing.TB, bits int) *big.Int {
	tb.Helper()
	buf := make([]byte, bits/8)
	_, err := rand.Read(buf)
	require.NoError(tb, err)
	buf[0] |= 0x80
	buf[len(buf)-1] |= 0x01
	return new(big.Int).SetBytes(buf)
}

func BenchmarkPowMod4096(b *testing.B) {
	mod := randomOdd(b, 4096)
	base, _ := rand.Int(rand.Reader, mod)
	exp, _ := rand.Int(rand.Reader, mod)
	b.ResetTimer()
	for b.Loop() {
		_, _ = PowMod(base, exp, mod)
	}
}
