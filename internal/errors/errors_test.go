package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
		assert.NoError(t, Wrapf(nil, "vector %d", 3))
	})

	t.Run("keeps sentinel in chain", func(t *testing.T) {
		err := Wrap(ErrInvalidEncoding, "decode modulus")
		assert.EqualError(t, err, "decode modulus: invalid encoding")
		assert.True(t, Is(err, ErrInvalidEncoding))
		assert.False(t, Is(err, ErrInvalidKey))
	})

	t.Run("formatted context", func(t *testing.T) {
		err := Wrapf(ErrUnsupportedAlgorithm, "vector %d", 7)
		assert.EqualError(t, err, "vector 7: unsupported algorithm")
		assert.True(t, stderrors.Is(err, ErrUnsupportedAlgorithm))
	})
}

func TestInvalidf(t *testing.T) {
	err := Invalidf(ErrInvalidKey, "exponent is %d bits", 0)
	assert.EqualError(t, err, "invalid key: exponent is 0 bits")
	assert.True(t, Is(err, ErrInvalidKey))
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		ErrInvalidEncoding,
		ErrInvalidKey,
		ErrUnsupportedAlgorithm,
		ErrNonceExhausted,
		ErrInvalidScalar,
		ErrConformanceFailed,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
