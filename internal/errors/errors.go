// Package errors defines the sentinel errors shared by the signature
// primitives, the vector loader and the conformance harness.
//
// Callers classify failures with errors.Is. A signature that does not verify
// is never reported through this package: verification returns a bool.
//
// This package must not import other internal packages.
package errors

import "errors"

var (
	// ErrInvalidEncoding indicates malformed fixed-width input: odd-length hex,
	// a byte length that disagrees with its declared bit width, or a value that
	// does not fit its field.
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrInvalidKey indicates structurally inconsistent key material, such as
	// an RSA public exponent that is zero or not below the modulus.
	ErrInvalidKey = errors.New("invalid key")

	// ErrUnsupportedAlgorithm indicates an unknown hash or curve identifier.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrNonceExhausted indicates that ECDSA signing hit its nonce retry cap.
	ErrNonceExhausted = errors.New("nonce retries exhausted")

	// ErrInvalidScalar indicates a scalar outside [1, n-1] for scalar
	// multiplication.
	ErrInvalidScalar = errors.New("invalid scalar")

	// ErrConformanceFailed indicates that at least one vector in a
	// conformance run did not produce its expected outcome.
	ErrConformanceFailed = errors.New("conformance run failed")

	// ErrInvalidConfig indicates a configuration value outside its allowed
	// range or set.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
