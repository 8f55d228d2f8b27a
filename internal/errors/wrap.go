package errors

import "fmt"

// Wrap adds context to err. It returns nil if err is nil.
//
// The original error stays in the chain, so sentinel checks keep working:
//
//	if errors.Is(err, errors.ErrInvalidEncoding) {
//	    // reject the vector
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to err. It returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Invalidf returns an error wrapping sentinel with a formatted detail message.
//
//	return errors.Invalidf(errors.ErrInvalidKey, "public exponent is %d bits", n)
func Invalidf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
