package vectors

import (
	"encoding/hex"
	"strings"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// Hex is a byte string carried as hexadecimal text. It marshals to
// upper-case hex without separators and accepts either case (with an
// optional 0x prefix) when unmarshaling. Odd-length input is rejected.
type Hex []byte

// DecodeHex parses s into a Hex value.
func DecodeHex(s string) (Hex, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if len(s)%2 != 0 {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "odd-length hex string (%d digits)", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "%v", err)
	}
	return b, nil
}

// MustHex is DecodeHex for literals known to be valid. It panics otherwise.
func MustHex(s string) Hex {
	h, err := DecodeHex(s)
	if err != nil {
		panic(err)
	}
	return h
}

// String returns the upper-case hex encoding.
func (h Hex) String() string {
	return strings.ToUpper(hex.EncodeToString(h))
}

// Bits returns the width of h in bits.
func (h Hex) Bits() int { return len(h) * 8 }

// MarshalText implements encoding.TextMarshaler. Both encoding/json and
// gopkg.in/yaml.v3 pick it up.
func (h Hex) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hex) UnmarshalText(text []byte) error {
	b, err := DecodeHex(string(text))
	if err != nil {
		return err
	}
	*h = b
	return nil
}
