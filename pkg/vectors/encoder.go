package vectors

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// Format is a vector document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatFor returns the format implied by a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errors.Invalidf(errors.ErrInvalidEncoding, "no vector format for %q", path)
	}
}

// Encoder writes collections back out. Hex fields are always upper-case, so
// re-encoding normalizes a hand-edited corpus.
type Encoder struct {
	w      io.Writer
	format Format
}

// NewEncoder returns an encoder writing f to w.
func NewEncoder(w io.Writer, f Format) *Encoder {
	return &Encoder{w: w, format: f}
}

// Encode writes c. CSV output carries ECDSA vectors only and fails when c
// holds RSA vectors.
func (e *Encoder) Encode(c *Collection) error {
	switch e.format {
	case FormatJSON:
		enc := json.NewEncoder(e.w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case FormatYAML:
		enc := yaml.NewEncoder(e.w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return e.encodeCSV(c)
	default:
		return errors.Invalidf(errors.ErrInvalidEncoding, "unknown format %q", e.format)
	}
}

func (e *Encoder) encodeCSV(c *Collection) error {
	if len(c.RSA) > 0 {
		return errors.Invalidf(errors.ErrInvalidEncoding, "csv holds ECDSA vectors only, collection has %d RSA vectors", len(c.RSA))
	}
	w := csv.NewWriter(e.w)
	if err := w.Write([]string{"curve", "hash", "qx", "qy", "r", "s", "m", "result"}); err != nil {
		return err
	}
	for _, v := range c.ECDSA {
		record := []string{v.Curve, v.Hash, v.Qx.String(), v.Qy.String(), v.R.String(), v.S.String(), v.M.String(), strconv.FormatBool(v.Result)}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
