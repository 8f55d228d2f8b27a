package vectors

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// VectorParser defines the interface for loading vectors from various sources.
type VectorParser interface {
	// ParseVectors reads the file at source and returns its vectors in order.
	ParseVectors(source string) (*Collection, error)
}

// Decoder is implemented by parsers that can read from a stream.
type Decoder interface {
	Decode(r io.Reader) (*Collection, error)
}

// ParserFor picks a parser from the file extension: .json, .yaml/.yml, or
// .csv (ECDSA vectors only).
func ParserFor(path string) (VectorParser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &JSONParser{}, nil
	case ".yaml", ".yml":
		return &YAMLParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, errors.Invalidf(errors.ErrInvalidEncoding, "no vector parser for %q", path)
	}
}

// Load parses path with the parser chosen by ParserFor.
func Load(path string) (*Collection, error) {
	p, err := ParserFor(path)
	if err != nil {
		return nil, err
	}
	return p.ParseVectors(path)
}

func parseFile(source string, d Decoder) (*Collection, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	c, err := d.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filepath.Base(source))
	}
	return c, nil
}

// JSONParser parses vector documents in JSON:
//
//	{"rsa": [...], "ecdsa": [...]}
type JSONParser struct {
	Strict bool // reject unknown fields
}

// ParseVectors parses vectors from a JSON file.
func (p *JSONParser) ParseVectors(source string) (*Collection, error) {
	return parseFile(source, p)
}

// Decode implements Decoder.
func (p *JSONParser) Decode(r io.Reader) (*Collection, error) {
	decoder := json.NewDecoder(r)
	if p.Strict {
		decoder.DisallowUnknownFields()
	}
	var c Collection
	if err := decoder.Decode(&c); err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

// YAMLParser parses the same document shape as JSONParser, written in YAML.
// Hex values should be quoted so YAML does not read them as numbers.
type YAMLParser struct {
	Strict bool // reject unknown fields
}

// ParseVectors parses vectors from a YAML file.
func (p *YAMLParser) ParseVectors(source string) (*Collection, error) {
	return parseFile(source, p)
}

// Decode implements Decoder.
func (p *YAMLParser) Decode(r io.Reader) (*Collection, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(p.Strict)
	var c Collection
	if err := decoder.Decode(&c); err != nil && err != io.EOF {
		return nil, classify(err)
	}
	return &c, nil
}

// CSVParser parses ECDSA vectors from a CSV file with a header row. Column
// names default to the JSON field names; curve and hash columns are optional.
type CSVParser struct {
	QxCol     string // default: "qx"
	QyCol     string // default: "qy"
	RCol      string // default: "r"
	SCol      string // default: "s"
	MCol      string // default: "m"
	ResultCol string // default: "result"
	CurveCol  string // default: "curve"
	HashCol   string // default: "hash"
}

// ParseVectors parses ECDSA vectors from a CSV file.
func (p *CSVParser) ParseVectors(source string) (*Collection, error) {
	return parseFile(source, p)
}

// Decode implements Decoder.
func (p *CSVParser) Decode(r io.Reader) (*Collection, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	cols := map[string]string{
		"qx":     or(p.QxCol, "qx"),
		"qy":     or(p.QyCol, "qy"),
		"r":      or(p.RCol, "r"),
		"s":      or(p.SCol, "s"),
		"m":      or(p.MCol, "m"),
		"result": or(p.ResultCol, "result"),
		"curve":  or(p.CurveCol, "curve"),
		"hash":   or(p.HashCol, "hash"),
	}
	idx := make(map[string]int, len(cols))
	for i, name := range header {
		for field, col := range cols {
			if strings.EqualFold(strings.TrimSpace(name), col) {
				idx[field] = i
			}
		}
	}
	for _, required := range []string{"qx", "qy", "r", "s", "m", "result"} {
		if _, ok := idx[required]; !ok {
			return nil, errors.Invalidf(errors.ErrInvalidEncoding, "missing required column %q", cols[required])
		}
	}

	c := &Collection{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read record")
		}

		get := func(field string) string {
			if i, ok := idx[field]; ok && i < len(record) {
				return record[i]
			}
			return ""
		}
		hexField := func(field string) (Hex, error) {
			h, err := DecodeHex(get(field))
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: %s", line, field)
			}
			return h, nil
		}

		v := ECDSAVector{Curve: get("curve"), Hash: get("hash")}
		for field, dst := range map[string]*Hex{"qx": &v.Qx, "qy": &v.Qy, "r": &v.R, "s": &v.S, "m": &v.M} {
			if *dst, err = hexField(field); err != nil {
				return nil, err
			}
		}
		if v.Result, err = strconv.ParseBool(strings.TrimSpace(get("result"))); err != nil {
			return nil, errors.Invalidf(errors.ErrInvalidEncoding, "line %d: result: %v", line, err)
		}
		c.ECDSA = append(c.ECDSA, v)
	}
	return c, nil
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// classify keeps hex errors recognisable through the json and yaml decoders,
// which wrap UnmarshalText failures in their own error types.
func classify(err error) error {
	if errors.Is(err, errors.ErrInvalidEncoding) {
		return err
	}
	if strings.Contains(err.Error(), errors.ErrInvalidEncoding.Error()) {
		return errors.Invalidf(errors.ErrInvalidEncoding, "%v", err)
	}
	return err
}
