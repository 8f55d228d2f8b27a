package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/sigkat/internal/config"
	"github.com/mahdiidarabi/sigkat/internal/errors"
	"github.com/mahdiidarabi/sigkat/pkg/vectors"
)

// inspection is the JSON form of `sigkat inspect`.
type inspection struct {
	Source  string          `json:"source"`
	Summary vectors.Summary `json:"summary"`
	Invalid []string        `json:"invalid,omitempty"`
}

func addInspectCommand(root *cobra.Command, a *app) {
	var normalize string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Validate and summarize a vector file",
		Long: `Inspect parses a vector file, checks every vector for malformed fields,
and counts vectors by algorithm shape. With --normalize the parsed vectors
are written back out (format chosen by extension) with upper-case hex.`,
		Example: `  sigkat inspect fixtures/mixed.yaml
  sigkat inspect vectors.csv --normalize vectors.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := vectors.Load(args[0])
			if err != nil {
				return err
			}

			result := inspection{
				Source:  args[0],
				Summary: col.Summarize(),
				Invalid: invalidVectors(col),
			}
			a.logger.Debug().Str("source", args[0]).Int("vectors", col.Len()).Msg("vectors loaded")

			out := cmd.OutOrStdout()
			if a.cfg.Report.Format == config.ReportJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				err = enc.Encode(result)
			} else {
				err = writeInspection(out, &result)
			}
			if err != nil {
				return err
			}

			if normalize != "" {
				if err := writeNormalized(normalize, col); err != nil {
					return err
				}
				a.logger.Info().Str("path", normalize).Msg("normalized vectors written")
			}

			if len(result.Invalid) > 0 {
				return errors.Invalidf(errors.ErrInvalidEncoding, "%d malformed vectors in %s", len(result.Invalid), args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&normalize, "normalize", "", "write the parsed vectors to this file")

	root.AddCommand(cmd)
}

// invalidVectors validates each vector separately so one bad entry does not
// hide the rest.
func invalidVectors(col *vectors.Collection) []string {
	var out []string
	for i := range col.RSA {
		if err := col.RSA[i].Validate(); err != nil {
			out = append(out, fmt.Sprintf("rsa #%d: %v", i, err))
		}
	}
	for i := range col.ECDSA {
		if err := col.ECDSA[i].Validate(); err != nil {
			out = append(out, fmt.Sprintf("ecdsa #%d: %v", i, err))
		}
	}
	return out
}

func writeInspection(w io.Writer, r *inspection) error {
	s := r.Summary
	if _, err := fmt.Fprintf(w, "%s: %d rsa (%d with private key), %d ecdsa (%d expected invalid)\n",
		r.Source, s.RSA, s.RSASigning, s.ECDSA, s.ECDSAInvalid); err != nil {
		return err
	}
	for _, shape := range s.Shapes() {
		if _, err := fmt.Fprintf(w, "  %-24s %d\n", shape, s.ByShape[shape]); err != nil {
			return err
		}
	}
	for _, msg := range r.Invalid {
		if _, err := fmt.Fprintf(w, "invalid %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

func writeNormalized(path string, col *vectors.Collection) error {
	format, err := vectors.FormatFor(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	if err := vectors.NewEncoder(file, format).Encode(col); err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return file.Close()
}
