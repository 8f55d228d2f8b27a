package cli

import (
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/sigkat/internal/config"
	"github.com/mahdiidarabi/sigkat/pkg/sigkat"
)

func addRunCommand(root *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Run known-answer checks over vector files",
		Long: `Run verifies every vector in the given files. RSA vectors that carry a
private exponent are also re-signed and compared byte for byte. Valid ECDSA
vectors are corrupted one component at a time and must stop verifying.

The command exits 1 when any check fails.`,
		Example: `  sigkat run fixtures/rsa_pkcs1v15.json fixtures/ecdsa_p384.json
  sigkat run -o json --all vectors.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			client := sigkat.NewClient().
				WithWorkers(a.cfg.Workers).
				WithLogger(a.logger).
				WithMutations(a.cfg.Mutations)

			report, err := client.Run(ctx, args...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.cfg.Report.Format == config.ReportJSON {
				err = report.WriteJSON(out)
			} else {
				err = report.WriteText(out, a.cfg.Report.Verbose)
			}
			if err != nil {
				return err
			}
			return report.Err()
		},
	}

	cmd.Flags().Bool("all", false, "list passing checks as well as failures")
	cmd.Flags().Bool("mutations", true, "check that corrupted ECDSA signatures are rejected")
	bindKey(cmd, "all", "report.verbose")
	bindKey(cmd, "mutations", "mutations")

	root.AddCommand(cmd)
}
