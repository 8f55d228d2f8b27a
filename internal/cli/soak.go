package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/sigkat/internal/config"
	"github.com/mahdiidarabi/sigkat/pkg/sigkat"
)

func addSoakCommand(root *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Sample sign/verify round trips with fresh keys",
		Long: `Soak generates keys, signs random digests, and checks that each signature
verifies while a tampered digest does not. Set --rsa-bits 0 or --curve ""
to skip one algorithm.`,
		Example: `  sigkat soak --trials 10000
  sigkat soak --rsa-bits 0 --curve secp256k1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			soakCfg := sigkat.DefaultSoakConfig()
			soakCfg.Trials = a.cfg.Soak.Trials
			soakCfg.RSABits = a.cfg.Soak.RSABits
			soakCfg.Curve = a.cfg.Soak.Curve
			soakCfg.NumWorkers = a.cfg.Workers

			a.logger.Info().
				Int("trials", soakCfg.Trials).
				Int("rsa_bits", soakCfg.RSABits).
				Str("curve", soakCfg.Curve).
				Msg("soak started")

			client := sigkat.NewClient().
				WithLogger(a.logger).
				WithNonceSource(a.cfg.NonceSource())
			result, err := client.Soak(ctx, soakCfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.cfg.Report.Format == config.ReportJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				err = enc.Encode(result)
			} else {
				_, err = fmt.Fprintf(out, "soak: %d round trips, %d failed in %s\n",
					result.Trials, result.Failures, result.Elapsed.Round(time.Millisecond))
			}
			if err != nil {
				return err
			}
			return result.Err()
		},
	}

	cmd.Flags().Int("trials", 0, "round trips per algorithm")
	cmd.Flags().Int("rsa-bits", 0, "RSA modulus size (0 skips RSA)")
	cmd.Flags().String("curve", "", "ECDSA curve (empty skips ECDSA)")
	cmd.Flags().String("nonce", config.NonceRFC6979, "ECDSA nonce source (rfc6979|random)")
	bindKey(cmd, "trials", "soak.trials")
	bindKey(cmd, "rsa-bits", "soak.rsa_bits")
	bindKey(cmd, "curve", "soak.curve")
	bindKey(cmd, "nonce", "nonce")

	root.AddCommand(cmd)
}
