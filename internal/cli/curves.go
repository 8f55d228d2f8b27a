package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/sigkat/internal/config"
	"github.com/mahdiidarabi/sigkat/internal/curve"
)

type curveInfo struct {
	Name    string `json:"name"`
	BitSize int    `json:"bit_size"`
	Order   string `json:"order"`
}

func addCurvesCommand(root *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "curves",
		Short: "List the supported ECDSA curves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var infos []curveInfo
			for _, name := range curve.Names() {
				c, err := curve.Lookup(name)
				if err != nil {
					return err
				}
				infos = append(infos, curveInfo{Name: c.Name, BitSize: c.BitSize, Order: fmt.Sprintf("%X", c.N)})
			}

			out := cmd.OutOrStdout()
			if a.cfg.Report.Format == config.ReportJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			for _, info := range infos {
				if _, err := fmt.Fprintf(out, "%-10s %4d bits\n", info.Name, info.BitSize); err != nil {
					return err
				}
			}
			return nil
		},
	}

	root.AddCommand(cmd)
}
