package cli

import (
	"github.com/spf13/cobra"

	"nsg/internal/registry/normalize"
)

func lookupCmd(d *deps) *cobra.Command {
	var country string

	c := &cobra.Command{
		Use:   "lookup <notation>",
		Short: "Look up a company by country and national identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := d.build(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Dispatcher.ByCountry(cmd.Context(), country, args[0])
			if err != nil {
				return printFailure(cmd, err)
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	c.Flags().StringVarP(&country, "country", "c", "", "ISO 3166 alpha-2 country code (required)")
	_ = c.MarkFlagRequired("country")
	return c
}

func basicCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "basic <icd>:<id>",
		Short: "Fetch company basic information by ISO/IEC 6523 identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := d.build(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, j, err := a.Dispatcher.ByICD(cmd.Context(), args[0])
			if err != nil {
				return printFailure(cmd, err)
			}
			return printJSON(cmd.OutOrStdout(), normalize.BasicInformation(args[0], j.String(), rec))
		},
	}
}
