package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "Print the formats, layouts and frames in effect as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.presets); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
