package main

import (
	"github.com/YuminosukeSato/limego/lime"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the explainer configuration as YAML",
		Long: `Prints the default explainer configuration, or the validated contents of
--config, as YAML. Redirect the output to a file to start a custom config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := lime.DefaultConfig()
			if path != "" {
				var err error
				if cfg, err = lime.LoadConfig(path); err != nil {
					return err
				}
			}
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "YAML config to validate and print")
	return cmd
}
