package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/chapsplit/internal/config"
	"github.com/jackzampolin/chapsplit/internal/output"
	"github.com/jackzampolin/chapsplit/internal/svcctx"
)

var (
	configInitPath  string
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default configuration.

Without --path the file goes to the chapsplit home directory
(~/.chapsplit/chapsplit.yaml). Use --path chapsplit.yaml to create a
per-project config next to your LaTeX sources.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		path := configInitPath
		if path == "" {
			h := svcctx.HomeFrom(ctx)
			if h.ConfigExists() && !configInitForce {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", h.ConfigPath())
			}
			if err := h.EnsureExists(); err != nil {
				return err
			}
			path = h.ConfigPath()
		}

		if err := config.WriteDefault(path, configInitForce); err != nil {
			return err
		}
		svcctx.LoggerFrom(ctx).Info("wrote default config", "path", path)
		if !output.IsStructured(output.GetFormat()) {
			fmt.Println(path)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := svcctx.ConfigFrom(cmd.Context())
		format := output.GetFormat()
		if format == output.FormatText {
			// Config has no table rendering; YAML is the file format anyway.
			format = output.FormatYAML
		}
		return output.OutputTo(cmd.OutOrStdout(), format, cfg)
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "write the config here instead of the home directory")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
