package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/chapsplit/internal/config"
	"github.com/jackzampolin/chapsplit/internal/home"
	"github.com/jackzampolin/chapsplit/internal/output"
	"github.com/jackzampolin/chapsplit/internal/svcctx"
	"github.com/jackzampolin/chapsplit/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string

	// cfgManager is loaded before any subcommand runs.
	cfgManager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "chapsplit",
	Short: "Split a LaTeX-built PDF into one file per chapter",
	Long: `chapsplit reads the .toc file LaTeX writes next to a compiled document,
works out the page range of every chapter and writes each chapter to its
own PDF.

A blank trailing page (the verso left empty so the next chapter starts on
a right-hand page) is dropped from each chapter.

Settings are read from ./chapsplit.yaml or ~/.chapsplit/chapsplit.yaml and
from CHAPSPLIT_* environment variables; command-line flags win.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		output.SetFormat(format)

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}

		var searchDirs []string
		if h.Exists() {
			searchDirs = append(searchDirs, h.Path())
		}
		cfgManager, err = config.NewManager(cfgFile, searchDirs...)
		if err != nil {
			return err
		}
		cfg := cfgManager.Get()
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		}))
		if used := cfgManager.ConfigFileUsed(); used != "" {
			logger.Debug("loaded config", "path", used)
		}

		cmd.SetContext(svcctx.WithServices(cmd.Context(), &svcctx.Services{
			Logger: logger,
			Home:   h,
			Config: cfg,
		}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./chapsplit.yaml or ~/.chapsplit/chapsplit.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "chapsplit home directory (default: ~/.chapsplit)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", string(output.DefaultFormat), "output format: text, yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)

	rootCmd.AddCommand(versionCmd)
}
