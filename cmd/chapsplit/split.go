package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/chapsplit/internal/config"
	"github.com/jackzampolin/chapsplit/internal/naming"
	"github.com/jackzampolin/chapsplit/internal/output"
	"github.com/jackzampolin/chapsplit/internal/splitter"
	"github.com/jackzampolin/chapsplit/internal/svcctx"
	"github.com/jackzampolin/chapsplit/internal/watch"
)

// splitFlags are bound by both split and ranges. Values only override the
// loaded config when the flag was set on the command line.
type splitFlags struct {
	toc          string
	pdf          string
	outputDir    string
	level        string
	chapterIndex int
	tocOnly      bool
	noPredefined bool
	noTrim       bool
	noClobber    bool
	watch        bool
}

var splitOpts splitFlags

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Write each chapter of the PDF to its own file",
	Long: `Split reads the chapter entries of a LaTeX .toc file, prints the page
range of every chapter and writes each one to a separate PDF.

Output files are named from chapter_names in the config when present,
otherwise from the chapter number and title (e.g. "02-Molecular Biology.pdf").

Examples:
  chapsplit split                                # main.toc + main.pdf into .
  chapsplit split --output-dir chapters          # write into ./chapters
  chapsplit split --chapter-index 2              # only the third chapter
  chapsplit split --toc-only                     # print ranges, write nothing
  chapsplit split --level section                # split on sections
  chapsplit split --watch                        # re-split after each LaTeX run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSplit(cmd, splitOpts.tocOnly)
	},
}

var rangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "Print chapter page ranges without writing files",
	Long: `Ranges is split --toc-only: it prints the page range computed for every
chapter and leaves the output directory untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSplit(cmd, true)
	},
}

func init() {
	bindInputFlags(splitCmd)
	bindSplitFlags(splitCmd)
	bindInputFlags(rangesCmd)

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(rangesCmd)
}

func bindInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&splitOpts.toc, "toc", "main.toc", "LaTeX table of contents file")
	f.StringVar(&splitOpts.pdf, "pdf", "main.pdf", "compiled PDF to split")
	f.StringVar(&splitOpts.level, "level", "chapter", "outline level that starts a new file")
}

func bindSplitFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&splitOpts.outputDir, "output-dir", ".", "directory for chapter PDFs")
	f.IntVar(&splitOpts.chapterIndex, "chapter-index", 0, "only write the chapter with this 0-based index")
	f.BoolVar(&splitOpts.tocOnly, "toc-only", false, "print chapter ranges and exit without writing")
	f.BoolVar(&splitOpts.noPredefined, "no-predefined-names", false, "ignore chapter_names from the config")
	f.BoolVar(&splitOpts.noTrim, "no-trim", false, "keep blank trailing pages")
	f.BoolVar(&splitOpts.noClobber, "no-clobber", false, "fail instead of replacing existing chapter files")
	f.BoolVar(&splitOpts.watch, "watch", false, "re-run whenever the .toc, the PDF or the config file changes")
}

// buildRequest merges flags that were set explicitly over cfg.
func buildRequest(cmd *cobra.Command, cfg *config.Config, dryRun bool) (splitter.Request, error) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	if changed("toc") {
		cfg.TOC = splitOpts.toc
	}
	if changed("pdf") {
		cfg.PDF = splitOpts.pdf
	}
	if changed("level") {
		cfg.Level = splitOpts.level
	}
	if changed("output-dir") {
		cfg.OutputDir = splitOpts.outputDir
	}
	if changed("no-predefined-names") && splitOpts.noPredefined {
		cfg.UsePredefinedNames = false
	}
	if changed("no-trim") && splitOpts.noTrim {
		cfg.TrimBlankPages = false
	}
	if err := cfg.Validate(); err != nil {
		return splitter.Request{}, err
	}

	req := splitter.Request{
		TOCPath: cfg.TOC,
		PDFPath: cfg.PDF,
		Level:   cfg.Level,
		DryRun:  dryRun,
		Options: splitter.Options{
			OutputDir: cfg.OutputDir,
			Names: naming.Resolver{
				Predefined:    cfg.ChapterNames,
				UsePredefined: cfg.UsePredefinedNames,
			},
			Trim:      cfg.TrimBlankPages,
			NoClobber: changed("no-clobber") && splitOpts.noClobber,
		},
	}
	if changed("chapter-index") {
		idx := splitOpts.chapterIndex
		req.Options.Only = &idx
	}
	return req, nil
}

func runSplit(cmd *cobra.Command, dryRun bool) error {
	ctx := cmd.Context()

	req, err := buildRequest(cmd, cfgManager.Get(), dryRun)
	if err != nil {
		return err
	}

	if !splitOpts.watch || dryRun {
		return splitOnce(ctx, req)
	}

	// The first run may fail on a half-built document; keep watching.
	if err := splitOnce(ctx, req); err != nil {
		svcctx.LoggerFrom(ctx).Error("initial run failed", "error", err)
	}

	cfgManager.OnChange(func(c *config.Config) {
		svcctx.LoggerFrom(ctx).Info("config reloaded", "path", cfgManager.ConfigFileUsed())
	})
	cfgManager.WatchConfig()

	paths := []string{req.TOCPath, req.PDFPath}
	if used := cfgManager.ConfigFileUsed(); used != "" {
		paths = append(paths, used)
	}

	w := &watch.Watcher{
		Paths:    paths,
		Debounce: cfgManager.Get().Watch.Debounce,
		Fn: func(ctx context.Context) error {
			// Pick up chapter_names and other settings edited since the last run.
			req, err := buildRequest(cmd, cfgManager.Get(), false)
			if err != nil {
				return err
			}
			return splitOnce(ctx, req)
		},
	}
	return w.Run(ctx)
}

// splitOnce performs a single run under a fresh run id and prints its
// outcome in the selected output format.
func splitOnce(ctx context.Context, req splitter.Request) error {
	services := &svcctx.Services{}
	if s := svcctx.ServicesFrom(ctx); s != nil {
		copied := *s
		services = &copied
	}
	services.RunID = uuid.New().String()
	services.Logger = svcctx.LoggerFrom(ctx).With("run_id", services.RunID)
	ctx = svcctx.WithServices(ctx, services)

	format := output.GetFormat()

	var onRanges func(splitter.Ranges) error
	if !output.IsStructured(format) {
		onRanges = func(rs splitter.Ranges) error {
			return output.Output(rs)
		}
	}

	report, err := splitter.Execute(ctx, req, onRanges)
	if err != nil {
		return err
	}

	if output.IsStructured(format) {
		return output.Output(report)
	}
	if !req.DryRun {
		return output.Output(report.Results)
	}
	return nil
}
