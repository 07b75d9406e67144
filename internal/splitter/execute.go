package splitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jackzampolin/chapsplit/internal/chapters"
	"github.com/jackzampolin/chapsplit/internal/outline"
	"github.com/jackzampolin/chapsplit/internal/pdfdoc"
	"github.com/jackzampolin/chapsplit/internal/svcctx"
)

// ErrInputMissing is returned when the outline or the source PDF is absent.
var ErrInputMissing = errors.New("input not found")

// Request describes a full run from files on disk.
type Request struct {
	TOCPath string
	PDFPath string
	Level   string
	// DryRun computes and reports ranges without writing anything.
	DryRun  bool
	Options Options
}

// Ranges is the computed chapter table.
type Ranges []chapters.Range

// WriteText renders the table one chapter per line.
func (rs Ranges) WriteText(w io.Writer) error {
	for _, r := range rs {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

// Report is everything a run produced.
type Report struct {
	RunID      string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	TOCPath    string         `json:"toc" yaml:"toc"`
	PDFPath    string         `json:"pdf" yaml:"pdf"`
	TotalPages int            `json:"total_pages" yaml:"total_pages"`
	Ranges     Ranges         `json:"ranges" yaml:"ranges"`
	Skipped    []outline.Skip `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Results    Results        `json:"results,omitempty" yaml:"results,omitempty"`
	DryRun     bool           `json:"dry_run" yaml:"dry_run"`
}

// Execute checks both inputs, computes the chapter ranges, hands them to
// onRanges (if set) and then splits unless the request is a dry run.
func Execute(ctx context.Context, req Request, onRanges func(Ranges) error) (*Report, error) {
	logger := svcctx.LoggerFrom(ctx)

	for _, in := range []struct{ kind, path string }{
		{"outline", req.TOCPath},
		{"PDF", req.PDFPath},
	} {
		if _, err := os.Stat(in.path); err != nil {
			return nil, fmt.Errorf("%w: %s %s", ErrInputMissing, in.kind, in.path)
		}
	}

	entries, skipped, err := outline.ParseFile(req.TOCPath, req.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse outline: %w", err)
	}
	for _, s := range skipped {
		if s.Broken {
			logger.Warn("could not read outline entry, chapter boundaries may be off",
				"toc", req.TOCPath, "line", s.Line, "reason", s.Reason, "text", s.Text)
			continue
		}
		logger.Debug("skipped outline entry", "line", s.Line, "reason", s.Reason)
	}
	if len(entries) == 0 {
		logger.Warn("no outline entries found", "toc", req.TOCPath, "level", req.Level)
	}

	doc, err := pdfdoc.Open(req.PDFPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if err := doc.TextErr(); err != nil && req.Options.Trim {
		logger.Warn("page text unavailable, blank pages will be kept", "pdf", req.PDFPath, "error", err)
	}

	report := &Report{
		RunID:      svcctx.RunIDFrom(ctx),
		TOCPath:    req.TOCPath,
		PDFPath:    req.PDFPath,
		TotalPages: doc.PageCount(),
		Ranges:     Ranges(chapters.Compute(entries, doc.PageCount())),
		Skipped:    skipped,
		DryRun:     req.DryRun,
	}
	logger.Debug("computed chapter ranges",
		"chapters", len(report.Ranges),
		"pages", report.TotalPages)

	if onRanges != nil {
		if err := onRanges(report.Ranges); err != nil {
			return report, err
		}
	}
	if req.DryRun {
		return report, nil
	}

	results, err := New(doc, req.Options).Run(ctx, report.Ranges)
	report.Results = results
	if err != nil {
		return report, err
	}
	return report, nil
}
