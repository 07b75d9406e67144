// Package splitter writes one PDF per chapter range.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/jackzampolin/chapsplit/internal/chapters"
	"github.com/jackzampolin/chapsplit/internal/naming"
	"github.com/jackzampolin/chapsplit/internal/svcctx"
)

var (
	// ErrNoSuchChapter is returned when the chapter filter matches no range.
	ErrNoSuchChapter = errors.New("no such chapter")
	// ErrOutputExists is returned when NoClobber is set and the target exists.
	ErrOutputExists = errors.New("output file already exists")
)

// Document is the source the splitter reads from. CreateFile must fail
// with an error matching fs.ErrExist when path already exists.
type Document interface {
	PageCount() int
	WriteFile(path string, start, end int) error
	CreateFile(path string, start, end int) error
}

// probeExplainer is implemented by documents that can say why a page
// could not be inspected.
type probeExplainer interface {
	Probe(pageIndex int) (chapters.Blankness, error)
}

// Options controls a split run.
type Options struct {
	OutputDir string
	Names     naming.Resolver
	// Only restricts the run to the chapter with this 0-based index.
	Only *int
	// Trim drops a blank final page from each chapter.
	Trim bool
	// NoClobber refuses to replace existing output files.
	NoClobber bool
}

// Result describes one written chapter.
type Result struct {
	Index     int    `json:"index" yaml:"index"`
	Title     string `json:"title" yaml:"title"`
	StartPage int    `json:"start_page" yaml:"start_page"`
	EndPage   int    `json:"end_page" yaml:"end_page"`
	Pages     int    `json:"pages" yaml:"pages"`
	Trimmed   bool   `json:"trimmed" yaml:"trimmed"`
	Path      string `json:"path" yaml:"path"`
}

// Results is the outcome of a run.
type Results []Result

// WriteText renders one line per written chapter.
func (rs Results) WriteText(w io.Writer) error {
	for _, r := range rs {
		line := fmt.Sprintf("%d: wrote %s (pages %d-%d", r.Index, r.Path, r.StartPage, r.EndPage)
		if r.Trimmed {
			line += fmt.Sprintf(", dropped blank page %d", r.EndPage+1)
		}
		if _, err := fmt.Fprintln(w, line+")"); err != nil {
			return err
		}
	}
	return nil
}

// Splitter writes chapter ranges of a document to separate files.
type Splitter struct {
	doc  Document
	opts Options
}

// New creates a Splitter over doc.
func New(doc Document, opts Options) *Splitter {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Splitter{doc: doc, opts: opts}
}

// Run writes every range (or only the selected one) in index order.
// The first failure stops the run; results for chapters already written
// are returned alongside the error.
func (s *Splitter) Run(ctx context.Context, ranges []chapters.Range) (Results, error) {
	logger := svcctx.LoggerFrom(ctx)

	if only := s.opts.Only; only != nil && (*only < 0 || *only >= len(ranges)) {
		return nil, fmt.Errorf("%w: index %d, outline has %d chapters", ErrNoSuchChapter, *only, len(ranges))
	}

	var prober chapters.Prober
	if s.opts.Trim {
		prober = chapters.ProberFunc(func(pageIndex int) chapters.Blankness {
			return s.probe(ctx, pageIndex)
		})
	}

	results := Results{}
	for i, r := range ranges {
		if s.opts.Only != nil && i != *s.opts.Only {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if err := chapters.Validate([]chapters.Range{r}, s.doc.PageCount()); err != nil {
			return results, err
		}

		end, trimmed := chapters.TrimEnd(r, prober)
		written := r
		written.EndPage = end
		name := s.opts.Names.Resolve(r.Index, r.Title)
		path := filepath.Join(s.opts.OutputDir, name)

		if err := s.write(path, written); err != nil {
			return results, err
		}

		logger.Info("wrote chapter",
			"chapter", r.Index,
			"title", r.Title,
			"start", r.StartPage,
			"end", end,
			"trimmed", trimmed,
			"path", path)

		results = append(results, Result{
			Index:     r.Index,
			Title:     r.Title,
			StartPage: r.StartPage,
			EndPage:   end,
			Pages:     written.Pages(),
			Trimmed:   trimmed,
			Path:      path,
		})
	}

	return results, nil
}

func (s *Splitter) write(path string, r chapters.Range) error {
	if !s.opts.NoClobber {
		if err := s.doc.WriteFile(path, r.StartPage, r.EndPage); err != nil {
			return fmt.Errorf("chapter %d %q: %w", r.Index, r.Title, err)
		}
		return nil
	}

	err := s.doc.CreateFile(path, r.StartPage, r.EndPage)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrOutputExists, path)
	}
	if err != nil {
		return fmt.Errorf("chapter %d %q: %w", r.Index, r.Title, err)
	}
	return nil
}

func (s *Splitter) probe(ctx context.Context, pageIndex int) chapters.Blankness {
	if pe, ok := s.doc.(probeExplainer); ok {
		b, err := pe.Probe(pageIndex)
		if err != nil {
			svcctx.LoggerFrom(ctx).Debug("page content unreadable, keeping page",
				"page", pageIndex+1,
				"error", err)
		}
		return b
	}
	if p, ok := s.doc.(chapters.Prober); ok {
		return p.Blankness(pageIndex)
	}
	return chapters.Unknown
}
