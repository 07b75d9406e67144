// Package pdfdoc is the read-only view of the source PDF: page count,
// per-page content probing and writing page ranges to new files.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrPageRange is returned for page ranges outside the document.
var ErrPageRange = errors.New("page range outside document")

// Document is an opened source PDF. It is never modified.
type Document struct {
	path string
	file *os.File
	ctx  *model.Context

	// text is nil when the text reader cannot parse the file;
	// every page then probes as unknown.
	text    *pdflib.Reader
	textErr error
}

// NewConfiguration returns the pdfcpu configuration used for reading and writing.
// Outputs use a classic xref table without object streams so the trailer
// and info dictionary stay plain text for stamp.
func NewConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// Open reads and validates the PDF at path. The file stays open until Close.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	ctx, err := api.ReadValidateAndOptimize(f, NewConfiguration())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}

	doc := &Document{path: path, file: f, ctx: ctx}

	info, err := f.Stat()
	if err != nil {
		doc.textErr = err
		return doc, nil
	}
	doc.text, doc.textErr = newTextReader(f, info.Size())
	return doc, nil
}

// newTextReader guards against panics inside the text library on unusual files.
func newTextReader(f io.ReaderAt, size int64) (r *pdflib.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("text reader panic: %v", rec)
		}
	}()
	return pdflib.NewReader(f, size)
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.file.Close()
}

// Path returns the file the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// TextErr reports why page probing is unavailable, or nil.
func (d *Document) TextErr() error {
	return d.textErr
}

// WritePages writes pages start..end (1-based, inclusive) as a new PDF to w.
// The same document and range always produce the same bytes.
func (d *Document) WritePages(w io.Writer, start, end int) error {
	if start < 1 || end < start || end > d.PageCount() {
		return fmt.Errorf("%w: %d-%d of %d", ErrPageRange, start, end, d.PageCount())
	}

	pageNrs := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pageNrs = append(pageNrs, p)
	}

	out, err := pdfcpu.ExtractPages(d.ctx, pageNrs, false)
	if err != nil {
		return fmt.Errorf("failed to extract pages %d-%d: %w", start, end, err)
	}
	var buf bytes.Buffer
	if err := api.WriteContext(out, &buf); err != nil {
		return fmt.Errorf("failed to write pages %d-%d: %w", start, end, err)
	}
	if _, err := w.Write(d.stamp(buf.Bytes(), start, end)); err != nil {
		return fmt.Errorf("failed to write pages %d-%d: %w", start, end, err)
	}
	return nil
}

// WriteFile writes pages start..end to path, creating parent directories.
// The file is written under a temporary name and renamed into place, so an
// existing file is replaced only once the new one is complete.
func (d *Document) WriteFile(path string, start, end int) error {
	return d.writeVia(path, start, end, os.Rename)
}

// CreateFile is WriteFile for a path that must not exist yet. The final
// step is a hard link, which fails with fs.ErrExist if another file got
// there first, so the existence check and the write cannot race.
func (d *Document) CreateFile(path string, start, end int) error {
	return d.writeVia(path, start, end, func(tmpPath, path string) error {
		if err := os.Link(tmpPath, path); err != nil {
			return err
		}
		os.Remove(tmpPath)
		return nil
	})
}

func (d *Document) writeVia(path string, start, end int, place func(tmpPath, path string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := d.WritePages(tmp, start, end); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := place(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
