package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Page describes one page of a generated test PDF.
type Page struct {
	// Text is drawn with Helvetica. Empty text with a content stream
	// produces a page whose stream draws nothing.
	Text string
	// NoContents omits the /Contents entry entirely.
	NoContents bool
	// RunLength encodes the content stream with /RunLengthDecode, a filter
	// pdfcpu accepts but the text extractor cannot decode.
	RunLength bool
}

// TextPages returns pages that each carry the given text.
func TextPages(texts ...string) []Page {
	pages := make([]Page, len(texts))
	for i, s := range texts {
		pages[i] = Page{Text: s}
	}
	return pages
}

// BuildPDF assembles a minimal, valid PDF with a correct xref table.
func BuildPDF(pages []Page) []byte {
	var (
		buf     bytes.Buffer
		offsets []int
	)

	write := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	// Object layout: 1 catalog, 2 page tree, 3 font, then a page and
	// (optionally) its content stream for every page.
	pageIDs := make([]int, len(pages))
	next := 4
	for i, p := range pages {
		pageIDs[i] = next
		next++
		if !p.NoContents {
			next++
		}
	}

	kids := make([]string, len(pageIDs))
	for i, id := range pageIDs {
		kids[i] = fmt.Sprintf("%d 0 R", id)
	}

	write("<< /Type /Catalog /Pages 2 0 R >>")
	write(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	write("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, p := range pages {
		dict := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >>"
		if p.NoContents {
			write(dict + " >>")
			continue
		}
		write(fmt.Sprintf("%s /Contents %d 0 R >>", dict, pageIDs[i]+1))

		var stream string
		if p.Text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escape(p.Text))
		}
		if p.RunLength && stream != "" {
			// One literal run (at most 128 bytes) followed by the EOD marker.
			stream = string(rune(0)) + stream + "\x80"
			encoded := []byte(stream)
			encoded[0] = byte(len(stream) - 3)
			write(fmt.Sprintf("<< /Length %d /Filter /RunLengthDecode >>\nstream\n%s\nendstream", len(encoded), encoded))
			continue
		}
		write(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// WritePDF writes a generated PDF into dir and returns its path.
func WritePDF(t *testing.T, dir, name string, pages []Page) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildPDF(pages), 0o644); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// WriteTOC writes a LaTeX .toc with one chapter line per title/page pair.
func WriteTOC(t *testing.T, dir, name string, titles []string, pages []int) string {
	t.Helper()

	var b strings.Builder
	for i := range titles {
		fmt.Fprintf(&b, "\\contentsline {chapter}{\\numberline {%d}%s}{%d}{chapter.%d}%%\n",
			i+1, titles[i], pages[i], i+1)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("failed to write test toc: %v", err)
	}
	return path
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
}
