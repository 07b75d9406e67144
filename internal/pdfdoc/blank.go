package pdfdoc

import (
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/jackzampolin/chapsplit/internal/chapters"
)

// Blankness inspects the page at the 0-based index in two steps: a page with
// no content stream is blank; otherwise its extracted text decides. Anything
// that cannot be read is Unknown.
func (d *Document) Blankness(pageIndex int) chapters.Blankness {
	b, _ := d.Probe(pageIndex)
	return b
}

// Probe is Blankness with the reason an Unknown result was returned.
// The text library panics on some malformed objects; those become Unknown.
func (d *Document) Probe(pageIndex int) (b chapters.Blankness, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			b, err = chapters.Unknown, fmt.Errorf("probe panic on page index %d: %v", pageIndex, rec)
		}
	}()

	page, err := d.page(pageIndex)
	if err != nil {
		return chapters.Unknown, err
	}

	if empty, ok := contentsEmpty(page.V.Key("Contents")); ok && empty {
		return chapters.Blank, nil
	}

	text, err := plainText(page)
	if err != nil {
		return chapters.Unknown, err
	}
	if strings.TrimSpace(text) == "" {
		return chapters.Blank, nil
	}
	return chapters.NotBlank, nil
}

// PageText returns the plain text of the page at the 0-based index.
func (d *Document) PageText(pageIndex int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("text extraction panic on page index %d: %v", pageIndex, rec)
		}
	}()

	page, err := d.page(pageIndex)
	if err != nil {
		return "", err
	}
	return plainText(page)
}

func (d *Document) page(pageIndex int) (pdflib.Page, error) {
	if d.text == nil {
		return pdflib.Page{}, fmt.Errorf("text reader unavailable: %w", d.textErr)
	}
	if pageIndex < 0 || pageIndex >= d.text.NumPage() {
		return pdflib.Page{}, fmt.Errorf("%w: page index %d", ErrPageRange, pageIndex)
	}
	page := d.text.Page(pageIndex + 1)
	if page.V.IsNull() {
		return pdflib.Page{}, fmt.Errorf("page index %d not found", pageIndex)
	}
	return page, nil
}

func plainText(page pdflib.Page) (string, error) {
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}

// contentsEmpty reports whether a page /Contents value draws nothing.
// ok is false when the value could not be judged without extracting text,
// including when decoding the stream panics.
func contentsEmpty(v pdflib.Value) (empty, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			empty, ok = false, false
		}
	}()

	switch v.Kind() {
	case pdflib.Null:
		return true, true
	case pdflib.Array:
		if v.Len() == 0 {
			return true, true
		}
		return false, false
	case pdflib.Stream:
		rc := v.Reader()
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return false, false
		}
		return strings.TrimSpace(string(data)) == "", true
	default:
		return false, false
	}
}
