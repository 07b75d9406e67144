// Package chapters turns outline start pages into inclusive page ranges.
package chapters

import (
	"errors"
	"fmt"

	"github.com/jackzampolin/chapsplit/internal/outline"
)

// ErrOutOfBounds is returned when a range starts past the end of the document.
var ErrOutOfBounds = errors.New("chapter starts beyond last page")

// Range is one chapter's extent. Pages are 1-based and inclusive.
type Range struct {
	Index     int    `json:"index" yaml:"index"`
	Title     string `json:"title" yaml:"title"`
	StartPage int    `json:"start_page" yaml:"start_page"`
	EndPage   int    `json:"end_page" yaml:"end_page"`
}

// Pages returns the number of pages the range covers.
func (r Range) Pages() int {
	return r.EndPage - r.StartPage + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d: '%s' -> start %d, end %d", r.Index, r.Title, r.StartPage, r.EndPage)
}

// Compute derives one range per entry. Each chapter ends on the page before
// the next one starts and the last chapter ends on totalPages.
// A range that would end before it starts is clamped to a single page.
func Compute(entries []outline.Entry, totalPages int) []Range {
	ranges := make([]Range, 0, len(entries))
	for i, e := range entries {
		end := totalPages
		if i+1 < len(entries) {
			end = entries[i+1].StartPage - 1
		}
		if end < e.StartPage {
			end = e.StartPage
		}
		ranges = append(ranges, Range{
			Index:     i,
			Title:     e.Title,
			StartPage: e.StartPage,
			EndPage:   end,
		})
	}
	return ranges
}

// Validate checks every range against the document length.
// An outline from a stale build can point past the last page.
func Validate(ranges []Range, totalPages int) error {
	var errs []error
	for _, r := range ranges {
		if r.StartPage > totalPages || r.EndPage > totalPages {
			errs = append(errs, fmt.Errorf("%w: chapter %d %q spans %d-%d, document has %d pages",
				ErrOutOfBounds, r.Index, r.Title, r.StartPage, r.EndPage, totalPages))
		}
	}
	return errors.Join(errs...)
}
