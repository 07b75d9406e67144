package chapters

// Blankness is the outcome of inspecting a single page.
type Blankness int

const (
	// Unknown means the page content could not be inspected.
	Unknown Blankness = iota
	// Blank means the page has no content stream or only whitespace text.
	Blank
	// NotBlank means the page has visible text.
	NotBlank
)

func (b Blankness) String() string {
	switch b {
	case Blank:
		return "blank"
	case NotBlank:
		return "not_blank"
	default:
		return "unknown"
	}
}

// Prober inspects a page by its 0-based index.
type Prober interface {
	Blankness(pageIndex int) Blankness
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(pageIndex int) Blankness

// Blankness calls f.
func (f ProberFunc) Blankness(pageIndex int) Blankness {
	return f(pageIndex)
}

// TrimEnd returns the last page to keep for r. Only the final page is
// inspected; Unknown counts as not blank. The result is never below
// r.StartPage, so a blank single-page chapter is kept as is.
func TrimEnd(r Range, p Prober) (end int, trimmed bool) {
	if p == nil || r.EndPage <= r.StartPage {
		return r.EndPage, false
	}
	if p.Blankness(r.EndPage-1) != Blank {
		return r.EndPage, false
	}
	return r.EndPage - 1, true
}
