// Package naming maps chapters to output file names.
package naming

import (
	"fmt"
	"regexp"
	"strings"
)

const extension = ".pdf"

var (
	separators = regexp.MustCompile(`[\\/]+`)
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}_\-. ]+`)
	spaces     = regexp.MustCompile(`\s+`)
)

// Resolver picks the file name for a chapter. Predefined holds names by
// chapter position; it is only consulted when UsePredefined is set.
type Resolver struct {
	Predefined    []string
	UsePredefined bool
}

// Resolve returns the output file name for the chapter at the 0-based index.
// The result never contains path separators and is never "." or "..".
func (r Resolver) Resolve(index int, title string) string {
	if r.UsePredefined && index >= 0 && index < len(r.Predefined) {
		if name, ok := usable(withExtension(Sanitize(r.Predefined[index]))); ok {
			return name
		}
	}
	if name, ok := usable(Sanitize(fmt.Sprintf("%02d-%s%s", index+1, title, extension))); ok {
		return name
	}
	return fmt.Sprintf("%02d%s", index+1, extension)
}

// Sanitize makes s safe to use as a single path element: separators become
// hyphens, anything outside letters, digits, underscore, hyphen, dot and
// space is removed, and whitespace is collapsed.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = separators.ReplaceAllString(s, "-")
	s = spaces.ReplaceAllString(s, " ")
	s = disallowed.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func withExtension(name string) string {
	if name == "" || strings.HasSuffix(strings.ToLower(name), extension) {
		return name
	}
	return name + extension
}

func usable(name string) (string, bool) {
	base := strings.TrimSuffix(name, extension)
	if strings.Trim(base, ". ") == "" {
		return "", false
	}
	return name, true
}
