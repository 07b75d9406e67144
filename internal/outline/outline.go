// Package outline reads chapter start pages from a LaTeX table-of-contents file.
package outline

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DefaultLevel is the sectioning level treated as a chapter boundary.
const DefaultLevel = "chapter"

// Entry is one outline line: a title and the 1-based page it starts on.
type Entry struct {
	Level     string `json:"level" yaml:"level"`
	Number    string `json:"number,omitempty" yaml:"number,omitempty"`
	Title     string `json:"title" yaml:"title"`
	StartPage int    `json:"start_page" yaml:"start_page"`
}

var (
	commandWithArg = regexp.MustCompile(`\\[a-zA-Z]+\*?\s*\{([^{}]*)\}`)
	bareCommand    = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	whitespace     = regexp.MustCompile(`\s+`)
	numberline     = regexp.MustCompile(`^\s*\\numberline\s*\{([^{}]*)\}`)
)

// Skip describes a \contentsline of the requested level that produced no entry.
type Skip struct {
	Line   int    `json:"line" yaml:"line"`
	Text   string `json:"text" yaml:"text"`
	Reason string `json:"reason" yaml:"reason"`
	// Broken is set when the line itself could not be read, as opposed to
	// a well-formed entry whose page is not an arabic number (front matter).
	Broken bool `json:"broken" yaml:"broken"`
}

// contentsLine builds the matcher for the head of \contentsline {level}.
// The title and page arguments are read with a brace-counting scanner so
// titles may nest markup to any depth.
func contentsLine(level string) *regexp.Regexp {
	return regexp.MustCompile(`\\contentsline\s*\{\s*` + regexp.QuoteMeta(level) + `\s*\}`)
}

// Parse extracts entries of the given level in order of appearance.
// Entries whose page argument is not a positive integer are skipped and
// reported alongside lines that could not be read at all.
func Parse(r io.Reader, level string) ([]Entry, []Skip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read outline: %w", err)
	}
	entries, skipped := ParseString(strings.ToValidUTF8(string(data), "\uFFFD"), level)
	return entries, skipped, nil
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path, level string) ([]Entry, []Skip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Parse(f, level)
}

// ParseString is Parse over an in-memory outline.
func ParseString(content, level string) ([]Entry, []Skip) {
	if level == "" {
		level = DefaultLevel
	}

	entries := []Entry{}
	var skipped []Skip
	for _, loc := range contentsLine(level).FindAllStringIndex(content, -1) {
		skip := func(reason string, broken bool) {
			skipped = append(skipped, Skip{
				Line:   strings.Count(content[:loc[0]], "\n") + 1,
				Text:   lineAt(content, loc[0]),
				Reason: reason,
				Broken: broken,
			})
		}

		args, ok := braceGroups(content[loc[1]:], 2)
		if !ok {
			skip("unbalanced braces in title or page", true)
			continue
		}

		page, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || page < 1 {
			skip(fmt.Sprintf("page %q is not a positive number", args[1]), false)
			continue
		}

		raw := args[0]
		var number string
		if nm := numberline.FindStringSubmatch(raw); nm != nil {
			number = CleanTitle(nm[1])
			raw = raw[len(nm[0]):]
		}

		entries = append(entries, Entry{
			Level:     level,
			Number:    number,
			Title:     CleanTitle(raw),
			StartPage: page,
		})
	}
	return entries, skipped
}

// braceGroups reads n consecutive {...} arguments from the start of s,
// allowing whitespace between them. Escaped braces do not count.
func braceGroups(s string, n int) ([]string, bool) {
	groups := make([]string, 0, n)
	i := 0
	for len(groups) < n {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) || s[i] != '{' {
			return nil, false
		}

		depth, start := 0, i+1
		closed := false
		for ; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++
			case '{':
				depth++
			case '}':
				depth--
			case '\n':
				// TeX writes one \contentsline per line.
				return nil, false
			}
			if depth == 0 {
				closed = true
				break
			}
		}
		if !closed {
			return nil, false
		}
		groups = append(groups, s[start:i])
		i++
	}
	return groups, true
}

func lineAt(content string, pos int) string {
	start := strings.LastIndexByte(content[:pos], '\n') + 1
	end := strings.IndexByte(content[pos:], '\n')
	if end < 0 {
		return content[start:]
	}
	return content[start : pos+end]
}

// CleanTitle strips TeX markup from a title: \cmd{X} becomes X (innermost
// first, so nesting unwraps fully), bare commands and stray braces are
// dropped, whitespace is collapsed.
func CleanTitle(s string) string {
	for {
		next := commandWithArg.ReplaceAllString(s, "$1")
		if next == s {
			break
		}
		s = next
	}
	s = bareCommand.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "", "~", " ").Replace(s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
