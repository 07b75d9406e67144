package naming

import (
	"regexp"
	"strings"
	"testing"
)

var bookNames = []string{
	"01-mol-bio.pdf",
	"02-history.pdf",
	"03-genomes",
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		resolver Resolver
		index    int
		title    string
		want     string
	}{
		{
			name:     "predefined name",
			resolver: Resolver{Predefined: bookNames, UsePredefined: true},
			index:    0,
			title:    "Molecular Biology Primer",
			want:     "01-mol-bio.pdf",
		},
		{
			name:     "predefined name gets extension",
			resolver: Resolver{Predefined: bookNames, UsePredefined: true},
			index:    2,
			title:    "Genomes",
			want:     "03-genomes.pdf",
		},
		{
			name:     "past the predefined list derives from title",
			resolver: Resolver{Predefined: bookNames, UsePredefined: true},
			index:    3,
			title:    "Genes",
			want:     "04-Genes.pdf",
		},
		{
			name:     "predefined disabled",
			resolver: Resolver{Predefined: bookNames},
			index:    0,
			title:    "Molecular Biology Primer",
			want:     "01-Molecular Biology Primer.pdf",
		},
		{
			name:     "title with separators and punctuation",
			resolver: Resolver{},
			index:    9,
			title:    "Input/Output: a \\ survey?",
			want:     "10-Input-Output a - survey.pdf",
		},
		{
			name:     "traversal in predefined name",
			resolver: Resolver{Predefined: []string{"../../etc/passwd"}, UsePredefined: true},
			index:    0,
			title:    "Intro",
			want:     "..-..-etc-passwd.pdf",
		},
		{
			name:     "dot-only predefined name falls back",
			resolver: Resolver{Predefined: []string{".."}, UsePredefined: true},
			index:    0,
			title:    "Intro",
			want:     "01-Intro.pdf",
		},
		{
			name:     "empty predefined name falls back",
			resolver: Resolver{Predefined: []string{"  "}, UsePredefined: true},
			index:    0,
			title:    "Intro",
			want:     "01-Intro.pdf",
		},
		{
			name:     "unicode title",
			resolver: Resolver{},
			index:    1,
			title:    "Filogenía",
			want:     "02-Filogenía.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resolver.Resolve(tt.index, tt.title); got != tt.want {
				t.Errorf("Resolve(%d, %q) = %q, want %q", tt.index, tt.title, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  plain.pdf ", "plain.pdf"},
		{"a//b\\\\c", "a-b-c"},
		{"what?*<>|\"", "what"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"keep_under-score.dots", "keep_under-score.dots"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.input); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolve_NeverEscapesDirectory(t *testing.T) {
	allowed := regexp.MustCompile(`^[\p{L}\p{N}_\-. ]+$`)
	titles := []string{
		"..", "../..", "/", "\\", "a/../b", "???", "", "   ", "C:\\Windows\\x",
		"~/home", "\x00nul", "ok title",
	}
	r := Resolver{Predefined: titles, UsePredefined: true}

	for i, title := range titles {
		for _, res := range []Resolver{r, {}} {
			name := res.Resolve(i, title)
			if strings.ContainsAny(name, `/\`) {
				t.Errorf("title %q produced separator in %q", title, name)
			}
			if name == "." || name == ".." || strings.TrimSuffix(name, ".pdf") == ".." {
				t.Errorf("title %q produced traversal name %q", title, name)
			}
			if !allowed.MatchString(name) {
				t.Errorf("title %q produced disallowed characters in %q", title, name)
			}
		}
	}
}
