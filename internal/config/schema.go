package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config holds chapsplit configuration.
// Stored at: ./chapsplit.yaml or {home}/chapsplit.yaml
type Config struct {
	TOC       string `mapstructure:"toc" yaml:"toc" json:"toc"`                      // LaTeX .toc outline (supports ${ENV_VAR} syntax)
	PDF       string `mapstructure:"pdf" yaml:"pdf" json:"pdf"`                      // Source PDF (supports ${ENV_VAR} syntax)
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"` // Directory for chapter PDFs
	Level     string `mapstructure:"level" yaml:"level" json:"level"`                // Outline level that starts a chapter

	// ChapterNames are output file names by chapter position.
	ChapterNames       []string `mapstructure:"chapter_names" yaml:"chapter_names" json:"chapter_names"`
	UsePredefinedNames bool     `mapstructure:"use_predefined_names" yaml:"use_predefined_names" json:"use_predefined_names"`

	TrimBlankPages bool   `mapstructure:"trim_blank_pages" yaml:"trim_blank_pages" json:"trim_blank_pages"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level" json:"log_level"` // debug, info, warn, error

	Watch WatchCfg `mapstructure:"watch" yaml:"watch" json:"watch"`
}

// WatchCfg configures re-running on input changes.
type WatchCfg struct {
	// Debounce is how long inputs must stay quiet before a re-run.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TOC:                "main.toc",
		PDF:                "main.pdf",
		OutputDir:          ".",
		Level:              "chapter",
		ChapterNames:       []string{},
		UsePredefinedNames: true,
		TrimBlankPages:     true,
		LogLevel:           "info",
		Watch: WatchCfg{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ResolvePaths expands ${ENV_VAR} references in the path fields.
func (c *Config) ResolvePaths() {
	c.TOC = ResolveEnvVars(c.TOC)
	c.PDF = ResolveEnvVars(c.PDF)
	c.OutputDir = ResolveEnvVars(c.OutputDir)
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.TOC) == "" {
		problems = append(problems, "toc path is empty")
	}
	if strings.TrimSpace(c.PDF) == "" {
		problems = append(problems, "pdf path is empty")
	}
	if strings.TrimSpace(c.Level) == "" {
		problems = append(problems, "level is empty")
	}
	if c.Watch.Debounce < 0 {
		problems = append(problems, "watch.debounce is negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
