// Package output renders command results as text, YAML or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DefaultFormat is the default output format.
var DefaultFormat Format = FormatText

// globalFormat is set by the root command's --output flag.
var globalFormat Format = FormatText

// TextWriter is implemented by values with a human-readable rendering.
type TextWriter interface {
	WriteText(w io.Writer) error
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatYAML, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format: %s (expected text, yaml or json)", s)
	}
}

// SetFormat sets the global output format.
func SetFormat(format Format) {
	globalFormat = format
}

// GetFormat returns the current global output format.
func GetFormat() Format {
	return globalFormat
}

// Output writes data to stdout in the configured format.
func Output(data any) error {
	return OutputTo(os.Stdout, globalFormat, data)
}

// OutputTo writes data to the given writer in the specified format.
func OutputTo(w io.Writer, format Format, data any) error {
	switch format {
	case FormatText:
		if tw, ok := data.(TextWriter); ok {
			return tw.WriteText(w)
		}
		_, err := fmt.Fprintln(w, data)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// IsStructured returns true if the format is JSON or YAML.
// Commands use it to keep progress messages out of structured output.
func IsStructured(format Format) bool {
	return format == FormatJSON || format == FormatYAML
}
