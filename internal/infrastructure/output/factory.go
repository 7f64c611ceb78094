// Package output provides formatters for LX extraction results.
package output

import (
	"fmt"
	"io"

	"github.com/reglet-dev/scatslx/internal/application/ports"
)

// Options tunes formatter behaviour.
type Options struct {
	// SourcePath is the LX file, used for SARIF artifact locations
	SourcePath string
	// ToolVersion is reported as the SARIF driver version
	ToolVersion string
	// Indent pretty-prints JSON
	Indent bool
	// Color enables terminal colour in the table format
	Color bool
}

// FormatterFactory creates formatters by name.
type FormatterFactory struct{}

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

// Create returns a formatter for the given format name.
func (f *FormatterFactory) Create(
	format string,
	writer io.Writer,
	options Options,
) (ports.OutputFormatter, error) {
	switch format {
	case "table":
		t := NewTableFormatter(writer)
		t.EnableColor = options.Color
		return t, nil
	case "json":
		return NewJSONFormatter(writer, options.Indent), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "sarif":
		return NewSARIFFormatter(writer, options.SourcePath, options.ToolVersion), nil
	case "msgpack":
		return NewMsgpackFormatter(writer), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, f.SupportedFormats(),
		)
	}
}

// SupportedFormats returns list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	return []string{"table", "json", "yaml", "sarif", "msgpack"}
}

// IsBinary reports whether a format should not be written to a terminal.
func (f *FormatterFactory) IsBinary(format string) bool {
	return format == "msgpack"
}
