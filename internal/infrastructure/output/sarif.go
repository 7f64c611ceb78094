package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/reglet-dev/scatslx/internal/domain/extraction"
)

// SARIFFormatter formats the error lists of an extraction as SARIF 2.1.0
// JSON, one result per error entry located at its LX line.
type SARIFFormatter struct {
	writer      io.Writer
	sourcePath  string
	toolVersion string
}

// NewSARIFFormatter creates a new SARIF formatter.
// sourcePath overrides the result's LX path for artifact locations.
func NewSARIFFormatter(writer io.Writer, sourcePath, toolVersion string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:      writer,
		sourcePath:  sourcePath,
		toolVersion: toolVersion,
	}
}

// Format writes the extraction result as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(result *extraction.Result) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("scatslx", "https://github.com/reglet-dev/scatslx")
	version := f.toolVersion
	if version == "" {
		version = result.ToolVersion
	}
	if version != "" {
		run.Tool.Driver.Version = &version
	}

	sourcePath := f.sourcePath
	if sourcePath == "" {
		sourcePath = result.SourcePath
	}
	newSARIFMapper(result, sourcePath).mapToRun(run)

	report.AddRun(run)

	if err := report.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrBool(b bool) *bool {
	return &b
}
