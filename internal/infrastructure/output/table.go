package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// TableFormatter formats extraction results as a human-readable table.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// paint returns text in the given attributes when colour is enabled.
func (f *TableFormatter) paint(text string, attrs ...color.Attribute) string {
	if !f.EnableColor {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

func (f *TableFormatter) rule() string {
	return f.paint(strings.Repeat("─", 80), color.FgHiBlack)
}

// Format writes the extraction result as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(result *extraction.Result) error {
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "LX file: %s\n", f.paint(result.SourcePath, color.Bold))
	fmt.Fprintf(f.writer, "Extraction: %s\n", result.ExtractionID)
	fmt.Fprintf(f.writer, "Executed: %s\n", result.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", result.Duration.Round(time.Millisecond))
	if result.Filter != "" {
		fmt.Fprintf(f.writer, "Filter: %s\n", result.Filter)
	}
	fmt.Fprintln(f.writer)

	if len(result.Rows) == 0 {
		fmt.Fprintln(f.writer, "No sites extracted.")
	} else {
		fmt.Fprintln(f.writer, f.paint("Sites:", color.Bold))
		fmt.Fprintln(f.writer, f.rule())
		if err := f.formatRows(result.Rows); err != nil {
			return err
		}
		fmt.Fprintln(f.writer)
	}

	if result.LocationsLoaded {
		f.formatGraph(result)
	}

	if result.HasErrors() {
		f.formatErrors(result.Errors())
	}

	f.formatSummary(result.Summary)
	return nil
}

func (f *TableFormatter) formatRows(rows []entities.JoinedRecord) error {
	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)

	header := []string{"SITE", "SUBSYSTEM"}
	for n := 1; n <= values.PlansPerRecord; n++ {
		header = append(header, values.PlanKindPhase.SlotName(n))
	}
	for n := 1; n <= values.PlansPerRecord; n++ {
		header = append(header, values.PlanKindLink.SlotName(n))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range rows {
		cells := []string{row.Site.SiteID.String(), "-"}
		if row.Site.SubsystemID != nil {
			cells[1] = row.Site.SubsystemID.String()
		}
		for _, slot := range row.Site.Plans {
			cells = append(cells, slotCell(slot))
		}
		for n := 1; n <= values.PlansPerRecord; n++ {
			if row.Subsystem == nil {
				cells = append(cells, "-")
				continue
			}
			cells = append(cells, slotCell(row.Subsystem.Link(n)))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// slotCell renders a plan slot as its raw token with the decoded link.
func slotCell(slot entities.PlanSlot) string {
	if !slot.Found {
		return "-"
	}
	if slot.Offset.Link.State() == values.LinkageUnlinked {
		return slot.Raw
	}
	return fmt.Sprintf("%s→%s", slot.Raw, slot.Offset.Link)
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatGraph(result *extraction.Result) {
	fmt.Fprintln(f.writer, f.paint("Links:", color.Bold))
	fmt.Fprintln(f.writer, f.rule())
	if len(result.Edges) == 0 {
		fmt.Fprintln(f.writer, "No links between located sites.")
	}
	for _, e := range result.Edges {
		fmt.Fprintf(f.writer, "  %s %s → %s\n", f.paint(e.Layer(), color.FgCyan), e.From, e.To)
	}
	if len(result.Unlocated) > 0 {
		ids := make([]string, 0, len(result.Unlocated))
		for _, id := range result.Unlocated {
			ids = append(ids, id.String())
		}
		fmt.Fprintf(f.writer, "  %s %s\n", f.paint("No location:", color.FgYellow), strings.Join(ids, ", "))
	}
	fmt.Fprintln(f.writer)
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatErrors(errs []entities.ErrorEntry) {
	fmt.Fprintln(f.writer, f.paint("Errors:", color.Bold))
	fmt.Fprintln(f.writer, f.rule())
	for _, e := range errs {
		symbol, attr := "⚠", color.FgYellow
		if e.Kind.Promotable() {
			symbol, attr = "✗", color.FgRed
		}
		location := ""
		if e.Line > 0 {
			location = fmt.Sprintf(" (line %d)", e.Line)
		}
		fmt.Fprintf(f.writer, "%s %s %s%s: %s\n",
			f.paint(symbol, attr), f.paint(string(e.Kind), attr), e.EntityID, location, e.Message)
	}
	fmt.Fprintln(f.writer)
}

// formatSummary formats the summary statistics.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(summary extraction.Summary) {
	fmt.Fprintln(f.writer, f.paint("Summary:", color.Bold))
	fmt.Fprintln(f.writer, f.rule())

	fmt.Fprintf(f.writer, "Sites:        %d\n", summary.Sites)
	fmt.Fprintf(f.writer, "Subsystems:   %d\n", summary.Subsystems)
	fmt.Fprintf(f.writer, "Rows:         %d\n", summary.Rows)
	fmt.Fprintf(f.writer, "Links:        %d\n", summary.Edges)

	errors := summary.SiteErrors + summary.SubsystemErrors + summary.LocationErrors
	symbol, attr := "✓", color.FgGreen
	if errors > 0 {
		symbol, attr = "⚠", color.FgYellow
	}
	fmt.Fprintf(f.writer, "Errors:       %d %s\n", errors, f.paint(symbol, attr))
	if summary.DegradedPlans > 0 {
		fmt.Fprintf(f.writer, "  Fallback plans: %d\n", summary.DegradedPlans)
	}

	fmt.Fprintln(f.writer, f.rule())
}
