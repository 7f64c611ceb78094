package output

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/reglet-dev/scatslx/internal/domain/extraction"
)

// MsgpackExport is the binary hand-off to the tabular export stage.
type MsgpackExport struct {
	ExtractionID    string        `msgpack:"extraction_id"`
	SourcePath      string        `msgpack:"source_path"`
	Rows            []FlatRow     `msgpack:"rows"`
	Edges           []MsgpackEdge `msgpack:"edges"`
	Unlocated       []int         `msgpack:"unlocated_sites"`
	SiteErrors      [][2]string   `msgpack:"site_errors"`
	SubsystemErrors [][2]string   `msgpack:"subsystem_errors"`
}

// MsgpackEdge is a link-graph edge with plain coordinates.
type MsgpackEdge struct {
	Layer string        `msgpack:"layer"`
	From  int           `msgpack:"from"`
	To    int           `msgpack:"to"`
	Line  [2][2]float64 `msgpack:"line"`
}

// MsgpackFormatter writes extraction results as MessagePack.
type MsgpackFormatter struct {
	writer io.Writer
}

// NewMsgpackFormatter creates a new MessagePack formatter.
func NewMsgpackFormatter(w io.Writer) *MsgpackFormatter {
	return &MsgpackFormatter{writer: w}
}

// Format writes the extraction result as one MessagePack document.
func (f *MsgpackFormatter) Format(result *extraction.Result) error {
	enc := msgpack.NewEncoder(f.writer)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)

	if err := enc.Encode(NewMsgpackExport(result)); err != nil {
		return fmt.Errorf("failed to write msgpack output: %w", err)
	}
	return nil
}

// NewMsgpackExport flattens a result. Error entries keep the legacy
// (entity id, message) pair form.
func NewMsgpackExport(result *extraction.Result) MsgpackExport {
	export := MsgpackExport{
		ExtractionID: result.ExtractionID.String(),
		SourcePath:   result.SourcePath,
		Rows:         make([]FlatRow, 0, len(result.Rows)),
		Edges:        make([]MsgpackEdge, 0, len(result.Edges)),
	}

	for _, row := range result.Rows {
		export.Rows = append(export.Rows, FlattenRow(row))
	}
	for _, e := range result.Edges {
		export.Edges = append(export.Edges, MsgpackEdge{
			Layer: e.Layer(),
			From:  e.From.Int(),
			To:    e.To.Int(),
			Line:  [2][2]float64{{e.FromPoint.X, e.FromPoint.Y}, {e.ToPoint.X, e.ToPoint.Y}},
		})
	}
	for _, id := range result.Unlocated {
		export.Unlocated = append(export.Unlocated, id.Int())
	}
	for _, e := range result.SiteErrors {
		export.SiteErrors = append(export.SiteErrors, [2]string{e.EntityID, e.Message})
	}
	for _, e := range result.SubsystemErrors {
		export.SubsystemErrors = append(export.SubsystemErrors, [2]string{e.EntityID, e.Message})
	}
	return export
}
