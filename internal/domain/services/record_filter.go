package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
)

// RowEnv defines the variables available to a row filter expression.
type RowEnv struct {
	SiteID       int  `expr:"site_id"`
	SubsystemID  int  `expr:"subsystem_id"`
	HasSubsystem bool `expr:"has_subsystem"`
	PPLinked     bool `expr:"pp_linked"`
	LPLinked     bool `expr:"lp_linked"`
}

// NewRowEnv builds the filter environment of a joined row. subsystem_id
// is -1 when the site has no subsystem.
func NewRowEnv(row entities.JoinedRecord) RowEnv {
	env := RowEnv{
		SiteID:       row.Site.SiteID.Int(),
		SubsystemID:  -1,
		HasSubsystem: row.Site.HasSubsystem(),
		PPLinked:     row.HasPhaseEdge(),
		LPLinked:     row.HasLinkEdge(),
	}
	if row.Site.SubsystemID != nil {
		env.SubsystemID = row.Site.SubsystemID.Int()
	}
	return env
}

// RecordFilter selects joined rows with a compiled expression.
type RecordFilter struct {
	program *vm.Program
}

// CompileRecordFilter compiles a boolean expression over RowEnv.
func CompileRecordFilter(expression string) (*RecordFilter, error) {
	program, err := expr.Compile(expression, expr.Env(RowEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return &RecordFilter{program: program}, nil
}

// Match reports whether row satisfies the filter.
func (f *RecordFilter) Match(row entities.JoinedRecord) (bool, error) {
	out, err := expr.Run(f.program, NewRowEnv(row))
	if err != nil {
		return false, fmt.Errorf("filter evaluation failed for site %s: %w", row.Site.SiteID, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, expected bool", out)
	}
	return matched, nil
}

// Apply returns the rows that satisfy the filter, in order.
func (f *RecordFilter) Apply(rows []entities.JoinedRecord) ([]entities.JoinedRecord, error) {
	var kept []entities.JoinedRecord
	for _, row := range rows {
		ok, err := f.Match(row)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, row)
		}
	}
	return kept, nil
}
