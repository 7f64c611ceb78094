package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// ruleDescriptions are the SARIF rule texts, one rule per error kind.
var ruleDescriptions = map[values.ErrorKind]string{
	values.ErrMalformedPlanToken:    "Plan token does not fit the PP/LP grammar and was replaced by the error record",
	values.ErrNonNumericSiteID:      "Site id is not an integer; the site was skipped",
	values.ErrNonNumericSubsystemID: "Subsystem id is not an integer",
	values.ErrNonNumericLinkage:     "Linked site is not an integer; recorded as invalid linkage",
	values.ErrAnchorNotFound:        "Tagged line not found within the search window",
	values.ErrInvalidSiteLocation:   "Site-location row could not be used",
}

type sarifMapper struct {
	result     *extraction.Result
	sourcePath string
	cwd        string
}

func newSARIFMapper(result *extraction.Result, sourcePath string) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{
		result:     result,
		sourcePath: sourcePath,
		cwd:        cwd,
	}
}

// mapToRun populates the SARIF run with rules, results, artifacts, and invocations.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addRules(run)
	m.addResults(run)
	m.addArtifacts(run)
	m.addInvocation(run)
	m.addProperties(run)
}

// addRules registers one rule per error kind.
func (m *sarifMapper) addRules(run *sarif.Run) {
	for _, kind := range values.AllErrorKinds() {
		desc := ruleDescriptions[kind]
		rule := sarif.NewReportingDescriptor().WithID(kind.String())
		rule.WithName(kind.String())
		rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &desc})
		rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: m.mapKindToLevel(kind),
		})
		run.Tool.Driver.AddRule(rule)
	}
}

// addResults converts each error entry to a SARIF result.
func (m *sarifMapper) addResults(run *sarif.Run) {
	for _, e := range m.result.SiteErrors {
		run.AddResult(m.mapEntry(e, "site", m.sourcePath))
	}
	for _, e := range m.result.SubsystemErrors {
		run.AddResult(m.mapEntry(e, "subsystem", m.sourcePath))
	}
	for _, e := range m.result.LocationErrors {
		run.AddResult(m.mapEntry(e, "location", ""))
	}
}

func (m *sarifMapper) mapEntry(e entities.ErrorEntry, pass, path string) *sarif.Result {
	result := sarif.NewRuleResult(e.Kind.String())
	result.Level = m.mapKindToLevel(e.Kind)
	result.Kind = "fail"
	result.Message = sarif.NewTextMessage(e.Message)

	if path != "" {
		pLoc := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithURI(m.normalizeURI(path)))
		if e.Line > 0 {
			pLoc.WithRegion(sarif.NewRegion().WithStartLine(e.Line))
		}
		result.Locations = []*sarif.Location{sarif.NewLocation().WithPhysicalLocation(pLoc)}
	}

	props := sarif.NewPropertyBag()
	props.Add("entityId", e.EntityID)
	props.Add("pass", pass)
	result.WithProperties(props)

	return result
}

// mapKindToLevel maps hard-failure kinds to error, decoder fallbacks to
// warning and expected absences to note.
func (m *sarifMapper) mapKindToLevel(kind values.ErrorKind) string {
	switch {
	case kind.Promotable():
		return "error"
	case kind == values.ErrAnchorNotFound:
		return "note"
	default:
		return "warning"
	}
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path) // Fallback to original
	}

	// Try to make relative to CWD
	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// addArtifacts registers the LX file.
func (m *sarifMapper) addArtifacts(run *sarif.Run) {
	if m.sourcePath == "" {
		return
	}
	artifact := sarif.NewArtifact().
		WithLocation(sarif.NewArtifactLocation().WithURI(m.normalizeURI(m.sourcePath)))
	if info, err := os.Stat(m.sourcePath); err == nil {
		artifact.WithLength(int(info.Size()))
	}
	run.AddArtifact(artifact)
}

// addInvocation adds run metadata.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()

	// A run that produced records is successful even with degraded entries
	invocation.ExecutionSuccessful = ptrBool(true)

	startTime := m.result.StartTime.UTC().Format("2006-01-02T15:04:05.000Z")
	endTime := m.result.EndTime.UTC().Format("2006-01-02T15:04:05.000Z")
	invocation.StartTimeUtc = &startTime
	invocation.EndTimeUtc = &endTime

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	props := sarif.NewPropertyBag()
	props.Add("extractionId", m.result.ExtractionID.String())
	props.Add("strict", m.result.Strict)
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds summary statistics to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	props.Add("summary", m.result.Summary)
	run.WithProperties(props)
}
