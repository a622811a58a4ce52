// Package report writes the session artifacts: summary.json for machine
// consumption, report.txt for humans and findings.sarif for CI/dashboard
// integration.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/designlens/designlens/internal/domain"
)

// Writer implements domain.ReportWriter under <artifacts>/sessions/<id>/.
type Writer struct {
	root string
}

// New creates a Writer rooted at artifactsDir.
func New(artifactsDir string) *Writer {
	return &Writer{root: filepath.Join(artifactsDir, "sessions")}
}

// SessionDir returns the artifact directory for a session id.
func (w *Writer) SessionDir(sessionID string) string {
	return filepath.Join(w.root, sessionID)
}

// Write persists all artifacts for a finished session and returns the
// session directory.
func (w *Writer) Write(session *domain.ReviewSession, rendered string) (string, error) {
	dir := w.SessionDir(session.SessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	summary, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), summary, 0644); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(dir, "report.txt"), []byte(rendered), 0644); err != nil {
		return "", err
	}

	sarifReport, err := buildSARIF(session)
	if err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Join(dir, "findings.sarif"))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := sarifReport.Write(f); err != nil {
		return "", fmt.Errorf("writing SARIF: %w", err)
	}

	return dir, nil
}

// buildSARIF converts session findings into a SARIF 2.1.0 run, one result
// per finding, rules keyed by check kind.
func buildSARIF(session *domain.ReviewSession) (*sarif.Report, error) {
	rep, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, err
	}

	run := sarif.NewRunWithInformationURI("designlens", "https://github.com/designlens/designlens")
	for _, kind := range domain.ValidChecks {
		run.AddRule(string(kind)).
			WithDescription(fmt.Sprintf("designlens %s check", kind))
	}

	for _, view := range session.ViewResults {
		for _, finding := range view.Findings {
			msg := finding.Message
			if finding.SuggestedFix != "" {
				msg += ". Fix: " + finding.SuggestedFix
			}
			result := sarif.NewRuleResult(string(finding.Check)).
				WithLevel(sarifLevel(finding.Severity)).
				WithMessage(sarif.NewTextMessage(msg))
			locator := finding.Locator
			if locator == "" {
				locator = view.ViewID
			}
			result.WithLocations([]*sarif.Location{
				sarif.NewLocation().WithPhysicalLocation(
					sarif.NewPhysicalLocation().
						WithArtifactLocation(sarif.NewArtifactLocation().WithUri(locator)),
				),
			})
			result.AttachPropertyBag(&sarif.PropertyBag{Properties: map[string]interface{}{
				"view":     view.ViewID,
				"viewport": view.Viewport.String(),
			}})
			run.AddResult(result)
		}
	}

	rep.AddRun(run)
	return rep, nil
}

func sarifLevel(sev domain.Severity) string {
	switch sev {
	case domain.SeverityCritical:
		return "error"
	case domain.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
