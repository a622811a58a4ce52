package domain

import (
	"fmt"
	"sort"
	"time"
)

// CheckKind identifies which check produced a finding.
type CheckKind string

const (
	CheckColor            CheckKind = "color"
	CheckTypography       CheckKind = "typography"
	CheckSpacing          CheckKind = "spacing"
	CheckPattern          CheckKind = "pattern"
	CheckAccessibility    CheckKind = "accessibility"
	CheckVisualRegression CheckKind = "visual-regression"
)

// ValidChecks enumerates all check kinds in canonical order.
var ValidChecks = []CheckKind{
	CheckColor, CheckTypography, CheckSpacing,
	CheckPattern, CheckAccessibility, CheckVisualRegression,
}

// Severity grades a finding.
type Severity string

const (
	SeverityInfo       Severity = "info"
	SeveritySuggestion Severity = "suggestion"
	SeverityWarning    Severity = "warning"
	SeverityCritical   Severity = "critical"
)

// Rank returns a numeric weight for ordering; higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeveritySuggestion:
		return 1
	default:
		return 0
	}
}

// Status is the outcome of one reviewed view or of a whole session.
type Status string

const (
	StatusPass            Status = "pass"
	StatusPassSuggestions Status = "pass-with-suggestions"
	StatusIncomplete      Status = "incomplete"
	StatusFail            Status = "fail"
)

// Rank orders statuses from best to worst; higher is worse.
func (s Status) Rank() int {
	switch s {
	case StatusFail:
		return 3
	case StatusIncomplete:
		return 2
	case StatusPassSuggestions:
		return 1
	default:
		return 0
	}
}

// WorstStatus returns the worst status among results
// (fail > incomplete > pass-with-suggestions > pass).
func WorstStatus(results []ViewReviewResult) Status {
	worst := StatusPass
	for _, r := range results {
		if r.Status.Rank() > worst.Rank() {
			worst = r.Status
		}
	}
	return worst
}

// Viewport is a browser viewport size in CSS pixels.
type Viewport struct {
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (v Viewport) String() string { return fmt.Sprintf("%dx%d", v.Width, v.Height) }

// ViewTarget is one unit of review: a route rendered at one viewport.
type ViewTarget struct {
	ID          string   `json:"id"`
	Route       string   `json:"route"`
	Viewport    Viewport `json:"viewport"`
	SourceFiles []string `json:"source_files,omitempty"`
}

// Key uniquely identifies a target within a session (view + viewport).
func (t ViewTarget) Key() string { return t.ID + "@" + t.Viewport.String() }

// ElementStyle holds the computed style attributes extracted for one
// rendered element. Values are raw CSS strings as reported by the browser;
// the token validator normalizes them.
type ElementStyle struct {
	Selector   string            `json:"selector"`
	Color      string            `json:"color,omitempty"`
	Background string            `json:"background,omitempty"`
	FontFamily string            `json:"fontFamily,omitempty"`
	FontSize   string            `json:"fontSize,omitempty"`
	FontWeight string            `json:"fontWeight,omitempty"`
	Spacing    map[string]string `json:"spacing,omitempty"`
}

// CaptureResult is the rendered evidence for one ViewTarget. It is never
// mutated after creation, so the three checks may read it concurrently.
type CaptureResult struct {
	ViewID         string         `json:"view_id"`
	Viewport       Viewport       `json:"viewport"`
	Screenshot     []byte         `json:"-"`
	ScreenshotPath string         `json:"screenshot_path,omitempty"`
	DOMSnapshot    string         `json:"-"`
	Styles         []ElementStyle `json:"-"`
	CapturedAt     time.Time      `json:"captured_at"`
}

// Finding is one reported observation produced by a check.
type Finding struct {
	Check        CheckKind `json:"check"`
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	SuggestedFix string    `json:"suggested_fix,omitempty"`
	Locator      string    `json:"locator,omitempty"`
}

// SortFindings orders findings by severity descending, then check kind,
// then locator and message for full determinism.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Check != b.Check {
			return a.Check < b.Check
		}
		if a.Locator != b.Locator {
			return a.Locator < b.Locator
		}
		return a.Message < b.Message
	})
}

// CheckOutcome records whether a single check ran for a view, so the report
// can state explicitly which checks were skipped or incomplete.
type CheckOutcome struct {
	Check CheckKind `json:"check"`
	Ran   bool      `json:"ran"`
	Error string    `json:"error,omitempty"`
}

// ViewReviewResult is the merged result for one ViewTarget.
type ViewReviewResult struct {
	ViewID     string         `json:"view_id"`
	Viewport   Viewport       `json:"viewport"`
	Score      int            `json:"score"`
	Status     Status         `json:"status"`
	Findings   []Finding      `json:"findings"`
	Checks     []CheckOutcome `json:"checks"`
	Screenshot string         `json:"screenshot,omitempty"`
}

// CountBySeverity tallies findings per severity level.
func (r ViewReviewResult) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, 4)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// SeverityPenalties maps a severity to the score deduction per finding.
type SeverityPenalties map[Severity]int

// DefaultSeverityPenalties is the default view-score policy: worse findings
// cost strictly more, informational notes cost almost nothing.
func DefaultSeverityPenalties() SeverityPenalties {
	return SeverityPenalties{
		SeverityCritical:   20,
		SeverityWarning:    10,
		SeveritySuggestion: 3,
		SeverityInfo:       1,
	}
}

// ComputeViewScore derives a 0-100 score from finding severities.
// Pure function of its inputs; the result is never mutated afterwards.
func ComputeViewScore(findings []Finding, penalties SeverityPenalties) int {
	score := 100
	for _, f := range findings {
		score -= penalties[f.Severity]
	}
	if score < 0 {
		return 0
	}
	return score
}

// DeriveViewStatus maps a score and findings to a view status. An incomplete
// check degrades the view to incomplete unless the view already fails.
func DeriveViewStatus(score int, findings []Finding, incomplete bool, failBelow int) Status {
	hasCritical := false
	hasAdvice := false
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			hasCritical = true
		case SeverityWarning, SeveritySuggestion:
			hasAdvice = true
		}
	}
	if hasCritical || score < failBelow {
		return StatusFail
	}
	if incomplete {
		return StatusIncomplete
	}
	if hasAdvice {
		return StatusPassSuggestions
	}
	return StatusPass
}

// Baseline is the accepted reference screenshot for a view+viewport.
// Once written it is only replaced by an explicit accept action.
type Baseline struct {
	ViewID     string    `json:"view_id"`
	Viewport   Viewport  `json:"viewport"`
	Image      []byte    `json:"-"`
	ImagePath  string    `json:"image_path"`
	CapturedAt time.Time `json:"captured_at"`
	CommitHash string    `json:"commit_hash,omitempty"`
	AcceptedBy string    `json:"accepted_by,omitempty"`
	AcceptedAt time.Time `json:"accepted_at,omitempty"`
}

// ReviewSession aggregates all view results of one pipeline run.
type ReviewSession struct {
	SessionID     string             `json:"session_id"`
	ProjectPath   string             `json:"project_path"`
	ChangedFiles  []string           `json:"changed_files"`
	ViewResults   []ViewReviewResult `json:"view_results"`
	OverallStatus Status             `json:"overall_status"`
	StartedAt     time.Time          `json:"started_at"`
	FinishedAt    time.Time          `json:"finished_at"`
}

// SortViewResults imposes the deterministic final ordering by view id then
// viewport, regardless of completion order.
func SortViewResults(results []ViewReviewResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].ViewID != results[j].ViewID {
			return results[i].ViewID < results[j].ViewID
		}
		vi, vj := results[i].Viewport, results[j].Viewport
		if vi.Width != vj.Width {
			return vi.Width < vj.Width
		}
		return vi.Height < vj.Height
	})
}
