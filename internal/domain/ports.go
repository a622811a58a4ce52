package domain

import "context"

// Capturer renders a ViewTarget in a controlled browser environment and
// returns the captured evidence. Implementations reuse one browser across
// captures but must isolate per-view navigation state.
type Capturer interface {
	Capture(ctx context.Context, target ViewTarget) (*CaptureResult, error)
	Close() error
}

// Prober verifies the served application is reachable before a session
// starts. A probe failure is the single fatal runtime condition.
type Prober interface {
	Check(ctx context.Context, url string) error
}

// BaselineStore persists reference screenshots. Create writes a baseline
// only when none exists; Accept is the explicit replacement action and the
// only way an existing baseline changes.
type BaselineStore interface {
	Load(viewID string, vp Viewport) (*Baseline, error)
	Create(b Baseline) (*Baseline, error)
	Accept(b Baseline) (*Baseline, error)
	List() ([]Baseline, error)
}

// ConfigLoader resolves the layered configuration for a project
// (project file over global file over defaults).
type ConfigLoader interface {
	Load(projectPath string) (ReviewConfig, error)
}

// ChangedFileSource derives the changed-file set when the caller does not
// supply one explicitly (e.g. from the git working tree).
type ChangedFileSource interface {
	ChangedFiles(projectPath string) ([]string, error)
	CommitHash(projectPath string) (string, error)
}

// ReportWriter persists the session artifacts (summary, report, SARIF) and
// returns the directory they were written to.
type ReportWriter interface {
	Write(session *ReviewSession, rendered string) (string, error)
	SessionDir(sessionID string) string
}

// HistoryStore appends session summaries for the external dashboard.
type HistoryStore interface {
	Append(projectPath string, entry SessionEntry) error
	Load(projectPath string) ([]SessionEntry, error)
}

// SessionEntry is one line of review history.
type SessionEntry struct {
	SessionID     string `json:"session_id"`
	Timestamp     string `json:"timestamp"`
	CommitHash    string `json:"commit_hash,omitempty"`
	OverallStatus Status `json:"overall_status"`
	Views         int    `json:"views"`
	Findings      int    `json:"findings"`
}
