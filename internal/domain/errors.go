package domain

import "fmt"

// CaptureError reports that rendering a target failed: the environment was
// unreachable or navigation did not settle in time. For a single view it
// degrades the view to incomplete; when Fatal is set the served application
// itself is unreachable and the whole session must abort.
type CaptureError struct {
	ViewID string
	Stage  string // "connect", "navigate", "settle", "screenshot"
	Fatal  bool
	Err    error
}

func (e *CaptureError) Error() string {
	if e.ViewID == "" {
		return fmt.Sprintf("capture: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("capture %s: %s: %v", e.ViewID, e.Stage, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// CheckError reports that one check threw while processing a view. It
// degrades only that check's contribution; sibling checks are unaffected.
type CheckError struct {
	Check  CheckKind
	ViewID string
	Err    error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check %s on %s: %v", e.Check, e.ViewID, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// ConfigError reports malformed configuration. Fatal at session start,
// before any view is processed.
type ConfigError struct {
	File string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.File, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
