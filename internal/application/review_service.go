package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/designlens/designlens/internal/domain"
	"github.com/designlens/designlens/internal/domain/checks"
)

// CapturerFactory creates the browser capturer once the session's
// screenshot directory is known. Injected so tests can substitute an
// in-memory capturer.
type CapturerFactory func(ctx context.Context, screenshotDir string) (domain.Capturer, error)

// ReviewService orchestrates one review session:
// resolve views → capture → {tokens, accessibility, visual} → merge → report.
type ReviewService struct {
	cfg         domain.ReviewConfig
	projectPath string

	prober      domain.Prober
	newCapturer CapturerFactory
	baselines   domain.BaselineStore
	reports     domain.ReportWriter
	history     domain.HistoryStore
	git         domain.ChangedFileSource
	logger      hclog.Logger
}

// NewReviewService wires the orchestrator from its ports. git and history
// may be nil; they enrich sessions but are not required.
func NewReviewService(
	cfg domain.ReviewConfig,
	projectPath string,
	prober domain.Prober,
	newCapturer CapturerFactory,
	baselines domain.BaselineStore,
	reports domain.ReportWriter,
	history domain.HistoryStore,
	git domain.ChangedFileSource,
	logger hclog.Logger,
) *ReviewService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ReviewService{
		cfg:         cfg,
		projectPath: projectPath,
		prober:      prober,
		newCapturer: newCapturer,
		baselines:   baselines,
		reports:     reports,
		history:     history,
		git:         git,
		logger:      logger,
	}
}

// Run executes a full review session over the changed files. The only
// fatal runtime condition is the served application being unreachable;
// everything else degrades into per-view or per-check incomplete results.
func (s *ReviewService) Run(ctx context.Context, changedFiles []string) (*domain.ReviewSession, error) {
	session := &domain.ReviewSession{
		SessionID:    uuid.NewString(),
		ProjectPath:  s.projectPath,
		ChangedFiles: changedFiles,
		StartedAt:    time.Now(),
	}

	if err := s.prober.Check(ctx, s.cfg.AppURL); err != nil {
		return nil, err
	}

	targets := ResolveTargets(s.cfg, changedFiles)
	s.logger.Info("session started",
		"session", session.SessionID, "changed_files", len(changedFiles), "targets", len(targets))
	if len(targets) == 0 {
		session.OverallStatus = domain.StatusPass
		session.FinishedAt = time.Now()
		return session, nil
	}

	capturer, err := s.newCapturer(ctx, filepath.Join(s.reports.SessionDir(session.SessionID), "screenshots"))
	if err != nil {
		return nil, err
	}
	defer capturer.Close()

	var commitHash string
	if s.git != nil {
		if hash, err := s.git.CommitHash(s.projectPath); err == nil {
			commitHash = hash
		}
	}

	sessionCtx := ctx
	if s.cfg.Timeouts.Session > 0 {
		var cancel context.CancelFunc
		sessionCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeouts.Session)
		defer cancel()
	}

	var (
		mu      sync.Mutex
		results = make([]domain.ViewReviewResult, 0, len(targets))
	)
	g := &errgroup.Group{}
	g.SetLimit(s.cfg.Concurrency)
	for _, target := range targets {
		g.Go(func() error {
			result := s.reviewView(sessionCtx, capturer, target, commitHash, session.SessionID)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // per-view failures are folded into results, never returned

	domain.SortViewResults(results)
	session.ViewResults = results
	session.OverallStatus = domain.WorstStatus(results)
	session.FinishedAt = time.Now()

	s.appendHistory(session, commitHash)
	s.logger.Info("session finished",
		"session", session.SessionID, "status", session.OverallStatus,
		"duration", session.FinishedAt.Sub(session.StartedAt))
	return session, nil
}

// reviewView runs the per-view pipeline:
// pending → capturing → checking → merging → done.
// It always produces a result; failures degrade the view, never the session.
func (s *ReviewService) reviewView(
	ctx context.Context,
	capturer domain.Capturer,
	target domain.ViewTarget,
	commitHash, sessionID string,
) domain.ViewReviewResult {
	capture, err := capturer.Capture(ctx, target)
	if err != nil {
		s.logger.Warn("capture failed", "view", target.ID, "error", err)
		outcomes := s.allChecksSkipped(fmt.Sprintf("capture failed: %v", err))
		findings := skippedFindings(outcomes)
		domain.SortFindings(findings)
		return domain.ViewReviewResult{
			ViewID:   target.ID,
			Viewport: target.Viewport,
			Score:    domain.ComputeViewScore(findings, s.cfg.SeverityPenalties),
			Status:   domain.StatusIncomplete,
			Findings: findings,
			Checks:   outcomes,
		}
	}

	var (
		mu         sync.Mutex
		findings   []domain.Finding
		outcomes   []domain.CheckOutcome
		incomplete bool
	)
	record := func(kinds []domain.CheckKind, fs []domain.Finding, err error) {
		mu.Lock()
		defer mu.Unlock()
		for _, kind := range kinds {
			outcome := domain.CheckOutcome{Check: kind, Ran: err == nil}
			if err != nil {
				outcome.Error = err.Error()
				incomplete = true
			}
			outcomes = append(outcomes, outcome)
		}
		findings = append(findings, fs...)
	}

	// The three checks are read-only over the immutable capture, so they
	// run concurrently without locking.
	var wg sync.WaitGroup

	tokenKinds := s.enabledTokenKinds()
	if len(tokenKinds) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fs, err := s.runTokenChecks(capture, target)
			record(tokenKinds, fs, err)
		}()
	}

	if s.cfg.CheckEnabled(domain.CheckAccessibility) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fs, err := s.runAccessibility(capture)
			record([]domain.CheckKind{domain.CheckAccessibility}, fs, err)
		}()
	}

	if s.cfg.CheckEnabled(domain.CheckVisualRegression) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fs, err := s.runVisual(capture, commitHash, sessionID)
			record([]domain.CheckKind{domain.CheckVisualRegression}, fs, err)
		}()
	}

	wg.Wait()

	findings = append(findings, skippedFindings(outcomes)...)

	domain.SortFindings(findings)
	score := domain.ComputeViewScore(findings, s.cfg.SeverityPenalties)
	status := domain.DeriveViewStatus(score, findings, incomplete, s.cfg.FailThresholdFor(target.ID))

	return domain.ViewReviewResult{
		ViewID:     target.ID,
		Viewport:   target.Viewport,
		Score:      score,
		Status:     status,
		Findings:   findings,
		Checks:     sortOutcomes(outcomes),
		Screenshot: capture.ScreenshotPath,
	}
}

// runTokenChecks covers colors, typography, spacing and the structural
// pattern rules; a panic in any of them is converted into a CheckError.
func (s *ReviewService) runTokenChecks(capture *domain.CaptureResult, target domain.ViewTarget) (fs []domain.Finding, err error) {
	defer recoverCheck(&err, domain.CheckColor, target.ID)

	validator := checks.NewTokenValidator(s.cfg)
	fs, err = validator.Validate(capture)
	if err != nil {
		return nil, &domain.CheckError{Check: domain.CheckColor, ViewID: target.ID, Err: err}
	}

	if s.cfg.CheckEnabled(domain.CheckPattern) {
		patterns := checks.NewPatternChecker(s.cfg.EffectiveDesignSystem(), s.fileExists)
		fs = append(fs, patterns.Check(target.SourceFiles)...)
	}
	return fs, nil
}

func (s *ReviewService) runAccessibility(capture *domain.CaptureResult) (fs []domain.Finding, err error) {
	defer recoverCheck(&err, domain.CheckAccessibility, capture.ViewID)

	auditor := &checks.Auditor{BaseFontSize: s.cfg.BaseFontSize}
	result, err := auditor.Audit(capture)
	if err != nil {
		return nil, &domain.CheckError{Check: domain.CheckAccessibility, ViewID: capture.ViewID, Err: err}
	}
	fs = checks.FindingsFromAudit(result)

	if score := result.Score(s.cfg.Accessibility.ImpactPenalties); score < 100 {
		fs = append(fs, domain.Finding{
			Check:    domain.CheckAccessibility,
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("accessibility score %d/100 (%d rules passed)", score, result.PassCount),
		})
	}
	return fs, nil
}

func (s *ReviewService) runVisual(capture *domain.CaptureResult, commitHash, sessionID string) (fs []domain.Finding, err error) {
	defer recoverCheck(&err, domain.CheckVisualRegression, capture.ViewID)

	comparator := &checks.Comparator{
		Store:      s.baselines,
		Policy:     s.cfg.Visual,
		CommitHash: commitHash,
		SaveDiff:   s.diffSaver(sessionID),
	}
	fs, err = comparator.Compare(capture)
	if err != nil {
		return nil, &domain.CheckError{Check: domain.CheckVisualRegression, ViewID: capture.ViewID, Err: err}
	}
	return fs, nil
}

func (s *ReviewService) diffSaver(sessionID string) func(string, domain.Viewport, []byte) (string, error) {
	dir := filepath.Join(s.reports.SessionDir(sessionID), "diffs")
	return func(viewID string, vp domain.Viewport, diffPNG []byte) (string, error) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", viewID, vp.String()))
		if err := os.WriteFile(path, diffPNG, 0644); err != nil {
			return "", err
		}
		return path, nil
	}
}

// recoverCheck converts a panicking check into a CheckError so a single
// misbehaving check can never abort sibling checks or views.
func recoverCheck(err *error, kind domain.CheckKind, viewID string) {
	if r := recover(); r != nil {
		*err = &domain.CheckError{Check: kind, ViewID: viewID, Err: fmt.Errorf("panic: %v", r)}
	}
}

func (s *ReviewService) enabledTokenKinds() []domain.CheckKind {
	var kinds []domain.CheckKind
	for _, kind := range []domain.CheckKind{
		domain.CheckColor, domain.CheckTypography, domain.CheckSpacing, domain.CheckPattern,
	} {
		if s.cfg.CheckEnabled(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func (s *ReviewService) allChecksSkipped(reason string) []domain.CheckOutcome {
	var outcomes []domain.CheckOutcome
	for _, kind := range domain.ValidChecks {
		if s.cfg.CheckEnabled(kind) {
			outcomes = append(outcomes, domain.CheckOutcome{Check: kind, Ran: false, Error: reason})
		}
	}
	return outcomes
}

func (s *ReviewService) fileExists(rel string) bool {
	_, err := os.Stat(filepath.Join(s.projectPath, rel))
	return err == nil
}

func (s *ReviewService) appendHistory(session *domain.ReviewSession, commitHash string) {
	if s.history == nil {
		return
	}
	total := 0
	for _, view := range session.ViewResults {
		total += len(view.Findings)
	}
	entry := domain.SessionEntry{
		SessionID:     session.SessionID,
		Timestamp:     session.FinishedAt.Format(time.RFC3339),
		CommitHash:    commitHash,
		OverallStatus: session.OverallStatus,
		Views:         len(session.ViewResults),
		Findings:      total,
	}
	if err := s.history.Append(s.projectPath, entry); err != nil {
		s.logger.Warn("appending session history failed", "error", err)
	}
}

// skippedFindings turns not-ran outcomes into diagnostic findings so the
// report never silently omits a check.
func skippedFindings(outcomes []domain.CheckOutcome) []domain.Finding {
	var findings []domain.Finding
	for _, outcome := range outcomes {
		if outcome.Ran {
			continue
		}
		findings = append(findings, domain.Finding{
			Check:    outcome.Check,
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%s check did not run: %s", outcome.Check, outcome.Error),
		})
	}
	return findings
}

func sortOutcomes(outcomes []domain.CheckOutcome) []domain.CheckOutcome {
	order := make(map[domain.CheckKind]int, len(domain.ValidChecks))
	for i, kind := range domain.ValidChecks {
		order[kind] = i
	}
	for i := 1; i < len(outcomes); i++ {
		for j := i; j > 0 && order[outcomes[j].Check] < order[outcomes[j-1].Check]; j-- {
			outcomes[j], outcomes[j-1] = outcomes[j-1], outcomes[j]
		}
	}
	return outcomes
}
