package application

import (
	"context"
	"fmt"
	"time"

	"github.com/designlens/designlens/internal/domain"
)

// BaselineService implements the explicit baseline lifecycle actions.
// Accepting is the only way an existing baseline is ever replaced.
type BaselineService struct {
	cfg         domain.ReviewConfig
	newCapturer CapturerFactory
	baselines   domain.BaselineStore
	git         domain.ChangedFileSource
	projectPath string
}

func NewBaselineService(
	cfg domain.ReviewConfig,
	projectPath string,
	newCapturer CapturerFactory,
	baselines domain.BaselineStore,
	git domain.ChangedFileSource,
) *BaselineService {
	return &BaselineService{
		cfg:         cfg,
		projectPath: projectPath,
		newCapturer: newCapturer,
		baselines:   baselines,
		git:         git,
	}
}

// List returns all stored baselines.
func (s *BaselineService) List() ([]domain.Baseline, error) {
	return s.baselines.List()
}

// Accept captures the view fresh and records it as the new baseline,
// stamped with who accepted it and when.
func (s *BaselineService) Accept(ctx context.Context, viewID string, vp domain.Viewport, acceptedBy string) (*domain.Baseline, error) {
	route, err := s.routeFor(viewID)
	if err != nil {
		return nil, err
	}

	capturer, err := s.newCapturer(ctx, "")
	if err != nil {
		return nil, err
	}
	defer capturer.Close()

	capture, err := capturer.Capture(ctx, domain.ViewTarget{ID: viewID, Route: route, Viewport: vp})
	if err != nil {
		return nil, err
	}

	var commitHash string
	if s.git != nil {
		if hash, err := s.git.CommitHash(s.projectPath); err == nil {
			commitHash = hash
		}
	}

	return s.baselines.Accept(domain.Baseline{
		ViewID:     viewID,
		Viewport:   vp,
		Image:      capture.Screenshot,
		CapturedAt: capture.CapturedAt,
		CommitHash: commitHash,
		AcceptedBy: acceptedBy,
		AcceptedAt: time.Now(),
	})
}

func (s *BaselineService) routeFor(viewID string) (string, error) {
	for _, mapping := range s.cfg.Views {
		if mapping.ViewID == viewID {
			return mapping.Route, nil
		}
	}
	return "", fmt.Errorf("no view mapping found for %q", viewID)
}
