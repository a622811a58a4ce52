package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/designlens/designlens/internal/adapters/outbound/baseline"
	"github.com/designlens/designlens/internal/adapters/outbound/browser"
	"github.com/designlens/designlens/internal/adapters/outbound/config"
	"github.com/designlens/designlens/internal/adapters/outbound/gitinfo"
	"github.com/designlens/designlens/internal/adapters/outbound/history"
	"github.com/designlens/designlens/internal/adapters/outbound/probe"
	"github.com/designlens/designlens/internal/adapters/outbound/report"
	"github.com/designlens/designlens/internal/application"
	"github.com/designlens/designlens/internal/domain"
)

// pipeline bundles the wired services for one project path.
type pipeline struct {
	cfg         domain.ReviewConfig
	projectPath string
	logger      hclog.Logger
	reports     *report.Writer
	reviews     *application.ReviewService
	baselines   *application.BaselineService
	git         *gitinfo.GitInfoAdapter
}

// newLogger builds the process logger; verbose switches to debug level.
func newLogger(verbose bool) hclog.Logger {
	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "designlens",
		Level:  level,
		Output: os.Stderr,
	})
}

// newPipeline loads the layered config for projectPath and wires every
// adapter the commands need. Config problems surface here, before any
// view is touched.
func newPipeline(projectPath string, logger hclog.Logger) (*pipeline, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.New().Load(absPath)
	if err != nil {
		return nil, err
	}

	artifacts := filepath.Join(absPath, cfg.ArtifactsDir)
	reports := report.New(artifacts)
	baselineStore := baseline.New(artifacts)
	git := gitinfo.New()

	newCapturer := func(ctx context.Context, screenshotDir string) (domain.Capturer, error) {
		return browser.New(ctx, browser.Options{
			AppURL:        cfg.AppURL,
			ScreenshotDir: screenshotDir,
			NavTimeout:    cfg.Timeouts.Navigation,
			SettleTimeout: cfg.Timeouts.Quiescence,
			Logger:        logger.Named("browser"),
		})
	}

	reviews := application.NewReviewService(
		cfg,
		absPath,
		probe.New(logger),
		newCapturer,
		baselineStore,
		reports,
		history.New(cfg.ArtifactsDir),
		git,
		logger.Named("review"),
	)

	baselines := application.NewBaselineService(cfg, absPath, newCapturer, baselineStore, git)

	return &pipeline{
		cfg:         cfg,
		projectPath: absPath,
		logger:      logger,
		reports:     reports,
		reviews:     reviews,
		baselines:   baselines,
		git:         git,
	}, nil
}

// sessionContext applies the configured session timeout headroom for
// commands that run a full review.
func sessionContext(cfg domain.ReviewConfig) (context.Context, context.CancelFunc) {
	if cfg.Timeouts.Session <= 0 {
		return context.WithCancel(context.Background())
	}
	// The orchestrator enforces the session timeout itself; the extra
	// minute covers report writing.
	return context.WithTimeout(context.Background(), cfg.Timeouts.Session+time.Minute)
}
