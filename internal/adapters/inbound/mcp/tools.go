package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/designlens/designlens/internal/adapters/outbound/baseline"
	"github.com/designlens/designlens/internal/adapters/outbound/browser"
	"github.com/designlens/designlens/internal/adapters/outbound/config"
	"github.com/designlens/designlens/internal/adapters/outbound/gitinfo"
	"github.com/designlens/designlens/internal/adapters/outbound/history"
	"github.com/designlens/designlens/internal/adapters/outbound/probe"
	"github.com/designlens/designlens/internal/adapters/outbound/report"
	"github.com/designlens/designlens/internal/adapters/outbound/tui"
	"github.com/designlens/designlens/internal/application"
	"github.com/designlens/designlens/internal/domain"
)

// registerTools registers all designlens MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. designlens_review
	s.AddTool(
		mcplib.NewTool("designlens_review",
			mcplib.WithDescription("Review the views affected by a set of changed files and return the session result as JSON"),
			mcplib.WithString("changed",
				mcplib.Description("Comma-separated changed file paths relative to project root (defaults to the git working tree)"),
			),
		),
		handleReview(projectPath),
	)

	// 2. designlens_list_baselines
	s.AddTool(
		mcplib.NewTool("designlens_list_baselines",
			mcplib.WithDescription("List the stored visual-regression baselines"),
		),
		handleListBaselines(projectPath),
	)

	// 3. designlens_accept_baseline
	s.AddTool(
		mcplib.NewTool("designlens_accept_baseline",
			mcplib.WithDescription("Re-capture a view and accept the fresh screenshot as the new baseline"),
			mcplib.WithString("view",
				mcplib.Required(),
				mcplib.Description("View identifier to accept"),
			),
			mcplib.WithNumber("width", mcplib.Description("Viewport width (defaults to all configured viewports)")),
			mcplib.WithNumber("height", mcplib.Description("Viewport height")),
			mcplib.WithString("by", mcplib.Description("Who accepts the baseline")),
		),
		handleAcceptBaseline(projectPath),
	)

	// 4. designlens_history
	s.AddTool(
		mcplib.NewTool("designlens_history",
			mcplib.WithDescription("Return past review sessions recorded for the project"),
		),
		handleHistory(projectPath),
	)
}

// services bundles the wired application layer for one tool invocation.
// Config is re-read per call so edits to .designlens.yaml take effect
// without restarting the server.
type services struct {
	cfg       domain.ReviewConfig
	path      string
	reviews   *application.ReviewService
	baselines *application.BaselineService
	reports   *report.Writer
	history   *history.FileHistory
	git       *gitinfo.GitInfoAdapter
}

func newServices(projectPath string) (*services, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.New().Load(absPath)
	if err != nil {
		return nil, err
	}

	logger := hclog.NewNullLogger()
	artifacts := filepath.Join(absPath, cfg.ArtifactsDir)
	reports := report.New(artifacts)
	baselineStore := baseline.New(artifacts)
	git := gitinfo.New()
	hist := history.New(cfg.ArtifactsDir)

	newCapturer := func(ctx context.Context, screenshotDir string) (domain.Capturer, error) {
		return browser.New(ctx, browser.Options{
			AppURL:        cfg.AppURL,
			ScreenshotDir: screenshotDir,
			NavTimeout:    cfg.Timeouts.Navigation,
			SettleTimeout: cfg.Timeouts.Quiescence,
			Logger:        logger,
		})
	}

	return &services{
		cfg:       cfg,
		path:      absPath,
		reviews:   application.NewReviewService(cfg, absPath, probe.New(logger), newCapturer, baselineStore, reports, hist, git, logger),
		baselines: application.NewBaselineService(cfg, absPath, newCapturer, baselineStore, git),
		reports:   reports,
		history:   hist,
		git:       git,
	}, nil
}

func handleReview(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		svc, err := newServices(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading configuration failed: %v", err)), nil
		}

		var changed []string
		if changedStr, ok := request.GetArguments()["changed"].(string); ok && changedStr != "" {
			changed = splitAndTrim(changedStr)
		} else {
			changed, err = svc.git.ChangedFiles(svc.path)
			if err != nil {
				return errorResult(fmt.Sprintf("deriving changed files from git failed: %v", err)), nil
			}
		}
		if len(changed) == 0 {
			return textResult("no changed files; nothing to review"), nil
		}

		session, err := svc.reviews.Run(ctx, changed)
		if err != nil {
			return errorResult(fmt.Sprintf("review failed: %v", err)), nil
		}

		if _, err := svc.reports.Write(session, tui.RenderSession(session)); err != nil {
			return errorResult(fmt.Sprintf("writing report failed: %v", err)), nil
		}
		return jsonResult(session)
	}
}

func handleListBaselines(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		svc, err := newServices(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading configuration failed: %v", err)), nil
		}

		baselines, err := svc.baselines.List()
		if err != nil {
			return errorResult(fmt.Sprintf("listing baselines failed: %v", err)), nil
		}
		return jsonResult(baselines)
	}
}

func handleAcceptBaseline(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		viewID, err := request.RequireString("view")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		svc, err := newServices(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading configuration failed: %v", err)), nil
		}

		args := request.GetArguments()
		width, _ := args["width"].(float64)
		height, _ := args["height"].(float64)
		acceptedBy, _ := args["by"].(string)
		if acceptedBy == "" {
			acceptedBy = "mcp"
		}

		viewports := svc.cfg.Viewports
		if width > 0 && height > 0 {
			viewports = []domain.Viewport{{Width: int(width), Height: int(height)}}
		}

		accepted := make([]domain.Baseline, 0, len(viewports))
		for _, vp := range viewports {
			b, err := svc.baselines.Accept(ctx, viewID, vp, acceptedBy)
			if err != nil {
				return errorResult(fmt.Sprintf("accepting baseline for %s at %s failed: %v", viewID, vp, err)), nil
			}
			accepted = append(accepted, *b)
		}
		return jsonResult(accepted)
	}
}

func handleHistory(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		svc, err := newServices(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading configuration failed: %v", err)), nil
		}

		entries, err := svc.history.Load(svc.path)
		if err != nil {
			return errorResult(fmt.Sprintf("loading history failed: %v", err)), nil
		}
		return jsonResult(entries)
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
