package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerResources registers all designlens MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. designlens://config - effective layered configuration
	s.AddResource(
		mcplib.NewResource(
			"designlens://config",
			"Effective Configuration",
			mcplib.WithResourceDescription("The resolved review configuration for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)

	// 2. designlens://baselines - stored baselines
	s.AddResource(
		mcplib.NewResource(
			"designlens://baselines",
			"Baselines",
			mcplib.WithResourceDescription("Stored visual-regression baselines"),
			mcplib.WithMIMEType("application/json"),
		),
		handleBaselinesResource(projectPath),
	)

	// 3. designlens://history - past sessions
	s.AddResource(
		mcplib.NewResource(
			"designlens://history",
			"Review History",
			mcplib.WithResourceDescription("Past review sessions recorded for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(projectPath),
	)

	// 4. designlens://sessions/{id} - summary of one session (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"designlens://sessions/{id}",
			"Session Summary",
			mcplib.WithTemplateDescription("Full summary of a past review session"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleSessionResource(projectPath),
	)
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		svc, err := newServices(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}

		data, err := json.MarshalIndent(svc.cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling configuration: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "designlens://config",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleBaselinesResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		svc, err := newServices(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}

		baselines, err := svc.baselines.List()
		if err != nil {
			return nil, fmt.Errorf("listing baselines: %w", err)
		}

		data, err := json.MarshalIndent(baselines, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling baselines: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "designlens://baselines",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleHistoryResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		svc, err := newServices(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}

		entries, err := svc.history.Load(svc.path)
		if err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}

		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling history: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "designlens://history",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleSessionResource(projectPath string) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		sessionID, ok := request.Params.Arguments["id"].(string)
		if !ok || sessionID == "" {
			return nil, fmt.Errorf("session id is required")
		}

		svc, err := newServices(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}

		summaryPath := filepath.Join(svc.reports.SessionDir(sessionID), "summary.json")
		data, err := os.ReadFile(summaryPath)
		if err != nil {
			return nil, fmt.Errorf("reading session summary: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
