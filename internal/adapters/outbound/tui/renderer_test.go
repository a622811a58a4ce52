package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/designlens/designlens/internal/domain"
)

func sampleSession() *domain.ReviewSession {
	return &domain.ReviewSession{
		SessionID:     "ses-123",
		OverallStatus: domain.StatusFail,
		ViewResults: []domain.ViewReviewResult{
			{
				ViewID:   "card",
				Viewport: domain.Viewport{Width: 1280, Height: 800},
				Score:    62,
				Status:   domain.StatusFail,
				Findings: []domain.Finding{
					{
						Check:        domain.CheckAccessibility,
						Severity:     domain.SeverityCritical,
						Message:      "image-alt: images must have an alt attribute (1 nodes)",
						SuggestedFix: "images must have an alt attribute",
					},
					{
						Check:    domain.CheckSpacing,
						Severity: domain.SeverityInfo,
						Message:  "padding-left 18px is not a multiple of the 8px base unit",
					},
				},
				Checks: []domain.CheckOutcome{
					{Check: domain.CheckColor, Ran: true},
					{Check: domain.CheckAccessibility, Ran: true},
					{Check: domain.CheckVisualRegression, Ran: false, Error: "baseline unreadable"},
				},
				Screenshot: ".designlens/sessions/ses-123/screenshots/card_1280x800.png",
			},
			{
				ViewID:   "home",
				Viewport: domain.Viewport{Width: 1280, Height: 800},
				Score:    100,
				Status:   domain.StatusPass,
			},
		},
	}
}

func TestRenderSession_ContainsCoreContent(t *testing.T) {
	out := RenderSession(sampleSession())

	assert.Contains(t, out, "designlens")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "2 views reviewed")
	assert.Contains(t, out, "session ses-123")

	// Per-view lines.
	assert.Contains(t, out, "card")
	assert.Contains(t, out, "1280x800")
	assert.Contains(t, out, "62 / 100")
	assert.Contains(t, out, "home")
	assert.Contains(t, out, "100 / 100")
}

func TestRenderSession_FindingsAndSkippedChecks(t *testing.T) {
	out := RenderSession(sampleSession())

	assert.Contains(t, out, "image-alt")
	assert.Contains(t, out, "fix: images must have an alt attribute")
	assert.Contains(t, out, "padding-left 18px")
	assert.Contains(t, out, "visual-regression check did not run")
	assert.Contains(t, out, "baseline unreadable")
	assert.Contains(t, out, "screenshots/card_1280x800.png")
}

func TestRenderSession_SeverityCounts(t *testing.T) {
	out := RenderSession(sampleSession())
	assert.Contains(t, out, "1 critical")
	assert.Contains(t, out, "1 info")
}

func TestRenderSession_EmptySession(t *testing.T) {
	out := RenderSession(&domain.ReviewSession{
		SessionID:     "ses-empty",
		OverallStatus: domain.StatusPass,
	})
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "0 views reviewed")
	assert.False(t, strings.Contains(out, "fix:"))
}
