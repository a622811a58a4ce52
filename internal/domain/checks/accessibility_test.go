package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/designlens/designlens/internal/domain"
)

const cleanDOM = `<html><body>
<main>
  <h1>Products</h1>
  <h2>Featured</h2>
  <img src="hero.png" alt="hero">
  <label for="q">Search</label>
  <input id="q" type="text">
</main>
</body></html>`

func audit(t *testing.T, dom string, els ...domain.ElementStyle) *AuditResult {
	t.Helper()
	a := &Auditor{}
	result, err := a.Audit(&domain.CaptureResult{
		ViewID:      "card",
		DOMSnapshot: dom,
		Styles:      els,
	})
	require.NoError(t, err)
	return result
}

func violationRules(result *AuditResult) []string {
	rules := make([]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		rules = append(rules, v.Rule)
	}
	return rules
}

func TestAudit_CleanDocumentPassesAllRules(t *testing.T) {
	result := audit(t, cleanDOM)
	assert.Empty(t, result.Violations)
	assert.Equal(t, 7, result.PassCount)
	assert.Equal(t, 100, result.Score(domain.DefaultConfig().Accessibility.ImpactPenalties))
}

func TestAudit_EmptySnapshotErrors(t *testing.T) {
	a := &Auditor{}
	_, err := a.Audit(&domain.CaptureResult{DOMSnapshot: "   "})
	assert.ErrorContains(t, err, "empty DOM snapshot")

	_, err = a.Audit(nil)
	assert.Error(t, err)
}

func TestAudit_MissingMainLandmark(t *testing.T) {
	result := audit(t, `<html><body><h1>Title</h1></body></html>`)
	assert.Contains(t, violationRules(result), "landmark-main")
}

func TestAudit_RoleMainCountsAsLandmark(t *testing.T) {
	result := audit(t, `<html><body><div role="main"><h1>Title</h1></div></body></html>`)
	assert.NotContains(t, violationRules(result), "landmark-main")
}

func TestAudit_HeadingOrder(t *testing.T) {
	result := audit(t, `<html><body><main><h1>Title</h1><h3>Skipped</h3></main></body></html>`)
	rules := violationRules(result)
	require.Contains(t, rules, "heading-order")

	for _, v := range result.Violations {
		if v.Rule == "heading-order" {
			assert.Equal(t, domain.ImpactModerate, v.Impact)
			assert.Contains(t, v.Nodes, "h3 follows h1")
		}
	}

	// Missing a leading h1 is also a heading-order violation.
	result = audit(t, `<html><body><main><h2>Title</h2></main></body></html>`)
	assert.Contains(t, violationRules(result), "heading-order")
}

func TestAudit_ImageAlt(t *testing.T) {
	result := audit(t, `<html><body><main><h1>T</h1><img src="x.png" class="hero"></main></body></html>`)
	rules := violationRules(result)
	require.Contains(t, rules, "image-alt")

	for _, v := range result.Violations {
		if v.Rule == "image-alt" {
			assert.Equal(t, domain.ImpactCritical, v.Impact)
			assert.Contains(t, v.Nodes, "img.hero")
		}
	}

	// An empty alt is valid for decorative images.
	result = audit(t, `<html><body><main><h1>T</h1><img src="x.png" alt=""></main></body></html>`)
	assert.NotContains(t, violationRules(result), "image-alt")
}

func TestAudit_Labels(t *testing.T) {
	result := audit(t, `<html><body><main><h1>T</h1><input id="email" type="text"></main></body></html>`)
	assert.Contains(t, violationRules(result), "label")

	// aria-label satisfies the rule.
	result = audit(t, `<html><body><main><h1>T</h1><input type="text" aria-label="Email"></main></body></html>`)
	assert.NotContains(t, violationRules(result), "label")

	// A wrapping label satisfies the rule.
	result = audit(t, `<html><body><main><h1>T</h1><label>Email<input type="text"></label></main></body></html>`)
	assert.NotContains(t, violationRules(result), "label")

	// Hidden and button-like inputs are exempt.
	result = audit(t, `<html><body><main><h1>T</h1><input type="hidden"><input type="submit"></main></body></html>`)
	assert.NotContains(t, violationRules(result), "label")
}

func TestAudit_ARIARolesAndAttrs(t *testing.T) {
	result := audit(t, `<html><body><main><h1>T</h1><div role="banana">x</div></main></body></html>`)
	assert.Contains(t, violationRules(result), "aria-roles")

	result = audit(t, `<html><body><main><h1>T</h1><div aria-bogus="yes">x</div></main></body></html>`)
	rules := violationRules(result)
	require.Contains(t, rules, "aria-valid-attr")
	for _, v := range result.Violations {
		if v.Rule == "aria-valid-attr" {
			assert.Equal(t, domain.ImpactCritical, v.Impact)
		}
	}

	result = audit(t, `<html><body><main><h1>T</h1><div role="navigation" aria-label="Menu">x</div></main></body></html>`)
	assert.Empty(t, result.Violations)
}

func TestAudit_ColorContrast(t *testing.T) {
	// #777777 on white is just under 4.5:1.
	low := domain.ElementStyle{Selector: ".muted", Color: "#777777", Background: "#ffffff", FontSize: "16px"}
	result := audit(t, cleanDOM, low)
	rules := violationRules(result)
	require.Contains(t, rules, "color-contrast")
	for _, v := range result.Violations {
		if v.Rule == "color-contrast" {
			assert.Contains(t, v.Nodes[0], ".muted")
		}
	}

	// The same pair passes as large text (3:1 threshold).
	large := domain.ElementStyle{Selector: ".hero", Color: "#777777", Background: "#ffffff", FontSize: "24px"}
	result = audit(t, cleanDOM, large)
	assert.NotContains(t, violationRules(result), "color-contrast")

	// Elements without a parseable background are skipped.
	noBg := domain.ElementStyle{Selector: ".x", Color: "#777777", Background: "transparent"}
	result = audit(t, cleanDOM, noBg)
	assert.NotContains(t, violationRules(result), "color-contrast")
}

func TestAuditScore_FloorsAtZero(t *testing.T) {
	result := &AuditResult{Violations: []Violation{
		{Impact: domain.ImpactCritical}, {Impact: domain.ImpactCritical},
		{Impact: domain.ImpactCritical}, {Impact: domain.ImpactCritical},
		{Impact: domain.ImpactCritical}, {Impact: domain.ImpactCritical},
		{Impact: domain.ImpactSerious},
	}}
	penalties := domain.DefaultConfig().Accessibility.ImpactPenalties
	assert.Equal(t, 0, result.Score(penalties))
}

func TestFindingsFromAudit_SeverityMapping(t *testing.T) {
	result := &AuditResult{Violations: []Violation{
		{Rule: "image-alt", Impact: domain.ImpactCritical, Help: "h", Nodes: []string{"img"}},
		{Rule: "label", Impact: domain.ImpactSerious, Help: "h", Nodes: []string{"input"}},
		{Rule: "landmark-main", Impact: domain.ImpactModerate, Help: "h", Nodes: []string{"html"}},
		{Rule: "minor-thing", Impact: domain.ImpactMinor, Help: "h", Nodes: []string{"div"}},
	}}

	findings := FindingsFromAudit(result)
	require.Len(t, findings, 4)
	assert.Equal(t, domain.SeverityCritical, findings[0].Severity)
	assert.Equal(t, domain.SeverityWarning, findings[1].Severity)
	assert.Equal(t, domain.SeveritySuggestion, findings[2].Severity)
	assert.Equal(t, domain.SeverityInfo, findings[3].Severity)
	for _, f := range findings {
		assert.Equal(t, domain.CheckAccessibility, f.Check)
	}
}
