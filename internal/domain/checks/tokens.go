// Package checks contains the four review checks: token validation,
// pattern rules, the accessibility audit and visual regression comparison.
// All checks are read-only over immutable capture data.
package checks

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/designlens/designlens/internal/domain"
	"github.com/designlens/designlens/internal/domain/styles"
)

// TokenValidator compares extracted computed styles against the design
// system spec and emits advisory findings. It never mutates source files.
type TokenValidator struct {
	Spec         domain.DesignSystemSpec
	Color        domain.ColorPolicy
	BaseFontSize float64

	// Enabled toggles the three style checks individually so the
	// orchestrator can honor the config's check list.
	Colors     bool
	Typography bool
	Spacing    bool
}

// NewTokenValidator builds a validator from the session config.
func NewTokenValidator(cfg domain.ReviewConfig) *TokenValidator {
	return &TokenValidator{
		Spec:         cfg.EffectiveDesignSystem(),
		Color:        cfg.Color,
		BaseFontSize: cfg.BaseFontSize,
		Colors:       cfg.CheckEnabled(domain.CheckColor),
		Typography:   cfg.CheckEnabled(domain.CheckTypography),
		Spacing:      cfg.CheckEnabled(domain.CheckSpacing),
	}
}

// Validate runs the enabled style checks over a capture's element styles.
// Findings are returned in deterministic element order.
func (v *TokenValidator) Validate(capture *domain.CaptureResult) ([]domain.Finding, error) {
	if capture == nil {
		return nil, fmt.Errorf("nil capture")
	}
	var findings []domain.Finding
	for _, el := range capture.Styles {
		if v.Colors {
			findings = append(findings, v.checkColors(el)...)
		}
		if v.Typography {
			findings = append(findings, v.checkTypography(el)...)
		}
		if v.Spacing {
			findings = append(findings, v.checkSpacing(el)...)
		}
	}
	return findings, nil
}

// checkColors grades the text and background colors of one element against
// the palette. Exact matches and colors below the suggestion tier emit
// nothing; near-misses are graded by similarity.
func (v *TokenValidator) checkColors(el domain.ElementStyle) []domain.Finding {
	var findings []domain.Finding
	for prop, raw := range map[string]string{"color": el.Color, "background-color": el.Background} {
		rgb, ok := styles.ParseColor(raw)
		if !ok {
			continue
		}
		if f, emit := v.gradeColor(rgb, prop, el.Selector); emit {
			findings = append(findings, f)
		}
	}
	// Map iteration order is random; keep output stable.
	sort.Slice(findings, func(i, j int) bool { return findings[i].Message < findings[j].Message })
	return findings
}

// gradeColor implements the similarity tiers: exact match or a free color
// (below the suggestion tier) emits nothing, >= warn tier a warning,
// >= suggest tier a suggestion.
func (v *TokenValidator) gradeColor(c styles.RGB, prop, selector string) (domain.Finding, bool) {
	bestSim := -1.0
	var best styles.RGB
	for _, p := range v.Spec.Palette() {
		if sim := styles.Similarity(c, p); sim > bestSim {
			bestSim, best = sim, p
		}
	}
	if bestSim < 0 || bestSim == 1.0 {
		return domain.Finding{}, false
	}

	var sev domain.Severity
	switch {
	case bestSim >= v.Color.WarnAbove:
		sev = domain.SeverityWarning
	case bestSim >= v.Color.SuggestAbove:
		sev = domain.SeveritySuggestion
	default:
		return domain.Finding{}, false
	}

	return domain.Finding{
		Check:    domain.CheckColor,
		Severity: sev,
		Message: fmt.Sprintf("%s %s is close to design-system color %s (similarity %.2f)",
			prop, c.Hex(), best.Hex(), bestSim),
		SuggestedFix: fmt.Sprintf("use design-system color %s", best.Hex()),
		Locator:      selector,
	}, true
}

// checkTypography validates font size against the type scale and weight and
// family by set membership.
func (v *TokenValidator) checkTypography(el domain.ElementStyle) []domain.Finding {
	var findings []domain.Finding

	if px, ok := styles.ParseLength(el.FontSize, v.BaseFontSize); ok && len(v.Spec.FontSizes) > 0 {
		steps := make([]float64, len(v.Spec.FontSizes))
		for i, fs := range v.Spec.FontSizes {
			steps[i] = fs.Px
		}
		idx := styles.NearestStep(px, steps)
		if nearest := v.Spec.FontSizes[idx]; nearest.Px != px {
			findings = append(findings, domain.Finding{
				Check:    domain.CheckTypography,
				Severity: domain.SeverityInfo,
				Message: fmt.Sprintf("font size %s is off the type scale; nearest step is %s (%s)",
					styles.FormatPx(px), nearest.Name, styles.FormatPx(nearest.Px)),
				SuggestedFix: fmt.Sprintf("use %s (%s)", nearest.Name, styles.FormatPx(nearest.Px)),
				Locator:      el.Selector,
			})
		}
	}

	if el.FontWeight != "" && len(v.Spec.FontWeights) > 0 {
		if w, err := strconv.Atoi(strings.TrimSpace(el.FontWeight)); err == nil && !v.Spec.HasWeight(w) {
			findings = append(findings, domain.Finding{
				Check:        domain.CheckTypography,
				Severity:     domain.SeveritySuggestion,
				Message:      fmt.Sprintf("font weight %d is not in the design system (allowed: %v)", w, v.Spec.FontWeights),
				SuggestedFix: fmt.Sprintf("use one of the allowed weights %v", v.Spec.FontWeights),
				Locator:      el.Selector,
			})
		}
	}

	if first := firstFamily(el.FontFamily); first != "" && !v.Spec.HasFamily(first) {
		findings = append(findings, domain.Finding{
			Check:        domain.CheckTypography,
			Severity:     domain.SeveritySuggestion,
			Message:      fmt.Sprintf("font family %q is not in the design system", first),
			SuggestedFix: fmt.Sprintf("use one of: %s", strings.Join(v.Spec.FontFamilies, ", ")),
			Locator:      el.Selector,
		})
	}

	return findings
}

// firstFamily extracts the leading family of a CSS font-family stack.
func firstFamily(stack string) string {
	if stack == "" {
		return ""
	}
	first := strings.SplitN(stack, ",", 2)[0]
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

// checkSpacing snaps every padding/margin/gap value to the nearest multiple
// of the spacing base unit. Equidistant values resolve to the smaller
// multiple. Exact multiples emit nothing.
func (v *TokenValidator) checkSpacing(el domain.ElementStyle) []domain.Finding {
	if v.Spec.SpacingBase <= 0 || len(el.Spacing) == 0 {
		return nil
	}

	props := make([]string, 0, len(el.Spacing))
	for prop := range el.Spacing {
		props = append(props, prop)
	}
	sort.Strings(props)

	var findings []domain.Finding
	for _, prop := range props {
		px, ok := styles.ParseLength(el.Spacing[prop], v.BaseFontSize)
		if !ok || px == 0 {
			continue
		}
		snapped := styles.NearestMultiple(px, v.Spec.SpacingBase)
		if snapped == px {
			continue
		}
		multiple := int(math.Round(snapped / v.Spec.SpacingBase))
		findings = append(findings, domain.Finding{
			Check:    domain.CheckSpacing,
			Severity: domain.SeverityInfo,
			Message: fmt.Sprintf("%s %s is not a multiple of the %s base unit",
				prop, styles.FormatPx(px), styles.FormatPx(v.Spec.SpacingBase)),
			SuggestedFix: fmt.Sprintf("use %s (%d× base)", styles.FormatPx(snapped), multiple),
			Locator:      el.Selector,
		})
	}
	return findings
}
