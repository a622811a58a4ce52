package domain

import (
	"fmt"
	"time"
)

// ViewMapping maps changed source files to a reviewable view. Pattern is a
// path glob ("src/components/Card/**" or "*.tsx"); every changed file that
// matches implicates the view.
type ViewMapping struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	ViewID  string `yaml:"view"    json:"view"`
	Route   string `yaml:"route"   json:"route"`
}

// ColorPolicy holds the similarity tiers for palette validation. A computed
// color with similarity >= WarnAbove (but not exact) yields a warning,
// >= SuggestAbove a suggestion, below that it is treated as intentional.
type ColorPolicy struct {
	WarnAbove    float64 `yaml:"warn_above"    json:"warn_above"`
	SuggestAbove float64 `yaml:"suggest_above" json:"suggest_above"`
}

// VisualPolicy configures the regression comparator.
type VisualPolicy struct {
	// DiffThreshold is the pixel-difference ratio above which a warning
	// finding is emitted (0.01 = 1% of compared pixels).
	DiffThreshold float64 `yaml:"diff_threshold" json:"diff_threshold"`
	// PixelTolerance is the per-channel delta under which two pixels are
	// considered equal. 0 means exact.
	PixelTolerance int `yaml:"pixel_tolerance" json:"pixel_tolerance"`
}

// AccessibilityPolicy holds the impact-weighted penalties used to derive
// the audit score (100 − Σ penalty, floored at 0).
type AccessibilityPolicy struct {
	ImpactPenalties map[string]int `yaml:"impact_penalties" json:"impact_penalties"`
}

// Timeouts bound the capture and session lifecycle.
type Timeouts struct {
	Navigation time.Duration `yaml:"navigation" json:"navigation"`
	Quiescence time.Duration `yaml:"quiescence" json:"quiescence"`
	Session    time.Duration `yaml:"session"    json:"session"`
}

// UnmarshalYAML accepts Go duration strings ("15s", "2m30s") for each field.
func (t *Timeouts) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		Navigation string `yaml:"navigation"`
		Quiescence string `yaml:"quiescence"`
		Session    string `yaml:"session"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	for _, field := range []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"navigation", raw.Navigation, &t.Navigation},
		{"quiescence", raw.Quiescence, &t.Quiescence},
		{"session", raw.Session, &t.Session},
	} {
		if field.src == "" {
			continue
		}
		d, err := time.ParseDuration(field.src)
		if err != nil {
			return fmt.Errorf("timeouts.%s: %w", field.name, err)
		}
		*field.dst = d
	}
	return nil
}

// ReviewConfig is the declarative configuration for a review session,
// loaded from .designlens.yaml layered over the global config file.
type ReviewConfig struct {
	// AppURL is the locally served rendering target; unreachability is the
	// single fatal failure mode.
	AppURL string `yaml:"app_url" json:"app_url"`

	// Checks enables a subset of checks. Empty means all.
	Checks []CheckKind `yaml:"checks" json:"checks,omitempty"`

	Viewports []Viewport    `yaml:"viewports" json:"viewports"`
	Views     []ViewMapping `yaml:"views"     json:"views"`

	// FailBelow is the score under which a view fails. PerViewFailBelow
	// overrides it for individual views.
	FailBelow        int            `yaml:"fail_below"          json:"fail_below"`
	PerViewFailBelow map[string]int `yaml:"per_view_fail_below" json:"per_view_fail_below,omitempty"`

	Color         ColorPolicy         `yaml:"color"         json:"color"`
	Visual        VisualPolicy        `yaml:"visual"        json:"visual"`
	Accessibility AccessibilityPolicy `yaml:"accessibility" json:"accessibility"`

	SeverityPenalties SeverityPenalties `yaml:"severity_penalties" json:"severity_penalties,omitempty"`

	// BaseFontSize resolves rem/em values; 0 means the 16px convention.
	BaseFontSize float64 `yaml:"base_font_size" json:"base_font_size,omitempty"`

	// Concurrency bounds how many views are processed at once.
	Concurrency int      `yaml:"concurrency" json:"concurrency"`
	Timeouts    Timeouts `yaml:"timeouts"    json:"timeouts"`

	// ArtifactsDir holds baselines, screenshots and reports.
	ArtifactsDir string `yaml:"artifacts_dir" json:"artifacts_dir"`

	// DesignSystem inlines the reference spec; empty sections fall back to
	// DefaultDesignSystem.
	DesignSystem *DesignSystemSpec `yaml:"design_system" json:"design_system,omitempty"`
}

// DefaultConfig returns the documented default policy.
func DefaultConfig() ReviewConfig {
	return ReviewConfig{
		AppURL:    "http://localhost:3000",
		Viewports: []Viewport{{Width: 1280, Height: 800}},
		FailBelow: 50,
		Color:     ColorPolicy{WarnAbove: 0.90, SuggestAbove: 0.70},
		Visual:    VisualPolicy{DiffThreshold: 0.01, PixelTolerance: 0},
		Accessibility: AccessibilityPolicy{
			ImpactPenalties: map[string]int{
				ImpactCritical: 15, ImpactSerious: 10, ImpactModerate: 5, ImpactMinor: 2,
			},
		},
		SeverityPenalties: DefaultSeverityPenalties(),
		Concurrency:       4,
		Timeouts: Timeouts{
			Navigation: 15 * time.Second,
			Quiescence: 5 * time.Second,
			Session:    5 * time.Minute,
		},
		ArtifactsDir: ".designlens",
	}
}

// Impact levels reported by the accessibility audit.
const (
	ImpactMinor    = "minor"
	ImpactModerate = "moderate"
	ImpactSerious  = "serious"
	ImpactCritical = "critical"
)

// CheckEnabled reports whether a check kind is enabled by this config.
func (c ReviewConfig) CheckEnabled(kind CheckKind) bool {
	if len(c.Checks) == 0 {
		return true
	}
	for _, k := range c.Checks {
		if k == kind {
			return true
		}
	}
	return false
}

// FailThresholdFor returns the fail-below score for a view.
func (c ReviewConfig) FailThresholdFor(viewID string) int {
	if t, ok := c.PerViewFailBelow[viewID]; ok {
		return t
	}
	return c.FailBelow
}

// EffectiveDesignSystem returns the configured spec or the default one.
func (c ReviewConfig) EffectiveDesignSystem() DesignSystemSpec {
	if c.DesignSystem != nil {
		return *c.DesignSystem
	}
	return DefaultDesignSystem()
}

// Validate checks the config for invalid values with descriptive errors.
// A failure here is a ConfigError: fatal before any view is processed.
func (c ReviewConfig) Validate() error {
	if c.AppURL == "" {
		return fmt.Errorf("app_url must not be empty")
	}
	for _, k := range c.Checks {
		if !isValidCheck(k) {
			return fmt.Errorf("unknown check %q (valid: %v)", k, ValidChecks)
		}
	}
	if len(c.Viewports) == 0 {
		return fmt.Errorf("at least one viewport is required")
	}
	for i, vp := range c.Viewports {
		if vp.Width <= 0 || vp.Height <= 0 {
			return fmt.Errorf("viewports[%d]: width and height must be > 0 (got %s)", i, vp)
		}
	}
	for i, m := range c.Views {
		if m.Pattern == "" || m.ViewID == "" || m.Route == "" {
			return fmt.Errorf("views[%d]: pattern, view and route are all required", i)
		}
	}
	if c.FailBelow < 0 || c.FailBelow > 100 {
		return fmt.Errorf("fail_below = %d (must be between 0 and 100)", c.FailBelow)
	}
	for id, t := range c.PerViewFailBelow {
		if t < 0 || t > 100 {
			return fmt.Errorf("per_view_fail_below[%q] = %d (must be between 0 and 100)", id, t)
		}
	}
	if c.Color.WarnAbove < 0 || c.Color.WarnAbove > 1 ||
		c.Color.SuggestAbove < 0 || c.Color.SuggestAbove > 1 {
		return fmt.Errorf("color tiers must be within [0,1]")
	}
	if c.Color.SuggestAbove > c.Color.WarnAbove {
		return fmt.Errorf("color.suggest_above (%.2f) must not exceed color.warn_above (%.2f)",
			c.Color.SuggestAbove, c.Color.WarnAbove)
	}
	if c.Visual.DiffThreshold < 0 || c.Visual.DiffThreshold > 1 {
		return fmt.Errorf("visual.diff_threshold must be within [0,1] (got %v)", c.Visual.DiffThreshold)
	}
	if c.Visual.PixelTolerance < 0 || c.Visual.PixelTolerance > 255 {
		return fmt.Errorf("visual.pixel_tolerance must be within [0,255] (got %d)", c.Visual.PixelTolerance)
	}
	for impact, p := range c.Accessibility.ImpactPenalties {
		if !isValidImpact(impact) {
			return fmt.Errorf("unknown impact %q in accessibility.impact_penalties", impact)
		}
		if p < 0 {
			return fmt.Errorf("accessibility.impact_penalties[%q] must be >= 0", impact)
		}
	}
	for sev, p := range c.SeverityPenalties {
		switch sev {
		case SeverityInfo, SeveritySuggestion, SeverityWarning, SeverityCritical:
		default:
			return fmt.Errorf("unknown severity %q in severity_penalties", sev)
		}
		if p < 0 {
			return fmt.Errorf("severity_penalties[%q] must be >= 0", sev)
		}
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1 (got %d)", c.Concurrency)
	}
	if c.DesignSystem != nil {
		if err := c.DesignSystem.Validate(); err != nil {
			return fmt.Errorf("design_system: %w", err)
		}
	}
	return nil
}

func isValidCheck(k CheckKind) bool {
	for _, v := range ValidChecks {
		if v == k {
			return true
		}
	}
	return false
}

func isValidImpact(s string) bool {
	switch s {
	case ImpactMinor, ImpactModerate, ImpactSerious, ImpactCritical:
		return true
	}
	return false
}

// Merge overlays explicit project values on top of the base (global)
// config. Non-zero project values win key by key.
func Merge(base, project ReviewConfig) ReviewConfig {
	result := base

	if project.AppURL != "" {
		result.AppURL = project.AppURL
	}
	if len(project.Checks) > 0 {
		result.Checks = project.Checks
	}
	if len(project.Viewports) > 0 {
		result.Viewports = project.Viewports
	}
	if len(project.Views) > 0 {
		result.Views = project.Views
	}
	if project.FailBelow != 0 {
		result.FailBelow = project.FailBelow
	}
	if len(project.PerViewFailBelow) > 0 {
		result.PerViewFailBelow = project.PerViewFailBelow
	}
	if project.Color != (ColorPolicy{}) {
		result.Color = project.Color
	}
	if project.Visual != (VisualPolicy{}) {
		result.Visual = project.Visual
	}
	if len(project.Accessibility.ImpactPenalties) > 0 {
		result.Accessibility = project.Accessibility
	}
	if len(project.SeverityPenalties) > 0 {
		result.SeverityPenalties = project.SeverityPenalties
	}
	if project.BaseFontSize != 0 {
		result.BaseFontSize = project.BaseFontSize
	}
	if project.Concurrency != 0 {
		result.Concurrency = project.Concurrency
	}
	if project.Timeouts.Navigation != 0 {
		result.Timeouts.Navigation = project.Timeouts.Navigation
	}
	if project.Timeouts.Quiescence != 0 {
		result.Timeouts.Quiescence = project.Timeouts.Quiescence
	}
	if project.Timeouts.Session != 0 {
		result.Timeouts.Session = project.Timeouts.Session
	}
	if project.ArtifactsDir != "" {
		result.ArtifactsDir = project.ArtifactsDir
	}
	if project.DesignSystem != nil {
		result.DesignSystem = project.DesignSystem
	}

	return result
}
