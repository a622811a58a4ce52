package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:3000", cfg.AppURL)
	assert.Equal(t, 50, cfg.FailBelow)
	assert.Equal(t, 0.90, cfg.Color.WarnAbove)
	assert.Equal(t, 0.70, cfg.Color.SuggestAbove)
	assert.Equal(t, 0.01, cfg.Visual.DiffThreshold)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, ".designlens", cfg.ArtifactsDir)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ReviewConfig)
		errPart string
	}{
		{"empty app url", func(c *ReviewConfig) { c.AppURL = "" }, "app_url"},
		{"unknown check", func(c *ReviewConfig) { c.Checks = []CheckKind{"bogus"} }, "unknown check"},
		{"no viewports", func(c *ReviewConfig) { c.Viewports = nil }, "viewport"},
		{"zero viewport", func(c *ReviewConfig) { c.Viewports = []Viewport{{Width: 0, Height: 800}} }, "width and height"},
		{"incomplete view mapping", func(c *ReviewConfig) { c.Views = []ViewMapping{{Pattern: "*.tsx"}} }, "views[0]"},
		{"fail below out of range", func(c *ReviewConfig) { c.FailBelow = 120 }, "fail_below"},
		{"per-view threshold out of range", func(c *ReviewConfig) { c.PerViewFailBelow = map[string]int{"card": -1} }, "per_view_fail_below"},
		{"color tier out of range", func(c *ReviewConfig) { c.Color.WarnAbove = 1.5 }, "color tiers"},
		{"inverted color tiers", func(c *ReviewConfig) { c.Color = ColorPolicy{WarnAbove: 0.5, SuggestAbove: 0.8} }, "suggest_above"},
		{"diff threshold out of range", func(c *ReviewConfig) { c.Visual.DiffThreshold = 2 }, "diff_threshold"},
		{"pixel tolerance out of range", func(c *ReviewConfig) { c.Visual.PixelTolerance = 300 }, "pixel_tolerance"},
		{"unknown impact", func(c *ReviewConfig) { c.Accessibility.ImpactPenalties = map[string]int{"huge": 5} }, "unknown impact"},
		{"negative severity penalty", func(c *ReviewConfig) { c.SeverityPenalties = SeverityPenalties{SeverityInfo: -1} }, "severity_penalties"},
		{"zero concurrency", func(c *ReviewConfig) { c.Concurrency = 0 }, "concurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestCheckEnabled(t *testing.T) {
	cfg := DefaultConfig()
	for _, k := range ValidChecks {
		assert.True(t, cfg.CheckEnabled(k), string(k))
	}

	cfg.Checks = []CheckKind{CheckColor, CheckAccessibility}
	assert.True(t, cfg.CheckEnabled(CheckColor))
	assert.True(t, cfg.CheckEnabled(CheckAccessibility))
	assert.False(t, cfg.CheckEnabled(CheckVisualRegression))
}

func TestFailThresholdFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PerViewFailBelow = map[string]int{"checkout": 80}

	assert.Equal(t, 80, cfg.FailThresholdFor("checkout"))
	assert.Equal(t, 50, cfg.FailThresholdFor("home"))
}

func TestMerge_ProjectOverridesBase(t *testing.T) {
	base := DefaultConfig()
	project := ReviewConfig{
		AppURL:    "http://localhost:5173",
		Viewports: []Viewport{{Width: 375, Height: 667}},
		FailBelow: 70,
		Timeouts:  Timeouts{Navigation: 30 * time.Second},
	}

	merged := Merge(base, project)

	assert.Equal(t, "http://localhost:5173", merged.AppURL)
	assert.Equal(t, []Viewport{{Width: 375, Height: 667}}, merged.Viewports)
	assert.Equal(t, 70, merged.FailBelow)

	// Unset project values keep the base.
	assert.Equal(t, base.Color, merged.Color)
	assert.Equal(t, base.Concurrency, merged.Concurrency)
	assert.Equal(t, base.ArtifactsDir, merged.ArtifactsDir)

	// Timeouts merge field by field.
	assert.Equal(t, 30*time.Second, merged.Timeouts.Navigation)
	assert.Equal(t, base.Timeouts.Quiescence, merged.Timeouts.Quiescence)
	assert.Equal(t, base.Timeouts.Session, merged.Timeouts.Session)
}

func TestTimeouts_UnmarshalYAML(t *testing.T) {
	var out Timeouts
	err := yaml.Unmarshal([]byte("navigation: 20s\nsession: 2m30s\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, out.Navigation)
	assert.Equal(t, time.Duration(0), out.Quiescence)
	assert.Equal(t, 2*time.Minute+30*time.Second, out.Session)

	err = yaml.Unmarshal([]byte("navigation: not-a-duration\n"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeouts.navigation")
}

func TestEffectiveDesignSystem(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultDesignSystem().Colors, cfg.EffectiveDesignSystem().Colors)

	custom := &DesignSystemSpec{Colors: []string{"#123456"}, SpacingBase: 4}
	require.NoError(t, custom.Validate())
	cfg.DesignSystem = custom
	assert.Equal(t, []string{"#123456"}, cfg.EffectiveDesignSystem().Colors)
}
