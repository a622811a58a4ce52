package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/designlens/designlens/internal/domain/styles"
)

// FontSize is one named step of the type scale.
type FontSize struct {
	Name string  `json:"name" yaml:"name"`
	Px   float64 `json:"px"   yaml:"px"`
}

// DesignSystemSpec is the canonical palette/type/spacing/pattern reference
// computed styles are validated against. Loaded once per session and
// read-only thereafter.
type DesignSystemSpec struct {
	Colors       []string   `json:"colors"        yaml:"colors"` // hex strings
	FontSizes    []FontSize `json:"font_sizes"    yaml:"font_sizes"`
	FontWeights  []int      `json:"font_weights"  yaml:"font_weights"`
	FontFamilies []string   `json:"font_families" yaml:"font_families"`
	SpacingBase  float64    `json:"spacing_base"  yaml:"spacing_base"`
	PatternRules []string   `json:"pattern_rules" yaml:"pattern_rules"`

	palette []styles.RGB
}

// ValidPatternRules enumerates the structural rules the pattern check knows.
var ValidPatternRules = []string{"pascal-case-components", "adjacent-test-file"}

// DefaultDesignSystem returns a small generic reference used when the
// project ships no design-system document of its own.
func DefaultDesignSystem() DesignSystemSpec {
	spec := DesignSystemSpec{
		Colors: []string{
			"#ffffff", "#000000",
			"#1f2937", "#6b7280", "#f3f4f6",
			"#2563eb", "#16a34a", "#dc2626", "#f59e0b",
		},
		FontSizes: []FontSize{
			{Name: "xs", Px: 12}, {Name: "sm", Px: 14}, {Name: "base", Px: 16},
			{Name: "lg", Px: 18}, {Name: "xl", Px: 20}, {Name: "2xl", Px: 24},
			{Name: "3xl", Px: 30}, {Name: "4xl", Px: 36},
		},
		FontWeights:  []int{400, 500, 600, 700},
		FontFamilies: []string{},
		SpacingBase:  8,
		PatternRules: ValidPatternRules,
	}
	_ = spec.Finalize()
	return spec
}

// Finalize parses and caches the palette and sorts the scales. Must be
// called once after loading; Validate calls it implicitly.
func (s *DesignSystemSpec) Finalize() error {
	s.palette = s.palette[:0]
	for _, hex := range s.Colors {
		rgb, ok := styles.ParseColor(hex)
		if !ok {
			return fmt.Errorf("invalid design-system color %q", hex)
		}
		s.palette = append(s.palette, rgb)
	}
	sort.Slice(s.FontSizes, func(i, j int) bool { return s.FontSizes[i].Px < s.FontSizes[j].Px })
	sort.Ints(s.FontWeights)
	return nil
}

// Validate checks the spec for usable values.
func (s *DesignSystemSpec) Validate() error {
	if err := s.Finalize(); err != nil {
		return err
	}
	if s.SpacingBase < 0 {
		return fmt.Errorf("spacing_base must be >= 0 (got %v)", s.SpacingBase)
	}
	for _, fs := range s.FontSizes {
		if fs.Px <= 0 {
			return fmt.Errorf("font size %q must have px > 0", fs.Name)
		}
	}
	for _, rule := range s.PatternRules {
		if !isValidPatternRule(rule) {
			return fmt.Errorf("unknown pattern rule %q (valid: %v)", rule, ValidPatternRules)
		}
	}
	return nil
}

func isValidPatternRule(name string) bool {
	for _, r := range ValidPatternRules {
		if r == name {
			return true
		}
	}
	return false
}

// Palette returns the parsed RGB palette.
func (s *DesignSystemSpec) Palette() []styles.RGB { return s.palette }

// HasWeight reports whether w is an allowed font weight.
func (s *DesignSystemSpec) HasWeight(w int) bool {
	for _, allowed := range s.FontWeights {
		if allowed == w {
			return true
		}
	}
	return false
}

// HasFamily reports whether the first family of a CSS font-family stack is
// allowed. An empty allow-list accepts everything.
func (s *DesignSystemSpec) HasFamily(first string) bool {
	if len(s.FontFamilies) == 0 {
		return true
	}
	for _, allowed := range s.FontFamilies {
		if strings.EqualFold(allowed, first) {
			return true
		}
	}
	return false
}
