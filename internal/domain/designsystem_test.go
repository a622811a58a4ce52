package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDesignSystem(t *testing.T) {
	spec := DefaultDesignSystem()
	require.NoError(t, spec.Validate())

	assert.Len(t, spec.Palette(), len(spec.Colors))
	assert.Equal(t, 8.0, spec.SpacingBase)
	assert.Equal(t, ValidPatternRules, spec.PatternRules)

	// Scales come out sorted.
	for i := 1; i < len(spec.FontSizes); i++ {
		assert.Less(t, spec.FontSizes[i-1].Px, spec.FontSizes[i].Px)
	}
}

func TestDesignSystemValidate_Errors(t *testing.T) {
	bad := DesignSystemSpec{Colors: []string{"not-a-color"}}
	assert.ErrorContains(t, bad.Validate(), "invalid design-system color")

	bad = DesignSystemSpec{SpacingBase: -1}
	assert.ErrorContains(t, bad.Validate(), "spacing_base")

	bad = DesignSystemSpec{FontSizes: []FontSize{{Name: "xs", Px: 0}}}
	assert.ErrorContains(t, bad.Validate(), "px > 0")

	bad = DesignSystemSpec{PatternRules: []string{"no-such-rule"}}
	assert.ErrorContains(t, bad.Validate(), "unknown pattern rule")
}

func TestHasWeight(t *testing.T) {
	spec := DefaultDesignSystem()
	assert.True(t, spec.HasWeight(400))
	assert.True(t, spec.HasWeight(700))
	assert.False(t, spec.HasWeight(350))
}

func TestHasFamily(t *testing.T) {
	spec := DesignSystemSpec{FontFamilies: []string{"Inter", "Roboto"}}
	assert.True(t, spec.HasFamily("Inter"))
	assert.True(t, spec.HasFamily("inter"))
	assert.False(t, spec.HasFamily("Comic Sans MS"))

	// An empty allow-list accepts everything.
	open := DesignSystemSpec{}
	assert.True(t, open.HasFamily("Anything"))
}
