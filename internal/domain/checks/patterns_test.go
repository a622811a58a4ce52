package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/designlens/designlens/internal/domain"
)

func patternChecker(existing ...string) *PatternChecker {
	files := make(map[string]bool, len(existing))
	for _, f := range existing {
		files[f] = true
	}
	return NewPatternChecker(domain.DefaultDesignSystem(), func(path string) bool {
		return files[path]
	})
}

func TestPatternCheck_PascalCase(t *testing.T) {
	checker := patternChecker("src/Card.test.tsx", "src/user-card.test.tsx")

	findings := checker.Check([]string{"src/Card.tsx"})
	assert.Empty(t, findings)

	findings = checker.Check([]string{"src/user-card.tsx"})
	require.Len(t, findings, 1)
	assert.Equal(t, domain.CheckPattern, findings[0].Check)
	assert.Equal(t, domain.SeveritySuggestion, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "user-card.tsx")
	assert.Contains(t, findings[0].SuggestedFix, "UserCard.tsx")
}

func TestPatternCheck_AdjacentTestFile(t *testing.T) {
	checker := patternChecker()

	findings := checker.Check([]string{"src/Card.tsx"})
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "no test file")
	assert.Contains(t, findings[0].SuggestedFix, "Card.test.tsx")

	// Each accepted test shape satisfies the rule.
	for _, test := range []string{
		"src/Card.test.tsx",
		"src/Card.spec.tsx",
		"src/Card.test.ts",
		"src/__tests__/Card.test.tsx",
	} {
		findings := patternChecker(test).Check([]string{"src/Card.tsx"})
		assert.Empty(t, findings, test)
	}
}

func TestPatternCheck_IgnoresNonComponents(t *testing.T) {
	checker := patternChecker()
	findings := checker.Check([]string{
		"src/utils/format.ts",
		"styles/main.css",
		"README.md",
	})
	assert.Empty(t, findings)
}

func TestPatternCheck_IgnoresTestFiles(t *testing.T) {
	checker := patternChecker()
	findings := checker.Check([]string{"src/Card.test.tsx", "src/Card.spec.tsx"})
	assert.Empty(t, findings)
}

func TestPatternCheck_DisabledRules(t *testing.T) {
	spec := domain.DefaultDesignSystem()
	spec.PatternRules = nil
	checker := NewPatternChecker(spec, func(string) bool { return false })

	findings := checker.Check([]string{"src/user-card.tsx"})
	assert.Empty(t, findings)
}

func TestIsPascalCase(t *testing.T) {
	assert.True(t, IsPascalCase("Card"))
	assert.True(t, IsPascalCase("UserCard"))
	assert.True(t, IsPascalCase("Grid2"))
	assert.False(t, IsPascalCase("card"))
	assert.False(t, IsPascalCase("user-card"))
	assert.False(t, IsPascalCase("user_card"))
	assert.False(t, IsPascalCase("userCard"))
	assert.False(t, IsPascalCase(""))
}

func TestToPascalCase(t *testing.T) {
	assert.Equal(t, "UserCard", ToPascalCase("user-card"))
	assert.Equal(t, "UserCard", ToPascalCase("user_card"))
	assert.Equal(t, "UserCard", ToPascalCase("userCard"))
	assert.Equal(t, "Card", ToPascalCase("card"))
}
