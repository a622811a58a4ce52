package checks

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"

	"github.com/designlens/designlens/internal/domain"
)

// componentExtensions are file types treated as UI components for the
// structural pattern rules.
var componentExtensions = map[string]bool{
	".tsx": true, ".jsx": true, ".vue": true, ".svelte": true,
}

// testSuffixes are the adjacent-test-file shapes we accept for a component.
var testSuffixes = []string{".test", ".spec", "_test"}

// PatternChecker evaluates structural rules against changed-file metadata.
// These rules never look at the DOM.
type PatternChecker struct {
	rules map[string]bool
	// Exists reports whether a path exists relative to the project root.
	// Injected so the rules stay testable without a real tree.
	Exists func(path string) bool
}

// NewPatternChecker builds a checker for the spec's enabled rules.
func NewPatternChecker(spec domain.DesignSystemSpec, exists func(string) bool) *PatternChecker {
	rules := make(map[string]bool, len(spec.PatternRules))
	for _, r := range spec.PatternRules {
		rules[r] = true
	}
	return &PatternChecker{rules: rules, Exists: exists}
}

// Check runs the enabled pattern rules over the changed files of one view.
func (p *PatternChecker) Check(files []string) []domain.Finding {
	var findings []domain.Finding
	for _, file := range files {
		ext := filepath.Ext(file)
		if !componentExtensions[ext] {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(file), ext)
		if isTestFile(base) {
			continue
		}
		if p.rules["pascal-case-components"] && !IsPascalCase(base) {
			findings = append(findings, domain.Finding{
				Check:        domain.CheckPattern,
				Severity:     domain.SeveritySuggestion,
				Message:      fmt.Sprintf("component file %q is not PascalCase", filepath.Base(file)),
				SuggestedFix: fmt.Sprintf("rename to %s%s", ToPascalCase(base), ext),
				Locator:      file,
			})
		}
		if p.rules["adjacent-test-file"] && p.Exists != nil && !p.hasAdjacentTest(file, base, ext) {
			findings = append(findings, domain.Finding{
				Check:        domain.CheckPattern,
				Severity:     domain.SeveritySuggestion,
				Message:      fmt.Sprintf("no test file found next to %q", filepath.Base(file)),
				SuggestedFix: fmt.Sprintf("add %s.test%s beside the component", base, ext),
				Locator:      file,
			})
		}
	}
	return findings
}

func isTestFile(base string) bool {
	for _, suffix := range testSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

func (p *PatternChecker) hasAdjacentTest(file, base, ext string) bool {
	dir := filepath.Dir(file)
	candidates := []string{
		filepath.Join(dir, base+".test"+ext),
		filepath.Join(dir, base+".spec"+ext),
		filepath.Join(dir, base+".test.ts"),
		filepath.Join(dir, base+".spec.ts"),
		filepath.Join(dir, "__tests__", base+".test"+ext),
	}
	for _, c := range candidates {
		if p.Exists(c) {
			return true
		}
	}
	return false
}

// IsPascalCase reports whether a name starts with an upper-case letter and
// splits into capitalized CamelCase words with no separators.
func IsPascalCase(name string) bool {
	if name == "" {
		return false
	}
	first := rune(name[0])
	if !unicode.IsUpper(first) {
		return false
	}
	if strings.ContainsAny(name, "-_ .") {
		return false
	}
	for _, word := range camelcase.Split(name) {
		r := rune(word[0])
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ToPascalCase converts kebab/snake/space separated names to PascalCase.
func ToPascalCase(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	var b strings.Builder
	for _, part := range parts {
		for _, word := range camelcase.Split(part) {
			b.WriteString(strings.ToUpper(word[:1]))
			b.WriteString(word[1:])
		}
	}
	return b.String()
}
