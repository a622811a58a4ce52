package checks

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/designlens/designlens/internal/domain"
	"github.com/designlens/designlens/internal/domain/styles"
)

// Violation is one accessibility rule failure with the nodes it affects.
type Violation struct {
	Rule   string   `json:"rule"`
	Impact string   `json:"impact"`
	Help   string   `json:"help"`
	Nodes  []string `json:"nodes"`
}

// AuditResult is the outcome of a structural/semantic accessibility audit.
type AuditResult struct {
	Violations []Violation `json:"violations"`
	PassCount  int         `json:"pass_count"`
}

// Score derives the audit score: start at 100, subtract the configured
// penalty per violation weighted by impact, floor at 0.
func (r AuditResult) Score(penalties map[string]int) int {
	score := 100
	for _, v := range r.Violations {
		score -= penalties[v.Impact]
	}
	if score < 0 {
		return 0
	}
	return score
}

// knownRoles is the set of ARIA roles the audit accepts.
var knownRoles = map[string]bool{
	"alert": true, "alertdialog": true, "application": true, "article": true,
	"banner": true, "button": true, "checkbox": true, "columnheader": true,
	"combobox": true, "complementary": true, "contentinfo": true, "dialog": true,
	"document": true, "feed": true, "figure": true, "form": true, "grid": true,
	"gridcell": true, "group": true, "heading": true, "img": true, "link": true,
	"list": true, "listbox": true, "listitem": true, "main": true, "menu": true,
	"menubar": true, "menuitem": true, "navigation": true, "none": true,
	"option": true, "presentation": true, "progressbar": true, "radio": true,
	"radiogroup": true, "region": true, "row": true, "rowgroup": true,
	"search": true, "searchbox": true, "separator": true, "slider": true,
	"spinbutton": true, "status": true, "switch": true, "tab": true,
	"table": true, "tablist": true, "tabpanel": true, "textbox": true,
	"timer": true, "toolbar": true, "tooltip": true, "tree": true, "treeitem": true,
}

// knownARIAAttrs is the set of aria-* attributes the audit accepts.
var knownARIAAttrs = map[string]bool{
	"aria-activedescendant": true, "aria-atomic": true, "aria-autocomplete": true,
	"aria-busy": true, "aria-checked": true, "aria-controls": true,
	"aria-current": true, "aria-describedby": true, "aria-details": true,
	"aria-disabled": true, "aria-errormessage": true, "aria-expanded": true,
	"aria-flowto": true, "aria-haspopup": true, "aria-hidden": true,
	"aria-invalid": true, "aria-keyshortcuts": true, "aria-label": true,
	"aria-labelledby": true, "aria-level": true, "aria-live": true,
	"aria-modal": true, "aria-multiline": true, "aria-multiselectable": true,
	"aria-orientation": true, "aria-owns": true, "aria-placeholder": true,
	"aria-posinset": true, "aria-pressed": true, "aria-readonly": true,
	"aria-relevant": true, "aria-required": true, "aria-roledescription": true,
	"aria-selected": true, "aria-setsize": true, "aria-sort": true,
	"aria-valuemax": true, "aria-valuemin": true, "aria-valuenow": true,
	"aria-valuetext": true,
}

// Auditor runs the rule-based accessibility audit over a DOM snapshot.
type Auditor struct {
	BaseFontSize float64
}

// Audit parses the capture's DOM snapshot and evaluates the rule set:
// landmark presence, heading hierarchy, image alt text, label-for-control
// association, ARIA correctness and text color contrast. It returns an
// error when the snapshot cannot be processed; the orchestrator converts
// that into an incomplete contribution rather than a session failure.
func (a *Auditor) Audit(capture *domain.CaptureResult) (*AuditResult, error) {
	if capture == nil || strings.TrimSpace(capture.DOMSnapshot) == "" {
		return nil, fmt.Errorf("empty DOM snapshot")
	}
	doc, err := html.Parse(strings.NewReader(capture.DOMSnapshot))
	if err != nil {
		return nil, fmt.Errorf("parsing DOM snapshot: %w", err)
	}

	state := &auditState{labelFor: map[string]bool{}}
	collect(doc, state)

	var violations []Violation
	violations = appendRule(violations, a.checkLandmark(state))
	violations = appendRule(violations, a.checkHeadings(state))
	violations = appendRule(violations, a.checkImageAlt(state))
	violations = appendRule(violations, a.checkLabels(state))
	violations = appendRule(violations, a.checkRoles(state))
	violations = appendRule(violations, a.checkARIAAttrs(state))
	violations = appendRule(violations, a.checkContrast(capture.Styles))

	const ruleCount = 7
	return &AuditResult{
		Violations: violations,
		PassCount:  ruleCount - len(violations),
	}, nil
}

func appendRule(violations []Violation, v *Violation) []Violation {
	if v == nil {
		return violations
	}
	sort.Strings(v.Nodes)
	return append(violations, *v)
}

// auditState is the flattened DOM view the rules operate on.
type auditState struct {
	hasMain   bool
	headings  []int // heading levels in document order
	imgsNoAlt []string
	controls  []controlNode
	labelFor  map[string]bool
	badRoles  []string
	badARIA   []string
}

type controlNode struct {
	desc      string
	id        string
	labelled  bool // aria-label/labelledby or wrapped in <label>
	inputType string
}

func collect(n *html.Node, s *auditState) {
	collectNode(n, s, false)
}

func collectNode(n *html.Node, s *auditState, inLabel bool) {
	if n.Type == html.ElementNode {
		attrs := attrMap(n)

		switch n.Data {
		case "main":
			s.hasMain = true
		case "h1", "h2", "h3", "h4", "h5", "h6":
			s.headings = append(s.headings, int(n.Data[1]-'0'))
		case "img":
			if _, ok := attrs["alt"]; !ok {
				s.imgsNoAlt = append(s.imgsNoAlt, describe(n, attrs))
			}
		case "label":
			if forID := attrs["for"]; forID != "" {
				s.labelFor[forID] = true
			}
			inLabel = true
		case "input", "select", "textarea":
			t := attrs["type"]
			if n.Data != "input" || !skippedInputType(t) {
				s.controls = append(s.controls, controlNode{
					desc:      describe(n, attrs),
					id:        attrs["id"],
					labelled:  inLabel || attrs["aria-label"] != "" || attrs["aria-labelledby"] != "",
					inputType: t,
				})
			}
		}

		if role, ok := attrs["role"]; ok {
			if role == "main" {
				s.hasMain = true
			}
			if !knownRoles[strings.ToLower(strings.TrimSpace(role))] {
				s.badRoles = append(s.badRoles, describe(n, attrs)+" role="+role)
			}
		}
		for _, attr := range n.Attr {
			if strings.HasPrefix(attr.Key, "aria-") && !knownARIAAttrs[attr.Key] {
				s.badARIA = append(s.badARIA, describe(n, attrs)+" "+attr.Key)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNode(c, s, inLabel)
	}
}

func skippedInputType(t string) bool {
	switch t {
	case "hidden", "submit", "button", "reset", "image":
		return true
	}
	return false
}

func attrMap(n *html.Node) map[string]string {
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Key] = a.Val
	}
	return m
}

func describe(n *html.Node, attrs map[string]string) string {
	if id := attrs["id"]; id != "" {
		return n.Data + "#" + id
	}
	if cls := attrs["class"]; cls != "" {
		return n.Data + "." + strings.Fields(cls)[0]
	}
	return n.Data
}

func (a *Auditor) checkLandmark(s *auditState) *Violation {
	if s.hasMain {
		return nil
	}
	return &Violation{
		Rule:   "landmark-main",
		Impact: domain.ImpactModerate,
		Help:   "document should contain a main landmark",
		Nodes:  []string{"html"},
	}
}

func (a *Auditor) checkHeadings(s *auditState) *Violation {
	var nodes []string
	if len(s.headings) == 0 || s.headings[0] != 1 {
		nodes = append(nodes, "document has no leading h1")
	}
	for i := 1; i < len(s.headings); i++ {
		if s.headings[i] > s.headings[i-1]+1 {
			nodes = append(nodes, fmt.Sprintf("h%d follows h%d", s.headings[i], s.headings[i-1]))
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	return &Violation{
		Rule:   "heading-order",
		Impact: domain.ImpactModerate,
		Help:   "heading levels should start at h1 and not skip levels",
		Nodes:  nodes,
	}
}

func (a *Auditor) checkImageAlt(s *auditState) *Violation {
	if len(s.imgsNoAlt) == 0 {
		return nil
	}
	return &Violation{
		Rule:   "image-alt",
		Impact: domain.ImpactCritical,
		Help:   "images must have an alt attribute",
		Nodes:  s.imgsNoAlt,
	}
}

func (a *Auditor) checkLabels(s *auditState) *Violation {
	var nodes []string
	for _, c := range s.controls {
		if c.labelled || (c.id != "" && s.labelFor[c.id]) {
			continue
		}
		nodes = append(nodes, c.desc)
	}
	if len(nodes) == 0 {
		return nil
	}
	return &Violation{
		Rule:   "label",
		Impact: domain.ImpactSerious,
		Help:   "form controls must have an associated label",
		Nodes:  nodes,
	}
}

func (a *Auditor) checkRoles(s *auditState) *Violation {
	if len(s.badRoles) == 0 {
		return nil
	}
	return &Violation{
		Rule:   "aria-roles",
		Impact: domain.ImpactSerious,
		Help:   "role values must be valid ARIA roles",
		Nodes:  s.badRoles,
	}
}

func (a *Auditor) checkARIAAttrs(s *auditState) *Violation {
	if len(s.badARIA) == 0 {
		return nil
	}
	return &Violation{
		Rule:   "aria-valid-attr",
		Impact: domain.ImpactCritical,
		Help:   "aria-* attributes must be valid",
		Nodes:  s.badARIA,
	}
}

// contrast thresholds per WCAG AA: 4.5:1 for normal text, 3:1 for large
// text (>= 24px).
const (
	contrastNormal     = 4.5
	contrastLarge      = 3.0
	largeTextMinimumPx = 24.0
)

func (a *Auditor) checkContrast(elementStyles []domain.ElementStyle) *Violation {
	var nodes []string
	for _, el := range elementStyles {
		fg, okFg := styles.ParseColor(el.Color)
		bg, okBg := styles.ParseColor(el.Background)
		if !okFg || !okBg {
			continue
		}
		required := contrastNormal
		if px, ok := styles.ParseLength(el.FontSize, a.BaseFontSize); ok && px >= largeTextMinimumPx {
			required = contrastLarge
		}
		if ratio := styles.ContrastRatio(fg, bg); ratio < required {
			nodes = append(nodes, fmt.Sprintf("%s (%.2f:1, needs %.1f:1)", el.Selector, ratio, required))
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	return &Violation{
		Rule:   "color-contrast",
		Impact: domain.ImpactSerious,
		Help:   "text must meet WCAG AA contrast against its background",
		Nodes:  nodes,
	}
}

// FindingsFromAudit converts violations to findings, mapping impact to
// finding severity (critical→critical, serious→warning, moderate→
// suggestion, minor→info).
func FindingsFromAudit(result *AuditResult) []domain.Finding {
	findings := make([]domain.Finding, 0, len(result.Violations))
	for _, v := range result.Violations {
		findings = append(findings, domain.Finding{
			Check:        domain.CheckAccessibility,
			Severity:     severityForImpact(v.Impact),
			Message:      fmt.Sprintf("%s: %s (%d nodes)", v.Rule, v.Help, len(v.Nodes)),
			SuggestedFix: v.Help,
			Locator:      strings.Join(v.Nodes, ", "),
		})
	}
	return findings
}

func severityForImpact(impact string) domain.Severity {
	switch impact {
	case domain.ImpactCritical:
		return domain.SeverityCritical
	case domain.ImpactSerious:
		return domain.SeverityWarning
	case domain.ImpactModerate:
		return domain.SeveritySuggestion
	default:
		return domain.SeverityInfo
	}
}
