package skill

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const validateSystem = `You review robotics textbook content against a glossary and style
guide. Score each category from 0 to 100: terminology, code_quality,
structure, accessibility. Report every issue with its category, the
location in the content, a message, a suggested fix, a severity of
error, warning, or suggestion, and whether the fix can be applied
automatically. Report separately on terminology consistency and on the
quality of code examples.`

// Issue severities, strongest first.
const (
	SeverityError      = "error"
	SeverityWarning    = "warning"
	SeveritySuggestion = "suggestion"
)

// Validation statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

var severityRank = map[string]int{
	SeverityError:      0,
	SeverityWarning:    1,
	SeveritySuggestion: 2,
}

// Issue is one problem found in the content.
type Issue struct {
	Category     string `json:"category"`
	Location     string `json:"location"`
	Message      string `json:"message"`
	SuggestedFix string `json:"suggested_fix"`
	Severity     string `json:"severity"`
	AutoFixable  bool   `json:"auto_fixable"`
}

type validateOutput struct {
	Scores            map[string]int `json:"scores"`
	Issues            []Issue        `json:"issues"`
	TerminologyReport string         `json:"terminology_report"`
	CodeQualityReport string         `json:"code_quality_report"`
}

// Validate scores content per category and reports issues sorted by
// severity, with an overall pass/warn/fail status.
type Validate struct {
	gen *Generator
}

// NewValidate creates the validation skill.
func NewValidate(gen *Generator) *Validate {
	return &Validate{gen: gen}
}

func (v *Validate) Name() string { return NameValidation }

func (v *Validate) Invoke(ctx context.Context, req Request) Result {
	if emptyContent(req.Content) {
		return Fail("content is empty")
	}

	var prompt strings.Builder
	if glossary, ok := req.Params["glossary"].(map[string]string); ok && len(glossary) > 0 {
		prompt.WriteString("Glossary terms (canonical spellings):\n")
		for term := range glossary {
			fmt.Fprintf(&prompt, "- %s\n", term)
		}
		prompt.WriteString("\n")
	}
	fmt.Fprintf(&prompt, "Review the following content:\n\n%s", req.Content)

	out, err := GenerateObject[validateOutput](ctx, v.gen, validateSystem, prompt.String())
	if err != nil {
		return Fail("validation failed: %v", err)
	}

	issues, err := normalizeIssues(out.Issues)
	if err != nil {
		return Fail("model returned invalid issues: %v", err)
	}

	return Result{
		Success: true,
		Artifacts: map[string]any{
			"validation_status":   DeriveStatus(issues),
			"scores":              out.Scores,
			"issues":              issues,
			"terminology_report":  out.TerminologyReport,
			"code_quality_report": out.CodeQualityReport,
		},
	}
}

// normalizeIssues validates severities and sorts issues strongest
// first. The sort is stable so same-severity issues keep model order.
func normalizeIssues(issues []Issue) ([]Issue, error) {
	for _, issue := range issues {
		if _, ok := severityRank[issue.Severity]; !ok {
			return nil, fmt.Errorf("unknown severity %q", issue.Severity)
		}
	}
	sorted := make([]Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityRank[sorted[i].Severity] < severityRank[sorted[j].Severity]
	})
	return sorted, nil
}

// DeriveStatus maps issues to the overall status: fail when any error
// exists; pass when there are no issues, or only auto-fixable
// suggestions; warn otherwise.
func DeriveStatus(issues []Issue) string {
	if len(issues) == 0 {
		return StatusPass
	}
	onlyFixableSuggestions := true
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return StatusFail
		}
		if issue.Severity != SeveritySuggestion || !issue.AutoFixable {
			onlyFixableSuggestions = false
		}
	}
	if onlyFixableSuggestions {
		return StatusPass
	}
	return StatusWarn
}
