package skill

import (
	"context"
	"fmt"
)

const summarySystem = `You produce exam-preparation summaries of robotics textbook
content. Every key point must be directly verifiable against the source
text. Summaries come in three lengths: short (2-3 sentences), medium
(one paragraph), and long (several paragraphs). The glossary lists only
terms introduced by this content.`

// GlossaryTerm is one newly introduced term with its definition.
type GlossaryTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type summaryOutput struct {
	KeyPoints []string       `json:"key_points"`
	Short     string         `json:"short"`
	Medium    string         `json:"medium"`
	Long      string         `json:"long"`
	Glossary  []GlossaryTerm `json:"glossary"`
}

// ExamSummary extracts key points, layered summaries, and a glossary.
type ExamSummary struct {
	gen *Generator
}

// NewExamSummary creates the summary skill.
func NewExamSummary(gen *Generator) *ExamSummary {
	return &ExamSummary{gen: gen}
}

func (e *ExamSummary) Name() string { return NameExamSummary }

func (e *ExamSummary) Invoke(ctx context.Context, req Request) Result {
	if emptyContent(req.Content) {
		return Fail("content is empty")
	}

	maxPoints := req.IntParam("max_points", 5)
	if maxPoints < 1 {
		return Fail("max_points must be positive, got %d", maxPoints)
	}

	prompt := fmt.Sprintf("Summarize the following for exam preparation. Extract at most %d key points.\n\n%s", maxPoints, req.Content)
	out, err := GenerateObject[summaryOutput](ctx, e.gen, summarySystem, prompt)
	if err != nil {
		return Fail("summarization failed: %v", err)
	}
	if emptyContent(out.Medium) {
		return Fail("model returned empty summary")
	}

	// The model occasionally over-delivers; the cap is a hard limit.
	if len(out.KeyPoints) > maxPoints {
		out.KeyPoints = out.KeyPoints[:maxPoints]
	}

	return Result{
		Success: true,
		Content: out.Medium,
		Artifacts: map[string]any{
			"key_points": out.KeyPoints,
			"short":      out.Short,
			"medium":     out.Medium,
			"long":       out.Long,
			"glossary":   out.Glossary,
		},
	}
}
