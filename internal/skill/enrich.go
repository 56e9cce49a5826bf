package skill

import (
	"context"
	"fmt"
)

const enrichSystem = `You deepen robotics textbook content for advanced readers.
Add technical depth: implementation details, performance trade-offs,
edge cases, and references to the underlying standards or algorithms.
Never remove existing material; only extend it.`

type enrichOutput struct {
	Enriched    string   `json:"enriched"`
	TopicsAdded []string `json:"topics_added"`
}

// Enrichment adds technical depth for advanced learners.
type Enrichment struct {
	gen *Generator
}

// NewEnrichment creates the advanced enrichment skill.
func NewEnrichment(gen *Generator) *Enrichment {
	return &Enrichment{gen: gen}
}

func (e *Enrichment) Name() string { return NameEnrichment }

func (e *Enrichment) Invoke(ctx context.Context, req Request) Result {
	if emptyContent(req.Content) {
		return Fail("content is empty")
	}

	prompt := fmt.Sprintf("Extend the following with advanced technical depth:\n\n%s", req.Content)
	out, err := GenerateObject[enrichOutput](ctx, e.gen, enrichSystem, prompt)
	if err != nil {
		return Fail("enrichment failed: %v", err)
	}
	if emptyContent(out.Enriched) {
		return Fail("model returned empty enrichment")
	}

	return Result{
		Success: true,
		Content: out.Enriched,
		Artifacts: map[string]any{
			"topics_added": out.TopicsAdded,
		},
	}
}
