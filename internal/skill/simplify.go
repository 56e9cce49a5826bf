package skill

import (
	"context"
	"fmt"
)

const simplifySystem = `You rewrite robotics textbook content for absolute beginners.
Use short sentences, everyday analogies, and define every technical term
the first time it appears. Do not change the meaning of the content.
Leave any __CODE_BLOCK_N__ placeholders exactly where they are.`

type simplifyOutput struct {
	Simplified     string   `json:"simplified"`
	AnalogiesUsed  []string `json:"analogies_used"`
	TermsExplained []string `json:"terms_explained"`
}

// Simplify rewrites content at a lower reading level, preserving
// fenced code blocks verbatim when preserve_code is set (the default).
type Simplify struct {
	gen *Generator
}

// NewSimplify creates the simplification skill.
func NewSimplify(gen *Generator) *Simplify {
	return &Simplify{gen: gen}
}

func (s *Simplify) Name() string { return NameSimplify }

func (s *Simplify) Invoke(ctx context.Context, req Request) Result {
	if emptyContent(req.Content) {
		return Fail("content is empty")
	}

	text := req.Content
	var blocks []string
	if req.BoolParam("preserve_code", true) {
		text, blocks = extractFences(text)
	}

	prompt := fmt.Sprintf("Rewrite the following for a complete beginner:\n\n%s", text)
	out, err := GenerateObject[simplifyOutput](ctx, s.gen, simplifySystem, prompt)
	if err != nil {
		return Fail("simplification failed: %v", err)
	}
	if emptyContent(out.Simplified) {
		return Fail("model returned empty simplification")
	}

	simplified := out.Simplified
	if len(blocks) > 0 {
		simplified = restoreFences(simplified, blocks)
	}

	return Result{
		Success: true,
		Content: simplified,
		Artifacts: map[string]any{
			"analogies_used":  out.AnalogiesUsed,
			"terms_explained": out.TermsExplained,
		},
	}
}
