package skill

import (
	"context"
	"fmt"
	"strings"
)

const exampleSystem = `You illustrate robotics concepts with one concrete real-world
example: a deployed robot, product, or research system that uses the
concept. Name the system and explain how the concept appears in it.`

type exampleOutput struct {
	Example string `json:"example"`
	Domain  string `json:"domain"`
}

// RealWorldExample appends one concrete applied example of the concept
// to the content. The input survives unchanged, so the skill composes
// when chained after another transformation.
type RealWorldExample struct {
	gen *Generator
}

// NewRealWorldExample creates the example skill.
func NewRealWorldExample(gen *Generator) *RealWorldExample {
	return &RealWorldExample{gen: gen}
}

func (r *RealWorldExample) Name() string { return NameRealWorldExample }

func (r *RealWorldExample) Invoke(ctx context.Context, req Request) Result {
	if emptyContent(req.Content) {
		return Fail("content is empty")
	}

	domain := req.StringParam("domain", "")
	prompt := fmt.Sprintf("Give a real-world example of the concept below.\n\n%s", req.Content)
	if domain != "" {
		prompt = fmt.Sprintf("Give a real-world example from the %s domain of the concept below.\n\n%s", domain, req.Content)
	}

	out, err := GenerateObject[exampleOutput](ctx, r.gen, exampleSystem, prompt)
	if err != nil {
		return Fail("example generation failed: %v", err)
	}
	if emptyContent(out.Example) {
		return Fail("model returned empty example")
	}

	return Result{
		Success: true,
		Content: strings.TrimRight(req.Content, "\n") + "\n\n" + out.Example,
		Artifacts: map[string]any{
			"example": out.Example,
			"domain":  out.Domain,
		},
	}
}
