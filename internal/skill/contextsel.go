package skill

import (
	"context"
	"fmt"
	"strings"

	"github.com/robolearn/robolearn/internal/retrieval"
)

const contextSelectionSystem = `You answer a focused question about a specific passage from a
robotics textbook. Ground your answer in the passage and any provided
supporting sources. If the passage does not contain enough information
to answer, say so instead of guessing.`

// Searcher retrieves passages for context expansion. Satisfied by
// *retrieval.Searcher and test fakes.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...retrieval.Option) ([]retrieval.Match, error)
}

type contextSelectionOutput struct {
	Answer string `json:"answer"`
}

// ContextSelection answers a question about a selected text span,
// optionally expanded with semantically similar passages.
type ContextSelection struct {
	gen      *Generator
	searcher Searcher
}

// NewContextSelection creates the Q&A skill. searcher may be nil, in
// which case context expansion is unavailable.
func NewContextSelection(gen *Generator, searcher Searcher) *ContextSelection {
	return &ContextSelection{gen: gen, searcher: searcher}
}

func (c *ContextSelection) Name() string { return NameContextSelection }

func (c *ContextSelection) Invoke(ctx context.Context, req Request) Result {
	if emptyContent(req.SelectedText) {
		return Fail("selected text is empty")
	}
	question := req.StringParam("question", "")
	if question == "" {
		return Fail("question is required")
	}

	var sources []retrieval.Match
	if req.BoolParam("expand_context", false) {
		if c.searcher == nil {
			return Fail("context expansion is not available")
		}
		var opts []retrieval.Option
		if req.ChapterID != "" {
			opts = append(opts, retrieval.WithChapter(req.ChapterID))
		}
		matches, err := c.searcher.Search(ctx, req.SelectedText, opts...)
		if err != nil {
			return Fail("context retrieval failed: %v", err)
		}
		sources = matches
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Passage:\n%s\n\n", req.SelectedText)
	if len(sources) > 0 {
		prompt.WriteString("Supporting sources:\n")
		for i, m := range sources {
			fmt.Fprintf(&prompt, "[%d] (%s) %s\n", i+1, m.SourceRef, m.Passage)
		}
		prompt.WriteString("\n")
	}
	fmt.Fprintf(&prompt, "Question: %s", question)

	out, err := GenerateObject[contextSelectionOutput](ctx, c.gen, contextSelectionSystem, prompt.String())
	if err != nil {
		return Fail("answer generation failed: %v", err)
	}
	if emptyContent(out.Answer) {
		return Fail("model returned empty answer")
	}

	artifacts := map[string]any{}
	if len(sources) > 0 {
		artifacts["sources"] = sources
	}
	return Result{Success: true, Content: out.Answer, Artifacts: artifacts}
}
