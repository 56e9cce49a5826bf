// Package orchestrator selects and composes skills based on a learner
// profile and request context.
//
// Orchestrators absorb skill failures: a failed skill is logged and
// skipped, and the best available content is returned with Success
// still true. Only the inability to construct any response at all is a
// caller-visible error.
package orchestrator

import (
	"context"

	"github.com/robolearn/robolearn/internal/log"
	"github.com/robolearn/robolearn/internal/skill"
)

// AgentResult is the composed outcome of one orchestration.
// AdaptationsApplied lists only skills that actually succeeded.
type AgentResult struct {
	Success            bool           `json:"success"`
	Content            string         `json:"content"`
	OriginalContent    string         `json:"original_content"`
	AdaptationsApplied []string       `json:"adaptations_applied"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// Step is one (skill, params) pair in a chain.
type Step struct {
	Skill  skill.Skill
	Params map[string]any
}

// Chain is an explicit ordered list of steps. ShortCircuit stops the
// chain at the first failed step instead of skipping it.
type Chain struct {
	Steps        []Step
	ShortCircuit bool
}

// Run folds the chain over the content: each successful step's output
// feeds the next step. Failed steps leave the content unchanged and
// are not recorded as applied.
func (c Chain) Run(ctx context.Context, content, chapterID string, logger log.Logger) AgentResult {
	if logger == nil {
		logger = log.NewNop()
	}

	result := AgentResult{
		Success:            true,
		Content:            content,
		OriginalContent:    content,
		AdaptationsApplied: []string{},
		Metadata:           map[string]any{},
	}

	for _, step := range c.Steps {
		res := step.Skill.Invoke(ctx, skill.Request{
			Content:   result.Content,
			ChapterID: chapterID,
			Params:    step.Params,
		})
		if !res.Success {
			logger.Warn("skill failed, continuing with current content",
				"skill", step.Skill.Name(), "error", res.Err)
			if c.ShortCircuit {
				break
			}
			continue
		}

		result.Content = res.Content
		result.AdaptationsApplied = append(result.AdaptationsApplied, step.Skill.Name())
		for k, v := range res.Artifacts {
			result.Metadata[k] = v
		}
	}
	return result
}
