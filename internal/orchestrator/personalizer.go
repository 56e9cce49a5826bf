package orchestrator

import (
	"context"
	"fmt"

	"github.com/robolearn/robolearn/internal/log"
	"github.com/robolearn/robolearn/internal/profile"
	"github.com/robolearn/robolearn/internal/skill"
)

// Personalizer adapts content to a learner profile. Each strategy
// names an ordered skill chain; the default strategy applies none.
type Personalizer struct {
	registry *skill.Registry
	logger   log.Logger
}

// NewPersonalizer creates a personalizer over the skill registry.
func NewPersonalizer(registry *skill.Registry, logger log.Logger) (*Personalizer, error) {
	if registry == nil {
		return nil, fmt.Errorf("skill registry is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Personalizer{registry: registry, logger: logger}, nil
}

// strategySkills maps each strategy to the skills it applies, in order.
var strategySkills = map[profile.Strategy][]string{
	profile.StrategyBeginner:        {skill.NameSimplify},
	profile.StrategyHardwareFocused: {skill.NameHardwareMapping, skill.NameRealWorldExample},
	profile.StrategyAdvanced:        {skill.NameEnrichment},
	profile.StrategyDefault:         {},
}

// Personalize transforms content according to the profile's strategy.
// contextMap is forwarded to the skills as parameters.
func (p *Personalizer) Personalize(ctx context.Context, contentText string, prof profile.Profile, contextMap map[string]any) AgentResult {
	strategy := profile.SelectStrategy(prof)

	var steps []Step
	for _, name := range strategySkills[strategy] {
		s, ok := p.registry.Get(name)
		if !ok {
			// A strategy naming an unregistered skill is a wiring bug;
			// degrade to pass-through rather than failing the request.
			p.logger.Error("strategy references unregistered skill", "strategy", strategy, "skill", name)
			continue
		}
		steps = append(steps, Step{Skill: s, Params: contextMap})
	}

	chapterID, _ := contextMap["chapter_id"].(string)
	result := Chain{Steps: steps}.Run(ctx, contentText, chapterID, p.logger)
	result.Metadata["strategy"] = string(strategy)

	p.logger.Info("personalization completed",
		"strategy", strategy,
		"adaptations", len(result.AdaptationsApplied))
	return result
}
