package orchestrator

import (
	"context"
	"fmt"

	"github.com/robolearn/robolearn/internal/content"
	"github.com/robolearn/robolearn/internal/log"
	"github.com/robolearn/robolearn/internal/skill"
)

// TranslationCache is the cache seam used by the translator. Satisfied
// by *cache.TranslationCache and test fakes.
type TranslationCache interface {
	Get(ctx context.Context, chapterID, content string) (string, bool)
	Put(ctx context.Context, chapterID, content, translated string)
}

// Translator renders content into the learner's language, consulting
// the cache before spending a provider call.
type Translator struct {
	translate skill.Skill
	cache     TranslationCache
	catalog   *content.Catalog
	logger    log.Logger
}

// NewTranslator creates a translator. cache and catalog may be nil:
// without a cache every request translates fresh, without a catalog no
// chapter glossary is applied.
func NewTranslator(translate skill.Skill, cache TranslationCache, catalog *content.Catalog, logger log.Logger) (*Translator, error) {
	if translate == nil {
		return nil, fmt.Errorf("translation skill is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Translator{translate: translate, cache: cache, catalog: catalog, logger: logger}, nil
}

// Translate renders contentText into Urdu. A failed translation
// degrades to the original content with no adaptations recorded.
func (t *Translator) Translate(ctx context.Context, contentText, chapterID string) AgentResult {
	result := AgentResult{
		Success:            true,
		Content:            contentText,
		OriginalContent:    contentText,
		AdaptationsApplied: []string{},
		Metadata:           map[string]any{"target_language": "ur"},
	}

	if t.cache != nil && chapterID != "" {
		if cached, ok := t.cache.Get(ctx, chapterID, contentText); ok {
			result.Content = cached
			result.AdaptationsApplied = append(result.AdaptationsApplied, t.translate.Name())
			result.Metadata["cache_hit"] = true
			return result
		}
	}

	params := map[string]any{}
	if t.catalog != nil && chapterID != "" {
		if ch, ok := t.catalog.Get(chapterID); ok && len(ch.Glossary) > 0 {
			glossary := make(map[string]string, len(ch.Glossary))
			for _, entry := range ch.Glossary {
				glossary[entry.Term] = entry.Urdu
			}
			params["glossary"] = glossary
		}
	}

	res := t.translate.Invoke(ctx, skill.Request{
		Content:   contentText,
		ChapterID: chapterID,
		Params:    params,
	})
	if !res.Success {
		t.logger.Warn("translation failed, returning original content",
			"chapter", chapterID, "error", res.Err)
		return result
	}

	result.Content = res.Content
	result.AdaptationsApplied = append(result.AdaptationsApplied, t.translate.Name())
	for k, v := range res.Artifacts {
		result.Metadata[k] = v
	}

	if t.cache != nil && chapterID != "" {
		t.cache.Put(ctx, chapterID, contentText, res.Content)
	}
	return result
}
