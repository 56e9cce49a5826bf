// Package app provides application initialization and dependency
// wiring. Setup builds every component from configuration; Close
// releases them in reverse order.
package app

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/robolearn/robolearn/internal/cache"
	"github.com/robolearn/robolearn/internal/config"
	"github.com/robolearn/robolearn/internal/content"
	"github.com/robolearn/robolearn/internal/log"
	"github.com/robolearn/robolearn/internal/orchestrator"
	"github.com/robolearn/robolearn/internal/profile"
	"github.com/robolearn/robolearn/internal/retrieval"
	"github.com/robolearn/robolearn/internal/skill"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool
	Catalog  *content.Catalog

	Registry       *skill.Registry
	Personalizer   *orchestrator.Personalizer
	Translator     *orchestrator.Translator
	QuizGenerator  *orchestrator.QuizGenerator
	AskSkill       skill.Skill
	ValidateSkill  skill.Skill
	SummarizeSkill skill.Skill

	Profiles *profile.Store
	Searcher *retrieval.Searcher
	Indexer  *retrieval.Indexer

	translationCache *cache.TranslationCache
	otelCleanup      func()
	cancel           context.CancelFunc
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")

	if a.cancel != nil {
		a.cancel()
	}

	if a.translationCache != nil {
		if err := a.translationCache.Close(); err != nil {
			a.Logger.Warn("closing translation cache", "error", err)
		}
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Debug("database pool closed")
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}
