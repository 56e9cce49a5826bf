package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/firebase/genkit/go/core/tracing"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/time/rate"

	"github.com/robolearn/robolearn/db"
	"github.com/robolearn/robolearn/internal/cache"
	"github.com/robolearn/robolearn/internal/config"
	"github.com/robolearn/robolearn/internal/content"
	"github.com/robolearn/robolearn/internal/log"
	"github.com/robolearn/robolearn/internal/orchestrator"
	"github.com/robolearn/robolearn/internal/profile"
	"github.com/robolearn/robolearn/internal/retrieval"
	"github.com/robolearn/robolearn/internal/skill"
)

// Setup creates and initializes the application. Returns an App with
// embedded cleanup — call Close() to release. On error, everything
// already initialized is torn down.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	// Tracing must be registered before genkit initializes its
	// TracerProvider.
	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	a.Embedder = googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if a.Embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}

	catalog, err := content.Load(cfg.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("loading chapter catalog: %w", err)
	}
	a.Catalog = catalog
	logger.Info("chapter catalog loaded", "chapters", catalog.Len())

	a.Searcher, err = retrieval.NewSearcher(pool, a.Embedder, cfg.RetrievalTopK, logger)
	if err != nil {
		return nil, fmt.Errorf("creating searcher: %w", err)
	}
	a.Indexer, err = retrieval.NewIndexer(pool, a.Embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating indexer: %w", err)
	}

	a.Profiles, err = profile.NewStore(pool, logger)
	if err != nil {
		return nil, fmt.Errorf("creating profile store: %w", err)
	}

	if cfg.RedisURL != "" {
		ttl := time.Duration(cfg.TranslationCacheTTL) * time.Hour
		a.translationCache, err = cache.NewTranslation(ctx, cfg.RedisURL, ttl, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting translation cache: %w", err)
		}
		logger.Info("translation cache enabled")
	}

	if err := provideSkills(a); err != nil {
		return nil, err
	}
	if err := provideOrchestrators(a); err != nil {
		return nil, err
	}

	_, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	return a, nil
}

// provideOtelShutdown sets up OTLP trace export when enabled. The
// collector handles authentication, buffering, and forwarding.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	if !cfg.Otel.Enabled {
		return func() {}
	}

	if cfg.Otel.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	}
	if cfg.Otel.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Otel.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Otel.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("creating trace exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)
	logger.Debug("tracing enabled",
		"endpoint", cfg.Otel.Endpoint,
		"service", cfg.Otel.ServiceName,
	)

	shutdown := tracing.TracerProvider().Shutdown
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideDBPool runs migrations and creates a PostgreSQL pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// provideGenkit initializes genkit with the Gemini plugin. The API key
// comes from GEMINI_API_KEY or GOOGLE_API_KEY in the environment.
func provideGenkit(ctx context.Context, logger log.Logger) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with gemini provider")
	}
	logger.Debug("genkit initialized")
	return g, nil
}

// provideSkills builds the shared generator, registers every skill,
// and picks out the ones the API needs direct handles to.
func provideSkills(a *App) error {
	cfg := a.Config

	var limiter *rate.Limiter
	if cfg.ProviderRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ProviderRPS), 1)
	}

	timeout := time.Duration(cfg.SkillTimeoutSeconds) * time.Second
	gen, err := skill.NewGenerator(a.Genkit, "googleai/"+cfg.ModelName, limiter, timeout, a.Logger)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	a.AskSkill = skill.NewContextSelection(gen, a.Searcher)
	a.ValidateSkill = skill.NewValidate(gen)
	a.SummarizeSkill = skill.NewExamSummary(gen)

	registry := skill.NewRegistry()
	for _, s := range []skill.Skill{
		skill.NewSimplify(gen),
		skill.NewHardwareMapping(gen),
		skill.NewEnrichment(gen),
		skill.NewRealWorldExample(gen),
		a.SummarizeSkill,
		skill.NewTranslate(gen),
		skill.NewQuizGeneration(gen),
		a.AskSkill,
		a.ValidateSkill,
	} {
		if err := registry.Register(s); err != nil {
			return fmt.Errorf("registering skill: %w", err)
		}
	}
	a.Registry = registry

	a.Logger.Info("skills registered", "count", len(registry.Names()))
	return nil
}

func provideOrchestrators(a *App) error {
	var err error

	a.Personalizer, err = orchestrator.NewPersonalizer(a.Registry, a.Logger)
	if err != nil {
		return fmt.Errorf("creating personalizer: %w", err)
	}

	translate, ok := a.Registry.Get(skill.NameTranslation)
	if !ok {
		return errors.New("translation skill not registered")
	}
	var translationCache orchestrator.TranslationCache
	if a.translationCache != nil {
		translationCache = a.translationCache
	}
	a.Translator, err = orchestrator.NewTranslator(translate, translationCache, a.Catalog, a.Logger)
	if err != nil {
		return fmt.Errorf("creating translator: %w", err)
	}

	quiz, ok := a.Registry.Get(skill.NameQuizGeneration)
	if !ok {
		return errors.New("quiz skill not registered")
	}
	a.QuizGenerator, err = orchestrator.NewQuizGenerator(quiz, a.DBPool, a.Logger)
	if err != nil {
		return fmt.Errorf("creating quiz generator: %w", err)
	}
	return nil
}
