// Package api exposes the orchestration layer over a JSON HTTP API.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/robolearn/robolearn/internal/content"
	"github.com/robolearn/robolearn/internal/orchestrator"
	"github.com/robolearn/robolearn/internal/skill"
)

// ServerConfig contains everything the API server needs. Optional
// fields degrade the corresponding endpoints rather than failing setup.
type ServerConfig struct {
	Logger         *slog.Logger
	Personalizer   *orchestrator.Personalizer  // Required
	Translator     *orchestrator.Translator    // Required
	QuizGenerator  *orchestrator.QuizGenerator // Required
	AskSkill       skill.Skill                 // Required: context selection
	ValidateSkill  skill.Skill                 // Required
	SummarizeSkill skill.Skill                 // Required: exam summary
	ProfileStore   ProfileStore                // Optional: nil disables profile endpoints
	Catalog        *content.Catalog            // Optional: nil disables span checks and chapter lookups
	Pool           *pgxpool.Pool               // Optional: nil degrades /ready to liveness
	CORSOrigins    []string
	TrustProxy     bool
	RateBurst      int // 0 = default 60
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates the API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Personalizer == nil || cfg.Translator == nil || cfg.QuizGenerator == nil {
		return nil, errors.New("personalizer, translator, and quiz generator are required")
	}
	if cfg.AskSkill == nil || cfg.ValidateSkill == nil || cfg.SummarizeSkill == nil {
		return nil, errors.New("ask, validate, and summarize skills are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &contentHandler{
		logger:       logger,
		personalizer: cfg.Personalizer,
		translator:   cfg.Translator,
		quizzes:      cfg.QuizGenerator,
		ask:          cfg.AskSkill,
		validate:     cfg.ValidateSkill,
		summary:      cfg.SummarizeSkill,
		catalog:      cfg.Catalog,
		profiles:     cfg.ProfileStore,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/personalize", ch.personalize)
	mux.HandleFunc("POST /api/v1/translate", ch.translate)
	mux.HandleFunc("POST /api/v1/quiz", ch.quiz)
	mux.HandleFunc("POST /api/v1/ask", ch.askQuestion)
	mux.HandleFunc("POST /api/v1/validate", ch.validateContent)
	mux.HandleFunc("POST /api/v1/summarize", ch.summarize)

	if cfg.ProfileStore != nil {
		ph := &profileHandler{store: cfg.ProfileStore, logger: logger}
		mux.HandleFunc("GET /api/v1/profiles/{user_id}", ph.get)
		mux.HandleFunc("PUT /api/v1/profiles/{user_id}", ph.put)
		mux.HandleFunc("DELETE /api/v1/profiles/{user_id}", ph.delete)
	}

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first:
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID precedes Logging so request_id is available in log
	// attributes; CORS precedes RateLimit so preflight OPTIONS gets
	// proper CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
