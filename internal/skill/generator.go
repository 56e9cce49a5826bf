package skill

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/robolearn/robolearn/internal/log"
)

const defaultGenerateTimeout = 60 * time.Second

// Generator is the shared provider gateway for all skills. It applies
// the outbound rate limit and a per-call timeout, and makes exactly one
// attempt per call — retry policy lives with the caller.
type Generator struct {
	g       *genkit.Genkit
	model   string
	limiter *rate.Limiter
	timeout time.Duration
	logger  log.Logger
}

// NewGenerator creates a generator for the given model. limiter may be
// nil to disable outbound rate limiting; a zero timeout selects the
// default.
func NewGenerator(g *genkit.Genkit, model string, limiter *rate.Limiter, timeout time.Duration, logger log.Logger) (*Generator, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Generator{
		g:       g,
		model:   model,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (gen *Generator) generate(ctx context.Context, system, prompt string, extra ...ai.GenerateOption) (*ai.ModelResponse, error) {
	if gen.limiter != nil {
		if err := gen.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, gen.timeout)
	defer cancel()

	opts := []ai.GenerateOption{
		ai.WithModelName(gen.model),
		ai.WithSystem(system),
		ai.WithPrompt(prompt),
	}
	opts = append(opts, extra...)

	start := time.Now()
	resp, err := genkit.Generate(ctx, gen.g, opts...)
	if err != nil {
		return nil, err
	}
	gen.logger.Debug("generation completed", "model", gen.model, "duration", time.Since(start))
	return resp, nil
}

// GenerateText makes one model call and returns the raw text response.
func (gen *Generator) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	resp, err := gen.generate(ctx, system, prompt)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// GenerateObject makes one model call constrained to T's JSON schema
// and decodes the structured output.
func GenerateObject[T any](ctx context.Context, gen *Generator, system, prompt string) (T, error) {
	var out T
	resp, err := gen.generate(ctx, system, prompt, ai.WithOutputType(out))
	if err != nil {
		return out, err
	}
	if err := resp.Output(&out); err != nil {
		return out, fmt.Errorf("decoding structured output: %w", err)
	}
	return out, nil
}
