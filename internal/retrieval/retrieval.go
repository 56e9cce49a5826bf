// Package retrieval provides semantic search over indexed chapter
// passages using pgvector cosine distance.
//
// Every Search call is one embedding request plus one SQL query; there
// is no caching, and a fresh call always re-queries the index.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/robolearn/robolearn/internal/log"
)

// EmbeddingDim is the stored vector width. Embeddings longer than this
// are truncated before storage and search so both sides always match
// the passages.embedding column.
const EmbeddingDim = 768

const defaultSearchTimeout = 15 * time.Second

// Match is one retrieved passage with its similarity score in [0, 1].
type Match struct {
	Passage   string  `json:"passage"`
	SourceRef string  `json:"source_ref"`
	Score     float64 `json:"score"`
}

// Querier is the subset of pgx operations the searcher needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type searchOptions struct {
	topK    int
	chapter string
}

// Option configures a single Search call.
type Option func(*searchOptions)

// WithTopK overrides the number of passages returned.
func WithTopK(k int) Option {
	return func(o *searchOptions) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithChapter scopes the search to a single chapter.
func WithChapter(chapterID string) Option {
	return func(o *searchOptions) {
		o.chapter = chapterID
	}
}

// Searcher embeds queries and runs similarity search against the
// passages table.
type Searcher struct {
	db       Querier
	embedder ai.Embedder
	topK     int
	timeout  time.Duration
	logger   log.Logger
}

// NewSearcher creates a searcher. defaultTopK bounds result size when a
// call does not override it.
func NewSearcher(db Querier, embedder ai.Embedder, defaultTopK int, logger log.Logger) (*Searcher, error) {
	if db == nil {
		return nil, fmt.Errorf("querier is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Searcher{
		db:       db,
		embedder: embedder,
		topK:     defaultTopK,
		timeout:  defaultSearchTimeout,
		logger:   logger,
	}, nil
}

// Search returns the passages most similar to query, best first.
func (s *Searcher) Search(ctx context.Context, query string, opts ...Option) ([]Match, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	options := searchOptions{topK: s.topK}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	embedding, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	vec := pgvector.NewVector(embedding)
	var rows pgx.Rows
	if options.chapter != "" {
		rows, err = s.db.Query(ctx, `
			SELECT content, source_ref, 1 - (embedding <=> $1) AS score
			FROM passages
			WHERE chapter_id = $2
			ORDER BY embedding <=> $1
			LIMIT $3`, vec, options.chapter, options.topK)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT content, source_ref, 1 - (embedding <=> $1) AS score
			FROM passages
			ORDER BY embedding <=> $1
			LIMIT $2`, vec, options.topK)
	}
	if err != nil {
		return nil, fmt.Errorf("searching passages: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Passage, &m.SourceRef, &m.Score); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading passages: %w", err)
	}

	s.logger.Debug("passage search", "query_len", len(query), "chapter", options.chapter, "matches", len(matches))
	return matches, nil
}

func (s *Searcher) embedQuery(ctx context.Context, query string) ([]float32, error) {
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(query, nil)},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("embedder returned no embeddings")
	}
	return clampDim(resp.Embeddings[0].Embedding)
}

// clampDim truncates an embedding to EmbeddingDim. Shorter vectors are
// an error; the column width is fixed.
func clampDim(v []float32) ([]float32, error) {
	if len(v) < EmbeddingDim {
		return nil, fmt.Errorf("embedding has %d dims, need %d", len(v), EmbeddingDim)
	}
	return v[:EmbeddingDim], nil
}
