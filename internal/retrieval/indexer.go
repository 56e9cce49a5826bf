package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/robolearn/robolearn/internal/content"
	"github.com/robolearn/robolearn/internal/log"
)

// maxPassageRunes bounds one indexed passage. Paragraphs are packed
// into passages up to this size; a single oversized paragraph becomes
// its own passage rather than being split mid-sentence.
const maxPassageRunes = 1200

// Execer is the write-side subset of pgx operations the indexer needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Indexer embeds chapter passages and upserts them into the index.
type Indexer struct {
	db       Execer
	embedder ai.Embedder
	logger   log.Logger
}

// NewIndexer creates an indexer.
func NewIndexer(db Execer, embedder ai.Embedder, logger log.Logger) (*Indexer, error) {
	if db == nil {
		return nil, fmt.Errorf("execer is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Indexer{db: db, embedder: embedder, logger: logger}, nil
}

// IndexChapter splits the chapter body into passages, embeds each, and
// upserts them. Re-indexing a chapter replaces its previous passages.
func (ix *Indexer) IndexChapter(ctx context.Context, ch content.Chapter) (int, error) {
	passages := splitPassages(ch.Body)
	if len(passages) == 0 {
		return 0, fmt.Errorf("chapter %s has no indexable content", ch.ID)
	}

	if _, err := ix.db.Exec(ctx, `DELETE FROM passages WHERE chapter_id = $1`, ch.ID); err != nil {
		return 0, fmt.Errorf("clearing passages for %s: %w", ch.ID, err)
	}

	for i, passage := range passages {
		embedding, err := ix.embed(ctx, passage)
		if err != nil {
			return i, fmt.Errorf("embedding passage %d of %s: %w", i, ch.ID, err)
		}

		id := fmt.Sprintf("%s:%04d", ch.ID, i)
		sourceRef := fmt.Sprintf("%s §%d", ch.Title, i+1)
		_, err = ix.db.Exec(ctx, `
			INSERT INTO passages (id, chapter_id, content, source_ref, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				source_ref = EXCLUDED.source_ref,
				embedding = EXCLUDED.embedding`,
			id, ch.ID, passage, sourceRef, pgvector.NewVector(embedding))
		if err != nil {
			return i, fmt.Errorf("storing passage %s: %w", id, err)
		}
	}

	ix.logger.Info("chapter indexed", "chapter", ch.ID, "passages", len(passages))
	return len(passages), nil
}

func (ix *Indexer) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := ix.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("embedder returned no embeddings")
	}
	return clampDim(resp.Embeddings[0].Embedding)
}

// splitPassages packs markdown paragraphs into passages of at most
// maxPassageRunes. Fenced code blocks stay attached to the paragraph
// stream so examples are retrievable next to their prose.
func splitPassages(body string) []string {
	paragraphs := strings.Split(body, "\n\n")

	var (
		passages []string
		current  strings.Builder
	)
	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			passages = append(passages, text)
		}
		current.Reset()
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(para) > maxPassageRunes {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return passages
}
