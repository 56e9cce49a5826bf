package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/robolearn/robolearn/internal/log"
	"github.com/robolearn/robolearn/internal/skill"
)

// QuizMetadata describes how a quiz document was produced.
type QuizMetadata struct {
	GeneratedAt   time.Time `json:"generated_at"`
	SourceChapter string    `json:"source_chapter"`
	QuestionCount int       `json:"question_count"`
}

// QuizDocument is the complete generated quiz.
type QuizDocument struct {
	ChapterID   string               `json:"chapter_id"`
	QuizVersion string               `json:"quiz_version"`
	Questions   []skill.QuizQuestion `json:"questions"`
	Metadata    QuizMetadata         `json:"metadata"`
}

// Execer is the write-side database seam for quiz persistence.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// QuizGenerator produces quiz documents from chapter content. Unlike
// content transformations there is nothing to degrade to: a failed
// generation is an error.
type QuizGenerator struct {
	quiz   skill.Skill
	db     Execer
	logger log.Logger
}

// NewQuizGenerator creates a quiz generator. db may be nil to skip
// persistence.
func NewQuizGenerator(quiz skill.Skill, db Execer, logger log.Logger) (*QuizGenerator, error) {
	if quiz == nil {
		return nil, fmt.Errorf("quiz skill is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &QuizGenerator{quiz: quiz, db: db, logger: logger}, nil
}

// Generate builds a quiz from contentText and persists the document
// when a database is attached.
func (g *QuizGenerator) Generate(ctx context.Context, chapterID, contentText string, params map[string]any) (*QuizDocument, error) {
	res := g.quiz.Invoke(ctx, skill.Request{
		Content:   contentText,
		ChapterID: chapterID,
		Params:    params,
	})
	if !res.Success {
		return nil, fmt.Errorf("generating quiz: %s", res.Err)
	}

	questions, ok := res.Artifacts["questions"].([]skill.QuizQuestion)
	if !ok || len(questions) == 0 {
		return nil, fmt.Errorf("quiz skill returned no questions")
	}

	now := time.Now().UTC()
	doc := &QuizDocument{
		ChapterID:   chapterID,
		QuizVersion: now.Format("20060102150405"),
		Questions:   questions,
		Metadata: QuizMetadata{
			GeneratedAt:   now,
			SourceChapter: chapterID,
			QuestionCount: len(questions),
		},
	}

	if g.db != nil && chapterID != "" {
		if err := g.persist(ctx, doc); err != nil {
			// Persistence is bookkeeping; the generated quiz is still good.
			g.logger.Warn("storing quiz failed", "chapter", chapterID, "error", err)
		}
	}

	g.logger.Info("quiz generated", "chapter", chapterID, "questions", len(questions))
	return doc, nil
}

func (g *QuizGenerator) persist(ctx context.Context, doc *QuizDocument) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding quiz document: %w", err)
	}

	_, err = g.db.Exec(ctx, `
		INSERT INTO quizzes (id, chapter_id, version, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chapter_id, version) DO UPDATE SET document = EXCLUDED.document`,
		uuid.NewString(), doc.ChapterID, doc.QuizVersion, encoded)
	if err != nil {
		return fmt.Errorf("inserting quiz: %w", err)
	}
	return nil
}
