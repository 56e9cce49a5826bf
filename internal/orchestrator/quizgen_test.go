package orchestrator

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/robolearn/robolearn/internal/skill"
)

// quizStub returns canned questions the way the quiz skill does.
type quizStub struct {
	fail      bool
	questions []skill.QuizQuestion
}

func (q *quizStub) Name() string { return skill.NameQuizGeneration }

func (q *quizStub) Invoke(context.Context, skill.Request) skill.Result {
	if q.fail {
		return skill.Fail("provider down")
	}
	return skill.Result{
		Success:   true,
		Artifacts: map[string]any{"questions": q.questions},
	}
}

type execRecorder struct {
	calls int
	fail  error
}

func (e *execRecorder) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	e.calls++
	return pgconn.CommandTag{}, e.fail
}

func sampleQuestions(n int) []skill.QuizQuestion {
	questions := make([]skill.QuizQuestion, n)
	for i := range questions {
		questions[i] = skill.QuizQuestion{
			ID:         "q1",
			Type:       skill.QuestionTypeConcept,
			Difficulty: skill.DifficultyEasy,
			Question:   "What is a node?",
			Options: []skill.QuizOption{
				{ID: "A", Text: "a"}, {ID: "B", Text: "b"}, {ID: "C", Text: "c"}, {ID: "D", Text: "d"},
			},
			CorrectAnswer: "A",
		}
	}
	return questions
}

func TestQuizGenerate(t *testing.T) {
	db := &execRecorder{}
	g, err := NewQuizGenerator(&quizStub{questions: sampleQuestions(5)}, db, nil)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := g.Generate(context.Background(), "ch01", "chapter text", map[string]any{"num_questions": 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if doc.ChapterID != "ch01" || len(doc.Questions) != 5 {
		t.Errorf("document = %+v", doc)
	}
	if doc.Metadata.QuestionCount != 5 || doc.Metadata.SourceChapter != "ch01" {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if doc.QuizVersion == "" || doc.Metadata.GeneratedAt.IsZero() {
		t.Error("version and timestamp must be set")
	}
	if db.calls != 1 {
		t.Errorf("persist calls = %d, want 1", db.calls)
	}
}

func TestQuizGenerateFailure(t *testing.T) {
	g, err := NewQuizGenerator(&quizStub{fail: true}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.Generate(context.Background(), "ch01", "text", nil); err == nil {
		t.Error("skill failure must surface as an error")
	}
}

func TestQuizGenerateSurvivesPersistFailure(t *testing.T) {
	db := &execRecorder{fail: context.DeadlineExceeded}
	g, err := NewQuizGenerator(&quizStub{questions: sampleQuestions(2)}, db, nil)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := g.Generate(context.Background(), "ch01", "text", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(doc.Questions) != 2 {
		t.Errorf("questions = %d", len(doc.Questions))
	}
}
