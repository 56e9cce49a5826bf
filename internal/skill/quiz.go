package skill

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

const quizSystem = `You write multiple-choice quiz questions from robotics textbook
content. Every question must be answerable from the supplied content
alone. Each question has exactly four options labeled A, B, C, D with
exactly one correct answer. Distractors must be plausible mistakes a
learner could make; never use "all of the above" or "none of the above".
Follow the requested per-question type and difficulty exactly.`

// Question types and difficulties.
const (
	QuestionTypeConcept         = "concept"
	QuestionTypeCode            = "code"
	QuestionTypeApplication     = "application"
	QuestionTypeTroubleshooting = "troubleshooting"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// difficultyOrder fixes the allocation and tie-break order.
var difficultyOrder = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

var validQuestionTypes = map[string]bool{
	QuestionTypeConcept:         true,
	QuestionTypeCode:            true,
	QuestionTypeApplication:     true,
	QuestionTypeTroubleshooting: true,
}

// QuizOption is one labeled answer choice.
type QuizOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuizQuestion is one generated multiple-choice question.
type QuizQuestion struct {
	ID            string       `json:"id"`
	Type          string       `json:"type"`
	Difficulty    string       `json:"difficulty"`
	Question      string       `json:"question"`
	CodeSnippet   string       `json:"code_snippet,omitempty"`
	Options       []QuizOption `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	SourceSection string       `json:"source_section"`
}

type quizOutput struct {
	Questions []QuizQuestion `json:"questions"`
}

// QuizGeneration produces validated multiple-choice questions honoring
// a requested difficulty distribution and type mix.
type QuizGeneration struct {
	gen *Generator
}

// NewQuizGeneration creates the quiz skill.
func NewQuizGeneration(gen *Generator) *QuizGeneration {
	return &QuizGeneration{gen: gen}
}

func (q *QuizGeneration) Name() string { return NameQuizGeneration }

func (q *QuizGeneration) Invoke(ctx context.Context, req Request) Result {
	if emptyContent(req.Content) {
		return Fail("content is empty")
	}

	n := req.IntParam("num_questions", 5)
	if n < 1 || n > 20 {
		return Fail("num_questions must be in [1, 20], got %d", n)
	}

	mix := req.FloatMapParam("difficulty_mix")
	if mix == nil {
		mix = map[string]float64{DifficultyEasy: 0.3, DifficultyMedium: 0.5, DifficultyHard: 0.2}
	}
	counts, err := allocateDifficulty(n, mix)
	if err != nil {
		return Fail("invalid difficulty_mix: %v", err)
	}

	types := requestedTypes(req)
	if types == nil {
		return Fail("type_mix contains unknown question types")
	}

	prompt := buildQuizPrompt(req.Content, n, counts, types)
	out, err := GenerateObject[quizOutput](ctx, q.gen, quizSystem, prompt)
	if err != nil {
		return Fail("quiz generation failed: %v", err)
	}

	questions, err := normalizeQuestions(out.Questions, n, counts)
	if err != nil {
		return Fail("model returned invalid quiz: %v", err)
	}

	return Result{
		Success: true,
		Artifacts: map[string]any{
			"questions":       questions,
			"difficulty_plan": counts,
			"question_count":  len(questions),
			"source_chapter":  req.ChapterID,
		},
	}
}

// allocateDifficulty turns a proportion map summing to 1.0 into integer
// per-difficulty counts summing to n, by largest remainder. Ties break
// in fixed easy/medium/hard order so the allocation is deterministic.
func allocateDifficulty(n int, mix map[string]float64) (map[string]int, error) {
	var sum float64
	for name, share := range mix {
		found := false
		for _, d := range difficultyOrder {
			if d == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown difficulty %q", name)
		}
		if share < 0 {
			return nil, fmt.Errorf("negative share for %q", name)
		}
		sum += share
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return nil, fmt.Errorf("shares sum to %.4f, want 1.0", sum)
	}

	counts := make(map[string]int, len(difficultyOrder))
	type remainder struct {
		name string
		frac float64
		pos  int
	}
	var (
		allocated  int
		remainders []remainder
	)
	for i, name := range difficultyOrder {
		exact := mix[name] * float64(n)
		whole := int(math.Floor(exact))
		counts[name] = whole
		allocated += whole
		remainders = append(remainders, remainder{name, exact - float64(whole), i})
	}

	sort.SliceStable(remainders, func(i, j int) bool {
		if remainders[i].frac != remainders[j].frac {
			return remainders[i].frac > remainders[j].frac
		}
		return remainders[i].pos < remainders[j].pos
	})
	for i := 0; allocated < n; i++ {
		counts[remainders[i%len(remainders)].name]++
		allocated++
	}
	return counts, nil
}

// requestedTypes resolves the type mix, defaulting to concept-only.
// Returns nil when an unknown type is named.
func requestedTypes(req Request) []string {
	mix := req.FloatMapParam("type_mix")
	if mix == nil {
		return []string{QuestionTypeConcept}
	}
	types := make([]string, 0, len(mix))
	for name, share := range mix {
		if !validQuestionTypes[name] {
			return nil
		}
		if share > 0 {
			types = append(types, name)
		}
	}
	sort.Strings(types)
	if len(types) == 0 {
		return []string{QuestionTypeConcept}
	}
	return types
}

func buildQuizPrompt(content string, n int, counts map[string]int, types []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write exactly %d questions from the content below.\n", n)
	b.WriteString("Difficulty plan: ")
	for i, d := range difficultyOrder {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d %s", counts[d], d)
	}
	fmt.Fprintf(&b, ".\nAllowed question types: %s.\n\nContent:\n%s", strings.Join(types, ", "), content)
	return b.String()
}

// normalizeQuestions enforces the structural contract: exact count,
// ids q1..qN, four distinct options from {A,B,C,D}, correct answer in
// the option set, known type and difficulty, and per-difficulty counts
// matching the allocation plan.
func normalizeQuestions(questions []QuizQuestion, want int, plan map[string]int) ([]QuizQuestion, error) {
	if len(questions) != want {
		return nil, fmt.Errorf("got %d questions, want %d", len(questions), want)
	}

	tally := make(map[string]int, len(difficultyOrder))

	for i := range questions {
		q := &questions[i]
		q.ID = fmt.Sprintf("q%d", i+1)

		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("question %s is empty", q.ID)
		}
		if !validQuestionTypes[q.Type] {
			return nil, fmt.Errorf("question %s has unknown type %q", q.ID, q.Type)
		}
		switch q.Difficulty {
		case DifficultyEasy, DifficultyMedium, DifficultyHard:
		default:
			return nil, fmt.Errorf("question %s has unknown difficulty %q", q.ID, q.Difficulty)
		}
		tally[q.Difficulty]++

		if len(q.Options) != 4 {
			return nil, fmt.Errorf("question %s has %d options, want 4", q.ID, len(q.Options))
		}
		seen := make(map[string]bool, 4)
		for _, opt := range q.Options {
			switch opt.ID {
			case "A", "B", "C", "D":
			default:
				return nil, fmt.Errorf("question %s has invalid option id %q", q.ID, opt.ID)
			}
			if seen[opt.ID] {
				return nil, fmt.Errorf("question %s has duplicate option id %q", q.ID, opt.ID)
			}
			seen[opt.ID] = true
		}
		if !seen[q.CorrectAnswer] {
			return nil, fmt.Errorf("question %s correct answer %q is not an option", q.ID, q.CorrectAnswer)
		}
	}

	for _, d := range difficultyOrder {
		if tally[d] != plan[d] {
			return nil, fmt.Errorf("got %d %s questions, want %d", tally[d], d, plan[d])
		}
	}
	return questions, nil
}
