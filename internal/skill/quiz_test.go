package skill

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/robolearn/robolearn/internal/testutil"
)

func TestAllocateDifficulty(t *testing.T) {
	tests := []struct {
		name string
		n    int
		mix  map[string]float64
		want map[string]int
	}{
		{
			"even thirds round deterministically",
			4,
			map[string]float64{"easy": 1.0 / 3, "medium": 1.0 / 3, "hard": 1.0 / 3},
			map[string]int{"easy": 2, "medium": 1, "hard": 1},
		},
		{
			"scenario mix",
			5,
			map[string]float64{"easy": 0.2, "medium": 0.5, "hard": 0.3},
			map[string]int{"easy": 1, "medium": 3, "hard": 1},
		},
		{
			"single difficulty",
			3,
			map[string]float64{"hard": 1.0},
			map[string]int{"easy": 0, "medium": 0, "hard": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := allocateDifficulty(tt.n, tt.mix)
			if err != nil {
				t.Fatalf("allocateDifficulty: %v", err)
			}
			total := 0
			for _, d := range difficultyOrder {
				if got[d] != tt.want[d] {
					t.Errorf("%s = %d, want %d", d, got[d], tt.want[d])
				}
				total += got[d]
			}
			if total != tt.n {
				t.Errorf("total = %d, want %d", total, tt.n)
			}
		})
	}
}

func TestAllocateDifficultyRejectsBadMix(t *testing.T) {
	tests := []struct {
		name string
		mix  map[string]float64
	}{
		{"does not sum to one", map[string]float64{"easy": 0.5, "medium": 0.3}},
		{"unknown difficulty", map[string]float64{"easy": 0.5, "impossible": 0.5}},
		{"negative share", map[string]float64{"easy": 1.5, "medium": -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := allocateDifficulty(5, tt.mix); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// mockQuizJSON builds a syntactically valid quiz response with one
// question per listed difficulty.
func mockQuizJSON(difficulties ...string) string {
	var b strings.Builder
	b.WriteString(`{"questions":[`)
	for i, d := range difficulties {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":"x%d","type":"concept","difficulty":"%s",
			"question":"What is a node?",
			"options":[{"id":"A","text":"a"},{"id":"B","text":"b"},{"id":"C","text":"c"},{"id":"D","text":"d"}],
			"correct_answer":"B","explanation":"because","source_section":"ch01 §1"}`, i, d)
	}
	b.WriteString("]}")
	return b.String()
}

func TestQuizGeneration(t *testing.T) {
	mock := testutil.NewMockLLM(mockQuizJSON("easy", "medium", "medium", "medium", "hard"))
	gen := newTestGenerator(t, mock)

	res := NewQuizGeneration(gen).Invoke(context.Background(), Request{
		Content:   "Nodes are the basic unit of computation in ROS 2.",
		ChapterID: "ch01",
		Params: map[string]any{
			"num_questions":  float64(5),
			"difficulty_mix": map[string]any{"easy": 0.2, "medium": 0.5, "hard": 0.3},
		},
	})
	if !res.Success {
		t.Fatalf("Invoke failed: %s", res.Err)
	}

	questions := res.Artifacts["questions"].([]QuizQuestion)
	if len(questions) != 5 {
		t.Fatalf("questions = %d, want 5", len(questions))
	}
	for i, q := range questions {
		if want := fmt.Sprintf("q%d", i+1); q.ID != want {
			t.Errorf("question id = %q, want %q", q.ID, want)
		}
		if len(q.Options) != 4 {
			t.Errorf("question %s has %d options", q.ID, len(q.Options))
		}
		found := false
		for _, opt := range q.Options {
			if opt.ID == q.CorrectAnswer {
				found = true
			}
		}
		if !found {
			t.Errorf("question %s correct answer %q not among options", q.ID, q.CorrectAnswer)
		}
	}

	// The prompt must carry the difficulty plan.
	calls := mock.Calls()
	if !strings.Contains(calls[0].UserMessage, "1 easy, 3 medium, 1 hard") {
		t.Errorf("difficulty plan missing from prompt:\n%s", calls[0].UserMessage)
	}
}

func TestQuizGenerationRejectsInvalidModelOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"wrong count", mockQuizJSON("easy", "medium", "hard")},
		{"duplicate option ids", `{"questions":[{"id":"q","type":"concept","difficulty":"easy","question":"?","options":[{"id":"A","text":"a"},{"id":"A","text":"b"},{"id":"C","text":"c"},{"id":"D","text":"d"}],"correct_answer":"A","explanation":"e","source_section":"s"}]}`},
		{"correct answer not an option", `{"questions":[{"id":"q","type":"concept","difficulty":"easy","question":"?","options":[{"id":"A","text":"a"},{"id":"B","text":"b"},{"id":"C","text":"c"},{"id":"D","text":"d"}],"correct_answer":"E","explanation":"e","source_section":"s"}]}`},
		{"unknown difficulty", `{"questions":[{"id":"q","type":"concept","difficulty":"extreme","question":"?","options":[{"id":"A","text":"a"},{"id":"B","text":"b"},{"id":"C","text":"c"},{"id":"D","text":"d"}],"correct_answer":"A","explanation":"e","source_section":"s"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockLLM(tt.response)
			gen := newTestGenerator(t, mock)

			params := map[string]any{"num_questions": 5}
			if tt.name != "wrong count" {
				params["num_questions"] = 1
			}
			res := NewQuizGeneration(gen).Invoke(context.Background(), Request{
				Content: "content",
				Params:  params,
			})
			if res.Success {
				t.Error("invalid model output should fail")
			}
		})
	}
}

func TestQuizGenerationHoldsModelToDifficultyPlan(t *testing.T) {
	// Five easy questions against a plan of 1 easy, 3 medium, 1 hard.
	mock := testutil.NewMockLLM(mockQuizJSON("easy", "easy", "easy", "easy", "easy"))
	gen := newTestGenerator(t, mock)

	res := NewQuizGeneration(gen).Invoke(context.Background(), Request{
		Content: "Nodes are the basic unit of computation in ROS 2.",
		Params: map[string]any{
			"num_questions":  float64(5),
			"difficulty_mix": map[string]any{"easy": 0.2, "medium": 0.5, "hard": 0.3},
		},
	})
	if res.Success {
		t.Fatal("off-plan difficulty counts must fail")
	}
	if !strings.Contains(res.Err, "easy") {
		t.Errorf("err = %q, want a per-difficulty count mismatch", res.Err)
	}
}

func TestQuizGenerationRejectsBadRequest(t *testing.T) {
	mock := testutil.NewMockLLM(mockQuizJSON("medium"))
	gen := newTestGenerator(t, mock)
	q := NewQuizGeneration(gen)

	tests := []struct {
		name   string
		params map[string]any
	}{
		{"zero questions", map[string]any{"num_questions": 0}},
		{"too many questions", map[string]any{"num_questions": 50}},
		{"mix not summing to one", map[string]any{"difficulty_mix": map[string]any{"easy": 0.9}}},
		{"unknown type", map[string]any{"type_mix": map[string]any{"riddle": 1.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := q.Invoke(context.Background(), Request{Content: "c", Params: tt.params})
			if res.Success {
				t.Error("expected failure")
			}
		})
	}
	if n := mock.CallCount(); n != 0 {
		t.Errorf("bad requests triggered %d model calls, want 0", n)
	}
}
