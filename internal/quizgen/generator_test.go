package quizgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/adaptiq/internal/analysis"
	"github.com/abhisek/adaptiq/internal/attempt"
	"github.com/abhisek/adaptiq/internal/llm"
)

const validQuiz = `[
	{"id": 5, "type": "multiple_choice", "prompt": "Which fraction equals 1/2?", "options": ["2/4", "1/3", "3/4"], "correct_answer": 0, "explanation": "2/4 simplifies to 1/2.", "difficulty": "easy", "tags": ["fractions"], "points": 10},
	{"id": 9, "type": "true_false", "prompt": "3/4 is greater than 2/3.", "correct_answer": "true", "explanation": "9/12 > 8/12.", "difficulty": "medium", "tags": ["fractions", "ordering"]}
]`

func testRequest() Request {
	return Request{
		StudentID:     "s1",
		CourseID:      "c1",
		Topic:         "Fractions",
		QuestionCount: 5,
		QuestionTypes: []QuestionType{TypeMultipleChoice, TypeTrueFalse},
	}
}

func testProfile() *analysis.Profile {
	return &analysis.Profile{
		StudentID: "s1",
		CourseID:  "c1",
		Summary: analysis.Summary{
			TotalAttempts:  10,
			OverallAverage: 55,
			Trend:          analysis.TrendDeclining,
		},
		Weaknesses: []analysis.Weakness{
			{Concept: "equivalence", Accuracy: 0.3, OccurrenceCount: 10, PriorityScore: 7},
			{Concept: "ordering", Accuracy: 0.5, OccurrenceCount: 4, PriorityScore: 2},
		},
		Strengths: []analysis.Strength{
			{Concept: "addition", Accuracy: 0.95, MasteryLevel: analysis.MasteryHigh},
		},
	}
}

func testInput() Input {
	return Input{
		Request: testRequest(),
		Course:  attempt.Course{ID: "c1", Title: "Grade 5 Math", Description: "Numbers and operations"},
		Profile: testProfile(),
	}
}

func lastState(info Info) State {
	if len(info.Trace) == 0 {
		return ""
	}
	return info.Trace[len(info.Trace)-1]
}

func hasState(info Info, s State) bool {
	for _, st := range info.Trace {
		if st == s {
			return true
		}
	}
	return false
}

func TestGenerate_PrimarySuccess(t *testing.T) {
	primary := llm.NewNamedMockProvider("primary-model", llm.MockResponse{Text: validQuiz})
	secondary := llm.NewNamedMockProvider("secondary-model")
	gen := New(primary, secondary, DefaultConfig(), nil)

	res, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := res.Quiz
	if len(q.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(q.Questions))
	}
	if q.Questions[0].ID != 1 || q.Questions[1].ID != 2 {
		t.Errorf("ids not renumbered: %d, %d", q.Questions[0].ID, q.Questions[1].ID)
	}
	if q.Source != SourceAI || res.Info.Tier != TierPrimary || res.Info.Model != "primary-model" {
		t.Errorf("unexpected provenance: source=%s tier=%s model=%s", q.Source, res.Info.Tier, res.Info.Model)
	}
	if secondary.CallCount() != 0 {
		t.Errorf("secondary should not be called")
	}
	if q.Title != "Personalized Quiz: Fractions" {
		t.Errorf("title = %q", q.Title)
	}
	// avg 55 -> 50, declining -> max(45, 60) = 60
	if q.PassingScore != 60 {
		t.Errorf("passing score = %v, want 60", q.PassingScore)
	}
	if q.TimeLimitMinutes != 15 {
		t.Errorf("time limit = %d, want 15", q.TimeLimitMinutes)
	}
	if q.MaxAttempts != 3 || !q.ShuffleQuestions || !q.ShowExplanations {
		t.Errorf("unexpected quiz settings: %+v", q)
	}
	if q.ID == "" {
		t.Error("quiz id is empty")
	}
	if strings.Join(q.TargetConcepts, ",") != "equivalence,ordering" {
		t.Errorf("target concepts = %v", q.TargetConcepts)
	}
	if res.Info.WeaknessesTargeted != 2 || res.Info.StrengthsReinforced != 1 {
		t.Errorf("info counts = %d/%d", res.Info.WeaknessesTargeted, res.Info.StrengthsReinforced)
	}
	if res.Info.Trend != analysis.TrendDeclining {
		t.Errorf("trend = %s", res.Info.Trend)
	}

	want := []State{StateReady, StateBuildingContext, StateCallingPrimary, StateParseOK, StateValidating, StateValid, StateDone}
	if fmt.Sprint(res.Info.Trace) != fmt.Sprint(want) {
		t.Errorf("trace = %v, want %v", res.Info.Trace, want)
	}
}

func TestGenerate_PromptContent(t *testing.T) {
	primary := llm.NewMockProvider(llm.MockResponse{Text: validQuiz})
	gen := New(primary, nil, DefaultConfig(), nil)

	if _, err := gen.Generate(context.Background(), testInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", primary.CallCount())
	}
	req := primary.Calls[0]
	if req.System != systemPrompt {
		t.Error("system prompt not set")
	}
	if req.MaxTokens != 2048 || req.Temperature != 0.7 {
		t.Errorf("unexpected limits: %d / %v", req.MaxTokens, req.Temperature)
	}
	msg := req.Messages[0].Content
	for _, want := range []string{
		"Course: Grade 5 Math",
		"Topic: Fractions",
		"Difficulty: medium",
		"equivalence (accuracy 30%",
		"addition (accuracy 95%)",
		"Generate exactly 5 questions.",
		"About 4 questions should target the weak concepts and about 1 should reinforce",
		"multiple_choice, true_false",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
}

func TestGenerate_SecondaryAfterPrimaryError(t *testing.T) {
	primary := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}})
	secondary := llm.NewNamedMockProvider("backup", llm.MockResponse{Text: validQuiz})
	gen := New(primary, secondary, DefaultConfig(), nil)

	res, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Info.Tier != TierSecondary || res.Info.Source != SourceAI || res.Info.Model != "backup" {
		t.Errorf("unexpected provenance: %+v", res.Info)
	}
	if !hasState(res.Info, StateCallingSecondary) {
		t.Errorf("trace missing secondary call: %v", res.Info.Trace)
	}
	if secondary.Calls[0].Messages[0].Content != primary.Calls[0].Messages[0].Content {
		t.Error("secondary should receive the same prompt")
	}
}

func TestGenerate_SecondaryAfterMalformedPrimary(t *testing.T) {
	primary := llm.NewMockProvider(llm.MockResponse{Text: "Sorry, I cannot help with that."})
	secondary := llm.NewMockProvider(llm.MockResponse{Text: validQuiz})
	gen := New(primary, secondary, DefaultConfig(), nil)

	res, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Info.Tier != TierSecondary {
		t.Errorf("tier = %s, want secondary", res.Info.Tier)
	}
}

func TestGenerate_FallbackGuarantee(t *testing.T) {
	allInvalid := `[{"type":"multiple_choice","prompt":"p","options":["only"],"correct_answer":0},{"type":"true_false","prompt":"p","correct_answer":"maybe"}]`
	tests := []struct {
		name      string
		primary   []llm.MockResponse
		secondary []llm.MockResponse
	}{
		{"not json", []llm.MockResponse{{Text: "not json"}}, []llm.MockResponse{{Text: "not json"}}},
		{"empty string", []llm.MockResponse{{Text: ""}}, []llm.MockResponse{{Text: ""}}},
		{"all invalid", []llm.MockResponse{{Text: allInvalid}}, nil},
		{"both down", []llm.MockResponse{{Err: &llm.ErrProviderUnavailable{}}}, []llm.MockResponse{{Err: &llm.ErrRateLimit{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := New(llm.NewMockProvider(tt.primary...), llm.NewMockProvider(tt.secondary...), DefaultConfig(), nil)
			res, err := gen.Generate(context.Background(), testInput())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// min(5, max(1, 2 weaknesses)) = 2
			if n := len(res.Quiz.Questions); n != 2 {
				t.Fatalf("expected 2 template questions, got %d", n)
			}
			if res.Quiz.Source != SourceFallback || res.Info.Tier != TierTemplate {
				t.Errorf("unexpected provenance: %s/%s", res.Quiz.Source, res.Info.Tier)
			}
			if !hasState(res.Info, StateTemplateFallback) || lastState(res.Info) != StateDone {
				t.Errorf("trace = %v", res.Info.Trace)
			}
			if strings.Join(res.Quiz.Questions[0].Tags, ",") != "equivalence,Fractions" {
				t.Errorf("tags = %v", res.Quiz.Questions[0].Tags)
			}
		})
	}
}

func TestGenerate_InvalidSkipsSecondary(t *testing.T) {
	allInvalid := `[{"type":"true_false","prompt":"p","correct_answer":"maybe"}]`
	secondary := llm.NewMockProvider(llm.MockResponse{Text: validQuiz})
	gen := New(llm.NewMockProvider(llm.MockResponse{Text: allInvalid}), secondary, DefaultConfig(), nil)

	res, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secondary.CallCount() != 0 {
		t.Error("secondary should not be called after parse succeeded")
	}
	if !hasState(res.Info, StateInvalid) || res.Info.Discarded != 1 {
		t.Errorf("trace = %v discarded = %d", res.Info.Trace, res.Info.Discarded)
	}
}

func TestGenerate_FallbackWithoutHistory(t *testing.T) {
	in := testInput()
	in.Profile = nil
	gen := New(nil, nil, DefaultConfig(), nil)

	res, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(res.Quiz.Questions); n != 1 {
		t.Fatalf("expected 1 question, got %d", n)
	}
	if strings.Join(res.Quiz.TargetConcepts, ",") != "Fractions" {
		t.Errorf("target concepts = %v", res.Quiz.TargetConcepts)
	}
	if res.Info.Trend != analysis.TrendInsufficientData {
		t.Errorf("trend = %s", res.Info.Trend)
	}
	if res.Info.WeaknessesTargeted != 0 {
		t.Errorf("weaknesses targeted = %d", res.Info.WeaknessesTargeted)
	}
}

func TestGenerate_TruncatesToRequested(t *testing.T) {
	in := testInput()
	in.Request.QuestionCount = 1
	gen := New(llm.NewMockProvider(llm.MockResponse{Text: validQuiz}), nil, DefaultConfig(), nil)

	res, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(res.Quiz.Questions); n != 1 {
		t.Errorf("expected 1 question, got %d", n)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 10 * time.Millisecond
	primary := llm.NewMockProvider(llm.MockResponse{Text: validQuiz, Delay: time.Second})
	secondary := llm.NewMockProvider(llm.MockResponse{Text: validQuiz, Delay: time.Second})
	gen := New(primary, secondary, cfg, nil)

	start := time.Now()
	res, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("generation blocked for %v", elapsed)
	}
	if res.Info.Tier != TierTemplate {
		t.Errorf("tier = %s, want template", res.Info.Tier)
	}
	if secondary.CallCount() != 1 {
		t.Errorf("secondary calls = %d, want 1", secondary.CallCount())
	}
}

func TestGenerate_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	primary := llm.NewMockProvider(llm.MockResponse{Text: validQuiz, Delay: time.Second})
	secondary := llm.NewMockProvider(llm.MockResponse{Text: validQuiz})
	gen := New(primary, secondary, DefaultConfig(), nil)

	res, err := gen.Generate(ctx, testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secondary.CallCount() != 0 {
		t.Error("secondary should be skipped once the caller cancelled")
	}
	if res.Info.Tier != TierTemplate || len(res.Quiz.Questions) == 0 {
		t.Errorf("expected template quiz, got tier %s with %d questions", res.Info.Tier, len(res.Quiz.Questions))
	}
}

func TestGenerate_InvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"missing topic", func(r *Request) { r.Topic = "  " }},
		{"missing student", func(r *Request) { r.StudentID = "" }},
		{"zero count", func(r *Request) { r.QuestionCount = 0 }},
		{"too many", func(r *Request) { r.QuestionCount = MaxQuestionCount + 1 }},
		{"bad difficulty", func(r *Request) { r.Difficulty = "impossible" }},
		{"bad type", func(r *Request) { r.QuestionTypes = []QuestionType{"essay"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput()
			tt.mutate(&in.Request)
			primary := llm.NewMockProvider()
			_, err := New(primary, nil, DefaultConfig(), nil).Generate(context.Background(), in)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if primary.CallCount() != 0 {
				t.Error("provider should not be called for an invalid request")
			}
		})
	}
}

func TestRequest_ValidateDefaults(t *testing.T) {
	r := Request{StudentID: "s", CourseID: "c", Topic: " Algebra ", QuestionCount: 3}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Topic != "Algebra" {
		t.Errorf("topic = %q", r.Topic)
	}
	if r.Difficulty != attempt.DifficultyMedium {
		t.Errorf("difficulty = %s", r.Difficulty)
	}
	if len(r.QuestionTypes) != 1 || r.QuestionTypes[0] != TypeMultipleChoice {
		t.Errorf("types = %v", r.QuestionTypes)
	}
}

// labelRecorder captures the call labels each tier receives.
type labelRecorder struct {
	llm.Provider
	labels []llm.Labels
}

func (l *labelRecorder) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	l.labels = append(l.labels, llm.LabelsFrom(ctx))
	return l.Provider.Generate(ctx, req)
}

func TestGenerate_LabelsCalls(t *testing.T) {
	primary := &labelRecorder{Provider: llm.NewMockProvider(llm.MockResponse{Err: errors.New("boom")})}
	secondary := &labelRecorder{Provider: llm.NewMockProvider(llm.MockResponse{Text: validQuiz})}
	gen := New(primary, secondary, DefaultConfig(), nil)

	if _, err := gen.Generate(context.Background(), testInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []llm.Labels{
		{Purpose: "quiz-gen", Tier: "primary", Subject: "s1"},
		{Purpose: "quiz-gen", Tier: "secondary", Subject: "s1"},
	}
	got := append(primary.labels, secondary.labels...)
	if len(got) != len(want) {
		t.Fatalf("got %d labelled calls, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d labels = %+v, want %+v", i, got[i], want[i])
		}
	}
}
