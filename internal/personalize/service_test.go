package personalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/attempt"
	"github.com/abhisek/adaptiq/internal/cache"
	"github.com/abhisek/adaptiq/internal/events"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/quizgen"
	"github.com/abhisek/adaptiq/internal/schedule"
	"github.com/abhisek/adaptiq/internal/store"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

const quizJSON = `[{"type":"true_false","prompt":"1/2 equals 2/4.","correct_answer":"true","tags":["equivalence"]}]`

// countingReader counts history reads.
type countingReader struct {
	attempt.Reader
	calls int
}

func (r *countingReader) Attempts(ctx context.Context, studentID, courseID string) ([]attempt.Record, error) {
	r.calls++
	return r.Reader.Attempts(ctx, studentID, courseID)
}

type recordingPublisher struct {
	events []events.QuizGenerated
	err    error
}

func (p *recordingPublisher) PublishQuizGenerated(_ context.Context, ev events.QuizGenerated) error {
	p.events = append(p.events, ev)
	return p.err
}

// seed opens a store with one student, one course and ten graded attempts
// where "equivalence" is answered correctly 3 times out of 10.
func seed(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "adaptiq.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	if err := s.Directory().PutStudent(ctx, attempt.Student{ID: "s1", Name: "Ada"}); err != nil {
		t.Fatalf("put student: %v", err)
	}
	if err := s.Directory().PutCourse(ctx, attempt.Course{ID: "c1", Title: "Grade 5 Math"}); err != nil {
		t.Fatalf("put course: %v", err)
	}
	for i := 0; i < 10; i++ {
		rec := &attempt.Record{
			StudentID: "s1",
			QuizID:    fmt.Sprintf("q%d", i),
			CourseID:  "c1",
			Status:    attempt.StatusCompleted,
			TakenAt:   now.AddDate(0, 0, -10+i),
			Score:     60,
			TimeTaken: 5 * time.Minute,
			Questions: map[string]attempt.QuestionResult{
				"1": {Correct: i < 3, Tags: []string{"equivalence"}, Difficulty: attempt.DifficultyMedium},
			},
			WeaknessesIdentified: []string{"equivalence"},
		}
		if err := s.Attempts().Append(ctx, rec); err != nil {
			t.Fatalf("append attempt: %v", err)
		}
	}
	return s
}

func newService(s *store.Store, reader attempt.Reader, gen QuizGenerator, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return New(reader, s.Directory(), gen, opts...)
}

func fallbackGenerator() *quizgen.Generator {
	return quizgen.New(nil, nil, quizgen.DefaultConfig(), nil)
}

func TestProfile(t *testing.T) {
	s := seed(t)
	svc := newService(s, s.Attempts(), fallbackGenerator())

	p, err := svc.Profile(context.Background(), "s1", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Summary.TotalAttempts != 10 {
		t.Errorf("total attempts = %d, want 10", p.Summary.TotalAttempts)
	}
	if len(p.Weaknesses) != 1 {
		t.Fatalf("expected 1 weakness, got %d", len(p.Weaknesses))
	}
	w := p.Weaknesses[0]
	if w.Concept != "equivalence" || w.PriorityScore < 6.999 || w.PriorityScore > 7.001 {
		t.Errorf("unexpected weakness: %+v", w)
	}
}

func TestInputNotFound(t *testing.T) {
	s := seed(t)
	svc := newService(s, s.Attempts(), fallbackGenerator())
	ctx := context.Background()

	if _, err := svc.Profile(ctx, "nobody", ""); !errors.Is(err, ErrInputNotFound) {
		t.Errorf("Profile unknown student: got %v", err)
	}
	if _, err := svc.Parameters(ctx, "s1", "nope"); !errors.Is(err, ErrInputNotFound) {
		t.Errorf("Parameters unknown course: got %v", err)
	}
	req := quizgen.Request{StudentID: "s1", CourseID: "nope", Topic: "Fractions", QuestionCount: 3}
	if _, err := svc.GenerateQuiz(ctx, req); !errors.Is(err, ErrInputNotFound) {
		t.Errorf("GenerateQuiz unknown course: got %v", err)
	}
	if _, _, err := svc.Recalibrate(ctx, "ghost", "c1", adaptive.Defaults()); !errors.Is(err, ErrInputNotFound) {
		t.Errorf("Recalibrate unknown student: got %v", err)
	}
}

func TestParameters_InsufficientHistory(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	if err := s.Directory().PutStudent(ctx, attempt.Student{ID: "new", Name: "New"}); err != nil {
		t.Fatal(err)
	}
	svc := newService(s, s.Attempts(), fallbackGenerator())

	p, err := svc.Parameters(ctx, "new", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != adaptive.Defaults() {
		t.Errorf("params = %+v, want defaults", p)
	}
}

func TestParameters_FromHistory(t *testing.T) {
	s := seed(t)
	svc := newService(s, s.Attempts(), fallbackGenerator())

	p, err := svc.Parameters(context.Background(), "s1", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// avg 60: difficulty -0.2, challenge 0.4, support 0.4
	if p.DifficultyAdjustment != -0.2 || p.ChallengeLevel != 0.4 {
		t.Errorf("unexpected params: %+v", p)
	}
	if p.SupportLevel < 0.399 || p.SupportLevel > 0.401 {
		t.Errorf("support = %v, want 0.4", p.SupportLevel)
	}
}

func TestRecalibrate(t *testing.T) {
	s := seed(t)
	svc := newService(s, s.Attempts(), fallbackGenerator())

	// Recent average 60 with a stable trend: no branch fires.
	next, changes, err := svc.Recalibrate(context.Background(), "s1", "c1", adaptive.Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 0 || next != adaptive.Defaults() {
		t.Errorf("expected no change, got %+v / %v", next, changes)
	}

	// Five low scores push support up.
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		rec := &attempt.Record{
			StudentID: "s1", CourseID: "c1", Status: attempt.StatusCompleted,
			TakenAt: now.Add(time.Duration(i+1) * time.Minute), Score: 40,
		}
		if err := s.Attempts().Append(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	next, changes, err = svc.Recalibrate(ctx, "s1", "c1", adaptive.Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) == 0 {
		t.Fatal("expected changes for low recent scores")
	}
	if next.SupportLevel <= adaptive.Defaults().SupportLevel {
		t.Errorf("support = %v, want increase", next.SupportLevel)
	}
}

func TestGenerateQuiz_PersistsAndPublishes(t *testing.T) {
	s := seed(t)
	pub := &recordingPublisher{}
	gen := quizgen.New(llm.NewMockProvider(llm.MockResponse{Text: quizJSON}), nil, quizgen.DefaultConfig(), nil)
	svc := newService(s, s.Attempts(), gen, WithQuizRepo(s.Quizzes()), WithPublisher(pub))
	ctx := context.Background()

	res, err := svc.GenerateQuiz(ctx, quizgen.Request{StudentID: "s1", CourseID: "c1", Topic: "Fractions", QuestionCount: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Info.Source != quizgen.SourceAI {
		t.Errorf("source = %s, want ai", res.Info.Source)
	}

	rec, err := s.Quizzes().Quiz(ctx, res.Quiz.ID)
	if err != nil {
		t.Fatalf("stored quiz: %v", err)
	}
	if rec.QuestionCount != 1 || rec.Source != "ai" || rec.Tier != "primary" {
		t.Errorf("unexpected record: %+v", rec)
	}
	var stored quizgen.Result
	if err := json.Unmarshal(rec.Body, &stored); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if stored.Quiz.Questions[0].Prompt != "1/2 equals 2/4." {
		t.Errorf("stored prompt = %q", stored.Quiz.Questions[0].Prompt)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	if pub.events[0].QuizID != res.Quiz.ID || pub.events[0].Tier != "primary" {
		t.Errorf("unexpected event: %+v", pub.events[0])
	}
}

func TestGenerateQuiz_PublishFailureIsNotFatal(t *testing.T) {
	s := seed(t)
	pub := &recordingPublisher{err: errors.New("bus down")}
	svc := newService(s, s.Attempts(), fallbackGenerator(), WithPublisher(pub))

	res, err := svc.GenerateQuiz(context.Background(), quizgen.Request{StudentID: "s1", CourseID: "c1", Topic: "Fractions", QuestionCount: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Info.Tier != quizgen.TierTemplate || len(res.Quiz.Questions) != 1 {
		t.Errorf("expected a single template question, got %s with %d", res.Info.Tier, len(res.Quiz.Questions))
	}
	if len(pub.events) != 1 {
		t.Errorf("expected publish attempt, got %d", len(pub.events))
	}
}

func TestGenerateQuiz_InvalidRequest(t *testing.T) {
	s := seed(t)
	svc := newService(s, s.Attempts(), fallbackGenerator())
	_, err := svc.GenerateQuiz(context.Background(), quizgen.Request{StudentID: "s1", CourseID: "c1"})
	if !errors.Is(err, quizgen.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestProfile_Cached(t *testing.T) {
	s := seed(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	reader := &countingReader{Reader: s.Attempts()}
	svc := newService(s, reader, fallbackGenerator(), WithCache(cache.New(client, "test:")))
	ctx := context.Background()

	first, err := svc.Profile(ctx, "s1", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Profile(ctx, "s1", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.calls != 1 {
		t.Errorf("history read %d times, want 1", reader.calls)
	}
	if second.Weaknesses[0].Concept != first.Weaknesses[0].Concept {
		t.Errorf("cached profile differs")
	}
	if second.TimeOfDay.BestDay != first.TimeOfDay.BestDay {
		t.Errorf("cached best day = %s, want %s", second.TimeOfDay.BestDay, first.TimeOfDay.BestDay)
	}

	if err := svc.InvalidateStudent(ctx, "s1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.Profile(ctx, "s1", "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.calls != 2 {
		t.Errorf("history read %d times after invalidation, want 2", reader.calls)
	}
}

func TestWeeklySchedule(t *testing.T) {
	s := seed(t)
	svc := newService(s, s.Attempts(), fallbackGenerator())

	queue := []schedule.ContentItem{{ID: "l1", Title: "Equivalent fractions"}}
	w, err := svc.WeeklySchedule(context.Background(), "s1", "c1", queue, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Days) != schedule.PlanDays {
		t.Fatalf("days = %d", len(w.Days))
	}
	if !w.Start.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", w.Start)
	}
	if w.Days[0].Kind != schedule.KindMain || w.Days[0].Items[0].ID != "l1" {
		t.Errorf("unexpected first day: %+v", w.Days[0])
	}
	// All attempts were at 12:00.
	if w.BestHour != 12 {
		t.Errorf("best hour = %d, want 12", w.BestHour)
	}
}

