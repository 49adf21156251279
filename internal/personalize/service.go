// Package personalize wires the analysis, adaptation, generation and
// scheduling steps into one service.
package personalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/analysis"
	"github.com/abhisek/adaptiq/internal/attempt"
	"github.com/abhisek/adaptiq/internal/cache"
	"github.com/abhisek/adaptiq/internal/events"
	"github.com/abhisek/adaptiq/internal/quizgen"
	"github.com/abhisek/adaptiq/internal/schedule"
	"github.com/abhisek/adaptiq/internal/store"
)

// ErrInputNotFound is returned when a student or course id is unknown.
var ErrInputNotFound = errors.New("input not found")

// RecalibrationWindow is how many recent attempts Recalibrate considers.
const RecalibrationWindow = 5

// ScheduleFocus is how many top weaknesses are reviewed at checkpoints.
const ScheduleFocus = 3

// QuizGenerator produces quizzes.
type QuizGenerator interface {
	Generate(ctx context.Context, in quizgen.Input) (*quizgen.Result, error)
}

// Service runs the personalization pipeline for one student at a time. It
// holds no per-request state and is safe for concurrent use.
type Service struct {
	reader    attempt.Reader
	directory attempt.Directory
	analyzer  *analysis.Analyzer
	generator QuizGenerator

	quizzes   store.QuizRepo
	cache     *cache.Cache
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithQuizRepo persists every generated quiz.
func WithQuizRepo(r store.QuizRepo) Option {
	return func(s *Service) { s.quizzes = r }
}

// WithCache caches analysis profiles.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithPublisher announces generated quizzes.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service.
func New(reader attempt.Reader, directory attempt.Directory, generator QuizGenerator, opts ...Option) *Service {
	s := &Service{
		reader:    reader,
		directory: directory,
		generator: generator,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.analyzer = analysis.NewAnalyzer(reader, analysis.WithClock(s.now))
	return s
}

// resolve checks the student and, when given, the course exist.
func (s *Service) resolve(ctx context.Context, studentID, courseID string) (*attempt.Course, error) {
	if _, err := s.directory.Student(ctx, studentID); err != nil {
		if errors.Is(err, attempt.ErrNotFound) {
			return nil, fmt.Errorf("%w: student %q", ErrInputNotFound, studentID)
		}
		return nil, fmt.Errorf("lookup student: %w", err)
	}
	if courseID == "" {
		return nil, nil
	}
	course, err := s.directory.Course(ctx, courseID)
	if err != nil {
		if errors.Is(err, attempt.ErrNotFound) {
			return nil, fmt.Errorf("%w: course %q", ErrInputNotFound, courseID)
		}
		return nil, fmt.Errorf("lookup course: %w", err)
	}
	return course, nil
}

// Profile returns the analysis profile of a student, optionally limited to
// one course. Profiles are cached for cache.ProfileTTL.
func (s *Service) Profile(ctx context.Context, studentID, courseID string) (*analysis.Profile, error) {
	if _, err := s.resolve(ctx, studentID, courseID); err != nil {
		return nil, err
	}
	return s.profile(ctx, studentID, courseID)
}

func (s *Service) profile(ctx context.Context, studentID, courseID string) (*analysis.Profile, error) {
	key := cache.ProfileKey(studentID, courseID)

	var cached analysis.Profile
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		s.logger.Debug("profile cache hit", "student", studentID, "course", courseID)
		return &cached, nil
	case !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrCacheUnavailable):
		s.logger.Warn("profile cache read failed", "error", err)
	}

	p, err := s.analyzer.Profile(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, p, cache.ProfileTTL); err != nil {
		s.logger.Warn("profile cache write failed", "error", err)
	}
	return p, nil
}

// InvalidateStudent drops every cached profile of a student.
func (s *Service) InvalidateStudent(ctx context.Context, studentID string) error {
	return s.cache.InvalidatePattern(ctx, cache.StudentPattern(studentID))
}

// Parameters returns adaptive parameters for a student. With fewer than
// three completed attempts the neutral defaults are returned.
func (s *Service) Parameters(ctx context.Context, studentID, courseID string) (adaptive.Parameters, error) {
	p, err := s.Profile(ctx, studentID, courseID)
	if err != nil {
		return adaptive.Parameters{}, err
	}
	return adaptive.ForProfile(p), nil
}

// Recalibrate nudges current from the most recent attempts and reports the
// fields that moved.
func (s *Service) Recalibrate(ctx context.Context, studentID, courseID string, current adaptive.Parameters) (adaptive.Parameters, []adaptive.Change, error) {
	if _, err := s.resolve(ctx, studentID, courseID); err != nil {
		return current, nil, err
	}
	records, err := s.reader.Attempts(ctx, studentID, courseID)
	if err != nil {
		return current, nil, fmt.Errorf("read attempts: %w", err)
	}
	recent := attempt.Completed(attempt.SortNewestFirst(records))
	if len(recent) > RecalibrationWindow {
		recent = recent[:RecalibrationWindow]
	}
	if len(recent) == 0 {
		return current.Clamp(), nil, nil
	}

	var sum float64
	for _, r := range recent {
		sum += r.Score
	}
	next, changes := adaptive.Update(current, adaptive.Recent{
		AverageScore: sum / float64(len(recent)),
		Trend:        analysis.ScoreTrend(recent),
		Consistency:  analysis.MeasureConsistency(recent).Bucket,
	})
	s.logger.Info("parameters recalibrated", "student", studentID, "changes", len(changes))
	return next, changes, nil
}

// GenerateQuiz produces a personalized quiz, stores it when a quiz repo is
// configured and announces it when a publisher is configured. Publishing
// failures are logged and never returned.
func (s *Service) GenerateQuiz(ctx context.Context, req quizgen.Request) (*quizgen.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	course, err := s.resolve(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profile(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, err
	}

	res, err := s.generator.Generate(ctx, quizgen.Input{
		Request: req,
		Course:  *course,
		Profile: profile,
	})
	if err != nil {
		return nil, err
	}

	if s.quizzes != nil {
		if err := s.save(ctx, res); err != nil {
			return nil, err
		}
	}
	if s.publisher != nil {
		ev := events.QuizGenerated{
			QuizID:         res.Quiz.ID,
			StudentID:      res.Quiz.StudentID,
			CourseID:       res.Quiz.CourseID,
			Topic:          res.Quiz.Topic,
			QuestionCount:  len(res.Quiz.Questions),
			Source:         string(res.Info.Source),
			Tier:           string(res.Info.Tier),
			TargetConcepts: res.Quiz.TargetConcepts,
			GeneratedAt:    res.Quiz.CreatedAt,
		}
		if err := s.publisher.PublishQuizGenerated(ctx, ev); err != nil {
			s.logger.Warn("quiz event not published", "quiz_id", res.Quiz.ID, "error", err)
		}
	}
	return res, nil
}

func (s *Service) save(ctx context.Context, res *quizgen.Result) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode quiz: %w", err)
	}
	q := res.Quiz
	rec := &store.QuizRecord{
		ID:            q.ID,
		StudentID:     q.StudentID,
		CourseID:      q.CourseID,
		Title:         q.Title,
		Source:        string(q.Source),
		Tier:          string(res.Info.Tier),
		QuestionCount: len(q.Questions),
		Body:          body,
		CreatedAt:     q.CreatedAt,
	}
	if err := s.quizzes.SaveQuiz(ctx, rec); err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

// WeeklySchedule plans the next seven days starting at start, drawing main
// content from queue.
func (s *Service) WeeklySchedule(ctx context.Context, studentID, courseID string, queue []schedule.ContentItem, start time.Time) (*schedule.Weekly, error) {
	p, err := s.Profile(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		start = s.now()
	}
	focus := analysis.Concepts(p.Weaknesses)
	if len(focus) > ScheduleFocus {
		focus = focus[:ScheduleFocus]
	}
	w := schedule.Plan(schedule.Input{
		Params:    adaptive.ForProfile(p),
		TimeOfDay: p.TimeOfDay,
		Queue:     queue,
		Focus:     focus,
		Start:     start,
	})
	return &w, nil
}
