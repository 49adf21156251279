package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// Analyzer turns attempt history into performance signals. It holds no
// mutable state and is safe for concurrent use.
type Analyzer struct {
	reader attempt.Reader
	now    func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the clock used for the recent window.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an Analyzer over the given history reader.
func NewAnalyzer(reader attempt.Reader, opts ...Option) *Analyzer {
	a := &Analyzer{reader: reader, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) history(ctx context.Context, studentID, courseID string) ([]attempt.Record, error) {
	records, err := a.reader.Attempts(ctx, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}
	return records, nil
}

// Summary returns the performance summary for a student.
func (a *Analyzer) Summary(ctx context.Context, studentID, courseID string) (*Summary, error) {
	records, err := a.history(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	s := Summarize(records, a.now())
	return &s, nil
}

// Weaknesses returns up to limit weakness entries, highest priority first.
func (a *Analyzer) Weaknesses(ctx context.Context, studentID, courseID string, limit int) ([]Weakness, error) {
	records, err := a.history(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return IdentifyWeaknesses(records, limit), nil
}

// Strengths returns up to limit strength entries, most accurate first.
func (a *Analyzer) Strengths(ctx context.Context, studentID, courseID string, limit int) ([]Strength, error) {
	records, err := a.history(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return IdentifyStrengths(records, limit), nil
}

// Velocity classifies the student's improvement rate.
func (a *Analyzer) Velocity(ctx context.Context, studentID, courseID string) (*Velocity, error) {
	records, err := a.history(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	v := ClassifyVelocity(records)
	return &v, nil
}

// Profile reads the history once and derives every signal from it.
func (a *Analyzer) Profile(ctx context.Context, studentID, courseID string) (*Profile, error) {
	records, err := a.history(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return BuildProfile(studentID, courseID, records, a.now()), nil
}

// BuildProfile derives a Profile from an already materialized history.
func BuildProfile(studentID, courseID string, records []attempt.Record, now time.Time) *Profile {
	return &Profile{
		StudentID:   studentID,
		CourseID:    courseID,
		Summary:     Summarize(records, now),
		Weaknesses:  IdentifyWeaknesses(records, DefaultLimit),
		Strengths:   IdentifyStrengths(records, DefaultLimit),
		Velocity:    ClassifyVelocity(records),
		Consistency: MeasureConsistency(records),
		Efficiency:  MeasureEfficiency(records),
		TimeOfDay:   MeasureTimeOfDay(records),
	}
}
