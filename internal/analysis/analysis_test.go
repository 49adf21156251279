package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/abhisek/adaptiq/internal/attempt"
)

const epsilon = 0.001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

var baseTime = time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)

// history builds completed attempts one day apart, oldest first in scores.
func history(scores ...float64) []attempt.Record {
	out := make([]attempt.Record, len(scores))
	for i, s := range scores {
		out[i] = attempt.Record{
			ID:        fmt.Sprintf("a%d", i),
			StudentID: "s1",
			CourseID:  "c1",
			Status:    attempt.StatusCompleted,
			TakenAt:   baseTime.AddDate(0, 0, i),
			Score:     s,
		}
	}
	return out
}

type fakeReader struct {
	records []attempt.Record
	err     error
}

func (f *fakeReader) Attempts(_ context.Context, _, _ string) ([]attempt.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return attempt.SortNewestFirst(f.records), nil
}

func fractionsHistory() []attempt.Record {
	records := make([]attempt.Record, 10)
	for i := range records {
		records[i] = attempt.Record{
			ID:        fmt.Sprintf("a%d", i),
			Status:    attempt.StatusCompleted,
			TakenAt:   baseTime.AddDate(0, 0, i),
			Score:     30,
			Questions: map[string]attempt.QuestionResult{
				"q1": {Correct: i < 3, Tags: []string{"fractions"}, Difficulty: attempt.DifficultyMedium},
			},
			WeaknessesIdentified: []string{"fractions"},
		}
	}
	return records
}

func TestIdentifyWeaknesses_Fractions(t *testing.T) {
	ws := IdentifyWeaknesses(fractionsHistory(), 10)
	if len(ws) != 1 {
		t.Fatalf("len(weaknesses) = %d, want 1", len(ws))
	}
	w := ws[0]
	if w.Concept != "fractions" {
		t.Errorf("Concept = %q, want fractions", w.Concept)
	}
	if w.OccurrenceCount != 10 || w.TotalQuestions != 10 || w.CorrectAnswers != 3 {
		t.Errorf("counts = %d/%d/%d, want 10/10/3", w.OccurrenceCount, w.TotalQuestions, w.CorrectAnswers)
	}
	if !almostEqual(w.Accuracy, 0.3) {
		t.Errorf("Accuracy = %f, want 0.3", w.Accuracy)
	}
	if !almostEqual(w.PriorityScore, 7.0) {
		t.Errorf("PriorityScore = %f, want 7.0", w.PriorityScore)
	}
	if !w.ImprovementNeeded {
		t.Error("ImprovementNeeded = false, want true")
	}
}

func TestIdentifyWeaknesses_RecentAccuracyCapsAtFiveAttempts(t *testing.T) {
	// Correct answers are the three oldest attempts, so the five most
	// recent are all wrong.
	ws := IdentifyWeaknesses(fractionsHistory(), 10)
	if !almostEqual(ws[0].RecentAccuracy, 0) {
		t.Errorf("RecentAccuracy = %f, want 0", ws[0].RecentAccuracy)
	}

	records := fractionsHistory()
	for i := range records {
		records[i].Questions["q1"] = attempt.QuestionResult{Correct: i >= 5, Tags: []string{"fractions"}}
	}
	ws = IdentifyWeaknesses(records, 10)
	if !almostEqual(ws[0].RecentAccuracy, 1) {
		t.Errorf("RecentAccuracy = %f, want 1", ws[0].RecentAccuracy)
	}
	if !almostEqual(ws[0].Accuracy, 0.5) {
		t.Errorf("Accuracy = %f, want 0.5", ws[0].Accuracy)
	}
}

func TestIdentifyWeaknesses_SystemicGapOutranksOneOff(t *testing.T) {
	var records []attempt.Record
	for i := 0; i < 10; i++ {
		records = append(records, attempt.Record{
			Status:  attempt.StatusCompleted,
			TakenAt: baseTime.AddDate(0, 0, i),
			Questions: map[string]attempt.QuestionResult{
				"q1": {Correct: i < 4, Tags: []string{"decimals"}},
			},
			WeaknessesIdentified: []string{"decimals"},
		})
	}
	records = append(records, attempt.Record{
		Status:  attempt.StatusCompleted,
		TakenAt: baseTime.AddDate(0, 0, 20),
		Questions: map[string]attempt.QuestionResult{
			"q1": {Correct: false, Tags: []string{"ratios"}},
		},
		WeaknessesIdentified: []string{"ratios"},
	})

	ws := IdentifyWeaknesses(records, 10)
	if len(ws) != 2 {
		t.Fatalf("len(weaknesses) = %d, want 2", len(ws))
	}
	if ws[0].Concept != "decimals" {
		t.Errorf("top weakness = %q, want decimals", ws[0].Concept)
	}
	for i := 1; i < len(ws); i++ {
		if ws[i].PriorityScore > ws[i-1].PriorityScore {
			t.Errorf("weaknesses not sorted at %d: %f > %f", i, ws[i].PriorityScore, ws[i-1].PriorityScore)
		}
	}
}

func TestIdentifyWeaknesses_SkipsIncompleteAndUntagged(t *testing.T) {
	records := []attempt.Record{
		{
			Status:               attempt.StatusInProgress,
			TakenAt:              baseTime,
			Questions:            map[string]attempt.QuestionResult{"q1": {Tags: []string{"algebra"}}},
			WeaknessesIdentified: []string{"algebra"},
		},
		{
			Status:               attempt.StatusCompleted,
			TakenAt:              baseTime,
			WeaknessesIdentified: []string{"geometry"},
		},
	}
	if ws := IdentifyWeaknesses(records, 10); len(ws) != 0 {
		t.Errorf("weaknesses = %+v, want none", ws)
	}
}

func TestIdentifyWeaknesses_Limit(t *testing.T) {
	var records []attempt.Record
	for i := 0; i < 15; i++ {
		concept := fmt.Sprintf("c%02d", i)
		records = append(records, attempt.Record{
			Status:               attempt.StatusCompleted,
			TakenAt:              baseTime.AddDate(0, 0, i),
			Questions:            map[string]attempt.QuestionResult{"q1": {Tags: []string{concept}}},
			WeaknessesIdentified: []string{concept},
		})
	}
	if got := len(IdentifyWeaknesses(records, 5)); got != 5 {
		t.Errorf("limit 5: got %d", got)
	}
	if got := len(IdentifyWeaknesses(records, 0)); got != DefaultLimit {
		t.Errorf("limit 0: got %d, want %d", got, DefaultLimit)
	}
}

func TestIdentifyStrengths(t *testing.T) {
	var records []attempt.Record
	for i := 0; i < 10; i++ {
		records = append(records, attempt.Record{
			Status:  attempt.StatusCompleted,
			TakenAt: baseTime.AddDate(0, 0, i),
			Questions: map[string]attempt.QuestionResult{
				"q1": {Correct: true, Tags: []string{"addition"}},
				"q2": {Correct: i != 0 && i != 1, Tags: []string{"subtraction"}},
				"q3": {Correct: i%2 == 0, Tags: []string{"division"}},
			},
			StrengthsIdentified: []string{"addition", "subtraction", "division"},
		})
	}

	ss := IdentifyStrengths(records, 10)
	if len(ss) != 3 {
		t.Fatalf("len(strengths) = %d, want 3", len(ss))
	}
	want := []struct {
		concept string
		acc     float64
		level   MasteryLevel
	}{
		{"addition", 1.0, MasteryHigh},
		{"subtraction", 0.8, MasteryMedium},
		{"division", 0.5, MasteryDeveloping},
	}
	for i, w := range want {
		if ss[i].Concept != w.concept {
			t.Errorf("strengths[%d].Concept = %q, want %q", i, ss[i].Concept, w.concept)
		}
		if !almostEqual(ss[i].Accuracy, w.acc) {
			t.Errorf("strengths[%d].Accuracy = %f, want %f", i, ss[i].Accuracy, w.acc)
		}
		if ss[i].MasteryLevel != w.level {
			t.Errorf("strengths[%d].MasteryLevel = %q, want %q", i, ss[i].MasteryLevel, w.level)
		}
		if ss[i].OccurrenceCount != 10 {
			t.Errorf("strengths[%d].OccurrenceCount = %d, want 10", i, ss[i].OccurrenceCount)
		}
	}
}

func TestAccuracyBounds(t *testing.T) {
	records := fractionsHistory()
	records[0].Questions["q2"] = attempt.QuestionResult{Correct: true, Tags: []string{"fractions", "fractions", ""}}
	for _, w := range IdentifyWeaknesses(records, 10) {
		if w.Accuracy < 0 || w.Accuracy > 1 || w.RecentAccuracy < 0 || w.RecentAccuracy > 1 {
			t.Errorf("%s: accuracy out of range: %f / %f", w.Concept, w.Accuracy, w.RecentAccuracy)
		}
	}
}

func TestScoreTrend(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   Trend
	}{
		{"empty", nil, TrendInsufficientData},
		{"two attempts", []float64{50, 90}, TrendInsufficientData},
		{"improving", []float64{50, 50, 50, 70, 70, 70}, TrendImproving},
		{"declining", []float64{90, 90, 60, 60}, TrendDeclining},
		{"within dead band", []float64{70, 72, 74, 75}, TrendStable},
		{"exactly dead band", []float64{70, 75}, TrendInsufficientData},
		{"odd count splits newer half larger", []float64{60, 80, 80}, TrendImproving},
		// Only the ten most recent count: the early 0s are ignored.
		{"window", []float64{0, 0, 0, 0, 0, 80, 80, 80, 80, 80, 80, 80, 80, 80, 80}, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := attempt.SortNewestFirst(history(tt.scores...))
			if got := ScoreTrend(records); got != tt.want {
				t.Errorf("ScoreTrend(%v) = %q, want %q", tt.scores, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	now := baseTime.AddDate(0, 0, 60)
	records := history(40, 60)
	records = append(records, attempt.Record{
		Status:  attempt.StatusCompleted,
		TakenAt: now.AddDate(0, 0, -1),
		Score:   80,
	}, attempt.Record{
		Status:  attempt.StatusAbandoned,
		TakenAt: now.AddDate(0, 0, -2),
		Score:   0,
	})

	s := Summarize(records, now)
	if s.TotalAttempts != 3 {
		t.Errorf("TotalAttempts = %d, want 3", s.TotalAttempts)
	}
	if s.RecentAttempts != 1 {
		t.Errorf("RecentAttempts = %d, want 1", s.RecentAttempts)
	}
	if !almostEqual(s.OverallAverage, 60) {
		t.Errorf("OverallAverage = %f, want 60", s.OverallAverage)
	}
	if !almostEqual(s.RecentAverage, 80) {
		t.Errorf("RecentAverage = %f, want 80", s.RecentAverage)
	}
	if !almostEqual(s.LearningVelocity, 1.0/30.0) {
		t.Errorf("LearningVelocity = %f, want %f", s.LearningVelocity, 1.0/30.0)
	}
	if s.Trend != TrendImproving {
		t.Errorf("Trend = %q, want improving", s.Trend)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, baseTime)
	if s.TotalAttempts != 0 || s.OverallAverage != 0 || s.RecentAverage != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero values", s)
	}
	if s.Trend != TrendInsufficientData {
		t.Errorf("Trend = %q, want insufficient_data", s.Trend)
	}
}

func TestTwoAttemptsScenario(t *testing.T) {
	records := history(55, 75)
	p := BuildProfile("s1", "c1", records, baseTime.AddDate(0, 0, 2))

	if p.Summary.Trend != TrendInsufficientData {
		t.Errorf("Trend = %q, want insufficient_data", p.Summary.Trend)
	}
	if p.Velocity.Class != VelocityNormal || p.Velocity.Confidence != ConfidenceLow {
		t.Errorf("Velocity = %+v, want normal/low", p.Velocity)
	}
	if !p.Insufficient() {
		t.Error("Insufficient() = false, want true")
	}
}

func TestClassifyVelocity_LiteralSign(t *testing.T) {
	// Rising scores give negative deltas (older - newer) and classify slow.
	rising := ClassifyVelocity(history(50, 60, 70, 80, 90))
	if rising.Class != VelocityVerySlow {
		t.Errorf("rising scores: Class = %q, want very_slow", rising.Class)
	}
	if !almostEqual(rising.ImprovementRate, -10) {
		t.Errorf("rising scores: rate = %f, want -10", rising.ImprovementRate)
	}

	falling := ClassifyVelocity(history(90, 80, 70, 60, 50))
	if falling.Class != VelocityVeryFast {
		t.Errorf("falling scores: Class = %q, want very_fast", falling.Class)
	}
}

func TestClassifyVelocity_Thresholds(t *testing.T) {
	tests := []struct {
		step float64
		want VelocityClass
	}{
		{-3, VelocityVeryFast},
		{-1.5, VelocityFast},
		{0, VelocityNormal},
		{1, VelocitySlow},
		{2, VelocityVerySlow},
	}
	for _, tt := range tests {
		scores := make([]float64, 6)
		for i := range scores {
			scores[i] = 50 + float64(i)*tt.step
		}
		if got := ClassifyVelocity(history(scores...)).Class; got != tt.want {
			t.Errorf("step %v: Class = %q, want %q", tt.step, got, tt.want)
		}
	}
}

func TestClassifyVelocity_SameDayPairsSkipped(t *testing.T) {
	records := history(50, 50, 50, 50, 50)
	for i := range records {
		records[i].TakenAt = baseTime.Add(time.Duration(i) * time.Hour)
	}
	v := ClassifyVelocity(records)
	if v.ImprovementRate != 0 || v.Class != VelocityNormal {
		t.Errorf("same-day: %+v, want rate 0 normal", v)
	}
}

func TestClassifyVelocity_Confidence(t *testing.T) {
	tests := []struct {
		n    int
		want Confidence
	}{
		{5, ConfidenceLow},
		{10, ConfidenceMedium},
		{15, ConfidenceHigh},
		{30, ConfidenceHigh},
	}
	for _, tt := range tests {
		scores := make([]float64, tt.n)
		for i := range scores {
			scores[i] = 70
		}
		v := ClassifyVelocity(history(scores...))
		if v.Confidence != tt.want {
			t.Errorf("n=%d: Confidence = %q, want %q", tt.n, v.Confidence, tt.want)
		}
		if v.Samples > VelocityWindow {
			t.Errorf("n=%d: Samples = %d exceeds window", tt.n, v.Samples)
		}
	}
}

func TestMeasureConsistency(t *testing.T) {
	tests := []struct {
		scores []float64
		want   ConsistencyBucket
	}{
		{nil, ConsistencyHigh},
		{[]float64{70, 72, 68, 70}, ConsistencyHigh},
		{[]float64{50, 80}, ConsistencyMedium},
		{[]float64{20, 90}, ConsistencyLow},
	}
	for _, tt := range tests {
		if got := MeasureConsistency(history(tt.scores...)).Bucket; got != tt.want {
			t.Errorf("MeasureConsistency(%v) = %q, want %q", tt.scores, got, tt.want)
		}
	}
}

func TestMeasureEfficiency(t *testing.T) {
	withTime := func(d time.Duration, n int) attempt.Record {
		qs := make(map[string]attempt.QuestionResult, n)
		for i := 0; i < n; i++ {
			qs[fmt.Sprintf("q%d", i)] = attempt.QuestionResult{}
		}
		return attempt.Record{Status: attempt.StatusCompleted, TimeTaken: d, Questions: qs}
	}

	tests := []struct {
		name    string
		records []attempt.Record
		want    EfficiencyBucket
	}{
		{"no data", nil, EfficiencyModerate},
		{"fast", []attempt.Record{withTime(5*time.Minute, 10)}, EfficiencyFast},
		{"moderate", []attempt.Record{withTime(20*time.Minute, 10)}, EfficiencyModerate},
		{"slow", []attempt.Record{withTime(30*time.Minute, 10)}, EfficiencySlow},
		{"ignores empty", []attempt.Record{withTime(0, 10), withTime(time.Hour, 0)}, EfficiencyModerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeasureEfficiency(tt.records).Bucket; got != tt.want {
				t.Errorf("Bucket = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMeasureTimeOfDay(t *testing.T) {
	at := func(hour int, day int, score float64) attempt.Record {
		return attempt.Record{
			Status:  attempt.StatusCompleted,
			TakenAt: time.Date(2025, 3, 2+day, hour, 0, 0, 0, time.UTC), // 2025-03-02 is a Sunday
			Score:   score,
		}
	}
	records := []attempt.Record{
		at(9, 1, 60),
		at(9, 1, 70),
		at(19, 3, 90),
		at(19, 3, 80),
		at(7, 5, 88),
	}

	tod := MeasureTimeOfDay(records)
	if !tod.HasData {
		t.Fatal("HasData = false")
	}
	if tod.BestHour != 7 {
		t.Errorf("BestHour = %d, want 7", tod.BestHour)
	}
	if tod.BestDay != time.Friday {
		t.Errorf("BestDay = %v, want Friday", tod.BestDay)
	}
	if !almostEqual(tod.HourAverages[9], 65) {
		t.Errorf("HourAverages[9] = %f, want 65", tod.HourAverages[9])
	}
	if !almostEqual(tod.DayAverages[time.Wednesday], 85) {
		t.Errorf("DayAverages[Wednesday] = %f, want 85", tod.DayAverages[time.Wednesday])
	}

	if MeasureTimeOfDay(nil).HasData {
		t.Error("empty history: HasData = true")
	}
}

func TestAnalyzer_Profile(t *testing.T) {
	reader := &fakeReader{records: fractionsHistory()}
	a := NewAnalyzer(reader, WithClock(func() time.Time { return baseTime.AddDate(0, 0, 10) }))

	p, err := a.Profile(context.Background(), "s1", "c1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.StudentID != "s1" || p.CourseID != "c1" {
		t.Errorf("ids = %q/%q", p.StudentID, p.CourseID)
	}
	if p.Summary.TotalAttempts != 10 || p.Summary.RecentAttempts != 10 {
		t.Errorf("Summary = %+v", p.Summary)
	}
	if len(p.Weaknesses) != 1 || p.Weaknesses[0].Concept != "fractions" {
		t.Errorf("Weaknesses = %+v", p.Weaknesses)
	}
	if p.Insufficient() {
		t.Error("Insufficient() = true, want false")
	}
}

func TestAnalyzer_ReaderError(t *testing.T) {
	boom := errors.New("boom")
	a := NewAnalyzer(&fakeReader{err: boom})

	if _, err := a.Profile(context.Background(), "s1", ""); !errors.Is(err, boom) {
		t.Errorf("Profile err = %v, want wrapped boom", err)
	}
	if _, err := a.Weaknesses(context.Background(), "s1", "", 5); !errors.Is(err, boom) {
		t.Errorf("Weaknesses err = %v, want wrapped boom", err)
	}
}
