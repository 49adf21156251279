package analysis

import (
	"math"
	"time"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// ConsistencyBucket groups score spread.
type ConsistencyBucket string

const (
	ConsistencyHigh   ConsistencyBucket = "high"
	ConsistencyMedium ConsistencyBucket = "medium"
	ConsistencyLow    ConsistencyBucket = "low"
)

// Consistency is the spread of a student's scores.
type Consistency struct {
	StdDev float64           `json:"std_dev"`
	Bucket ConsistencyBucket `json:"bucket"`
}

// MeasureConsistency buckets the population standard deviation of the
// completed scores: <10 high, <20 medium, otherwise low.
func MeasureConsistency(records []attempt.Record) Consistency {
	var scores []float64
	for _, r := range attempt.Completed(records) {
		scores = append(scores, r.Score)
	}
	sd := stddev(scores)

	bucket := ConsistencyLow
	switch {
	case sd < 10:
		bucket = ConsistencyHigh
	case sd < 20:
		bucket = ConsistencyMedium
	}
	return Consistency{StdDev: sd, Bucket: bucket}
}

// EfficiencyBucket groups average time spent per question.
type EfficiencyBucket string

const (
	EfficiencyFast     EfficiencyBucket = "fast"
	EfficiencyModerate EfficiencyBucket = "moderate"
	EfficiencySlow     EfficiencyBucket = "slow"
)

const (
	fastSecondsPerQuestion     = 60.0
	moderateSecondsPerQuestion = 120.0
)

// Efficiency is the average pace through questions.
type Efficiency struct {
	SecondsPerQuestion float64          `json:"seconds_per_question"`
	Bucket             EfficiencyBucket `json:"bucket"`
}

// MeasureEfficiency averages time-taken per question over completed attempts
// that record both a duration and at least one question. Without data the
// bucket is moderate.
func MeasureEfficiency(records []attempt.Record) Efficiency {
	var perQuestion []float64
	for _, r := range attempt.Completed(records) {
		if r.TimeTaken <= 0 || len(r.Questions) == 0 {
			continue
		}
		perQuestion = append(perQuestion, r.TimeTaken.Seconds()/float64(len(r.Questions)))
	}
	if len(perQuestion) == 0 {
		return Efficiency{Bucket: EfficiencyModerate}
	}

	avg := mean(perQuestion)
	bucket := EfficiencySlow
	switch {
	case avg < fastSecondsPerQuestion:
		bucket = EfficiencyFast
	case avg <= moderateSecondsPerQuestion:
		bucket = EfficiencyModerate
	}
	return Efficiency{SecondsPerQuestion: avg, Bucket: bucket}
}

// TimeOfDay holds mean scores grouped by hour of day and day of week.
type TimeOfDay struct {
	HourAverages map[int]float64          `json:"hour_averages"`
	DayAverages  map[time.Weekday]float64 `json:"day_averages"`
	BestHour     int                      `json:"best_hour"`
	BestDay      time.Weekday             `json:"best_day"`
	HasData      bool                     `json:"has_data"`
}

// MeasureTimeOfDay finds the hour and weekday with the highest mean score.
// Ties go to the earliest hour / day.
func MeasureTimeOfDay(records []attempt.Record) TimeOfDay {
	hours := make(map[int][]float64)
	days := make(map[time.Weekday][]float64)
	for _, r := range attempt.Completed(records) {
		hours[r.TakenAt.Hour()] = append(hours[r.TakenAt.Hour()], r.Score)
		days[r.TakenAt.Weekday()] = append(days[r.TakenAt.Weekday()], r.Score)
	}

	out := TimeOfDay{
		HourAverages: make(map[int]float64, len(hours)),
		DayAverages:  make(map[time.Weekday]float64, len(days)),
		HasData:      len(hours) > 0,
	}

	best := math.Inf(-1)
	for h := 0; h < 24; h++ {
		scores, ok := hours[h]
		if !ok {
			continue
		}
		avg := mean(scores)
		out.HourAverages[h] = avg
		if avg > best {
			best, out.BestHour = avg, h
		}
	}

	best = math.Inf(-1)
	for d := time.Sunday; d <= time.Saturday; d++ {
		scores, ok := days[d]
		if !ok {
			continue
		}
		avg := mean(scores)
		out.DayAverages[d] = avg
		if avg > best {
			best, out.BestDay = avg, d
		}
	}
	return out
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(xs)))
}
