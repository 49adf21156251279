package analysis

import (
	"sort"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// tagStats accumulates per-concept question accuracy across attempts.
type tagStats struct {
	total   int
	correct int

	// recentAttempts counts attempts folded into recentTotal/recentCorrect,
	// capped at RecentAccuracyWindow.
	recentAttempts int
	recentTotal    int
	recentCorrect  int
}

func (s *tagStats) accuracy() float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.correct) / float64(s.total)
}

func (s *tagStats) recentAccuracy() float64 {
	if s.recentTotal == 0 {
		return 0
	}
	return float64(s.recentCorrect) / float64(s.recentTotal)
}

// aggregateTags walks newest-first completed attempts and accumulates
// accuracy for every tag seen on any question, flagged or not.
func aggregateTags(records []attempt.Record) map[string]*tagStats {
	stats := make(map[string]*tagStats)
	for _, r := range records {
		perAttempt := make(map[string][2]int) // concept -> {total, correct}
		for _, q := range r.Questions {
			for _, tag := range uniqueTags(q.Tags) {
				c := perAttempt[tag]
				c[0]++
				if q.Correct {
					c[1]++
				}
				perAttempt[tag] = c
			}
		}
		for tag, c := range perAttempt {
			s, ok := stats[tag]
			if !ok {
				s = &tagStats{}
				stats[tag] = s
			}
			s.total += c[0]
			s.correct += c[1]
			if s.recentAttempts < RecentAccuracyWindow {
				s.recentAttempts++
				s.recentTotal += c[0]
				s.recentCorrect += c[1]
			}
		}
	}
	return stats
}

// countFlags counts how many attempts flagged each concept.
func countFlags(records []attempt.Record, flags func(attempt.Record) []string) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		for _, c := range uniqueTags(flags(r)) {
			counts[c]++
		}
	}
	return counts
}

// IdentifyWeaknesses ranks the concepts flagged as weaknesses by the
// grading step. Entries are sorted by descending priority score and
// truncated to limit (limit <= 0 means DefaultLimit).
//
// The priority score multiplies inaccuracy by how often the concept was
// flagged, so a concept missed once at 0% ranks below one missed ten times
// at 40%.
func IdentifyWeaknesses(records []attempt.Record, limit int) []Weakness {
	completed := attempt.Completed(attempt.SortNewestFirst(records))
	stats := aggregateTags(completed)
	flags := countFlags(completed, func(r attempt.Record) []string { return r.WeaknessesIdentified })

	var out []Weakness
	for concept, occurrences := range flags {
		s, ok := stats[concept]
		if !ok || s.total == 0 {
			continue
		}
		acc := s.accuracy()
		out = append(out, Weakness{
			Concept:           concept,
			OccurrenceCount:   occurrences,
			TotalQuestions:    s.total,
			CorrectAnswers:    s.correct,
			Accuracy:          acc,
			RecentAccuracy:    s.recentAccuracy(),
			PriorityScore:     (1 - acc) * float64(occurrences),
			ImprovementNeeded: acc < ImprovementThreshold,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].Concept < out[j].Concept
	})
	return truncate(out, limit)
}

// IdentifyStrengths mirrors IdentifyWeaknesses for concepts flagged as
// strengths. Entries are sorted by descending accuracy.
func IdentifyStrengths(records []attempt.Record, limit int) []Strength {
	completed := attempt.Completed(attempt.SortNewestFirst(records))
	stats := aggregateTags(completed)
	flags := countFlags(completed, func(r attempt.Record) []string { return r.StrengthsIdentified })

	var out []Strength
	for concept, occurrences := range flags {
		s, ok := stats[concept]
		if !ok || s.total == 0 {
			continue
		}
		acc := s.accuracy()
		out = append(out, Strength{
			Concept:         concept,
			Accuracy:        acc,
			OccurrenceCount: occurrences,
			MasteryLevel:    masteryFor(acc),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy > out[j].Accuracy
		}
		return out[i].Concept < out[j].Concept
	})
	return truncate(out, limit)
}

func masteryFor(acc float64) MasteryLevel {
	switch {
	case acc >= 0.9:
		return MasteryHigh
	case acc >= 0.8:
		return MasteryMedium
	default:
		return MasteryDeveloping
	}
}

func truncate[T any](xs []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(xs) > limit {
		return xs[:limit]
	}
	return xs
}

// uniqueTags drops empty and repeated tags, keeping first-seen order.
func uniqueTags(tags []string) []string {
	if len(tags) < 2 {
		if len(tags) == 1 && tags[0] == "" {
			return nil
		}
		return tags
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
