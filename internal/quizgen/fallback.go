package quizgen

import (
	"fmt"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// fallbackCount is min(requested, max(1, weaknesses)).
func fallbackCount(requested, weaknesses int) int {
	return min(requested, max(1, weaknesses))
}

// templateQuestions synthesizes one fixed-shape multiple choice question per
// concept. With no concepts the topic itself is used. The correct answer is
// always the first option.
func templateQuestions(topic string, concepts []string, requested int) []Question {
	n := fallbackCount(requested, len(concepts))
	out := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		concept := topic
		if len(concepts) > 0 {
			concept = concepts[i%len(concepts)]
		}
		tags := []string{concept, topic}
		if concept == topic {
			tags = []string{topic}
		}
		out = append(out, Question{
			ID:     i + 1,
			Type:   TypeMultipleChoice,
			Prompt: fmt.Sprintf("Which statement best describes how %s relates to %s?", concept, topic),
			Options: []string{
				fmt.Sprintf("%s is a key concept for understanding %s", concept, topic),
				fmt.Sprintf("%s is unrelated to %s", concept, topic),
				fmt.Sprintf("%s only matters after %s is complete", concept, topic),
				"None of the above",
			},
			CorrectAnswer: "0",
			Explanation:   fmt.Sprintf("Reviewing %s strengthens your understanding of %s.", concept, topic),
			Difficulty:    attempt.DifficultyMedium,
			Tags:          tags,
			Points:        DefaultPoints,
		})
	}
	return out
}
