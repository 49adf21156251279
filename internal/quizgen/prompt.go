package quizgen

import (
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/adaptiq/internal/analysis"
	"github.com/abhisek/adaptiq/internal/attempt"
)

const systemPrompt = `You are an educational assessment designer creating personalized quizzes.

Rules:
- Respond with a JSON array of question objects and nothing else.
- Every object has the fields: id, type, prompt, options, correct_answer, explanation, difficulty, tags, points.
- type is one of: multiple_choice, true_false, short_answer, fill_blank.
- multiple_choice questions have at least 2 options; correct_answer is the 0-based index of the correct option.
- true_false questions have correct_answer "true" or "false".
- short_answer and fill_blank questions have the expected answer text in correct_answer.
- difficulty is one of: easy, medium, hard. points is a positive integer, 10 by default.
- tags lists the concepts the question exercises.
- Explanations are short and help the student learn from mistakes.`

// promptContext is the information gathered before a model call.
type promptContext struct {
	Request    Request
	Course     attempt.Course
	Weaknesses []analysis.Weakness
	Strengths  []analysis.Strength
	Trend      analysis.Trend
	Average    float64

	// AllWeaknesses is the full ranked list, used by the template fallback.
	AllWeaknesses []analysis.Weakness
}

func buildContext(in Input, cfg Config) promptContext {
	pc := promptContext{
		Request: in.Request,
		Course:  in.Course,
		Trend:   analysis.TrendInsufficientData,
	}
	if p := in.Profile; p != nil {
		pc.AllWeaknesses = p.Weaknesses
		pc.Weaknesses = head(p.Weaknesses, cfg.MaxWeaknesses)
		pc.Strengths = head(p.Strengths, cfg.MaxStrengths)
		pc.Trend = p.Summary.Trend
		pc.Average = p.Summary.OverallAverage
	}
	return pc
}

func head[T any](xs []T, n int) []T {
	if n >= 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}

// split divides n questions between weaknesses and strengths.
func (pc promptContext) split(share float64) (weak, strong int) {
	n := pc.Request.QuestionCount
	switch {
	case len(pc.Weaknesses) == 0 && len(pc.Strengths) == 0:
		return 0, 0
	case len(pc.Strengths) == 0:
		return n, 0
	case len(pc.Weaknesses) == 0:
		return 0, n
	}
	weak = int(math.Round(float64(n) * share))
	return weak, n - weak
}

// buildUserMessage renders the instruction for one generation call.
func buildUserMessage(pc promptContext, cfg Config) string {
	r := pc.Request
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %s\n", orNone(pc.Course.Title))
	fmt.Fprintf(&b, "Description: %s\n", orNone(pc.Course.Description))
	fmt.Fprintf(&b, "Topic: %s\n", r.Topic)
	fmt.Fprintf(&b, "Difficulty: %s\n", r.Difficulty)
	types := make([]string, len(r.QuestionTypes))
	for i, t := range r.QuestionTypes {
		types[i] = string(t)
	}
	fmt.Fprintf(&b, "Question types: %s\n", strings.Join(types, ", "))

	fmt.Fprintf(&b, "\nStudent performance: average %.1f, trend %s\n", pc.Average, pc.Trend)

	b.WriteString("\nWeak concepts:\n")
	if len(pc.Weaknesses) == 0 {
		b.WriteString("None\n")
	}
	for i, w := range pc.Weaknesses {
		fmt.Fprintf(&b, "%d. %s (accuracy %.0f%%, flagged %d times)\n", i+1, w.Concept, w.Accuracy*100, w.OccurrenceCount)
	}

	b.WriteString("\nStrong concepts:\n")
	if len(pc.Strengths) == 0 {
		b.WriteString("None\n")
	}
	for i, s := range pc.Strengths {
		fmt.Fprintf(&b, "%d. %s (accuracy %.0f%%)\n", i+1, s.Concept, s.Accuracy*100)
	}

	weak, strong := pc.split(cfg.WeaknessShare)
	fmt.Fprintf(&b, "\nGenerate exactly %d questions.\n", r.QuestionCount)
	switch {
	case weak > 0 && strong > 0:
		fmt.Fprintf(&b, "About %d questions should target the weak concepts and about %d should reinforce the strong concepts.\n", weak, strong)
	case weak > 0:
		b.WriteString("All questions should target the weak concepts.\n")
	case strong > 0:
		b.WriteString("All questions should build on the strong concepts at a higher level.\n")
	default:
		b.WriteString("Cover the core ideas of the topic.\n")
	}
	fmt.Fprintf(&b, "Use only these question types: %s.\n", strings.Join(types, ", "))
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
