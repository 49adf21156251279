package quizgen

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// Validator checks a candidate question after its schema check.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in errors and logs.
	Name() string

	// Validate returns nil if q passes.
	Validate(q *Question) *ValidationError
}

// ValidationError describes why a candidate was discarded.
type ValidationError struct {
	Validator string
	Message   string

	// Position is the 1-based index of the candidate in the model output.
	Position int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("candidate %d: validator %q: %s", e.Position, e.Validator, e.Message)
}

// StructuralValidator checks the prompt is present and bounded.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question) *ValidationError {
	if strings.TrimSpace(q.Prompt) == "" {
		return &ValidationError{Validator: v.Name(), Message: "prompt is empty"}
	}
	if len(q.Prompt) > 1000 {
		return &ValidationError{Validator: v.Name(), Message: "prompt exceeds 1000 characters"}
	}
	return nil
}

// ChoiceValidator enforces the multiple choice contract: at least two
// non-empty options and an answer index within range.
type ChoiceValidator struct{}

func (v *ChoiceValidator) Name() string { return "multiple-choice" }

func (v *ChoiceValidator) Validate(q *Question) *ValidationError {
	if q.Type != TypeMultipleChoice {
		return nil
	}
	if len(q.Options) < 2 {
		return &ValidationError{Validator: v.Name(), Message: "fewer than 2 options"}
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %d is empty", i)}
		}
	}
	idx, ok := answerIndex(q.CorrectAnswer)
	if !ok {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("correct_answer %q is not an option index", q.CorrectAnswer)}
	}
	if idx < 0 || idx >= len(q.Options) {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("correct_answer %d out of range", idx)}
	}
	return nil
}

// TrueFalseValidator requires a true/false answer, case-insensitively.
type TrueFalseValidator struct{}

func (v *TrueFalseValidator) Name() string { return "true-false" }

func (v *TrueFalseValidator) Validate(q *Question) *ValidationError {
	if q.Type != TypeTrueFalse {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(q.CorrectAnswer)) {
	case "true", "false":
		return nil
	}
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("correct_answer %q is not true or false", q.CorrectAnswer)}
}

// AnswerValidator requires an answer for free-text questions.
type AnswerValidator struct{}

func (v *AnswerValidator) Name() string { return "answer" }

func (v *AnswerValidator) Validate(q *Question) *ValidationError {
	if q.Type != TypeShortAnswer && q.Type != TypeFillBlank {
		return nil
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return &ValidationError{Validator: v.Name(), Message: "correct_answer is empty"}
	}
	return nil
}

// answerIndex parses a multiple choice answer. Integers are taken as
// 0-based indexes; a single letter A-Z maps to its position.
func answerIndex(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	if len(s) == 1 {
		c := s[0] | 0x20
		if c >= 'a' && c <= 'z' {
			return int(c - 'a'), true
		}
	}
	return 0, false
}

// wireQuestion is a candidate after defaults and the schema check.
type wireQuestion struct {
	Type          QuestionType    `json:"type"`
	Prompt        string          `json:"prompt"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
	Difficulty    string          `json:"difficulty"`
	Tags          []string        `json:"tags"`
	Points        float64         `json:"points"`
}

// applyDefaults fills the optional fields of a decoded candidate.
func applyDefaults(doc map[string]any) {
	if t, _ := doc["type"].(string); t == "" {
		doc["type"] = string(TypeMultipleChoice)
	}
	if p, ok := doc["points"].(float64); !ok || p < 1 || p != math.Trunc(p) {
		doc["points"] = float64(DefaultPoints)
	}
	d, _ := doc["difficulty"].(string)
	d = strings.ToLower(strings.TrimSpace(d))
	if !attempt.Difficulty(d).Valid() {
		d = string(attempt.DifficultyMedium)
	}
	doc["difficulty"] = d
	tags := []any{}
	if raw, ok := doc["tags"].([]any); ok {
		for _, tag := range raw {
			if s, ok := tag.(string); ok {
				tags = append(tags, s)
			}
		}
	}
	doc["tags"] = tags
}

// enhance turns one raw candidate into a question, or explains why not.
func enhance(raw json.RawMessage, validators []Validator) (*Question, *ValidationError) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return nil, &ValidationError{Validator: "decode", Message: "candidate is not an object"}
	}
	applyDefaults(doc)

	t, _ := doc["type"].(string)
	qt := QuestionType(t)
	if !qt.Valid() {
		return nil, &ValidationError{Validator: "schema", Message: fmt.Sprintf("unsupported type %q", t)}
	}
	if err := checkSchema(qt, doc); err != nil {
		return nil, &ValidationError{Validator: "schema", Message: err.Error()}
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, &ValidationError{Validator: "decode", Message: err.Error()}
	}
	var w wireQuestion
	if err := json.Unmarshal(normalized, &w); err != nil {
		return nil, &ValidationError{Validator: "decode", Message: err.Error()}
	}

	q := &Question{
		Type:          w.Type,
		Prompt:        strings.TrimSpace(w.Prompt),
		CorrectAnswer: answerText(w.CorrectAnswer),
		Explanation:   strings.TrimSpace(w.Explanation),
		Difficulty:    attempt.Difficulty(w.Difficulty),
		Tags:          cleanTags(w.Tags),
		Points:        int(w.Points),
	}
	if q.Type == TypeMultipleChoice {
		q.Options = w.Options
	}

	for _, v := range validators {
		if verr := v.Validate(q); verr != nil {
			return nil, verr
		}
	}
	canonicalize(q)
	return q, nil
}

// answerText renders a JSON answer value as text.
func answerText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func canonicalize(q *Question) {
	switch q.Type {
	case TypeMultipleChoice:
		if idx, ok := answerIndex(q.CorrectAnswer); ok {
			q.CorrectAnswer = strconv.Itoa(idx)
		}
	case TypeTrueFalse:
		q.CorrectAnswer = strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// validateCandidates runs every candidate through enhance and renumbers
// the survivors from 1.
func validateCandidates(cands []json.RawMessage, validators []Validator) ([]Question, []*ValidationError) {
	var (
		valid    []Question
		rejected []*ValidationError
	)
	for i, raw := range cands {
		q, verr := enhance(raw, validators)
		if verr != nil {
			verr.Position = i + 1
			rejected = append(rejected, verr)
			continue
		}
		valid = append(valid, *q)
	}
	renumber(valid)
	return valid, rejected
}

func renumber(qs []Question) {
	for i := range qs {
		qs[i].ID = i + 1
	}
}
