package quizgen

import "time"

// Config controls the behavior of the Generator.
type Config struct {
	// Validators is the ordered chain run on every candidate after its
	// schema check. The first failure discards the candidate.
	Validators []Validator

	// MaxTokens is the token budget for each model call.
	MaxTokens int

	// Temperature controls model output randomness (0.0-1.0).
	Temperature float64

	// Timeout bounds each model call.
	Timeout time.Duration

	// MaxWeaknesses and MaxStrengths bound how much of the profile is
	// placed in the prompt.
	MaxWeaknesses int
	MaxStrengths  int

	// WeaknessShare is the fraction of questions aimed at weaknesses.
	WeaknessShare float64
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&ChoiceValidator{},
			&TrueFalseValidator{},
			&AnswerValidator{},
		},
		MaxTokens:     2048,
		Temperature:   0.7,
		Timeout:       30 * time.Second,
		MaxWeaknesses: 5,
		MaxStrengths:  3,
		WeaknessShare: 0.7,
	}
}
