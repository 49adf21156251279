package quizgen

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// baseProperties are shared by every question variant.
func baseProperties(t QuestionType) map[string]any {
	return map[string]any{
		"id":          map[string]any{"type": []any{"integer", "string", "null"}},
		"type":        map[string]any{"const": string(t)},
		"prompt":      map[string]any{"type": "string", "minLength": 1},
		"explanation": map[string]any{"type": "string"},
		"difficulty":  map[string]any{"enum": []any{"easy", "medium", "hard"}},
		"tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"points": map[string]any{"type": "integer", "minimum": 1},
	}
}

// variantSchemas holds one schema per question type. Unknown keys are
// tolerated so extra model output does not discard a good question.
var variantSchemas = map[QuestionType]map[string]any{
	TypeMultipleChoice: variant(TypeMultipleChoice,
		map[string]any{
			"options": map[string]any{
				"type":     "array",
				"minItems": 2,
				"items":    map[string]any{"type": "string"},
			},
			"correct_answer": map[string]any{"type": []any{"integer", "string"}},
		},
		"options", "correct_answer"),
	TypeTrueFalse: variant(TypeTrueFalse,
		map[string]any{
			"correct_answer": map[string]any{"type": []any{"boolean", "string"}},
		},
		"correct_answer"),
	TypeShortAnswer: variant(TypeShortAnswer,
		map[string]any{
			"correct_answer": map[string]any{"type": []any{"string", "number"}},
		},
		"correct_answer"),
	TypeFillBlank: variant(TypeFillBlank,
		map[string]any{
			"correct_answer": map[string]any{"type": []any{"string", "number"}},
		},
		"correct_answer"),
}

func variant(t QuestionType, extra map[string]any, required ...string) map[string]any {
	props := baseProperties(t)
	for k, v := range extra {
		props[k] = v
	}
	req := []any{"type", "prompt"}
	for _, r := range required {
		req = append(req, r)
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   req,
	}
}

// compiledSchemas caches compiled schemas by question type.
var compiledSchemas sync.Map // map[QuestionType]*jsonschema.Schema

// checkSchema validates a decoded candidate against its variant schema.
func checkSchema(t QuestionType, doc any) error {
	compiled, err := schemaFor(t)
	if err != nil {
		return err
	}
	return compiled.Validate(doc)
}

func schemaFor(t QuestionType) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(t); ok {
		return cached.(*jsonschema.Schema), nil
	}
	def, ok := variantSchemas[t]
	if !ok {
		return nil, fmt.Errorf("unsupported question type %q", t)
	}

	// The compiler wants a plain decoded JSON value.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", t, err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", t, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://question-%s.json", t)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", t, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", t, err)
	}
	compiledSchemas.Store(t, compiled)
	return compiled, nil
}
