package quizgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// ErrInvalidRequest is returned for malformed generation requests.
var ErrInvalidRequest = errors.New("invalid quiz request")

// MaxQuestionCount bounds a single generation request.
const MaxQuestionCount = 50

// Request is a quiz generation request.
type Request struct {
	StudentID     string             `json:"student_id" validate:"required"`
	CourseID      string             `json:"course_id" validate:"required"`
	Topic         string             `json:"topic" validate:"required,max=200"`
	Difficulty    attempt.Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	QuestionCount int                `json:"question_count" validate:"min=1,max=50"`
	QuestionTypes []QuestionType     `json:"question_types" validate:"omitempty,dive,oneof=multiple_choice true_false short_answer fill_blank"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks r and fills defaults for the optional fields.
func (r *Request) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.Difficulty == "" {
		r.Difficulty = attempt.DifficultyMedium
	}
	if len(r.QuestionTypes) == 0 {
		r.QuestionTypes = []QuestionType{TypeMultipleChoice}
	}
	return nil
}
