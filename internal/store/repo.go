package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// Purpose and Subject filter LLM request events by label.
	Purpose string
	Subject string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	Tier         string
	Subject      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
	CostUSD      float64
}

// LLMRequestEvent is a persisted LLM request with its ordering metadata.
type LLMRequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMRequests returns events newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// LLMRequest returns the event with the given sequence, or nil.
	LLMRequest(ctx context.Context, sequence int64) (*LLMRequestEvent, error)
}

// QuizRecord is a generated quiz as persisted. Body holds the full quiz
// document as JSON; the other fields are denormalized for listing.
type QuizRecord struct {
	ID            string
	Sequence      int64
	StudentID     string
	CourseID      string
	Title         string
	Source        string
	Tier          string
	QuestionCount int
	Body          []byte
	CreatedAt     time.Time
}

// QuizRepo stores generated quizzes. Quizzes are immutable once saved.
type QuizRepo interface {
	// SaveQuiz writes q in a single insert.
	SaveQuiz(ctx context.Context, q *QuizRecord) error

	// Quiz returns the quiz with the given id, or attempt.ErrNotFound.
	Quiz(ctx context.Context, id string) (*QuizRecord, error)

	// ListQuizzes returns a student's quizzes newest first.
	ListQuizzes(ctx context.Context, studentID string, limit int) ([]QuizRecord, error)
}
