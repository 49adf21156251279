// Package events publishes pipeline events over watermill.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicQuizGenerated carries QuizGenerated payloads.
const TopicQuizGenerated = "quiz.generated"

// QuizGenerated is emitted after a quiz has been generated and stored.
type QuizGenerated struct {
	QuizID         string    `json:"quiz_id"`
	StudentID      string    `json:"student_id"`
	CourseID       string    `json:"course_id"`
	Topic          string    `json:"topic"`
	QuestionCount  int       `json:"question_count"`
	Source         string    `json:"source"`
	Tier           string    `json:"tier"`
	TargetConcepts []string  `json:"target_concepts"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Publisher publishes QuizGenerated events.
type Publisher interface {
	PublishQuizGenerated(ctx context.Context, ev QuizGenerated) error
}

// Bus publishes events to a watermill publisher.
type Bus struct {
	pub    message.Publisher
	logger *slog.Logger
}

// NewBus wraps pub. A nil logger uses slog.Default().
func NewBus(pub message.Publisher, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{pub: pub, logger: logger}
}

// NewGoChannel returns an in-process pub/sub. Messages published with no
// subscriber are dropped.
func NewGoChannel(logger *slog.Logger) *gochannel.GoChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
}

// PublishQuizGenerated encodes ev and publishes it on TopicQuizGenerated.
func (b *Bus) PublishQuizGenerated(ctx context.Context, ev QuizGenerated) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", TopicQuizGenerated, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("student_id", ev.StudentID)
	msg.Metadata.Set("source", ev.Source)

	if err := b.pub.Publish(TopicQuizGenerated, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicQuizGenerated, err)
	}
	b.logger.Debug("event published", "topic", TopicQuizGenerated, "quiz_id", ev.QuizID)
	return nil
}

// Close closes the underlying publisher.
func (b *Bus) Close() error {
	return b.pub.Close()
}

// DecodeQuizGenerated decodes a message published by PublishQuizGenerated.
func DecodeQuizGenerated(msg *message.Message) (QuizGenerated, error) {
	var ev QuizGenerated
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return QuizGenerated{}, fmt.Errorf("decode %s: %w", TopicQuizGenerated, err)
	}
	return ev, nil
}
