package llm

import "context"

// Labels annotate a call in the request event log.
type Labels struct {
	// Purpose names the consumer, e.g. "quiz-gen".
	Purpose string

	// Tier is the stage of a fallback chain serving the call.
	Tier string

	// Subject is who the output is for, usually a student id.
	Subject string
}

type labelsKey struct{}

// WithLabels attaches call labels to ctx, replacing any present.
func WithLabels(ctx context.Context, l Labels) context.Context {
	return context.WithValue(ctx, labelsKey{}, l)
}

// LabelsFrom returns the labels on ctx. Purpose is "unknown" when unset.
func LabelsFrom(ctx context.Context) Labels {
	l, _ := ctx.Value(labelsKey{}).(Labels)
	if l.Purpose == "" {
		l.Purpose = "unknown"
	}
	return l
}

// WithPurpose sets only the purpose label, keeping the others.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	l, _ := ctx.Value(labelsKey{}).(Labels)
	l.Purpose = purpose
	return WithLabels(ctx, l)
}

// WithTier sets only the tier label, keeping the others.
func WithTier(ctx context.Context, tier string) context.Context {
	l, _ := ctx.Value(labelsKey{}).(Labels)
	l.Tier = tier
	return WithLabels(ctx, l)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	return LabelsFrom(ctx).Purpose
}
