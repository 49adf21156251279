package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/adaptiq/internal/store"
)

// LoggingProvider records every call as an LLM request event, including the
// raw response text, so malformed generations can be reviewed offline.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	logger    *slog.Logger
}

// WithLogging wraps p. repo may be nil, in which case only the structured
// log line is written.
func WithLogging(p Provider, providerName string, repo store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, provider: providerName, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	labels := LabelsFrom(ctx)
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	ev := l.event(labels, req, resp, err, time.Since(start))
	attrs := []any{
		"provider", ev.Provider, "model", ev.Model, "purpose", ev.Purpose,
		"tier", ev.Tier, "subject", ev.Subject, "latency_ms", ev.LatencyMs,
	}
	if err != nil {
		l.logger.WarnContext(ctx, "llm request failed", append(attrs, "error", err)...)
	} else {
		l.logger.DebugContext(ctx, "llm request", append(attrs,
			"input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens,
			"stop_reason", resp.StopReason)...)
	}

	if l.eventRepo != nil {
		// The caller's deadline may already have passed; the record should
		// still be written.
		if recErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), ev); recErr != nil {
			l.logger.WarnContext(ctx, "failed to record llm request event", "error", recErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) event(labels Labels, req Request, resp *Response, err error, elapsed time.Duration) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     labels.Purpose,
		Tier:        labels.Tier,
		Subject:     labels.Subject,
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.ResponseBody = resp.Text
		if cost := LookupCost(ev.Model); cost != nil {
			ev.CostUSD = cost.Cost(ev.InputTokens, ev.OutputTokens)
		}
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	return ev
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders the prompt as the model saw it.
func serializeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	return b.String()
}
