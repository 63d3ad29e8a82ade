package llm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingProvider is a decorator that logs every LLM request with its
// latency, token usage and estimated cost.
type LoggingProvider struct {
	inner  Provider
	logger *slog.Logger
}

// WithLogging wraps a Provider with request logging. A nil logger means
// slog.Default().
func WithLogging(p Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	attrs := []any{
		"purpose", PurposeFrom(ctx),
		"model", l.inner.ModelID(),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if id := RequestIDFrom(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}

	if err != nil {
		l.logger.WarnContext(ctx, "LLM request failed", append(attrs, "error", err)...)
		return nil, err
	}

	attrs = append(attrs,
		"served_by", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	if cost := LookupCost(resp.Model); cost != nil {
		attrs = append(attrs, "cost_usd", cost.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens))
	}
	l.logger.InfoContext(ctx, "LLM request", attrs...)
	l.logger.DebugContext(ctx, "LLM response body", "request_id", RequestIDFrom(ctx), "body", resp.Text())

	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
