package llm

import (
	"context"
	"time"

	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
)

// EventRecorder persists LLM call events.
type EventRecorder interface {
	Record(ctx context.Context, event models.LLMEvent) error
}

type loggingProvider struct {
	inner    Provider
	provider string
	events   EventRecorder
}

// WithLogging logs every call and records it through events when non-nil.
func WithLogging(p Provider, providerName string, events EventRecorder) Provider {
	return &loggingProvider{inner: p, provider: providerName, events: events}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	log := logger.FromContext(ctx).WithPrefix("llm")
	purpose := PurposeFrom(ctx)
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	event := models.LLMEvent{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		CreatedAt: time.Now().UTC(),
	}
	if resp != nil {
		event.Model = resp.Model
		event.InputTokens = resp.Usage.InputTokens
		event.OutputTokens = resp.Usage.OutputTokens
	}

	if err != nil {
		event.ErrorMessage = err.Error()
		log.Warn("LLM %s call failed after %dms: %v", purpose, event.LatencyMs, err)
	} else {
		log.Debug("LLM %s call ok: model=%s tokens=%d/%d latency=%dms",
			purpose, event.Model, event.InputTokens, event.OutputTokens, event.LatencyMs)
	}

	if l.events != nil {
		if recErr := l.events.Record(ctx, event); recErr != nil {
			log.Warn("Failed to record LLM event: %v", recErr)
		}
	}

	return resp, err
}

func (l *loggingProvider) ModelID() string { return l.inner.ModelID() }
