package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/sqlflash/internal/models"
)

type captureRecorder struct {
	events []models.LLMEvent
	err    error
}

func (c *captureRecorder) Record(_ context.Context, e models.LLMEvent) error {
	c.events = append(c.events, e)
	return c.err
}

func TestLogging_RecordsEvents(t *testing.T) {
	rec := &captureRecorder{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Usage: Usage{InputTokens: 10, OutputTokens: 4}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("boom")}},
	)
	p := WithLogging(mock, "anthropic", rec)
	ctx := WithPurpose(context.Background(), PurposeOptions)

	_, err := p.Generate(ctx, Request{})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	require.Len(t, rec.events, 2)
	assert.True(t, rec.events[0].Success)
	assert.Equal(t, PurposeOptions, rec.events[0].Purpose)
	assert.Equal(t, 10, rec.events[0].InputTokens)
	assert.False(t, rec.events[1].Success)
	assert.Contains(t, rec.events[1].ErrorMessage, "boom")
}

func TestLogging_RecorderFailureIgnored(t *testing.T) {
	rec := &captureRecorder{err: errors.New("db down")}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	_, err := WithLogging(mock, "openai", rec).Generate(context.Background(), Request{})
	assert.NoError(t, err)
}

func TestPurposeFrom_Default(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
}
