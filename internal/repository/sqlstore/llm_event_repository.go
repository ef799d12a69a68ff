package sqlstore

import (
	"context"

	"github.com/vytor/sqlflash/internal/db"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
)

type llmEventRepository struct {
	db *db.DB
}

// NewLLMEventRepository creates a new LLMEventRepository implementation
func NewLLMEventRepository(d *db.DB) repository.LLMEventRepository {
	return &llmEventRepository{db: d}
}

func (r *llmEventRepository) Record(ctx context.Context, e models.LLMEvent) error {
	query, args, err := r.db.Builder().Insert("llm_events").
		Columns("provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message", "created_at").
		Values(e.Provider, e.Model, e.Purpose, e.InputTokens, e.OutputTokens, e.LatencyMs, e.Success, e.ErrorMessage, e.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).WithPrefix("llm_event_repo").Error("failed to record llm event: %v", err)
		return err
	}
	return nil
}
