package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/sqlflash/internal/db"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
)

type statsRepository struct {
	db *db.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(d *db.DB) repository.StatsRepository {
	return &statsRepository{db: d}
}

func (r *statsRepository) RecordReview(ctx context.Context, userID string, correct bool) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	xp := models.XPWrongAnswer
	if correct {
		xp = models.XPCorrectAnswer
	}

	query, args, err := r.db.Builder().Insert("user_statistics").
		Columns("user_id", "total_flashcards_reviewed", "xp", "updated_at").
		Values(userID, 1, xp, time.Now().UTC()).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
    total_flashcards_reviewed = user_statistics.total_flashcards_reviewed + 1,
    xp = user_statistics.xp + EXCLUDED.xp,
    updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to record review: %v", err)
		return err
	}
	log.Debug("review recorded: user=%s, xp=+%d", userID, xp)
	return nil
}

func (r *statsRepository) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	query, args, err := r.db.Builder().
		Select("user_id", "total_flashcards_reviewed", "xp", "updated_at").
		From("user_statistics").
		Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, err
	}

	var s models.UserStats
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&s.UserID, &s.TotalFlashcardsReviewed, &s.XP, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get stats: %v", err)
		return nil, err
	}
	return &s, nil
}
