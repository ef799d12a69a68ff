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

var progressColumns = []string{"user_id", "card_id", "times_seen", "times_correct", "last_seen", "topic", "level"}

type progressRepository struct {
	db *db.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(d *db.DB) repository.ProgressRepository {
	return &progressRepository{db: d}
}

func (r *progressRepository) RecordAttempt(ctx context.Context, userID string, card models.Card, correct bool) (*models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("recording attempt: user=%s, card=%s, correct=%t", userID, card.ID, correct)

	timesCorrect := 0
	if correct {
		timesCorrect = 1
	}

	query, args, err := r.db.Builder().Insert("flashcard_progress").
		Columns(progressColumns...).
		Values(userID, card.ID, 1, timesCorrect, time.Now().UTC(), card.Topic, string(card.Level)).
		Suffix(`ON CONFLICT (user_id, card_id) DO UPDATE SET
    times_seen = flashcard_progress.times_seen + 1,
    times_correct = flashcard_progress.times_correct + EXCLUDED.times_correct,
    last_seen = EXCLUDED.last_seen,
    topic = EXCLUDED.topic,
    level = EXCLUDED.level`).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to record attempt: %v", err)
		return nil, err
	}
	return r.Get(ctx, userID, card.ID)
}

func (r *progressRepository) Get(ctx context.Context, userID, cardID string) (*models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	query, args, err := r.db.Builder().Select(progressColumns...).From("flashcard_progress").
		Where(squirrel.Eq{"user_id": userID, "card_id": cardID}).ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *progressRepository) GetForCards(ctx context.Context, userID string, cardIDs []string) (map[string]models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	out := make(map[string]models.Progress, len(cardIDs))
	if len(cardIDs) == 0 {
		return out, nil
	}
	log.Debug("loading progress: user=%s, cards=%d", userID, len(cardIDs))

	query, args, err := r.db.Builder().Select(progressColumns...).From("flashcard_progress").
		Where(squirrel.Eq{"user_id": userID, "card_id": cardIDs}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query progress: %v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out[p.CardID] = p
	}
	return out, rows.Err()
}

func scanProgress(row rowScanner) (models.Progress, error) {
	var p models.Progress
	var level string
	err := row.Scan(&p.UserID, &p.CardID, &p.TimesSeen, &p.TimesCorrect, &p.LastSeen, &p.Topic, &level)
	p.Level = models.Level(level)
	return p, err
}
