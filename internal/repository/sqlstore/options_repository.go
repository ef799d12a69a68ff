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

type optionsRepository struct {
	db *db.DB
}

// NewOptionsRepository creates a new OptionsRepository implementation
func NewOptionsRepository(d *db.DB) repository.OptionsRepository {
	return &optionsRepository{db: d}
}

func (r *optionsRepository) Get(ctx context.Context, userID, cardID string) ([]models.AnswerOption, error) {
	log := logger.FromContext(ctx).WithPrefix("options_repo")

	query, args, err := r.db.Builder().Select("options").From("flashcard_options").
		Where(squirrel.Eq{"user_id": userID, "card_id": cardID}).ToSql()
	if err != nil {
		return nil, err
	}

	var raw string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no cached options: user=%s, card=%s", userID, cardID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get options: %v", err)
		return nil, err
	}

	var opts []models.AnswerOption
	if err := unmarshalJSON(raw, &opts); err != nil {
		log.Warn("discarding unreadable cached options for card %s: %v", cardID, err)
		return nil, nil
	}
	return opts, nil
}

func (r *optionsRepository) Put(ctx context.Context, userID, cardID string, opts []models.AnswerOption) error {
	log := logger.FromContext(ctx).WithPrefix("options_repo")

	raw, err := marshalJSON(opts)
	if err != nil {
		return err
	}
	query, args, err := r.db.Builder().Insert("flashcard_options").
		Columns("user_id", "card_id", "options", "created_at").
		Values(userID, cardID, raw, time.Now().UTC()).
		Suffix("ON CONFLICT (user_id, card_id) DO UPDATE SET options = EXCLUDED.options, created_at = EXCLUDED.created_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to cache options: %v", err)
		return err
	}
	log.Debug("cached options: user=%s, card=%s", userID, cardID)
	return nil
}
