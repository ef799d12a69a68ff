package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/sqlflash/internal/db"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
)

var cardColumns = []string{
	"id", "level", "topic", "question", "answer", "explanation", "example", "is_ai_generated", "created_at",
}

type cardRepository struct {
	db *db.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(d *db.DB) repository.CardRepository {
	return &cardRepository{db: d}
}

func (r *cardRepository) ordered(level models.Level, columns ...string) squirrel.SelectBuilder {
	return r.db.Builder().Select(columns...).
		From("flashcards").
		Where(squirrel.Eq{"level": string(level)}).
		OrderBy("is_ai_generated ASC", "created_at ASC", "id ASC")
}

func (r *cardRepository) List(ctx context.Context, level models.Level, offset, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: level=%s, offset=%d, limit=%d", level, offset, limit)

	// SQLite only accepts OFFSET after a LIMIT.
	if limit <= 0 {
		limit = math.MaxInt32
	}
	q := r.ordered(level, cardColumns...).Limit(uint64(limit))
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) Count(ctx context.Context, level models.Level) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query, args, err := r.db.Builder().Select("COUNT(*)").From("flashcards").
		Where(squirrel.Eq{"level": string(level)}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		log.Error("failed to count cards: %v", err)
		return 0, err
	}
	log.Debug("level %s has %d cards", level, n)
	return n, nil
}

func (r *cardRepository) IDsByLevel(ctx context.Context, level models.Level) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query, args, err := r.ordered(level, "id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query card ids: %v", err)
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *cardRepository) Get(ctx context.Context, id string) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%s", id)

	query, args, err := r.db.Builder().Select(cardColumns...).From("flashcards").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) InsertBatch(ctx context.Context, cards []models.Card) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	if len(cards) == 0 {
		return 0, nil
	}
	log.Debug("inserting %d cards", len(cards))

	inserted := 0
	err := r.db.Tx(ctx, func(tx *sql.Tx) error {
		for _, c := range cards {
			query, args, err := r.db.Builder().Insert("flashcards").
				Columns(cardColumns...).
				Values(cardValues(c)...).
				Suffix("ON CONFLICT (id) DO NOTHING").
				ToSql()
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				log.Error("failed to insert card %s: %v", c.ID, err)
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Debug("inserted %d of %d cards", inserted, len(cards))
	return inserted, nil
}

func (r *cardRepository) Upsert(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("upserting card: id=%s", c.ID)

	query, args, err := r.db.Builder().Insert("flashcards").
		Columns(cardColumns...).
		Values(cardValues(c)...).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
    level = EXCLUDED.level,
    topic = EXCLUDED.topic,
    question = EXCLUDED.question,
    answer = EXCLUDED.answer,
    explanation = EXCLUDED.explanation,
    example = EXCLUDED.example`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert card: %v", err)
		return err
	}
	return nil
}

func cardValues(c models.Card) []any {
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return []any{
		c.ID, string(c.Level), c.Topic, c.Question, c.Answer, c.Explanation, c.Example, c.IsAIGenerated, created,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.Card, error) {
	var c models.Card
	var level string
	err := row.Scan(&c.ID, &level, &c.Topic, &c.Question, &c.Answer, &c.Explanation, &c.Example, &c.IsAIGenerated, &c.CreatedAt)
	c.Level = models.Level(level)
	return c, err
}
