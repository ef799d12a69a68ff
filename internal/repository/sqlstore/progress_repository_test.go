package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/sqlflash/internal/db"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
	"github.com/vytor/sqlflash/internal/repository/sqlstore"
	"github.com/vytor/sqlflash/internal/testutil"
)

type ProgressRepositorySuite struct {
	suite.Suite
	db      *db.DB
	cards   []models.Card
	repo    repository.ProgressRepository
	options repository.OptionsRepository
	stats   repository.StatsRepository
}

func (s *ProgressRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlstore.NewProgressRepository(s.db)
	s.options = sqlstore.NewOptionsRepository(s.db)
	s.stats = sqlstore.NewStatsRepository(s.db)

	s.cards = testutil.Cards(models.LevelBasic, "basic", 3)
	_, err := sqlstore.NewCardRepository(s.db).InsertBatch(context.Background(), s.cards)
	s.Require().NoError(err)
}

func (s *ProgressRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ProgressRepositorySuite) TestRecordAttemptIncrements() {
	ctx := context.Background()
	card := s.cards[0]

	p, err := s.repo.RecordAttempt(ctx, "u1", card, false)
	s.Require().NoError(err)
	s.Equal(1, p.TimesSeen)
	s.Equal(0, p.TimesCorrect)

	p, err = s.repo.RecordAttempt(ctx, "u1", card, true)
	s.Require().NoError(err)
	s.Equal(2, p.TimesSeen)
	s.Equal(1, p.TimesCorrect)
	s.Equal(card.Topic, p.Topic)
	s.Equal(models.LevelBasic, p.Level)

	other, err := s.repo.Get(ctx, "u2", card.ID)
	s.Require().NoError(err)
	s.Nil(other)
}

func (s *ProgressRepositorySuite) TestGetForCards() {
	ctx := context.Background()
	_, err := s.repo.RecordAttempt(ctx, "u1", s.cards[0], true)
	s.Require().NoError(err)
	_, err = s.repo.RecordAttempt(ctx, "u1", s.cards[2], false)
	s.Require().NoError(err)

	got, err := s.repo.GetForCards(ctx, "u1", []string{s.cards[0].ID, s.cards[1].ID, s.cards[2].ID})
	s.Require().NoError(err)
	s.Len(got, 2)
	s.Equal(1, got[s.cards[0].ID].TimesCorrect)
	s.Equal(0, got[s.cards[2].ID].TimesCorrect)

	empty, err := s.repo.GetForCards(ctx, "u1", nil)
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *ProgressRepositorySuite) TestOptionsCache() {
	ctx := context.Background()
	card := s.cards[1]

	opts, err := s.options.Get(ctx, "u1", card.ID)
	s.Require().NoError(err)
	s.Nil(opts)

	want := []models.AnswerOption{{Text: "a"}, {Text: "b", Correct: true}, {Text: "c"}, {Text: "d"}}
	s.Require().NoError(s.options.Put(ctx, "u1", card.ID, want))
	s.Require().NoError(s.options.Put(ctx, "u1", card.ID, want))

	opts, err = s.options.Get(ctx, "u1", card.ID)
	s.Require().NoError(err)
	s.Equal(want, opts)
}

func (s *ProgressRepositorySuite) TestStatsXP() {
	ctx := context.Background()

	none, err := s.stats.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Nil(none)

	s.Require().NoError(s.stats.RecordReview(ctx, "u1", true))
	s.Require().NoError(s.stats.RecordReview(ctx, "u1", false))

	st, err := s.stats.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(2, st.TotalFlashcardsReviewed)
	s.Equal(models.XPCorrectAnswer+models.XPWrongAnswer, st.XP)
}

func TestProgressRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProgressRepositorySuite))
}
