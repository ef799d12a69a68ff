package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/sqlflash/internal/db"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
	"github.com/vytor/sqlflash/internal/repository/sqlstore"
	"github.com/vytor/sqlflash/internal/testutil"
)

type CardRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.CardRepository
}

func (s *CardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlstore.NewCardRepository(s.db)
}

func (s *CardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CardRepositorySuite) TestInsertBatchAndList() {
	ctx := context.Background()
	cards := testutil.Cards(models.LevelBasic, "basic", 7)

	n, err := s.repo.InsertBatch(ctx, cards)
	s.Require().NoError(err)
	s.Equal(7, n)

	page, err := s.repo.List(ctx, models.LevelBasic, 0, 5)
	s.Require().NoError(err)
	s.Require().Len(page, 5)
	s.Equal("basic_1", page[0].ID)

	rest, err := s.repo.List(ctx, models.LevelBasic, 5, 5)
	s.Require().NoError(err)
	s.Require().Len(rest, 2)
	s.Equal("basic_6", rest[0].ID)

	none, err := s.repo.List(ctx, models.LevelExpert, 0, 5)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *CardRepositorySuite) TestInsertBatchSkipsExisting() {
	ctx := context.Background()
	cards := testutil.Cards(models.LevelBasic, "basic", 3)

	_, err := s.repo.InsertBatch(ctx, cards)
	s.Require().NoError(err)

	n, err := s.repo.InsertBatch(ctx, cards)
	s.Require().NoError(err)
	s.Zero(n)

	count, err := s.repo.Count(ctx, models.LevelBasic)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *CardRepositorySuite) TestSeedCardsOrderBeforeGenerated() {
	ctx := context.Background()
	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	generated := models.Card{ID: "basic_ai_1", Level: models.LevelBasic, Topic: "t", Question: "q", Answer: "a", IsAIGenerated: true, CreatedAt: early}
	seed := testutil.Cards(models.LevelBasic, "basic", 2)

	_, err := s.repo.InsertBatch(ctx, append([]models.Card{generated}, seed...))
	s.Require().NoError(err)

	ids, err := s.repo.IDsByLevel(ctx, models.LevelBasic)
	s.Require().NoError(err)
	s.Equal([]string{"basic_1", "basic_2", "basic_ai_1"}, ids)
}

func (s *CardRepositorySuite) TestGetAndUpsert() {
	ctx := context.Background()

	missing, err := s.repo.Get(ctx, "nope")
	s.Require().NoError(err)
	s.Nil(missing)

	card := testutil.Cards(models.LevelIntermediate, "inter", 1)[0]
	s.Require().NoError(s.repo.Upsert(ctx, card))

	card.Answer = "Updated answer"
	card.Explanation = "Because."
	s.Require().NoError(s.repo.Upsert(ctx, card))

	got, err := s.repo.Get(ctx, card.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("Updated answer", got.Answer)
	s.Equal("Because.", got.Explanation)
	s.Equal(models.LevelIntermediate, got.Level)
	s.False(got.IsAIGenerated)
}

func TestCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(CardRepositorySuite))
}
