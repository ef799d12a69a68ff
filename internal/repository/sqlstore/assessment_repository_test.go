package sqlstore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/sqlflash/internal/db"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
	"github.com/vytor/sqlflash/internal/repository/sqlstore"
	"github.com/vytor/sqlflash/internal/testutil"
)

type AssessmentRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.AssessmentRepository
}

func (s *AssessmentRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlstore.NewAssessmentRepository(s.db)
}

func (s *AssessmentRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *AssessmentRepositorySuite) TestQuestionsOrdered() {
	ctx := context.Background()
	for i, id := range []string{"q3", "q1", "q2"} {
		order := map[string]int{"q1": 1, "q2": 2, "q3": 3}[id]
		s.Require().NoError(s.repo.UpsertQuestion(ctx, models.AssessmentQuestion{
			ID:               id,
			Type:             models.QuestionMultipleChoice,
			Data:             json.RawMessage(`{"question":"?"}`),
			SkillCategory:    "basic",
			SpecificSkills:   []string{"WHERE Clause"},
			DifficultyWeight: float64(i + 1),
			DisplayOrder:     order,
		}))
	}

	qs, err := s.repo.ListQuestions(ctx)
	s.Require().NoError(err)
	s.Require().Len(qs, 3)
	s.Equal("q1", qs[0].ID)
	s.Equal([]string{"WHERE Clause"}, qs[0].SpecificSkills)
	s.JSONEq(`{"question":"?"}`, string(qs[0].Data))

	q, err := s.repo.GetQuestion(ctx, "q2")
	s.Require().NoError(err)
	s.Equal(3.0, q.DifficultyWeight)
}

func (s *AssessmentRepositorySuite) TestResponsesAndDeferredGrade() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Create(ctx, models.Assessment{ID: "a1", UserID: "u1"}))

	s.Require().NoError(s.repo.InsertResponse(ctx, models.AssessmentResponse{
		ID: "r1", AssessmentID: "a1", QuestionID: "q1", UserID: "u1",
		ResponseData: json.RawMessage(`{"query":"SELECT 1"}`),
		QuestionType: models.QuestionWriteQuery,
		SkillTags:    []string{"CTEs"},
		Graded:       false,
	}))

	ok, err := s.repo.ApplyDeferredGrade(ctx, "r1", models.Grade{IsCorrect: true, Score: 90, Feedback: "nice"})
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.repo.ApplyDeferredGrade(ctx, "r1", models.Grade{Score: 10, Feedback: "second"})
	s.Require().NoError(err)
	s.False(ok, "a graded response is not regraded")

	rs, err := s.repo.ListResponses(ctx, "a1")
	s.Require().NoError(err)
	s.Require().Len(rs, 1)
	s.Equal(90, rs[0].Score)
	s.True(rs[0].Graded)
	s.Equal([]string{"CTEs"}, rs[0].SkillTags)
	s.Equal(models.QuestionWriteQuery, rs[0].QuestionType)
}

func (s *AssessmentRepositorySuite) TestCompleteAndProfile() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Create(ctx, models.Assessment{ID: "a1", UserID: "u1"}))

	s.ErrorIs(s.repo.Complete(ctx, models.Assessment{ID: "missing"}), repository.ErrNotFound)

	s.Require().NoError(s.repo.Complete(ctx, models.Assessment{
		ID:               "a1",
		TimeSpentSeconds: 300,
		OverallScore:     72,
		SkillScores:      map[string]int{"JOINs": 72},
		RecommendedLevel: "intermediate+",
		Recommendations:  &models.Recommendations{SuggestedDifficulty: "intermediate+", TopicsToFocus: []string{}},
	}))

	a, err := s.repo.Get(ctx, "a1")
	s.Require().NoError(err)
	s.Equal(models.AssessmentCompleted, a.Status)
	s.NotNil(a.CompletedAt)
	s.Equal(map[string]int{"JOINs": 72}, a.SkillScores)
	s.Equal("intermediate+", a.Recommendations.SuggestedDifficulty)

	s.Require().NoError(s.repo.UpsertSkillProfile(ctx, models.SkillProfile{
		UserID: "u1", SkillScores: map[string]int{"JOINs": 72}, RecommendedLevel: "intermediate+", LastAssessmentID: "a1",
	}))
	p, err := s.repo.GetSkillProfile(ctx, "u1")
	s.Require().NoError(err)
	s.Equal("a1", p.LastAssessmentID)
	s.Empty(p.WeakSkills)

	none, err := s.repo.GetSkillProfile(ctx, "u2")
	s.Require().NoError(err)
	s.Nil(none)
}

func TestAssessmentRepositorySuite(t *testing.T) {
	suite.Run(t, new(AssessmentRepositorySuite))
}
