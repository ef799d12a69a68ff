package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/sqlflash/internal/db"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
)

var (
	assessmentColumns = []string{
		"id", "user_id", "status", "started_at", "completed_at", "time_spent_seconds",
		"overall_score", "skill_scores", "recommended_level", "recommendations",
	}
	questionColumns = []string{
		"id", "question_type", "question_data", "skill_category", "specific_skills", "difficulty_weight", "display_order",
	}
	responseColumns = []string{
		"id", "assessment_id", "question_id", "user_id", "response_data", "is_correct", "score", "feedback",
		"graded", "time_spent_seconds", "question_type", "question_data", "skill_tags", "difficulty_weight", "created_at",
	}
)

type assessmentRepository struct {
	db *db.DB
}

// NewAssessmentRepository creates a new AssessmentRepository implementation
func NewAssessmentRepository(d *db.DB) repository.AssessmentRepository {
	return &assessmentRepository{db: d}
}

func (r *assessmentRepository) Create(ctx context.Context, a models.Assessment) error {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")
	log.Debug("creating assessment: id=%s, user=%s", a.ID, a.UserID)

	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = models.AssessmentInProgress
	}

	query, args, err := r.db.Builder().Insert("assessments").
		Columns("id", "user_id", "status", "started_at").
		Values(a.ID, a.UserID, a.Status, a.StartedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create assessment: %v", err)
		return err
	}
	return nil
}

func (r *assessmentRepository) Get(ctx context.Context, id string) (*models.Assessment, error) {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")

	query, args, err := r.db.Builder().Select(assessmentColumns...).From("assessments").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var a models.Assessment
	var completedAt sql.NullTime
	var skillScores, recommendations string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.UserID, &a.Status, &a.StartedAt, &completedAt, &a.TimeSpentSeconds,
		&a.OverallScore, &skillScores, &a.RecommendedLevel, &recommendations,
	)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("assessment not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get assessment: %v", err)
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	if err := unmarshalJSON(skillScores, &a.SkillScores); err != nil {
		return nil, err
	}
	if recommendations != "" {
		a.Recommendations = &models.Recommendations{}
		if err := unmarshalJSON(recommendations, a.Recommendations); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *assessmentRepository) Complete(ctx context.Context, a models.Assessment) error {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")
	log.Debug("completing assessment: id=%s, overall=%d", a.ID, a.OverallScore)

	skillScores, err := marshalJSON(a.SkillScores)
	if err != nil {
		return err
	}
	recommendations := ""
	if a.Recommendations != nil {
		if recommendations, err = marshalJSON(a.Recommendations); err != nil {
			return err
		}
	}
	completedAt := time.Now().UTC()
	if a.CompletedAt != nil {
		completedAt = *a.CompletedAt
	}

	query, args, err := r.db.Builder().Update("assessments").
		Set("status", models.AssessmentCompleted).
		Set("completed_at", completedAt).
		Set("time_spent_seconds", a.TimeSpentSeconds).
		Set("overall_score", a.OverallScore).
		Set("skill_scores", skillScores).
		Set("recommended_level", a.RecommendedLevel).
		Set("recommendations", recommendations).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to complete assessment: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *assessmentRepository) ListQuestions(ctx context.Context) ([]models.AssessmentQuestion, error) {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")

	query, args, err := r.db.Builder().Select(questionColumns...).From("assessment_questions").
		OrderBy("display_order ASC", "id ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query questions: %v", err)
		return nil, err
	}
	defer rows.Close()

	questions := []models.AssessmentQuestion{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			log.Error("failed to scan question row: %v", err)
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *assessmentRepository) GetQuestion(ctx context.Context, id string) (*models.AssessmentQuestion, error) {
	query, args, err := r.db.Builder().Select(questionColumns...).From("assessment_questions").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("assessment_repo").Error("failed to get question: %v", err)
		return nil, err
	}
	return &q, nil
}

func (r *assessmentRepository) UpsertQuestion(ctx context.Context, q models.AssessmentQuestion) error {
	skills, err := marshalJSON(nonNil(q.SpecificSkills))
	if err != nil {
		return err
	}
	query, args, err := r.db.Builder().Insert("assessment_questions").
		Columns(questionColumns...).
		Values(q.ID, string(q.Type), string(q.Data), q.SkillCategory, skills, q.DifficultyWeight, q.DisplayOrder).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
    question_type = EXCLUDED.question_type,
    question_data = EXCLUDED.question_data,
    skill_category = EXCLUDED.skill_category,
    specific_skills = EXCLUDED.specific_skills,
    difficulty_weight = EXCLUDED.difficulty_weight,
    display_order = EXCLUDED.display_order`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).WithPrefix("assessment_repo").Error("failed to upsert question %s: %v", q.ID, err)
		return err
	}
	return nil
}

func (r *assessmentRepository) InsertResponse(ctx context.Context, resp models.AssessmentResponse) error {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")
	log.Debug("inserting response: assessment=%s, question=%s, graded=%t", resp.AssessmentID, resp.QuestionID, resp.Graded)

	tags, err := marshalJSON(nonNil(resp.SkillTags))
	if err != nil {
		return err
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.db.Builder().Insert("assessment_responses").
		Columns(responseColumns...).
		Values(
			resp.ID, resp.AssessmentID, resp.QuestionID, resp.UserID, rawOr(resp.ResponseData, "{}"),
			resp.IsCorrect, resp.Score, resp.Feedback, resp.Graded, resp.TimeSpentSeconds,
			string(resp.QuestionType), rawOr(resp.QuestionData, "{}"), tags, resp.DifficultyWeight, resp.CreatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert response: %v", err)
		return err
	}
	return nil
}

func (r *assessmentRepository) ListResponses(ctx context.Context, assessmentID string) ([]models.AssessmentResponse, error) {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")

	query, args, err := r.db.Builder().Select(responseColumns...).From("assessment_responses").
		Where(squirrel.Eq{"assessment_id": assessmentID}).
		OrderBy("created_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query responses: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.AssessmentResponse
	for rows.Next() {
		var resp models.AssessmentResponse
		var responseData, questionData, tags, qtype string
		if err := rows.Scan(
			&resp.ID, &resp.AssessmentID, &resp.QuestionID, &resp.UserID, &responseData,
			&resp.IsCorrect, &resp.Score, &resp.Feedback, &resp.Graded, &resp.TimeSpentSeconds,
			&qtype, &questionData, &tags, &resp.DifficultyWeight, &resp.CreatedAt,
		); err != nil {
			log.Error("failed to scan response row: %v", err)
			return nil, err
		}
		resp.ResponseData = json.RawMessage(responseData)
		resp.QuestionData = json.RawMessage(questionData)
		resp.QuestionType = models.QuestionType(qtype)
		if err := unmarshalJSON(tags, &resp.SkillTags); err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	log.Debug("found %d responses for assessment %s", len(out), assessmentID)
	return out, rows.Err()
}

func (r *assessmentRepository) ApplyDeferredGrade(ctx context.Context, responseID string, g models.Grade) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")

	query, args, err := r.db.Builder().Update("assessment_responses").
		Set("is_correct", g.IsCorrect).
		Set("score", g.Score).
		Set("feedback", g.Feedback).
		Set("graded", true).
		Where(squirrel.Eq{"id": responseID, "graded": false}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to apply grade to response %s: %v", responseID, err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		log.Debug("response %s already graded, grade ignored", responseID)
	}
	return n > 0, nil
}

func (r *assessmentRepository) UpsertSkillProfile(ctx context.Context, p models.SkillProfile) error {
	scores, err := marshalJSON(p.SkillScores)
	if err != nil {
		return err
	}
	weak, err := marshalJSON(nonNil(p.WeakSkills))
	if err != nil {
		return err
	}
	strong, err := marshalJSON(nonNil(p.StrongSkills))
	if err != nil {
		return err
	}
	if p.LastAssessedAt.IsZero() {
		p.LastAssessedAt = time.Now().UTC()
	}

	query, args, err := r.db.Builder().Insert("user_skill_profiles").
		Columns("user_id", "skill_scores", "weak_skills", "strong_skills", "recommended_level", "last_assessment_id", "last_assessed_at").
		Values(p.UserID, scores, weak, strong, p.RecommendedLevel, p.LastAssessmentID, p.LastAssessedAt).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
    skill_scores = EXCLUDED.skill_scores,
    weak_skills = EXCLUDED.weak_skills,
    strong_skills = EXCLUDED.strong_skills,
    recommended_level = EXCLUDED.recommended_level,
    last_assessment_id = EXCLUDED.last_assessment_id,
    last_assessed_at = EXCLUDED.last_assessed_at`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).WithPrefix("assessment_repo").Error("failed to upsert skill profile: %v", err)
		return err
	}
	return nil
}

func (r *assessmentRepository) GetSkillProfile(ctx context.Context, userID string) (*models.SkillProfile, error) {
	query, args, err := r.db.Builder().
		Select("user_id", "skill_scores", "weak_skills", "strong_skills", "recommended_level", "last_assessment_id", "last_assessed_at").
		From("user_skill_profiles").
		Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, err
	}

	var p models.SkillProfile
	var scores, weak, strong string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.UserID, &scores, &weak, &strong, &p.RecommendedLevel, &p.LastAssessmentID, &p.LastAssessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("assessment_repo").Error("failed to get skill profile: %v", err)
		return nil, err
	}
	for _, f := range []struct {
		raw string
		dst any
	}{{scores, &p.SkillScores}, {weak, &p.WeakSkills}, {strong, &p.StrongSkills}} {
		if err := unmarshalJSON(f.raw, f.dst); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func scanQuestion(row rowScanner) (models.AssessmentQuestion, error) {
	var q models.AssessmentQuestion
	var qtype, data, skills string
	if err := row.Scan(&q.ID, &qtype, &data, &q.SkillCategory, &skills, &q.DifficultyWeight, &q.DisplayOrder); err != nil {
		return q, err
	}
	q.Type = models.QuestionType(qtype)
	q.Data = json.RawMessage(data)
	return q, unmarshalJSON(skills, &q.SpecificSkills)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func rawOr(raw json.RawMessage, def string) string {
	if len(raw) == 0 {
		return def
	}
	return string(raw)
}
