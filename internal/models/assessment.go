package models

import (
	"encoding/json"
	"time"
)

// QuestionType selects how a response is graded.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionReadQuery      QuestionType = "read_query"
	QuestionFindError      QuestionType = "find_error"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionWriteQuery     QuestionType = "write_query"
)

// Deferred reports whether responses of this type need free-text grading.
func (t QuestionType) Deferred() bool {
	return t == QuestionWriteQuery
}

// Assessment statuses
const (
	AssessmentInProgress = "in_progress"
	AssessmentCompleted  = "completed"
)

// AssessmentQuestion is one question in the skill assessment.
type AssessmentQuestion struct {
	ID               string          `json:"id" yaml:"id"`
	Type             QuestionType    `json:"question_type" yaml:"type"`
	Data             json.RawMessage `json:"question_data" yaml:"-"`
	SkillCategory    string          `json:"skill_category" yaml:"skill_category"`
	SpecificSkills   []string        `json:"specific_skills" yaml:"specific_skills"`
	DifficultyWeight float64         `json:"difficulty_weight" yaml:"difficulty_weight"`
	DisplayOrder     int             `json:"display_order" yaml:"display_order"`
}

// QuestionData is the union of fields used by the question types.
type QuestionData struct {
	Question         string   `json:"question"`
	Options          []string `json:"options,omitempty"`
	CorrectAnswer    *int     `json:"correctAnswer,omitempty"`
	Explanation      string   `json:"explanation,omitempty"`
	Description      string   `json:"description,omitempty"`
	SolutionQuery    string   `json:"solutionQuery,omitempty"`
	Query            string   `json:"query,omitempty"`
	FixedQuery       string   `json:"fixedQuery,omitempty"`
	ErrorDescription string   `json:"errorDescription,omitempty"`
	Blanks           []Blank  `json:"blanks,omitempty"`
}

// Blank is one gap in a fill_blank question.
type Blank struct {
	Position          int      `json:"position"`
	CorrectAnswer     string   `json:"correctAnswer"`
	AcceptableAnswers []string `json:"acceptableAnswers,omitempty"`
}

// ResponseData is the union of fields a learner may submit.
type ResponseData struct {
	SelectedOption   *int     `json:"selectedOption,omitempty"`
	Query            string   `json:"query,omitempty"`
	FixedQuery       string   `json:"fixedQuery,omitempty"`
	ErrorDescription string   `json:"errorDescription,omitempty"`
	Blanks           []string `json:"blanks,omitempty"`
	Skipped          bool     `json:"skipped,omitempty"`
}

// Grade is the outcome of grading one response.
type Grade struct {
	IsCorrect bool   `json:"isCorrect"`
	Score     int    `json:"score"`
	Feedback  string `json:"feedback"`
}

// AssessmentResponse is an answered or skipped question with a snapshot of
// the question's scoring metadata.
type AssessmentResponse struct {
	ID               string          `json:"id"`
	AssessmentID     string          `json:"assessment_id"`
	QuestionID       string          `json:"question_id"`
	UserID           string          `json:"user_id"`
	ResponseData     json.RawMessage `json:"response_data"`
	IsCorrect        bool            `json:"is_correct"`
	Score            int             `json:"score"`
	Feedback         string          `json:"feedback"`
	Graded           bool            `json:"graded"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
	CreatedAt        time.Time       `json:"created_at"`

	QuestionType     QuestionType    `json:"question_type"`
	QuestionData     json.RawMessage `json:"-"`
	SkillTags        []string        `json:"skill_tags"`
	DifficultyWeight float64         `json:"difficulty_weight"`
}

// Recommendations summarizes what a learner should study next.
type Recommendations struct {
	SuggestedDifficulty string   `json:"suggestedDifficulty"`
	TopicsToFocus       []string `json:"topicsToFocus"`
	TutorialsToTake     []string `json:"tutorialsToTake"`
	PracticeProblems    []string `json:"practiceProblems"`
}

// Assessment is one attempt at the skill assessment.
type Assessment struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	Status           string           `json:"status"`
	StartedAt        time.Time        `json:"started_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	TimeSpentSeconds int              `json:"time_spent_seconds"`
	OverallScore     int              `json:"overall_score"`
	SkillScores      map[string]int   `json:"skill_scores,omitempty"`
	RecommendedLevel string           `json:"recommended_level,omitempty"`
	Recommendations  *Recommendations `json:"recommendations,omitempty"`
}

// SkillProfile is the latest per-user skill summary.
type SkillProfile struct {
	UserID           string         `json:"user_id"`
	SkillScores      map[string]int `json:"skill_scores"`
	WeakSkills       []string       `json:"weak_skills"`
	StrongSkills     []string       `json:"strong_skills"`
	RecommendedLevel string         `json:"recommended_level"`
	LastAssessmentID string         `json:"last_assessment_id"`
	LastAssessedAt   time.Time      `json:"last_assessed_at"`
}

// AssessmentResult is returned when an assessment completes.
type AssessmentResult struct {
	OverallScore     int             `json:"overallScore"`
	SkillScores      map[string]int  `json:"skillScores"`
	Recommendations  Recommendations `json:"recommendations"`
	RecommendedLevel string          `json:"recommendedLevel"`
	WeakSkills       []string        `json:"weakSkills"`
	StrongSkills     []string        `json:"strongSkills"`
}
