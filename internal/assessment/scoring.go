// Package assessment grades skill-assessment responses and turns them into
// per-skill scores, a recommended level and study recommendations.
package assessment

import (
	"math"
	"sort"

	"github.com/vytor/sqlflash/internal/models"
)

// Score thresholds.
const (
	WeakThreshold   = 60
	StrongThreshold = 80

	advancedThreshold     = 70
	intermediatePlusScore = 70
	intermediateScore     = 40

	maxRecommendations = 3
)

// Recommended levels.
const (
	LevelBasic            = "basic"
	LevelIntermediate     = "intermediate"
	LevelIntermediatePlus = "intermediate+"
	LevelAdvanced         = "advanced"
)

var tierSkills = map[string][]string{
	LevelBasic:        {"SELECT Fundamentals", "WHERE Clause", "ORDER BY", "DISTINCT"},
	LevelIntermediate: {"JOINs", "Aggregates", "GROUP BY", "HAVING"},
	LevelAdvanced:     {"Window Functions", "CTEs", "Subqueries", "Self-Joins"},
}

var tutorials = map[string]string{
	"Window Functions": "intro-to-window-functions",
	"CTEs":             "common-table-expressions",
	"Subqueries":       "subqueries-fundamentals",
	"Self-Joins":       "self-joins-explained",
	"JOINs":            "mastering-joins",
	"GROUP BY":         "grouping-and-aggregates",
	"Aggregates":       "sql-aggregate-functions",
}

func clampScore(s int) int {
	return max(0, min(100, s))
}

func weightOf(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// ComputeSkillScores returns the weighted mean score of every skill tag seen
// in responses.
func ComputeSkillScores(responses []models.AssessmentResponse) map[string]int {
	type acc struct{ sum, weight float64 }
	totals := make(map[string]*acc)

	for _, r := range responses {
		w := weightOf(r.DifficultyWeight)
		score := float64(clampScore(r.Score))
		for _, skill := range r.SkillTags {
			a, ok := totals[skill]
			if !ok {
				a = &acc{}
				totals[skill] = a
			}
			a.sum += score * w
			a.weight += w
		}
	}

	out := make(map[string]int, len(totals))
	for skill, a := range totals {
		out[skill] = clampScore(int(math.Round(a.sum / a.weight)))
	}
	return out
}

// OverallScore is the unweighted mean of the response scores, 0 when there
// are none.
func OverallScore(responses []models.AssessmentResponse) int {
	if len(responses) == 0 {
		return 0
	}
	total := 0
	for _, r := range responses {
		total += clampScore(r.Score)
	}
	return int(math.Round(float64(total) / float64(len(responses))))
}

// tierAverage averages the tier's skills that have a positive score. A skill
// scored 0 counts as no data.
func tierAverage(skills map[string]int, tier string) float64 {
	sum, n := 0, 0
	for _, name := range tierSkills[tier] {
		if s := skills[name]; s > 0 {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// RecommendedLevel maps skill scores to a study level.
func RecommendedLevel(skills map[string]int) string {
	intermediate := tierAverage(skills, LevelIntermediate)
	switch {
	case tierAverage(skills, LevelAdvanced) > advancedThreshold:
		return LevelAdvanced
	case intermediate > intermediatePlusScore:
		return LevelIntermediatePlus
	case intermediate > intermediateScore:
		return LevelIntermediate
	default:
		return LevelBasic
	}
}

// GenerateRecommendations picks up to three of the weakest skills below the
// weak threshold and the tutorials that cover them.
func GenerateRecommendations(skills map[string]int) models.Recommendations {
	var weak []string
	for name, s := range skills {
		if s < WeakThreshold {
			weak = append(weak, name)
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		if skills[weak[i]] != skills[weak[j]] {
			return skills[weak[i]] < skills[weak[j]]
		}
		return weak[i] < weak[j]
	})
	if len(weak) > maxRecommendations {
		weak = weak[:maxRecommendations]
	}

	topics := make([]string, 0, len(weak))
	tuts := make([]string, 0, len(weak))
	for _, name := range weak {
		topics = append(topics, name)
		if slug, ok := tutorials[name]; ok {
			tuts = append(tuts, slug)
		}
	}

	return models.Recommendations{
		SuggestedDifficulty: RecommendedLevel(skills),
		TopicsToFocus:       topics,
		TutorialsToTake:     tuts,
		PracticeProblems:    []string{},
	}
}

// WeakSkills returns skills scored below WeakThreshold, sorted by name.
func WeakSkills(skills map[string]int) []string {
	return filterSkills(skills, func(s int) bool { return s < WeakThreshold })
}

// StrongSkills returns skills scored above StrongThreshold, sorted by name.
func StrongSkills(skills map[string]int) []string {
	return filterSkills(skills, func(s int) bool { return s > StrongThreshold })
}

func filterSkills(skills map[string]int, keep func(int) bool) []string {
	out := []string{}
	for name, s := range skills {
		if keep(s) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
