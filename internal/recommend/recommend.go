// Package recommend turns a diagnosis into study advice drawn from the
// content's fixed recommendation table.
package recommend

import (
	"github.com/educoach-ai/educoach/internal/content"
	"github.com/educoach-ai/educoach/internal/diagnosis"
)

// Bundle is the advice returned for one diagnosis.
type Bundle struct {
	LevelAdvice             string   `json:"level_advice"`
	WeaknessRecommendations []string `json:"weakness_recommendations"`
	GeneralTips             []string `json:"general_tips"`
}

// Recommender looks up advice. It never calls out and never fails.
type Recommender struct {
	content *content.Content
}

// New creates a Recommender.
func New(c *content.Content) *Recommender {
	return &Recommender{content: c}
}

// Recommend builds the bundle for d. Suggestions are looked up under
// (level, area) for every weak area; a missing entry contributes nothing.
// When nothing is found the single all-strong message is returned instead.
func (r *Recommender) Recommend(d diagnosis.Diagnosis) Bundle {
	level := string(d.Level)

	var suggestions []string
	for _, area := range d.Weakness {
		if items, ok := r.content.Suggestions(level, string(area)); ok {
			suggestions = append(suggestions, items...)
		}
	}
	if len(suggestions) == 0 {
		suggestions = []string{r.content.AllStrong()}
	}

	tips, ok := r.content.Suggestions(level, content.GeneralKey)
	if !ok || tips == nil {
		tips = []string{}
	}

	return Bundle{
		LevelAdvice:             r.content.LevelAdvice(level),
		WeaknessRecommendations: suggestions,
		GeneralTips:             tips,
	}
}
