package diagnosis

import "github.com/educoach-ai/educoach/internal/scores"

// Level is a proficiency band.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelUnknown      Level = "unknown" // no scores to average
)

// Diagnosis is the outcome of classifying a score set.
type Diagnosis struct {
	Level    Level         `json:"level"`
	Weakness []scores.Area `json:"weakness"` // at most one area, never nil
	Summary  string        `json:"diagnosis_summary"`
}
