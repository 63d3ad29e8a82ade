package diagnosis

import "github.com/educoach-ai/educoach/internal/scores"

const (
	// IntermediateThreshold is the lowest average (inclusive) for intermediate.
	IntermediateThreshold = 60
	// AdvancedThreshold is the lowest average (inclusive) for advanced.
	AdvancedThreshold = 80
	// WeaknessThreshold is the score (exclusive) below which an area is weak.
	WeaknessThreshold = 60
)

// LevelFor buckets the average of s into a Level.
func LevelFor(s scores.Set) Level {
	if len(s) == 0 {
		return LevelUnknown
	}

	var sum float64
	for _, v := range s {
		sum += v
	}
	avg := sum / float64(len(s))

	switch {
	case avg >= AdvancedThreshold:
		return LevelAdvanced
	case avg >= IntermediateThreshold:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// Weakest returns the lowest-scoring area. Ties go to the area that comes
// first in scores.Set.Ordered. ok is false for an empty set.
func Weakest(s scores.Set) (area scores.Area, ok bool) {
	for _, a := range s.Ordered() {
		if !ok || s[a] < s[area] {
			area, ok = a, true
		}
	}
	return area, ok
}

// Weaknesses reports the weakest area when it scores below
// WeaknessThreshold. The result is never nil.
func Weaknesses(s scores.Set) []scores.Area {
	area, ok := Weakest(s)
	if !ok || s[area] >= WeaknessThreshold {
		return []scores.Area{}
	}
	return []scores.Area{area}
}
